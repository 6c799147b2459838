package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/prasetyow/warecash/internal/logging"
	"github.com/prasetyow/warecash/internal/models"
)

// Document is the denormalized flow-log view kept in the search index so a
// query can match on category and warehouse names, not just the note text.
type Document struct {
	ID            uint      `json:"id"`
	WarehouseName string    `json:"warehouse_name"`
	CategoryName  string    `json:"category_name"`
	Username      string    `json:"username"`
	Kind          string    `json:"kind"`
	Amount        float64   `json:"amount"`
	Note          string    `json:"note"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func FromFlowLog(fl models.FlowLog, warehouseName, categoryName string) Document {
	return Document{
		ID:            fl.ID,
		WarehouseName: warehouseName,
		CategoryName:  categoryName,
		Username:      fl.Username,
		Kind:          fl.Kind,
		Amount:        fl.Amount,
		Note:          fl.Note,
		OccurredAt:    fl.OccurredAt,
	}
}

// Index stores a document under its flow-log id. Callers treat failures as
// best-effort: the relational row is the source of truth.
func Index(ctx context.Context, es *elasticsearch.Client, index string, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	res, err := es.Index(
		index,
		bytes.NewReader(data),
		es.Index.WithContext(ctx),
		es.Index.WithDocumentID(fmt.Sprint(doc.ID)),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

// Remove deletes a document after the flow log itself is deleted. A missing
// document is not an error.
func Remove(ctx context.Context, es *elasticsearch.Client, index string, id uint) error {
	res, err := es.Delete(index, fmt.Sprint(id), es.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}

func Search(ctx context.Context, es *elasticsearch.Client, index, query string, from, size int) (int64, []Document, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"note^2", "category_name", "warehouse_name", "username"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		logging.FromContext(ctx).Warn("es search failed", "index", index, "status", res.Status())
		return 0, nil, fmt.Errorf("es search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	docs := make([]Document, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		docs[i] = hit.Source
	}
	return r.Hits.Total.Value, docs, nil
}
