package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/prasetyow/warecash/internal/es"
	"github.com/prasetyow/warecash/internal/events"
	"github.com/prasetyow/warecash/internal/logging"
	authmw "github.com/prasetyow/warecash/internal/middleware/auth"
	"github.com/prasetyow/warecash/internal/models"
	"github.com/prasetyow/warecash/internal/service/search"
	"github.com/prasetyow/warecash/internal/util"
)

type FlowLogHandler struct {
	DB       *gorm.DB
	ES       *elasticsearch.Client
	Producer *events.Producer
}

type flowLogRequest struct {
	CategoryID uint      `json:"category_id"`
	Kind       string    `json:"kind"`
	Amount     float64   `json:"amount"`
	Note       string    `json:"note"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (r *flowLogRequest) validate() string {
	if r.CategoryID == 0 {
		return "category_id is required"
	}
	if r.Kind != models.FlowIn && r.Kind != models.FlowOut {
		return "kind must be \"in\" or \"out\""
	}
	if r.Amount <= 0 {
		return "amount must be positive"
	}
	return ""
}

func (h *FlowLogHandler) CreateFlowLog(c echo.Context) error {
	identity := authmw.Identity(c)
	if identity == nil {
		return fail(c, http.StatusUnauthorized, "authentication required", "")
	}

	var req flowLogRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body", "")
	}
	if msg := req.validate(); msg != "" {
		return fail(c, http.StatusBadRequest, msg, "")
	}

	var category models.Category
	if err := h.DB.First(&category, req.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusBadRequest, "category does not exist", "")
		}
		return fail(c, http.StatusInternalServerError, "cannot create flow log", "")
	}

	occurred := req.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}

	fl := models.FlowLog{
		WarehouseID: identity.WarehouseID,
		CategoryID:  req.CategoryID,
		Username:    identity.Username,
		Kind:        req.Kind,
		Amount:      req.Amount,
		Note:        req.Note,
		OccurredAt:  occurred,
	}
	if err := h.DB.Create(&fl).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "cannot create flow log", "")
	}

	h.index(c, fl, category.Name)
	h.publish(c, "flowlog_created", fl)

	return c.JSON(http.StatusCreated, fl)
}

func (h *FlowLogHandler) ListFlowLogs(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.FlowLog{})
	if v := c.QueryParam("warehouse"); v != "" {
		q = q.Where("warehouse_id = ?", v)
	}
	if v := c.QueryParam("category"); v != "" {
		q = q.Where("category_id = ?", v)
	}
	if v := c.QueryParam("kind"); v != "" {
		q = q.Where("kind = ?", v)
	}
	if v := c.QueryParam("month"); v != "" {
		if start, err := time.Parse("2006-01", v); err == nil {
			q = q.Where("occurred_at >= ? AND occurred_at < ?", start, start.AddDate(0, 1, 0))
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "cannot list flow logs", "")
	}

	var items []models.FlowLog
	if err := q.Order("occurred_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "cannot list flow logs", "")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *FlowLogHandler) UpdateFlowLog(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid flow log id", "")
	}

	var req flowLogRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body", "")
	}
	if msg := req.validate(); msg != "" {
		return fail(c, http.StatusBadRequest, msg, "")
	}

	var fl models.FlowLog
	if err := h.DB.First(&fl, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "flow log not found", "")
		}
		return fail(c, http.StatusInternalServerError, "cannot load flow log", "")
	}

	var category models.Category
	if err := h.DB.First(&category, req.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusBadRequest, "category does not exist", "")
		}
		return fail(c, http.StatusInternalServerError, "cannot update flow log", "")
	}

	fl.CategoryID = req.CategoryID
	fl.Kind = req.Kind
	fl.Amount = req.Amount
	fl.Note = req.Note
	if !req.OccurredAt.IsZero() {
		fl.OccurredAt = req.OccurredAt
	}
	if err := h.DB.Save(&fl).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "cannot update flow log", "")
	}

	h.index(c, fl, category.Name)
	h.publish(c, "flowlog_updated", fl)

	return c.JSON(http.StatusOK, fl)
}

func (h *FlowLogHandler) DeleteFlowLog(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid flow log id", "")
	}

	var fl models.FlowLog
	if err := h.DB.First(&fl, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "flow log not found", "")
		}
		return fail(c, http.StatusInternalServerError, "cannot load flow log", "")
	}

	if err := h.DB.Delete(&fl).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "cannot delete flow log", "")
	}

	if h.ES != nil {
		ctx := c.Request().Context()
		if err := search.Remove(ctx, h.ES, es.FlowLogIndex, fl.ID); err != nil {
			logging.FromContext(ctx).Warn("es remove failed", "id", fl.ID, "error", err)
		}
	}
	h.publish(c, "flowlog_deleted", fl)

	return c.JSON(http.StatusOK, echo.Map{"statusCode": http.StatusOK, "message": "flow log deleted"})
}

func (h *FlowLogHandler) SearchFlowLogs(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return fail(c, http.StatusBadRequest, "query is required", "")
	}
	if h.ES == nil {
		return fail(c, http.StatusServiceUnavailable, "search is not available", "")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	total, docs, err := search.Search(c.Request().Context(), h.ES, es.FlowLogIndex, q, from, limit)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "search failed", "")
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "flow_logs": docs})
}

// index mirrors the row into elasticsearch, best-effort: the DB row is the
// source of truth and a failed index only degrades search.
func (h *FlowLogHandler) index(c echo.Context, fl models.FlowLog, categoryName string) {
	if h.ES == nil {
		return
	}
	ctx := c.Request().Context()

	var wh models.Warehouse
	if err := h.DB.First(&wh, fl.WarehouseID).Error; err != nil {
		wh.Name = ""
	}

	doc := search.FromFlowLog(fl, wh.Name, categoryName)
	if err := search.Index(ctx, h.ES, es.FlowLogIndex, doc); err != nil {
		logging.FromContext(ctx).Warn("es index failed", "id", fl.ID, "error", err)
	}
}

func (h *FlowLogHandler) publish(c echo.Context, kind string, fl models.FlowLog) {
	if h.Producer == nil {
		return
	}
	ctx := c.Request().Context()
	event := map[string]interface{}{
		"type":         kind,
		"flowlog_id":   fl.ID,
		"warehouse_id": fl.WarehouseID,
		"username":     fl.Username,
		"kind":         fl.Kind,
		"amount":       fl.Amount,
	}
	if err := h.Producer.PublishEvent(ctx, events.TopicFlowLog, strconv.Itoa(int(fl.ID)), event); err != nil {
		logging.FromContext(ctx).Warn("kafka publish failed", "topic", events.TopicFlowLog, "error", err)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
