package es

import (
	"github.com/elastic/go-elasticsearch/v9"

	"github.com/prasetyow/warecash/internal/config"
)

const FlowLogIndex = "flowlog"

func NewClient(cfg *config.Config) (*elasticsearch.Client, error) {
	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.ES_URL},
		Username:  cfg.ES_USER,
		Password:  cfg.ES_PASSWORD,
	}
	return elasticsearch.NewClient(esCfg)
}
