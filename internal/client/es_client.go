package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"github.com/Suhaib3100/multi-format-ai-agents/internal/config"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/model"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/util"
)

// ESClient indexes activity records into Elasticsearch for search across
// classifications, traces, and extracted fields.
type ESClient struct {
	client *elasticsearch.Client
	index  string
	logger *zap.Logger
}

// NewElasticsearchClient creates and health-checks the ES client.
func NewElasticsearchClient(cfg *config.Config, logger *zap.Logger) (*ESClient, error) {
	esConfig := cfg.Elasticsearch

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{esConfig.URL},
		Username:  esConfig.Username,
		Password:  esConfig.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	esClient := &ESClient{
		client: client,
		index:  esConfig.Index,
		logger: logger,
	}

	if err := esClient.HealthCheck(); err != nil {
		return nil, fmt.Errorf("elasticsearch connection test failed: %w", err)
	}

	util.Info("Elasticsearch client initialized",
		zap.String("url", esConfig.URL),
		zap.String("index", esConfig.Index),
	)
	return esClient, nil
}

// HealthCheck verifies cluster reachability.
func (e *ESClient) HealthCheck() error {
	res, err := e.client.Info()
	if err != nil {
		return fmt.Errorf("failed to get cluster info: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch error: %s", res.String())
	}
	return nil
}

// IndexActivity indexes one activity record under its store id.
func (e *ESClient) IndexActivity(ctx context.Context, rec model.ActivityRecord) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(rec); err != nil {
		return fmt.Errorf("error encoding activity: %w", err)
	}

	res, err := e.client.Index(
		e.index,
		&buf,
		e.client.Index.WithContext(ctx),
		e.client.Index.WithDocumentID(strconv.FormatInt(rec.ID, 10)),
	)
	if err != nil {
		return fmt.Errorf("error indexing activity: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch error: %s", res.String())
	}

	e.logger.Debug("activity indexed",
		zap.Int64("activity_id", rec.ID),
		zap.String("index", e.index),
	)
	return nil
}

// Close logs shutdown; the underlying transport has no close hook.
func (e *ESClient) Close() {
	util.Info("Elasticsearch client shutdown")
}
