package factory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Suhaib3100/multi-format-ai-agents/internal/action"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/agent"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/anomaly"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/client"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/config"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/extraction"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/memory"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/pdftext"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/rules"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/service"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/util"
)

// Factory manages the lifecycle of all application dependencies
type Factory struct {
	config      *config.Config
	rulesLoader *rules.Loader
	stopWatch   func()

	// Clients (all optional; nil when disabled or unavailable)
	redisClient      *client.RedisClient
	publisher        *client.ActivityPublisher
	esClient         *client.ESClient
	clickhouseClient *client.ClickHouseClient

	pgPool *pgxpool.Pool
	store  memory.Store

	extractionPort extraction.Port
	pipeline       *service.PipelineService

	closeOnce sync.Once
	closed    chan struct{}
}

// NewFactory creates and initializes all application dependencies
func NewFactory() (*Factory, error) {
	cfg := config.LoadConfig()

	util.Init(cfg.Environment, cfg.Logging.Level, cfg.Logging.Format)

	factory := &Factory{
		config: cfg,
		closed: make(chan struct{}),
	}

	loader, err := rules.NewLoader(cfg.Rules.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	factory.rulesLoader = loader

	if cfg.Rules.Watch && cfg.Rules.Path != "" {
		stop, err := loader.Watch()
		if err != nil {
			util.Warn("Rules file watch unavailable - hot reload disabled", util.ErrorField(err))
		} else {
			factory.stopWatch = stop
			util.Info("Rules hot reload enabled", util.String("path", cfg.Rules.Path))
		}
	}

	if err := factory.initializeClients(); err != nil {
		return nil, fmt.Errorf("failed to initialize clients: %w", err)
	}

	if err := factory.initializeStore(); err != nil {
		return nil, fmt.Errorf("failed to initialize activity store: %w", err)
	}

	factory.initializePipeline()

	util.Info("Factory initialized successfully",
		util.String("environment", cfg.Environment),
		util.Bool("redis_enabled", factory.redisClient != nil),
		util.Bool("kafka_enabled", factory.publisher != nil),
		util.Bool("postgres_store", factory.pgPool != nil),
		util.Bool("extraction_stub", cfg.Extraction.UseStub || cfg.Extraction.APIKey == ""),
	)

	return factory, nil
}

// initializeClients initializes the optional external service clients with
// health checks. Every client is opt-in; a failed init degrades the feature
// it backs rather than the service, except in production where enabled
// clients must come up.
func (f *Factory) initializeClients() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var initErrors []error

	// Redis (extraction cache)
	if f.config.Redis.Enabled {
		if rc, err := client.NewRedisClient(f.config, util.Get()); err != nil {
			initErrors = append(initErrors, fmt.Errorf("redis: %w", err))
		} else {
			f.redisClient = rc
			if err := f.redisClient.HealthCheck(ctx); err != nil {
				initErrors = append(initErrors, fmt.Errorf("redis health check: %w", err))
			} else {
				util.Info("Redis client initialized and healthy")
			}
		}
	}

	// Kafka (activity publisher)
	if f.config.Kafka.Enabled {
		if pub, err := client.NewActivityPublisher(f.config, util.Get()); err != nil {
			util.Warn("Kafka publisher initialization failed - proceeding without Kafka", util.ErrorField(err))
		} else {
			f.publisher = pub
			util.Info("Kafka activity publisher initialized")
		}
	}

	// Elasticsearch (activity index)
	if f.config.Elasticsearch.Enabled {
		if es, err := client.NewElasticsearchClient(f.config, util.Get()); err != nil {
			initErrors = append(initErrors, fmt.Errorf("elasticsearch: %w", err))
		} else {
			f.esClient = es
			if err := f.esClient.HealthCheck(); err != nil {
				initErrors = append(initErrors, fmt.Errorf("elasticsearch health check: %w", err))
			} else {
				util.Info("Elasticsearch client initialized and healthy")
			}
		}
	}

	// ClickHouse (risk analytics)
	if f.config.Clickhouse.Enabled {
		if ch, err := client.NewClickHouseClient(f.config, util.Get()); err != nil {
			initErrors = append(initErrors, fmt.Errorf("clickhouse: %w", err))
		} else {
			f.clickhouseClient = ch
			if err := f.clickhouseClient.HealthCheck(ctx); err != nil {
				initErrors = append(initErrors, fmt.Errorf("clickhouse health check: %w", err))
			} else {
				util.Info("ClickHouse client initialized and healthy")
			}
		}
	}

	if len(initErrors) > 0 {
		if f.config.IsProduction() {
			return fmt.Errorf("critical service initialization failed: %v", initErrors)
		}
		for _, err := range initErrors {
			util.Warn("Service initialization warning", util.ErrorField(err))
		}
	}

	return nil
}

// initializeStore selects the activity store: Postgres when DATABASE_URL is
// set, the in-memory store otherwise.
func (f *Factory) initializeStore() error {
	if f.config.Database.URL == "" {
		f.store = memory.NewMemStore()
		util.Info("Using in-memory activity store")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, f.config.Database.URL)
	if err != nil {
		return fmt.Errorf("postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("postgres ping: %w", err)
	}

	store, err := memory.NewPostgresStore(ctx, pool, util.Get())
	if err != nil {
		pool.Close()
		return fmt.Errorf("postgres store: %w", err)
	}

	f.pgPool = pool
	f.store = store
	util.Info("Postgres activity store initialized")
	return nil
}

// initializePipeline wires the extraction port, agents, action router, and
// pipeline service.
func (f *Factory) initializePipeline() {
	f.extractionPort = f.buildExtractionPort()

	detector := anomaly.NewDetector(f.rulesLoader.Rules)

	emailAgent := agent.NewEmailAgent(f.extractionPort, f.rulesLoader.Rules, util.Get())
	jsonAgent := agent.NewJSONAgent(detector, util.Get())
	pdfAgent := agent.NewPDFAgent(pdftext.NewReader(), f.extractionPort, f.rulesLoader.Rules, util.Get())

	registry := agent.NewRegistry(emailAgent, jsonAgent, pdfAgent)
	router := action.NewRouter()

	sinks := service.Sinks{
		Publisher: f.publisher,
		Search:    f.esClient,
		Analytics: f.clickhouseClient,
	}

	f.pipeline = service.NewPipelineService(registry, router, f.store, sinks, util.Get())
}

// buildExtractionPort picks the extraction backend. Without an API key (or
// with the stub flag set) the deterministic fake serves offline runs; the
// OpenAI-compatible port is wrapped in the Redis cache when Redis is up.
func (f *Factory) buildExtractionPort() extraction.Port {
	cfg := f.config.Extraction

	if cfg.UseStub || cfg.APIKey == "" {
		if cfg.APIKey == "" && !cfg.UseStub {
			util.Warn("No extraction API key configured - using stub extraction port")
		}
		return extraction.NewFakePort().
			Respond("business emails", map[string]any{
				"sender":     "unknown",
				"urgency":    "low",
				"tone":       "neutral",
				"key_points": []any{},
			}).
			Respond("business documents", map[string]any{
				"document_type":         "unknown",
				"key_terms":             []any{},
				"important_dates":       []any{},
				"monetary_amounts":      []any{},
				"regulatory_references": []any{},
			})
	}

	var port extraction.Port = extraction.NewOpenAIPort(cfg, util.Get())
	if f.redisClient != nil {
		port = extraction.NewCachedPort(port, f.redisClient.Client, f.config.Redis.CacheTTL, util.Get())
		util.Info("Extraction cache enabled", util.Duration("ttl", f.config.Redis.CacheTTL))
	}
	return port
}

// ==============================
// Health Checks
// ==============================

func (f *Factory) HealthCheck(ctx context.Context) map[string]error {
	healthErrors := make(map[string]error)

	if f.config.Redis.Enabled {
		if f.redisClient != nil {
			if err := f.redisClient.HealthCheck(ctx); err != nil {
				healthErrors["redis"] = err
			}
		} else {
			healthErrors["redis"] = fmt.Errorf("redis client not initialized")
		}
	}

	if f.config.Elasticsearch.Enabled {
		if f.esClient != nil {
			if err := f.esClient.HealthCheck(); err != nil {
				healthErrors["elasticsearch"] = err
			}
		} else {
			healthErrors["elasticsearch"] = fmt.Errorf("elasticsearch client not initialized")
		}
	}

	if f.config.Clickhouse.Enabled {
		if f.clickhouseClient != nil {
			if err := f.clickhouseClient.HealthCheck(ctx); err != nil {
				healthErrors["clickhouse"] = err
			}
		} else {
			healthErrors["clickhouse"] = fmt.Errorf("clickhouse client not initialized")
		}
	}

	if f.publisher != nil {
		if err := f.publisher.HealthCheck(ctx); err != nil {
			healthErrors["kafka"] = err
		}
	}

	if f.pgPool != nil {
		if err := f.pgPool.Ping(ctx); err != nil {
			healthErrors["postgres"] = err
		}
	}

	return healthErrors
}

func (f *Factory) IsHealthy(ctx context.Context) bool {
	healthErrors := f.HealthCheck(ctx)
	delete(healthErrors, "kafka")
	return len(healthErrors) == 0
}

func (f *Factory) Close() error {
	f.closeOnce.Do(func() {
		close(f.closed)
		util.Info("Shutting down factory...")

		if f.stopWatch != nil {
			f.stopWatch()
			util.Info("Rules watcher stopped")
		}

		if f.clickhouseClient != nil {
			if err := f.clickhouseClient.Close(); err != nil {
				util.Error("Failed to close ClickHouse client", util.ErrorField(err))
			} else {
				util.Info("ClickHouse client closed")
			}
		}

		if f.esClient != nil {
			f.esClient.Close()
			util.Info("Elasticsearch client closed")
		}

		if f.publisher != nil {
			if err := f.publisher.Close(); err != nil {
				util.Error("Failed to close Kafka publisher", util.ErrorField(err))
			} else {
				util.Info("Kafka publisher closed")
			}
		}

		if f.pgPool != nil {
			f.pgPool.Close()
			util.Info("Postgres pool closed")
		}

		if f.redisClient != nil {
			if err := f.redisClient.Close(); err != nil {
				util.Error("Failed to close Redis client", util.ErrorField(err))
			}
		}

		util.Sync()
		util.Info("Factory shutdown completed")
	})

	return nil
}

func (f *Factory) WaitForClose() {
	<-f.closed
}

func (f *Factory) Config() *config.Config {
	return f.config
}

func (f *Factory) PipelineService() *service.PipelineService {
	return f.pipeline
}

func (f *Factory) Rules() *rules.Loader {
	return f.rulesLoader
}
