package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/Suhaib3100/multi-format-ai-agents/internal/config"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/model"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/util"
)

// RiskEvent is one analytics row: the risk outcome of a structured-event run.
type RiskEvent struct {
	ActivityID int64
	EventType  string
	Source     string
	RiskLevel  model.RiskLevel
	Anomalies  []string
	OccurredAt time.Time
}

// ClickHouseClient writes risk analytics rows for offline reporting.
type ClickHouseClient struct {
	conn   driver.Conn
	config *config.ClickhouseConfig
	logger *zap.Logger
}

// NewClickHouseClient creates the analytics client and ensures the risk
// events table exists.
func NewClickHouseClient(cfg *config.Config, logger *zap.Logger) (*ClickHouseClient, error) {
	chConfig := cfg.Clickhouse

	conn, err := ch.Open(&ch.Options{
		Addr: []string{extractHostPort(chConfig.URL)},
		Auth: ch.Auth{
			Username: chConfig.Username,
			Password: chConfig.Password,
			Database: chConfig.Database,
		},
		DialTimeout:      30 * time.Second,
		MaxOpenConns:     20,
		MaxIdleConns:     10,
		ConnMaxLifetime:  time.Hour,
		ConnOpenStrategy: ch.ConnOpenInOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open ClickHouse connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	client := &ClickHouseClient{
		conn:   conn,
		config: &chConfig,
		logger: logger,
	}
	if err := client.ensureTable(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	util.Info("ClickHouse client initialized",
		zap.String("url", chConfig.URL),
		zap.String("database", chConfig.Database),
		zap.String("table", chConfig.Table),
	)
	return client, nil
}

func (c *ClickHouseClient) ensureTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			activity_id UInt64,
			event_type  String,
			source      String,
			risk_level  String,
			anomalies   Array(String),
			occurred_at DateTime
		) ENGINE = MergeTree()
		ORDER BY (occurred_at, activity_id)
	`, c.config.Table)
	if err := c.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create risk events table: %w", err)
	}
	return nil
}

// InsertRiskEvent writes one analytics row.
func (c *ClickHouseClient) InsertRiskEvent(ctx context.Context, ev RiskEvent) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (activity_id, event_type, source, risk_level, anomalies, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.config.Table)
	err := c.conn.Exec(ctx, query,
		uint64(ev.ActivityID), ev.EventType, ev.Source,
		string(ev.RiskLevel), ev.Anomalies, ev.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert risk event: %w", err)
	}

	c.logger.Debug("risk event recorded",
		zap.Int64("activity_id", ev.ActivityID),
		zap.String("risk_level", string(ev.RiskLevel)),
	)
	return nil
}

// HealthCheck verifies ClickHouse connectivity.
func (c *ClickHouseClient) HealthCheck(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

// Close gracefully closes the connection.
func (c *ClickHouseClient) Close() error {
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			util.Error("Failed to close ClickHouse connection", zap.Error(err))
			return err
		}
		util.Info("ClickHouse connection closed")
	}
	return nil
}

func extractHostPort(url string) string {
	cleanURL := strings.TrimPrefix(url, "http://")
	cleanURL = strings.TrimPrefix(cleanURL, "https://")
	if !strings.Contains(cleanURL, ":") {
		if strings.HasPrefix(url, "https://") {
			return cleanURL + ":8443"
		}
		return cleanURL + ":9000"
	}
	return cleanURL
}
