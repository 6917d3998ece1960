package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Suhaib3100/multi-format-ai-agents/internal/config"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/model"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/util"
)

// ActivityPublisher publishes recorded activities to Kafka so downstream
// consumers (SIEM, reporting) can follow the pipeline. Publishing is
// best-effort: the pipeline run has already been persisted when it happens.
type ActivityPublisher struct {
	writer *kafka.Writer
	topic  string
	logger *zap.Logger
}

// NewActivityPublisher creates the Kafka activity publisher.
func NewActivityPublisher(cfg *config.Config, logger *zap.Logger) (*ActivityPublisher, error) {
	kafkaConfig := cfg.Kafka

	writer := &kafka.Writer{
		Addr:         kafka.TCP(kafkaConfig.Brokers...),
		Topic:        kafkaConfig.Topic,
		Balancer:     &kafka.LeastBytes{},
		MaxAttempts:  3,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("failed to write kafka messages",
					zap.Error(err),
					zap.Int("message_count", len(messages)),
				)
			}
		},
	}

	util.Info("Kafka activity publisher initialized",
		zap.Strings("brokers", kafkaConfig.Brokers),
		zap.String("topic", kafkaConfig.Topic),
	)

	return &ActivityPublisher{
		writer: writer,
		topic:  kafkaConfig.Topic,
		logger: logger,
	}, nil
}

// Publish writes one activity record to the topic, keyed by its id.
func (p *ActivityPublisher) Publish(ctx context.Context, rec model.ActivityRecord) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(rec.ID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "format", Value: []byte(rec.Classification.Format)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	p.logger.Debug("published activity",
		zap.Int64("activity_id", rec.ID),
		zap.String("topic", p.topic),
	)
	return nil
}

// Close flushes and closes the writer.
func (p *ActivityPublisher) Close() error {
	if p.writer != nil {
		if err := p.writer.Close(); err != nil {
			p.logger.Error("failed to close Kafka publisher", zap.Error(err))
			return err
		}
		util.Info("Kafka activity publisher closed")
	}
	return nil
}

// HealthCheck verifies broker connectivity.
func (p *ActivityPublisher) HealthCheck(ctx context.Context) error {
	dialer := &kafka.Dialer{
		Timeout:   5 * time.Second,
		DualStack: true,
	}

	conn, err := dialer.DialContext(ctx, "tcp", config.Get().Kafka.Brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to kafka broker: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ReadPartitions(); err != nil {
		return fmt.Errorf("failed to read Kafka partitions: %w", err)
	}
	return nil
}
