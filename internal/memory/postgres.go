package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Suhaib3100/multi-format-ai-agents/internal/model"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/util"
)

// PostgresStore persists activity records in Postgres. The BIGSERIAL primary
// key gives monotonic, globally unique ids under concurrent appends without
// any application-side locking.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore connects a store to the given pool and ensures the
// activity table exists.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) (*PostgresStore, error) {
	s := &PostgresStore{pool: pool, logger: logger}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure activity schema: %w", err)
	}
	logger.Info("postgres activity store initialised")
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS activity (
			id               BIGSERIAL PRIMARY KEY,
			source           TEXT NOT NULL,
			timestamp        TEXT NOT NULL,
			classification   JSONB NOT NULL,
			extracted_fields JSONB NOT NULL,
			action_triggered JSONB,
			action_result    JSONB,
			agent_trace      JSONB NOT NULL
		);
	`)
	return err
}

// Append implements Store.
func (s *PostgresStore) Append(ctx context.Context, rec model.ActivityRecord) (model.ActivityRecord, error) {
	classification, err := json.Marshal(rec.Classification)
	if err != nil {
		return model.ActivityRecord{}, fmt.Errorf("marshal classification: %w", err)
	}
	fields, err := json.Marshal(rec.ExtractedFields)
	if err != nil {
		return model.ActivityRecord{}, fmt.Errorf("marshal extracted fields: %w", err)
	}
	trace, err := json.Marshal(rec.AgentTrace)
	if err != nil {
		return model.ActivityRecord{}, fmt.Errorf("marshal agent trace: %w", err)
	}
	trigger, err := marshalNullable(rec.ActionTriggered)
	if err != nil {
		return model.ActivityRecord{}, fmt.Errorf("marshal action trigger: %w", err)
	}
	result, err := marshalNullable(rec.ActionResult)
	if err != nil {
		return model.ActivityRecord{}, fmt.Errorf("marshal action result: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
		INSERT INTO activity
			(source, timestamp, classification, extracted_fields,
			 action_triggered, action_result, agent_trace)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, rec.Source, rec.Timestamp, classification, fields, trigger, result, trace).Scan(&rec.ID)
	if err != nil {
		return model.ActivityRecord{}, fmt.Errorf("insert activity: %w", err)
	}

	s.logger.Debug("activity appended", util.Int64("activity_id", rec.ID))
	return rec, nil
}

// GetAll implements Store.
func (s *PostgresStore) GetAll(ctx context.Context) ([]model.ActivityRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, source, timestamp, classification, extracted_fields,
		       action_triggered, action_result, agent_trace
		FROM activity
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	var out []model.ActivityRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetByID implements Store.
func (s *PostgresStore) GetByID(ctx context.Context, id int64) (model.ActivityRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, source, timestamp, classification, extracted_fields,
		       action_triggered, action_result, agent_trace
		FROM activity
		WHERE id = $1
	`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ActivityRecord{}, ErrNotFound
	}
	return rec, err
}

func scanRecord(row pgx.Row) (model.ActivityRecord, error) {
	var (
		rec            model.ActivityRecord
		classification []byte
		fields         []byte
		trigger        []byte
		result         []byte
		trace          []byte
	)
	if err := row.Scan(&rec.ID, &rec.Source, &rec.Timestamp,
		&classification, &fields, &trigger, &result, &trace); err != nil {
		return model.ActivityRecord{}, err
	}
	if err := json.Unmarshal(classification, &rec.Classification); err != nil {
		return model.ActivityRecord{}, fmt.Errorf("unmarshal classification: %w", err)
	}
	if err := json.Unmarshal(fields, &rec.ExtractedFields); err != nil {
		return model.ActivityRecord{}, fmt.Errorf("unmarshal extracted fields: %w", err)
	}
	if err := json.Unmarshal(trace, &rec.AgentTrace); err != nil {
		return model.ActivityRecord{}, fmt.Errorf("unmarshal agent trace: %w", err)
	}
	if len(trigger) > 0 {
		if err := json.Unmarshal(trigger, &rec.ActionTriggered); err != nil {
			return model.ActivityRecord{}, fmt.Errorf("unmarshal action trigger: %w", err)
		}
	}
	if len(result) > 0 {
		if err := json.Unmarshal(result, &rec.ActionResult); err != nil {
			return model.ActivityRecord{}, fmt.Errorf("unmarshal action result: %w", err)
		}
	}
	return rec, nil
}

func marshalNullable(v any) ([]byte, error) {
	switch t := v.(type) {
	case *model.ActionTrigger:
		if t == nil {
			return nil, nil
		}
	case *model.ActionResult:
		if t == nil {
			return nil, nil
		}
	}
	return json.Marshal(v)
}
