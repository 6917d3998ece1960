// Package memory implements the append-only activity store. Append is the
// only mutation; records are immutable once created and ids are assigned
// monotonically at persistence time, globally unique under concurrent
// appends.
package memory

import (
	"context"
	"errors"

	"github.com/Suhaib3100/multi-format-ai-agents/internal/model"
)

// ErrNotFound marks an unknown activity id.
var ErrNotFound = errors.New("activity not found")

// Store is the activity recorder contract. Both implementations (Postgres and
// in-memory) satisfy it; the pipeline takes it by injection, never through a
// package-level singleton.
type Store interface {
	// Append persists the record, ignoring rec.ID, and returns the stored
	// record with its assigned id.
	Append(ctx context.Context, rec model.ActivityRecord) (model.ActivityRecord, error)
	// GetAll returns all records in insertion order.
	GetAll(ctx context.Context) ([]model.ActivityRecord, error)
	// GetByID returns the record or ErrNotFound.
	GetByID(ctx context.Context, id int64) (model.ActivityRecord, error)
}
