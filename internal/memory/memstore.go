package memory

import (
	"context"
	"sync"

	"github.com/Suhaib3100/multi-format-ai-agents/internal/model"
)

// MemStore is the in-memory Store used in tests and when no DATABASE_URL is
// configured. A single mutex serializes id assignment and write, which keeps
// ids monotonic under concurrent appends.
type MemStore struct {
	mu      sync.RWMutex
	nextID  int64
	records []model.ActivityRecord
	byID    map[int64]int
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{nextID: 1, byID: make(map[int64]int)}
}

// Append implements Store.
func (s *MemStore) Append(ctx context.Context, rec model.ActivityRecord) (model.ActivityRecord, error) {
	if err := ctx.Err(); err != nil {
		return model.ActivityRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = s.nextID
	s.nextID++
	s.byID[rec.ID] = len(s.records)
	s.records = append(s.records, rec)
	return rec, nil
}

// GetAll implements Store.
func (s *MemStore) GetAll(ctx context.Context) ([]model.ActivityRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.ActivityRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

// GetByID implements Store.
func (s *MemStore) GetByID(ctx context.Context, id int64) (model.ActivityRecord, error) {
	if err := ctx.Err(); err != nil {
		return model.ActivityRecord{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[id]
	if !ok {
		return model.ActivityRecord{}, ErrNotFound
	}
	return s.records[idx], nil
}
