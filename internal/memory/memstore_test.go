package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Suhaib3100/multi-format-ai-agents/internal/model"
)

func TestMemStoreRoundTrip(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	rec := model.ActivityRecord{
		Source:    "json",
		Timestamp: "2026-03-01T12:00:00Z",
		Classification: model.Classification{
			Format: model.FormatJSON,
			Intent: model.IntentEvent,
		},
		ExtractedFields: model.ExtractedFields{"risk_level": "high"},
		ActionTriggered: &model.ActionTrigger{Route: "POST /risk_alert/high"},
		ActionResult: &model.ActionResult{
			Status: model.ActionSuccess,
			Detail: map[string]any{"escalation_ref": "ESC-1"},
		},
		AgentTrace: []string{"classifier_agent", "json_agent"},
	}

	stored, err := s.Append(ctx, rec)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if stored.ID != 1 {
		t.Fatalf("first id = %d, want 1", stored.ID)
	}

	got, err := s.GetByID(ctx, stored.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if diff := cmp.Diff(stored, got); diff != "" {
		t.Fatalf("round trip mismatch (-stored +got):\n%s", diff)
	}

	all, err := s.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("GetAll len = %d, want 1", len(all))
	}
}

func TestMemStoreAssignsIDIgnoringInput(t *testing.T) {
	s := NewMemStore()
	stored, err := s.Append(context.Background(), model.ActivityRecord{ID: 999, Source: "email"})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if stored.ID != 1 {
		t.Fatalf("id = %d, want 1 regardless of input id", stored.ID)
	}
}

func TestMemStoreNotFound(t *testing.T) {
	s := NewMemStore()
	if _, err := s.GetByID(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByID error = %v, want ErrNotFound", err)
	}
}

func TestMemStoreInsertionOrder(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	for _, src := range []string{"email", "json", "pdf"} {
		if _, err := s.Append(ctx, model.ActivityRecord{Source: src}); err != nil {
			t.Fatalf("Append(%s): %v", src, err)
		}
	}

	all, err := s.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	for i, src := range []string{"email", "json", "pdf"} {
		if all[i].Source != src || all[i].ID != int64(i+1) {
			t.Fatalf("record %d = %s/%d, want %s/%d", i, all[i].Source, all[i].ID, src, i+1)
		}
	}
}

func TestMemStoreMonotonicIDsUnderConcurrency(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	const n = 100

	var wg sync.WaitGroup
	ids := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stored, err := s.Append(ctx, model.ActivityRecord{Source: "json"})
			if err != nil {
				t.Errorf("Append: %v", err)
				return
			}
			ids <- stored.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	for id := int64(1); id <= n; id++ {
		if !seen[id] {
			t.Fatalf("missing id %d", id)
		}
	}
}

func TestMemStoreCancelledContext(t *testing.T) {
	s := NewMemStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Append(ctx, model.ActivityRecord{}); err == nil {
		t.Fatal("Append with cancelled context should fail")
	}
	if _, err := s.GetAll(ctx); err == nil {
		t.Fatal("GetAll with cancelled context should fail")
	}
}
