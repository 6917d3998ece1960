package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/Suhaib3100/multi-format-ai-agents/internal/action"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/extraction"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/model"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/rules"
)

func defaultRules() *rules.Ruleset { return rules.Default() }

func TestEmailAgentNeutralTone(t *testing.T) {
	fake := extraction.NewFakePort().Respond("business emails", map[string]any{
		"sender":     "alice@example.com",
		"urgency":    "low",
		"tone":       "polite",
		"key_points": []any{"invoice question"},
	})
	a := NewEmailAgent(fake, defaultRules, zap.NewNop())

	res, err := a.Process(context.Background(), model.RawInput{EmailContent: "Hi, quick question about invoice 12."})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Trigger != nil {
		t.Fatalf("Trigger = %v, want nil for polite tone", res.Trigger)
	}
	if res.Fields["sender"] != "alice@example.com" || res.Fields["tone"] != "polite" {
		t.Fatalf("Fields = %v", res.Fields)
	}
	want := []string{"email_analysis", "tone_detected:polite"}
	if diff := cmp.Diff(want, res.Trace); diff != "" {
		t.Fatalf("Trace mismatch (-want +got):\n%s", diff)
	}
}

func TestEmailAgentEscalatesOnTone(t *testing.T) {
	for _, tone := range []string{"angry", "threatening"} {
		fake := extraction.NewFakePort().Respond("business emails", map[string]any{
			"sender":  "bob@example.com",
			"urgency": "high",
			"tone":    tone,
		})
		a := NewEmailAgent(fake, defaultRules, zap.NewNop())

		res, err := a.Process(context.Background(), model.RawInput{EmailContent: "This is unacceptable!"})
		if err != nil {
			t.Fatalf("Process(%s): %v", tone, err)
		}
		if res.Trigger == nil || res.Trigger.Route != action.RouteCRMEscalate {
			t.Fatalf("Trigger for %s tone = %v, want %s", tone, res.Trigger, action.RouteCRMEscalate)
		}
	}
}

func TestEmailAgentDefaultsMissingFields(t *testing.T) {
	fake := extraction.NewFakePort() // empty response for unknown kinds
	a := NewEmailAgent(fake, defaultRules, zap.NewNop())

	res, err := a.Process(context.Background(), model.RawInput{EmailContent: "hello"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Fields["tone"] != "unknown" || res.Fields["sender"] != "unknown" {
		t.Fatalf("Fields = %v, want unknown defaults", res.Fields)
	}
	if pts, ok := res.Fields["key_points"].([]string); !ok || len(pts) != 0 {
		t.Fatalf("key_points = %v, want empty slice", res.Fields["key_points"])
	}
}

func TestEmailAgentPortFailurePropagates(t *testing.T) {
	fake := extraction.NewFakePort()
	fake.Fail = true
	a := NewEmailAgent(fake, defaultRules, zap.NewNop())

	_, err := a.Process(context.Background(), model.RawInput{EmailContent: "hello"})
	if !errors.Is(err, extraction.ErrPort) {
		t.Fatalf("Process error = %v, want ErrPort", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abcd" {
		t.Fatalf("truncate = %q, want abcd", got)
	}
	if got := truncate("abc", 10); got != "abc" {
		t.Fatalf("truncate = %q, want abc", got)
	}
	if got := truncate("abc", 0); got != "abc" {
		t.Fatalf("truncate with zero budget = %q, want abc", got)
	}
}
