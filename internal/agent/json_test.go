package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/Suhaib3100/multi-format-ai-agents/internal/action"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/anomaly"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/model"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/schema"
)

func testJSONAgent(t *testing.T) *JSONAgent {
	t.Helper()
	now, err := time.Parse(time.RFC3339, "2026-03-01T12:00:00Z")
	if err != nil {
		t.Fatalf("parse clock: %v", err)
	}
	detector := anomaly.NewDetector(defaultRules, anomaly.WithClock(func() time.Time { return now }))
	return NewJSONAgent(detector, zap.NewNop())
}

func TestJSONAgentCleanEvent(t *testing.T) {
	a := testJSONAgent(t)
	raw := `{
		"event_type": "login",
		"timestamp": "2026-03-01T11:00:00Z",
		"source": "web",
		"data": {"id": "evt-1", "user_id": "u-1"}
	}`

	res, err := a.Process(context.Background(), model.RawInput{JSONData: raw})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Trigger != nil {
		t.Fatalf("Trigger = %v, want nil", res.Trigger)
	}
	if res.Fields["risk_level"] != model.RiskNone {
		t.Fatalf("risk_level = %v, want none", res.Fields["risk_level"])
	}
	want := []string{"schema_validation", "anomaly_detection", "risk_assessment:none", "no_action_required"}
	if diff := cmp.Diff(want, res.Trace); diff != "" {
		t.Fatalf("Trace mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONAgentCriticalEvent(t *testing.T) {
	a := testJSONAgent(t)
	raw := `{
		"event_type": "fraud_attempt",
		"timestamp": "2026-03-01T11:00:00Z",
		"source": "payments",
		"data": {"id": "evt-2", "user_id": "u-2", "amount": 50000}
	}`

	res, err := a.Process(context.Background(), model.RawInput{JSONData: raw})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Fields["risk_level"] != model.RiskCritical {
		t.Fatalf("risk_level = %v, want critical", res.Fields["risk_level"])
	}
	if res.Trigger == nil || res.Trigger.Route != action.RouteRiskAlertCritical {
		t.Fatalf("Trigger = %v, want %s", res.Trigger, action.RouteRiskAlertCritical)
	}

	tags, ok := res.Fields["anomalies"].([]model.AnomalyTag)
	if !ok {
		t.Fatalf("anomalies = %T", res.Fields["anomalies"])
	}
	wantTags := []model.AnomalyTag{"suspicious_event:fraud_attempt", model.TagHighAmount}
	if diff := cmp.Diff(wantTags, tags); diff != "" {
		t.Fatalf("anomalies mismatch (-want +got):\n%s", diff)
	}

	want := []string{
		"schema_validation",
		"anomaly_detection",
		"risk_assessment:critical",
		"action_required:" + action.RouteRiskAlertCritical,
	}
	if diff := cmp.Diff(want, res.Trace); diff != "" {
		t.Fatalf("Trace mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONAgentTriggerTable(t *testing.T) {
	a := testJSONAgent(t)
	tests := []struct {
		name  string
		raw   string
		route string
	}{
		{
			name: "medium collapses to the plain alert route",
			raw: `{"event_type":"purchase","timestamp":"2026-03-01T11:00:00Z","source":"web",
				"data":{"id":"e","user_id":"u","amount":20000}}`,
			route: action.RouteRiskAlert,
		},
		{
			name: "high uses the dedicated route",
			raw: `{"event_type":"data_breach","timestamp":"2026-03-01T11:00:00Z","source":"web",
				"data":{"id":"e","user_id":"u"}}`,
			route: action.RouteRiskAlertHigh,
		},
		{
			name: "low yields no trigger",
			raw: `{"event_type":"login","timestamp":"2026-02-20T11:00:00Z","source":"web",
				"data":{"id":"e","user_id":"u"}}`,
			route: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := a.Process(context.Background(), model.RawInput{JSONData: tt.raw})
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			switch {
			case tt.route == "" && res.Trigger != nil:
				t.Fatalf("Trigger = %v, want nil", res.Trigger)
			case tt.route != "" && (res.Trigger == nil || res.Trigger.Route != tt.route):
				t.Fatalf("Trigger = %v, want %s", res.Trigger, tt.route)
			}
		})
	}
}

func TestJSONAgentSchemaFailure(t *testing.T) {
	a := testJSONAgent(t)
	for _, raw := range []string{
		`not json`,
		`{"event_type":"login"}`,
	} {
		_, err := a.Process(context.Background(), model.RawInput{JSONData: raw})
		if !errors.Is(err, schema.ErrSchema) {
			t.Errorf("Process(%q) error = %v, want ErrSchema", raw, err)
		}
	}
}
