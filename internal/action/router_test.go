package action

import (
	"testing"

	"github.com/Suhaib3100/multi-format-ai-agents/internal/model"
)

func testRouter() *Router {
	return NewRouter(WithIDGenerator(func() string { return "fixed" }))
}

func TestDispatchKnownRoutes(t *testing.T) {
	r := testRouter()

	tests := []struct {
		route  string
		detail map[string]any
	}{
		{RouteRiskAlert, map[string]any{"message": "risk alert logged"}},
		{RouteRiskAlertHigh, map[string]any{"escalation_ref": "ESC-fixed"}},
		{RouteRiskAlertCritical, map[string]any{"ticket_id": "TICKET-fixed", "compliance_flagged": true}},
		{RouteCRMEscalate, map[string]any{"ticket_id": "CRM-fixed"}},
	}

	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			res := r.Dispatch(model.ActionTrigger{Route: tt.route})
			if res.Status != model.ActionSuccess {
				t.Fatalf("Dispatch(%q) status = %v, want success", tt.route, res.Status)
			}
			if len(res.Detail) != len(tt.detail) {
				t.Fatalf("Dispatch(%q) detail = %v, want %v", tt.route, res.Detail, tt.detail)
			}
			for k, want := range tt.detail {
				if got := res.Detail[k]; got != want {
					t.Errorf("Dispatch(%q) detail[%q] = %v, want %v", tt.route, k, got, want)
				}
			}
		})
	}
}

func TestDispatchUnknownRouteNeverFails(t *testing.T) {
	r := testRouter()

	// No dedicated medium route exists; the trigger table never emits it,
	// but a manual or replayed trigger must still produce a result.
	res := r.Dispatch(model.ActionTrigger{Route: "POST /risk_alert/medium"})
	if res.Status != model.ActionUnknownAction {
		t.Fatalf("status = %v, want unknown_action", res.Status)
	}
	if got := res.Detail["action"]; got != "POST /risk_alert/medium" {
		t.Fatalf("detail[action] = %v, want the original route", got)
	}
}

func TestDispatchTrimsWhitespace(t *testing.T) {
	r := testRouter()
	res := r.Dispatch(model.ActionTrigger{Route: "  POST /risk_alert  "})
	if res.Status != model.ActionSuccess {
		t.Fatalf("status = %v, want success", res.Status)
	}
}
