// Package action simulates dispatch of follow-up actions. Dispatch is total
// over the route table and never fails: unknown routes yield an
// unknown_action result instead of an error, so callers always get a uniform
// envelope. That permissive default is deliberate and load-bearing.
package action

import (
	"strings"

	"github.com/google/uuid"

	"github.com/Suhaib3100/multi-format-ai-agents/internal/model"
)

// Known routes.
const (
	RouteRiskAlert         = "POST /risk_alert"
	RouteRiskAlertHigh     = "POST /risk_alert/high"
	RouteRiskAlertCritical = "POST /risk_alert/critical"
	RouteCRMEscalate       = "POST /crm/escalate"
)

// Router maps action triggers to simulated results.
type Router struct {
	newID func() string
}

// Option configures a Router.
type Option func(*Router)

// WithIDGenerator overrides reference ID generation, for deterministic tests.
func WithIDGenerator(fn func() string) Option {
	return func(r *Router) { r.newID = fn }
}

// NewRouter creates a Router generating UUID references.
func NewRouter(opts ...Option) *Router {
	r := &Router{newID: uuid.NewString}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dispatch executes the trigger against the simulated route table.
func (r *Router) Dispatch(trigger model.ActionTrigger) model.ActionResult {
	switch normalize(trigger.Route) {
	case RouteRiskAlert:
		return model.ActionResult{
			Status: model.ActionSuccess,
			Detail: map[string]any{"message": "risk alert logged"},
		}
	case RouteRiskAlertHigh:
		return model.ActionResult{
			Status: model.ActionSuccess,
			Detail: map[string]any{"escalation_ref": "ESC-" + r.newID()},
		}
	case RouteRiskAlertCritical:
		return model.ActionResult{
			Status: model.ActionSuccess,
			Detail: map[string]any{
				"ticket_id":          "TICKET-" + r.newID(),
				"compliance_flagged": true,
			},
		}
	case RouteCRMEscalate:
		return model.ActionResult{
			Status: model.ActionSuccess,
			Detail: map[string]any{"ticket_id": "CRM-" + r.newID()},
		}
	default:
		return model.ActionResult{
			Status: model.ActionUnknownAction,
			Detail: map[string]any{"action": trigger.Route},
		}
	}
}

func normalize(route string) string {
	return strings.TrimSpace(route)
}
