package agent

import (
	"context"

	"go.uber.org/zap"

	"github.com/Suhaib3100/multi-format-ai-agents/internal/action"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/anomaly"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/model"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/risk"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/schema"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/util"
)

// JSONAgent runs the structured-event pipeline: schema validation, anomaly
// detection, risk scoring, and the risk → trigger mapping.
type JSONAgent struct {
	detector *anomaly.Detector
	logger   *zap.Logger
}

// NewJSONAgent creates the JSON event agent.
func NewJSONAgent(detector *anomaly.Detector, logger *zap.Logger) *JSONAgent {
	return &JSONAgent{detector: detector, logger: logger}
}

// Name implements Agent.
func (a *JSONAgent) Name() string { return "json_agent" }

// Process implements Agent. Validation failures propagate wrapping
// schema.ErrSchema and leave no partial state behind.
func (a *JSONAgent) Process(ctx context.Context, raw model.RawInput) (Result, error) {
	event, err := schema.Validate(raw.JSONData)
	if err != nil {
		return Result{}, err
	}

	tags := a.detector.Detect(event)
	level := risk.Score(tags)
	trigger := triggerForRisk(level)

	trace := []string{
		"schema_validation",
		"anomaly_detection",
		"risk_assessment:" + string(level),
	}
	if trigger != nil {
		trace = append(trace, "action_required:"+trigger.Route)
	} else {
		trace = append(trace, "no_action_required")
	}

	a.logger.Info("json event processed",
		util.String("event_type", event.EventType),
		util.Int("anomalies", len(tags)),
		util.String("risk_level", string(level)),
	)

	return Result{
		Fields: model.ExtractedFields{
			"validated_data": event,
			"anomalies":      tags,
			"risk_level":     level,
		},
		Trigger: trigger,
		Trace:   trace,
	}, nil
}

// triggerForRisk is the fixed risk → trigger table. The medium level
// deliberately collapses onto the plain /risk_alert route; high and critical
// keep their dedicated routes.
func triggerForRisk(level model.RiskLevel) *model.ActionTrigger {
	switch level {
	case model.RiskMedium:
		return &model.ActionTrigger{Route: action.RouteRiskAlert}
	case model.RiskHigh:
		return &model.ActionTrigger{Route: action.RouteRiskAlertHigh}
	case model.RiskCritical:
		return &model.ActionTrigger{Route: action.RouteRiskAlertCritical}
	default:
		return nil
	}
}
