package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Suhaib3100/multi-format-ai-agents/internal/action"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/extraction"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/model"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/rules"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/util"
)

var emailSchema = extraction.FieldSchema{
	Kind: "business emails",
	Fields: []extraction.Field{
		{Name: "sender", Description: "Sender email address"},
		{Name: "urgency", Description: "Urgency level (low, medium, high)"},
		{Name: "tone", Description: "Tone (polite, neutral, angry, threatening)"},
		{Name: "key_points", Description: "Key points or requests"},
	},
}

// EmailAgent analyzes email text through the extraction port and escalates to
// the CRM when the detected tone warrants it.
type EmailAgent struct {
	port   extraction.Port
	rules  func() *rules.Ruleset
	logger *zap.Logger
}

// NewEmailAgent creates the email agent.
func NewEmailAgent(port extraction.Port, ruleSource func() *rules.Ruleset, logger *zap.Logger) *EmailAgent {
	return &EmailAgent{port: port, rules: ruleSource, logger: logger}
}

// Name implements Agent.
func (a *EmailAgent) Name() string { return "email_agent" }

// Process implements Agent. Port failures propagate as-is; the caller must
// see them rather than an empty extraction.
func (a *EmailAgent) Process(ctx context.Context, raw model.RawInput) (Result, error) {
	budget := a.rules().Agents.EmailMaxChars
	text := truncate(raw.EmailContent, budget)

	fields, err := a.port.Extract(ctx, text, emailSchema)
	if err != nil {
		return Result{}, fmt.Errorf("email extraction: %w", err)
	}

	analysis := model.ExtractedFields{
		"sender":     stringField(fields, "sender"),
		"urgency":    stringField(fields, "urgency"),
		"tone":       stringField(fields, "tone"),
		"key_points": stringSliceField(fields, "key_points"),
	}

	tone := analysis["tone"].(string)
	trace := []string{"email_analysis", "tone_detected:" + tone}

	var trigger *model.ActionTrigger
	if a.rules().Agents.IsEscalationTone(tone) {
		trigger = &model.ActionTrigger{Route: action.RouteCRMEscalate}
		a.logger.Info("email escalation triggered", util.String("tone", tone))
	}

	return Result{Fields: analysis, Trigger: trigger, Trace: trace}, nil
}

// stringField coerces a port output value to a string, defaulting to
// "unknown" for absent or non-string values.
func stringField(fields map[string]any, key string) string {
	if s, ok := fields[key].(string); ok && s != "" {
		return s
	}
	return "unknown"
}

// stringSliceField coerces a port output value to a string slice.
func stringSliceField(fields map[string]any, key string) []string {
	switch v := fields[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	case string:
		if v == "" {
			return []string{}
		}
		return []string{v}
	default:
		return []string{}
	}
}
