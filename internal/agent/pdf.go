package agent

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Suhaib3100/multi-format-ai-agents/internal/action"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/extraction"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/model"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/pdftext"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/rules"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/util"
)

var pdfSchema = extraction.FieldSchema{
	Kind: "business documents",
	Fields: []extraction.Field{
		{Name: "document_type", Description: "Document type (invoice, policy, regulation, etc.)"},
		{Name: "key_terms", Description: "Key terms and conditions"},
		{Name: "important_dates", Description: "Important dates"},
		{Name: "monetary_amounts", Description: "Monetary amounts (if any)"},
		{Name: "regulatory_references", Description: "Regulatory references (GDPR, FDA, etc.)"},
	},
}

// PDFAgent extracts document text, runs field extraction, and applies the
// document trigger policy, which is independent of the JSON risk model: a
// monetary amount over threshold or any regulatory reference raises a risk
// alert, and both together escalate to the high route.
type PDFAgent struct {
	text   pdftext.Extractor
	port   extraction.Port
	rules  func() *rules.Ruleset
	logger *zap.Logger
}

// NewPDFAgent creates the PDF document agent.
func NewPDFAgent(text pdftext.Extractor, port extraction.Port, ruleSource func() *rules.Ruleset, logger *zap.Logger) *PDFAgent {
	return &PDFAgent{text: text, port: port, rules: ruleSource, logger: logger}
}

// Name implements Agent.
func (a *PDFAgent) Name() string { return "pdf_agent" }

// Process implements Agent.
func (a *PDFAgent) Process(ctx context.Context, raw model.RawInput) (Result, error) {
	text, err := a.text.GetText(raw.PDF)
	if err != nil {
		return Result{}, err
	}
	text = truncate(text, a.rules().Agents.PDFMaxChars)

	fields, err := a.port.Extract(ctx, text, pdfSchema)
	if err != nil {
		return Result{}, fmt.Errorf("document extraction: %w", err)
	}

	amounts := amountsField(fields, "monetary_amounts")
	refs := stringSliceField(fields, "regulatory_references")

	analysis := model.ExtractedFields{
		"document_type":         stringField(fields, "document_type"),
		"key_terms":             stringSliceField(fields, "key_terms"),
		"important_dates":       stringSliceField(fields, "important_dates"),
		"monetary_amounts":      amounts,
		"regulatory_references": refs,
	}

	threshold := a.rules().Agents.PDFAmountThreshold
	highValue := false
	for _, amt := range amounts {
		if amt > threshold {
			highValue = true
			break
		}
	}
	regulated := len(refs) > 0

	var trigger *model.ActionTrigger
	trace := []string{"pdf_text_extraction", "document_analysis"}
	switch {
	case highValue && regulated:
		trigger = &model.ActionTrigger{Route: action.RouteRiskAlertHigh}
		trace = append(trace, "flagged:high_value_regulated")
	case highValue:
		trigger = &model.ActionTrigger{Route: action.RouteRiskAlert}
		trace = append(trace, "flagged:high_value")
	case regulated:
		trigger = &model.ActionTrigger{Route: action.RouteRiskAlert}
		trace = append(trace, "flagged:regulatory_content")
	}

	a.logger.Info("pdf document processed",
		util.String("document_type", analysis["document_type"].(string)),
		util.Bool("high_value", highValue),
		util.Bool("regulated", regulated),
	)

	return Result{Fields: analysis, Trigger: trigger, Trace: trace}, nil
}

// amountsField coerces the port output into numeric amounts. Strings like
// "$15,000.00" are parsed; everything unparseable is dropped.
func amountsField(fields map[string]any, key string) []float64 {
	items, ok := fields[key].([]any)
	if !ok {
		if single, ok := fields[key].(float64); ok {
			return []float64{single}
		}
		return []float64{}
	}
	out := make([]float64, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case float64:
			out = append(out, v)
		case string:
			if amt, ok := parseAmount(v); ok {
				out = append(out, amt)
			}
		}
	}
	return out
}

func parseAmount(s string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, s)
	if cleaned == "" {
		return 0, false
	}
	amt, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return amt, true
}
