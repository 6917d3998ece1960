// Package agent implements the specialized per-format processors. Dispatch is
// a closed table keyed by format: no reflection, no duck typing, and an
// unsupported format simply has no entry.
package agent

import (
	"context"

	"github.com/Suhaib3100/multi-format-ai-agents/internal/model"
)

// Result is the uniform envelope every agent produces: the extracted fields,
// an optional action trigger, and the trace entries for the steps the agent
// ran, in execution order.
type Result struct {
	Fields  model.ExtractedFields
	Trigger *model.ActionTrigger
	Trace   []string
}

// Agent consumes classified raw input and produces a Result.
type Agent interface {
	// Name is the identifier recorded in the agent trace.
	Name() string
	// Process runs the agent. It may suspend on the extraction port; all
	// other work is CPU-bound.
	Process(ctx context.Context, raw model.RawInput) (Result, error)
}

// Registry is the closed format → agent lookup table.
type Registry map[model.Format]Agent

// NewRegistry builds the dispatch table for the three supported formats.
func NewRegistry(email *EmailAgent, js *JSONAgent, pdf *PDFAgent) Registry {
	return Registry{
		model.FormatEmail: email,
		model.FormatJSON:  js,
		model.FormatPDF:   pdf,
	}
}

// Lookup returns the agent for a format, if any.
func (r Registry) Lookup(format model.Format) (Agent, bool) {
	a, ok := r[format]
	return a, ok
}

// truncate caps text at max characters to stay inside the extraction token
// budget.
func truncate(text string, max int) string {
	if max > 0 && len(text) > max {
		return text[:max]
	}
	return text
}
