package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/Suhaib3100/multi-format-ai-agents/internal/action"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/extraction"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/model"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/pdftext"
)

// fakeText is a pdftext.Extractor returning fixed text.
type fakeText struct {
	text string
	err  error
}

func (f fakeText) GetText(data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func pdfAgentWith(t *testing.T, text pdftext.Extractor, fields map[string]any) *PDFAgent {
	t.Helper()
	fake := extraction.NewFakePort().Respond("business documents", fields)
	return NewPDFAgent(text, fake, defaultRules, zap.NewNop())
}

func TestPDFAgentPlainDocument(t *testing.T) {
	a := pdfAgentWith(t, fakeText{text: "Meeting notes"}, map[string]any{
		"document_type": "notes",
		"key_terms":     []any{"quarterly review"},
	})

	res, err := a.Process(context.Background(), model.RawInput{PDF: []byte("pdf")})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Trigger != nil {
		t.Fatalf("Trigger = %v, want nil", res.Trigger)
	}
	if res.Fields["document_type"] != "notes" {
		t.Fatalf("Fields = %v", res.Fields)
	}
}

func TestPDFAgentTriggerPolicy(t *testing.T) {
	tests := []struct {
		name    string
		amounts []any
		refs    []any
		route   string
		flagged string
	}{
		{
			name:    "high value and regulated escalates",
			amounts: []any{"$15,000.00"},
			refs:    []any{"GDPR"},
			route:   action.RouteRiskAlertHigh,
			flagged: "flagged:high_value_regulated",
		},
		{
			name:    "high value alone",
			amounts: []any{25000.0},
			refs:    []any{},
			route:   action.RouteRiskAlert,
			flagged: "flagged:high_value",
		},
		{
			name:    "regulated alone",
			amounts: []any{"$50.00"},
			refs:    []any{"FDA"},
			route:   action.RouteRiskAlert,
			flagged: "flagged:regulatory_content",
		},
		{
			name:    "below threshold unregulated",
			amounts: []any{"$9,999.99"},
			refs:    []any{},
			route:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := pdfAgentWith(t, fakeText{text: "Invoice"}, map[string]any{
				"document_type":         "invoice",
				"monetary_amounts":      tt.amounts,
				"regulatory_references": tt.refs,
			})
			res, err := a.Process(context.Background(), model.RawInput{PDF: []byte("pdf")})
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			switch {
			case tt.route == "" && res.Trigger != nil:
				t.Fatalf("Trigger = %v, want nil", res.Trigger)
			case tt.route != "" && (res.Trigger == nil || res.Trigger.Route != tt.route):
				t.Fatalf("Trigger = %v, want %s", res.Trigger, tt.route)
			}
			if tt.flagged != "" {
				found := false
				for _, step := range res.Trace {
					if step == tt.flagged {
						found = true
					}
				}
				if !found {
					t.Fatalf("Trace %v missing %q", res.Trace, tt.flagged)
				}
			}
		})
	}
}

func TestPDFAgentUnreadableDocument(t *testing.T) {
	err := fmt.Errorf("%w: bad xref", pdftext.ErrUnreadable)
	a := pdfAgentWith(t, fakeText{err: err}, nil)

	_, got := a.Process(context.Background(), model.RawInput{PDF: []byte("junk")})
	if !errors.Is(got, pdftext.ErrUnreadable) {
		t.Fatalf("Process error = %v, want ErrUnreadable", got)
	}
}

func TestPDFAgentPortFailure(t *testing.T) {
	fake := extraction.NewFakePort()
	fake.Fail = true
	a := NewPDFAgent(fakeText{text: "Invoice"}, fake, defaultRules, zap.NewNop())

	_, err := a.Process(context.Background(), model.RawInput{PDF: []byte("pdf")})
	if !errors.Is(err, extraction.ErrPort) {
		t.Fatalf("Process error = %v, want ErrPort", err)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$15,000.00", 15000, true},
		{"1234", 1234, true},
		{"EUR 2.500,00", 2.50000, true},
		{"no digits", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseAmount(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("parseAmount(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
