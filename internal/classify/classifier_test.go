package classify

import (
	"testing"

	"github.com/Suhaib3100/multi-format-ai-agents/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		raw    model.RawInput
		format model.Format
		intent model.Intent
	}{
		{
			name:   "email content",
			raw:    model.RawInput{EmailContent: "Hello, I need help with my order."},
			format: model.FormatEmail,
			intent: model.IntentCommunication,
		},
		{
			name:   "json event",
			raw:    model.RawInput{JSONData: `{"event_type":"login"}`},
			format: model.FormatJSON,
			intent: model.IntentEvent,
		},
		{
			name:   "pdf bytes",
			raw:    model.RawInput{PDF: []byte("%PDF-1.4")},
			format: model.FormatPDF,
			intent: model.IntentDocument,
		},
		{
			name:   "empty input",
			raw:    model.RawInput{},
			format: model.FormatUnsupported,
			intent: model.IntentUnknown,
		},
		{
			name:   "whitespace only",
			raw:    model.RawInput{EmailContent: "   \n\t  "},
			format: model.FormatUnsupported,
			intent: model.IntentUnknown,
		},
		{
			name: "json wins over email when both set",
			raw: model.RawInput{
				EmailContent: "some email",
				JSONData:     `{"event_type":"login"}`,
			},
			format: model.FormatJSON,
			intent: model.IntentEvent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.raw)
			if got.Format != tt.format || got.Intent != tt.intent {
				t.Fatalf("Classify() = %v/%v, want %v/%v", got.Format, got.Intent, tt.format, tt.intent)
			}
		})
	}
}

func TestClassifyMalformedJSONStillRoutesToJSON(t *testing.T) {
	// Parse errors belong to the validator, not the classifier.
	got := Classify(model.RawInput{JSONData: `{"event_type": oops`})
	if got.Format != model.FormatJSON {
		t.Fatalf("Classify() format = %v, want %v", got.Format, model.FormatJSON)
	}
}
