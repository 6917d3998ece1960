// Package classify implements the format/intent classifier. Classification is
// a pure, total function over the input channels: it always returns a
// Classification and never fails; input the service cannot route maps to the
// unsupported format.
package classify

import (
	"strings"

	"github.com/Suhaib3100/multi-format-ai-agents/internal/model"
)

// Classify inspects the populated input channel and returns the routing
// decision. The json_data channel wins over email_content when both are set;
// the file-upload path populates only the PDF channel. Parse errors inside
// json_data are not the classifier's concern: the schema validator owns them,
// so a malformed event still routes to the JSON agent and fails there.
func Classify(raw model.RawInput) model.Classification {
	switch {
	case strings.TrimSpace(raw.JSONData) != "":
		return model.Classification{Format: model.FormatJSON, Intent: model.IntentEvent}
	case strings.TrimSpace(raw.EmailContent) != "":
		return model.Classification{Format: model.FormatEmail, Intent: model.IntentCommunication}
	case len(raw.PDF) > 0:
		return model.Classification{Format: model.FormatPDF, Intent: model.IntentDocument}
	default:
		return model.Classification{Format: model.FormatUnsupported, Intent: model.IntentUnknown}
	}
}
