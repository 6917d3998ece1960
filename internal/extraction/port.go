// Package extraction defines the extraction capability: turning unstructured
// text into best-effort structured fields. The production implementation
// calls a chat-completion endpoint; a deterministic stub backs tests and
// offline runs. Pipeline code depends only on the Port interface.
package extraction

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// ErrPort marks any extraction failure: timeout, quota, transport error, or a
// malformed model response. Handlers surface it as an extraction error rather
// than silently defaulting to empty fields, because an empty extraction would
// be indistinguishable from "nothing found".
var ErrPort = errors.New("extraction port failure")

// Field describes one field the port should extract.
type Field struct {
	Name        string
	Description string
}

// FieldSchema frames an extraction request: what kind of text this is and
// which fields to produce.
type FieldSchema struct {
	Kind   string
	Fields []Field
}

// FieldNames returns the schema's field names in order.
func (s FieldSchema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Prompt renders the schema as extraction instructions.
func (s FieldSchema) Prompt() string {
	var b strings.Builder
	b.WriteString("You are an expert at analyzing ")
	b.WriteString(s.Kind)
	b.WriteString(". Extract the following information:\n")
	for i, f := range s.Fields {
		b.WriteString(strconv.Itoa(i+1) + ". " + f.Description + "\n")
	}
	b.WriteString("Return your analysis as a JSON object with exactly these keys: ")
	b.WriteString(strings.Join(s.FieldNames(), ", "))
	b.WriteString(".")
	return b.String()
}

// Port is the extraction capability consumed by the email and PDF agents.
type Port interface {
	// Extract returns structured fields for the text, or an error wrapping
	// ErrPort. The call may block on the network and honors ctx cancellation.
	Extract(ctx context.Context, text string, schema FieldSchema) (map[string]any, error)
}
