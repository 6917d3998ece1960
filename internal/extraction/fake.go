package extraction

import (
	"context"
	"fmt"
)

// FakePort is a deterministic in-memory Port for tests and offline runs. It
// returns the canned fields registered for a schema kind, or an ErrPort
// failure when configured to fail.
type FakePort struct {
	// Responses maps schema kind to the fields to return.
	Responses map[string]map[string]any
	// Fail forces every call to fail with ErrPort.
	Fail bool
	// Calls counts Extract invocations.
	Calls int
}

// NewFakePort creates a FakePort with no canned responses; unknown kinds
// yield an empty object.
func NewFakePort() *FakePort {
	return &FakePort{Responses: make(map[string]map[string]any)}
}

// Respond registers the canned fields for a schema kind.
func (f *FakePort) Respond(kind string, fields map[string]any) *FakePort {
	f.Responses[kind] = fields
	return f
}

// Extract implements Port.
func (f *FakePort) Extract(ctx context.Context, text string, schema FieldSchema) (map[string]any, error) {
	f.Calls++
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPort, err)
	}
	if f.Fail {
		return nil, fmt.Errorf("%w: simulated failure", ErrPort)
	}
	if fields, ok := f.Responses[schema.Kind]; ok {
		out := make(map[string]any, len(fields))
		for k, v := range fields {
			out[k] = v
		}
		return out, nil
	}
	return map[string]any{}, nil
}
