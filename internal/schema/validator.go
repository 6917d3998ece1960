// Package schema validates raw JSON event payloads against the expected event
// shape and completes optional fields to explicit nulls.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Suhaib3100/multi-format-ai-agents/internal/model"
)

// ErrSchema marks a malformed or incomplete structured event. Callers match
// it with errors.Is.
var ErrSchema = errors.New("schema validation failed")

// rawEvent mirrors the wire shape before completion. Pointers distinguish
// absent from empty.
type rawEvent struct {
	EventType *string  `json:"event_type"`
	Timestamp *string  `json:"timestamp"`
	Source    *string  `json:"source"`
	Data      *rawData `json:"data"`
}

type rawData struct {
	ID                *string  `json:"id"`
	UserID            *string  `json:"user_id"`
	IPAddress         *string  `json:"ip_address"`
	AttemptedResource *string  `json:"attempted_resource"`
	Amount            *float64 `json:"amount"`
	Location          *string  `json:"location"`
	DeviceInfo        *string  `json:"device_info"`
}

// Validate parses rawEventText as a JSON event, checks the required fields
// (event_type, timestamp, source, data.id, data.user_id), and returns the
// completed event. Optional fields stay nil pointers, which serialize as
// explicit null. Side-effect-free.
func Validate(rawEventText string) (model.ValidatedEvent, error) {
	var raw rawEvent
	dec := json.NewDecoder(strings.NewReader(rawEventText))
	if err := dec.Decode(&raw); err != nil {
		return model.ValidatedEvent{}, fmt.Errorf("%w: not a JSON object: %v", ErrSchema, err)
	}

	var missing []string
	if raw.EventType == nil || *raw.EventType == "" {
		missing = append(missing, "event_type")
	}
	if raw.Timestamp == nil || *raw.Timestamp == "" {
		missing = append(missing, "timestamp")
	}
	if raw.Source == nil || *raw.Source == "" {
		missing = append(missing, "source")
	}
	if raw.Data == nil {
		missing = append(missing, "data")
	} else {
		if raw.Data.ID == nil || *raw.Data.ID == "" {
			missing = append(missing, "data.id")
		}
		if raw.Data.UserID == nil || *raw.Data.UserID == "" {
			missing = append(missing, "data.user_id")
		}
	}
	if len(missing) > 0 {
		return model.ValidatedEvent{}, fmt.Errorf("%w: missing required fields: %s",
			ErrSchema, strings.Join(missing, ", "))
	}

	return model.ValidatedEvent{
		EventType: *raw.EventType,
		Timestamp: *raw.Timestamp,
		Source:    *raw.Source,
		Data: model.EventData{
			ID:                *raw.Data.ID,
			UserID:            *raw.Data.UserID,
			IPAddress:         raw.Data.IPAddress,
			AttemptedResource: raw.Data.AttemptedResource,
			Amount:            raw.Data.Amount,
			Location:          raw.Data.Location,
			DeviceInfo:        raw.Data.DeviceInfo,
		},
	}, nil
}
