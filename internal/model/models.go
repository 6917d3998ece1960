package model

// -------------------- CLASSIFICATION --------------------

// Format is the syntactic channel of an input.
type Format string

const (
	FormatEmail       Format = "email"
	FormatJSON        Format = "json"
	FormatPDF         Format = "pdf"
	FormatUnsupported Format = "unsupported"
)

// Intent is the coarse semantic category assigned during classification.
type Intent string

const (
	IntentCommunication Intent = "communication"
	IntentEvent         Intent = "event"
	IntentDocument      Intent = "document"
	IntentUnknown       Intent = "unknown"
)

// Classification is produced once per request by the format classifier and
// immutable thereafter.
type Classification struct {
	Format Format `json:"format"`
	Intent Intent `json:"intent"`
}

// RawInput is the transient union of the three input channels. Exactly one
// channel is expected to be populated; it is never persisted as-is.
type RawInput struct {
	EmailContent string
	JSONData     string
	PDF          []byte
}

// -------------------- VALIDATED EVENT --------------------

// EventData holds the data sub-object of a validated event. Optional fields
// are pointers so that absent values serialize as explicit null: downstream
// anomaly rules depend on key presence, not value truthiness.
type EventData struct {
	ID                string   `json:"id"`
	UserID            string   `json:"user_id"`
	IPAddress         *string  `json:"ip_address"`
	AttemptedResource *string  `json:"attempted_resource"`
	Amount            *float64 `json:"amount"`
	Location          *string  `json:"location"`
	DeviceInfo        *string  `json:"device_info"`
}

// ValidatedEvent is a JSON event after schema validation and completion.
type ValidatedEvent struct {
	EventType string    `json:"event_type"`
	Timestamp string    `json:"timestamp"`
	Source    string    `json:"source"`
	Data      EventData `json:"data"`
}

// -------------------- ANOMALIES AND RISK --------------------

// AnomalyTag is a discrete signal extracted from a validated event.
type AnomalyTag string

const (
	TagHighAmount      AnomalyTag = "high_amount"
	TagUnusualLocation AnomalyTag = "unusual_location"
	TagStaleEvent      AnomalyTag = "stale_event"
)

const suspiciousEventPrefix = "suspicious_event:"

// SuspiciousEventTag builds the suspicious_event:<type> tag.
func SuspiciousEventTag(eventType string) AnomalyTag {
	return AnomalyTag(suspiciousEventPrefix + eventType)
}

// MissingFieldTag builds the missing_required_field:<name> tag.
func MissingFieldTag(name string) AnomalyTag {
	return AnomalyTag("missing_required_field:" + name)
}

// IsSuspiciousEvent reports whether the tag is a suspicious_event:* tag.
func (t AnomalyTag) IsSuspiciousEvent() bool {
	return len(t) > len(suspiciousEventPrefix) &&
		string(t[:len(suspiciousEventPrefix)]) == suspiciousEventPrefix
}

// RiskLevel is the ordered severity classification derived from anomaly tags.
type RiskLevel string

const (
	RiskNone     RiskLevel = "none"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

var riskOrder = map[RiskLevel]int{
	RiskNone:     0,
	RiskLow:      1,
	RiskMedium:   2,
	RiskHigh:     3,
	RiskCritical: 4,
}

// Severity returns the position of the level in the total order
// none < low < medium < high < critical.
func (r RiskLevel) Severity() int {
	return riskOrder[r]
}

// AtLeast reports whether r is at least as severe as other.
func (r RiskLevel) AtLeast(other RiskLevel) bool {
	return r.Severity() >= other.Severity()
}

// -------------------- ACTIONS --------------------

// ActionTrigger is a route descriptor signaling that a follow-up simulated
// action is required. A nil *ActionTrigger means no follow-up.
type ActionTrigger struct {
	Route string `json:"route"`
}

// ActionStatus is the outcome status of a dispatched action.
type ActionStatus string

const (
	ActionSuccess       ActionStatus = "success"
	ActionUnknownAction ActionStatus = "unknown_action"
)

// ActionResult is produced by the action router. It is present on an activity
// record exactly when an ActionTrigger exists.
type ActionResult struct {
	Status ActionStatus   `json:"status"`
	Detail map[string]any `json:"detail"`
}

// -------------------- ACTIVITY RECORD --------------------

// ExtractedFields is the agent-specific output mapping. Opaque to the
// activity recorder.
type ExtractedFields map[string]any

// ActivityRecord is the persisted record of one pipeline run. Created exactly
// once per run and never mutated afterwards; the ID is assigned by the store
// at append time.
type ActivityRecord struct {
	ID              int64           `json:"id"`
	Source          string          `json:"source"`
	Timestamp       string          `json:"timestamp"`
	Classification  Classification  `json:"classification"`
	ExtractedFields ExtractedFields `json:"extracted_fields"`
	ActionTriggered *ActionTrigger  `json:"action_triggered"`
	ActionResult    *ActionResult   `json:"action_result"`
	AgentTrace      []string        `json:"agent_trace"`
}
