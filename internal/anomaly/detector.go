// Package anomaly implements rule-based anomaly detection over validated
// events. Rule evaluation order is fixed because tags are reported in that
// order: suspicious_event, high_amount, unusual_location, stale_event,
// missing_required_field. Each rule fires at most once, so the result is an
// ordered set.
package anomaly

import (
	"time"

	"github.com/Suhaib3100/multi-format-ai-agents/internal/model"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/rules"
)

// Detector evaluates the anomaly rules against validated events. The clock is
// injectable so the staleness rule stays deterministic in tests.
type Detector struct {
	rules func() *rules.Ruleset
	now   func() time.Time
}

// Option configures a Detector.
type Option func(*Detector)

// WithClock overrides the staleness clock.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) { d.now = now }
}

// NewDetector creates a Detector reading its parameters from the given
// ruleset source on every evaluation, so rule hot-reloads take effect
// immediately.
func NewDetector(ruleSource func() *rules.Ruleset, opts ...Option) *Detector {
	d := &Detector{rules: ruleSource, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect returns the ordered anomaly tag set for the event. It is
// deterministic given the clock: evaluating the same event twice yields
// identical output.
func (d *Detector) Detect(ev model.ValidatedEvent) []model.AnomalyTag {
	r := &d.rules().Anomaly
	var tags []model.AnomalyTag

	// 1. Denylisted event type.
	if r.IsSuspiciousEvent(ev.EventType) {
		tags = append(tags, model.SuspiciousEventTag(ev.EventType))
	}

	// 2. Amount over threshold. Null-safe: a missing amount never fires.
	if ev.Data.Amount != nil && *ev.Data.Amount > r.AmountThreshold {
		tags = append(tags, model.TagHighAmount)
	}

	// 3. Location outside the allow-list. Null-safe as above.
	if ev.Data.Location != nil && !r.IsAllowedLocation(*ev.Data.Location) {
		tags = append(tags, model.TagUnusualLocation)
	}

	// 4. Staleness. An unparseable timestamp is neither stale nor fresh:
	// no tag, no error.
	if ts, err := time.Parse(time.RFC3339, ev.Timestamp); err == nil {
		if d.now().Sub(ts) > r.StalenessWindow {
			tags = append(tags, model.TagStaleEvent)
		}
	}

	// 5. Missing required fields. Unreachable behind the strict validator,
	// kept for permissive wiring.
	for _, f := range missingRequired(ev) {
		tags = append(tags, model.MissingFieldTag(f))
	}

	return tags
}

func missingRequired(ev model.ValidatedEvent) []string {
	var missing []string
	if ev.EventType == "" {
		missing = append(missing, "event_type")
	}
	if ev.Timestamp == "" {
		missing = append(missing, "timestamp")
	}
	if ev.Source == "" {
		missing = append(missing, "source")
	}
	if ev.Data.ID == "" {
		missing = append(missing, "data.id")
	}
	if ev.Data.UserID == "" {
		missing = append(missing, "data.user_id")
	}
	return missing
}
