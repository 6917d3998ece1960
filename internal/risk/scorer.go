// Package risk maps anomaly tag sets to a risk level. The policy is ordered
// with the most severe rule first; the compound suspicious_event + high_amount
// escalation to critical must be preserved exactly.
package risk

import "github.com/Suhaib3100/multi-format-ai-agents/internal/model"

// Score derives the risk level from the tag set. Pure and total:
//   - critical: any suspicious_event:* together with high_amount
//   - high:     any suspicious_event:* alone
//   - medium:   high_amount or unusual_location without suspicious_event
//   - low:      any remaining nonempty set (e.g. only stale_event)
//   - none:     empty set
//
// Adding a tag never decreases the result under the total order.
func Score(tags []model.AnomalyTag) model.RiskLevel {
	var suspicious, highAmount, unusualLocation bool
	for _, t := range tags {
		switch {
		case t.IsSuspiciousEvent():
			suspicious = true
		case t == model.TagHighAmount:
			highAmount = true
		case t == model.TagUnusualLocation:
			unusualLocation = true
		}
	}

	switch {
	case suspicious && highAmount:
		return model.RiskCritical
	case suspicious:
		return model.RiskHigh
	case highAmount || unusualLocation:
		return model.RiskMedium
	case len(tags) > 0:
		return model.RiskLow
	default:
		return model.RiskNone
	}
}
