// Package rules holds the tunable parameters of the anomaly and trigger
// policies: the suspicious event denylist, amount threshold, location
// allow-list, staleness window, and agent truncation budgets. Rules load from
// a YAML file and hot-reload on change; with no file configured the built-in
// defaults apply.
package rules

import "time"

// Ruleset is the full rule configuration.
type Ruleset struct {
	Anomaly AnomalyRules `yaml:"anomaly"`
	Agents  AgentRules   `yaml:"agents"`
}

// AnomalyRules parameterizes the anomaly detector.
type AnomalyRules struct {
	SuspiciousEvents []string      `yaml:"suspicious_events"`
	AmountThreshold  float64       `yaml:"amount_threshold"`
	AllowedLocations []string      `yaml:"allowed_locations"`
	StalenessWindow  time.Duration `yaml:"staleness_window"`
}

// AgentRules parameterizes the specialized agents.
type AgentRules struct {
	EmailMaxChars      int      `yaml:"email_max_chars"`
	PDFMaxChars        int      `yaml:"pdf_max_chars"`
	PDFAmountThreshold float64  `yaml:"pdf_amount_threshold"`
	EscalationTones    []string `yaml:"escalation_tones"`
}

// Default returns the built-in ruleset.
func Default() *Ruleset {
	return &Ruleset{
		Anomaly: AnomalyRules{
			SuspiciousEvents: []string{
				"unauthorized_access",
				"fraud_attempt",
				"data_breach",
				"system_compromise",
			},
			AmountThreshold:  10000,
			AllowedLocations: []string{"US", "GB", "DE", "FR", "IN", "JP"},
			StalenessWindow:  24 * time.Hour,
		},
		Agents: AgentRules{
			EmailMaxChars:      8000,
			PDFMaxChars:        12000,
			PDFAmountThreshold: 10000,
			EscalationTones:    []string{"angry", "threatening"},
		},
	}
}

// IsSuspiciousEvent reports whether the event type is on the denylist.
func (r *AnomalyRules) IsSuspiciousEvent(eventType string) bool {
	for _, e := range r.SuspiciousEvents {
		if e == eventType {
			return true
		}
	}
	return false
}

// IsAllowedLocation reports whether the location is on the allow-list.
func (r *AnomalyRules) IsAllowedLocation(location string) bool {
	for _, l := range r.AllowedLocations {
		if l == location {
			return true
		}
	}
	return false
}

// IsEscalationTone reports whether the tone warrants a CRM escalation.
func (r *AgentRules) IsEscalationTone(tone string) bool {
	for _, t := range r.EscalationTones {
		if t == tone {
			return true
		}
	}
	return false
}

func applyDefaults(rs *Ruleset) {
	def := Default()
	if len(rs.Anomaly.SuspiciousEvents) == 0 {
		rs.Anomaly.SuspiciousEvents = def.Anomaly.SuspiciousEvents
	}
	if rs.Anomaly.AmountThreshold == 0 {
		rs.Anomaly.AmountThreshold = def.Anomaly.AmountThreshold
	}
	if len(rs.Anomaly.AllowedLocations) == 0 {
		rs.Anomaly.AllowedLocations = def.Anomaly.AllowedLocations
	}
	if rs.Anomaly.StalenessWindow == 0 {
		rs.Anomaly.StalenessWindow = def.Anomaly.StalenessWindow
	}
	if rs.Agents.EmailMaxChars == 0 {
		rs.Agents.EmailMaxChars = def.Agents.EmailMaxChars
	}
	if rs.Agents.PDFMaxChars == 0 {
		rs.Agents.PDFMaxChars = def.Agents.PDFMaxChars
	}
	if rs.Agents.PDFAmountThreshold == 0 {
		rs.Agents.PDFAmountThreshold = def.Agents.PDFAmountThreshold
	}
	if len(rs.Agents.EscalationTones) == 0 {
		rs.Agents.EscalationTones = def.Agents.EscalationTones
	}
}
