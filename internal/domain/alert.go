package domain

import "encoding/json"

// AlertType keys the no-repeat guard's last-sent table.
type AlertType string

const (
	AlertScheduleDrift AlertType = "schedule-drift"
	AlertWeather       AlertType = "weather"
	AlertLodging       AlertType = "lodging"
	AlertReminder      AlertType = "reminder"
)

// Severity orders candidate alerts when the heartbeat picks a single primary
// message. Higher wins; within a tier the first candidate wins.
type Severity int

const (
	SeverityInfo Severity = iota + 1
	SeverityMedium
	SeverityHigh
)

// String returns the lowercase tier name used in logs and API responses.
func (s Severity) String() string {
	switch s {
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	default:
		return "info"
	}
}

// MarshalJSON serializes the tier name rather than the numeric rank.
// Alerts are never unmarshaled: they are rendered per cycle, not stored.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Alert is a rendered candidate notification. Options carry the 2–3 tradeoff
// choices offered alongside the message.
type Alert struct {
	Type     AlertType `json:"type"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	Options  []string  `json:"options,omitempty"`
}

// HeartbeatMode is the outcome of one heartbeat cycle.
type HeartbeatMode string

const (
	// ModeAutopilot means nothing to say: no outbound message is sent.
	// Silence is also the outcome of any internal failure, by design.
	ModeAutopilot HeartbeatMode = "autopilot"
	// ModeAlert means exactly one primary message goes out.
	ModeAlert HeartbeatMode = "alert"
)

// HeartbeatResult is the decision produced by one heartbeat cycle.
// Alerts holds the full surviving candidate list for observability even
// though only Message is delivered.
type HeartbeatResult struct {
	Mode    HeartbeatMode `json:"mode"`
	Message string        `json:"message,omitempty"`
	Alerts  []Alert       `json:"alerts,omitempty"`
	Events  []Event       `json:"events,omitempty"`
}
