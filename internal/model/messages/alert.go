package messages

import "time"

// AlertEvent flags a sample that should not be trusted, e.g. a pH reading
// outside the plausible range for herb extracts.
type AlertEvent struct {
	StationID string    `json:"station_id"`
	Severity  string    `json:"severity"` // info|warning|error
	Reason    string    `json:"reason"`
	PH        float64   `json:"ph,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
