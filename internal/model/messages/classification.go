package messages

import "time"

// ClassificationEvent is published by the classifier after analysing one
// sample.
type ClassificationEvent struct {
	StationID  string    `json:"station_id"`
	TicketID   string    `json:"ticket_id"`
	Herb       string    `json:"herb"`
	LDRAnalog  float64   `json:"ldr_analog"`
	LDRDigital int       `json:"ldr_digital"`
	PH         float64   `json:"ph"`
	Distance   float64   `json:"distance"`
	Timestamp  time.Time `json:"timestamp"`
}
