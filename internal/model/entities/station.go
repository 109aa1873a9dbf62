package entities

// Channel names a hardware input on the sensing board. Analog channels
// resolve to an ADC input ("A0", "A1"), digital channels to a GPIO pin
// ("D2").
type Channel string

const (
	// ChannelLDRAnalog is the light sensor's analog output.
	ChannelLDRAnalog Channel = "A0"
	// ChannelPHAnalog is the soil pH probe's analog output.
	ChannelPHAnalog Channel = "A1"
	// ChannelLDRDigital is the light sensor's threshold output (pin 2).
	ChannelLDRDigital Channel = "D2"
)

// Station represents one sensing chamber: an LDR and a soil pH probe wired
// to a single board, reporting over one serial link.
type Station struct {
	ID         string  `json:"id"`
	SerialPort string  `json:"serial_port,omitempty"`
	LDRAnalog  Channel `json:"ldr_analog"`
	LDRDigital Channel `json:"ldr_digital"`
	PHAnalog   Channel `json:"ph_analog"`
}

// DefaultChannels returns the factory channel assignment for a station.
// Assignments are fixed at startup and never mutated afterwards.
func DefaultChannels() (ldrAnalog, ldrDigital, phAnalog Channel) {
	return ChannelLDRAnalog, ChannelLDRDigital, ChannelPHAnalog
}
