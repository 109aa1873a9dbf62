// Package hal abstracts the sensing board's input channels so the sampler
// can run against real hardware, or against a simulated board on a desktop
// machine and in tests.
package hal

import "github.com/etongue-project/etongue/internal/model/entities"

// AnalogReader reads a quantized voltage from an analog channel.
// Readings are raw ADC counts in [0, 1023] (10-bit converter).
type AnalogReader interface {
	ReadAnalog(ch entities.Channel) (int, error)
}

// DigitalReader reads a binary threshold signal from a digital channel.
// Readings are 0 or 1.
type DigitalReader interface {
	ReadDigital(ch entities.Channel) (int, error)
}

// Board is a complete sensing board.
type Board interface {
	AnalogReader
	DigitalReader
	Close() error
}

// ADC resolution of the boards this package supports.
const (
	RawMin = 0
	RawMax = 1023
)
