package hal

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/etongue-project/etongue/internal/model/entities"
)

// MCP3008Config maps the station's logical channels onto the board:
// analog channels to MCP3008 inputs (0–7), digital channels to GPIO pins
// by periph name (e.g. "GPIO2").
type MCP3008Config struct {
	SPIPort string // empty selects the first available port
	Analog  map[entities.Channel]int
	Digital map[entities.Channel]string
}

// MCP3008 reads a 10-bit MCP3008 ADC over SPI plus direct GPIO pins.
type MCP3008 struct {
	mu      sync.Mutex
	port    spi.PortCloser
	conn    spi.Conn
	analog  map[entities.Channel]int
	digital map[entities.Channel]gpio.PinIn
}

// NewMCP3008 initializes the host, opens the SPI port and resolves the
// configured GPIO pins.
func NewMCP3008(cfg MCP3008Config) (*MCP3008, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("hal: host init: %w", err)
	}

	port, err := spireg.Open(cfg.SPIPort)
	if err != nil {
		return nil, fmt.Errorf("hal: open spi %q: %w", cfg.SPIPort, err)
	}
	conn, err := port.Connect(physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("hal: spi connect: %w", err)
	}

	digital := make(map[entities.Channel]gpio.PinIn, len(cfg.Digital))
	for ch, name := range cfg.Digital {
		pin := gpioreg.ByName(name)
		if pin == nil {
			port.Close()
			return nil, fmt.Errorf("hal: no GPIO pin %q for channel %s", name, ch)
		}
		if err := pin.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
			port.Close()
			return nil, fmt.Errorf("hal: configure %q: %w", name, err)
		}
		digital[ch] = pin
	}

	analog := make(map[entities.Channel]int, len(cfg.Analog))
	for ch, input := range cfg.Analog {
		if input < 0 || input > 7 {
			port.Close()
			return nil, fmt.Errorf("hal: ADC input %d for channel %s out of range", input, ch)
		}
		analog[ch] = input
	}

	return &MCP3008{port: port, conn: conn, analog: analog, digital: digital}, nil
}

// ReadAnalog performs one single-ended conversion on the MCP3008 input
// mapped to ch.
func (b *MCP3008) ReadAnalog(ch entities.Channel) (int, error) {
	input, ok := b.analog[ch]
	if !ok {
		return 0, fmt.Errorf("hal: unmapped analog channel %s", ch)
	}

	// Single-ended read: start bit, SGL|input, then clock out 10 bits.
	tx := []byte{0x01, byte(0x80 | input<<4), 0x00}
	rx := make([]byte, 3)

	b.mu.Lock()
	err := b.conn.Tx(tx, rx)
	b.mu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("hal: adc read %s: %w", ch, err)
	}

	return int(rx[1]&0x03)<<8 | int(rx[2]), nil
}

// ReadDigital reads the GPIO pin mapped to ch.
func (b *MCP3008) ReadDigital(ch entities.Channel) (int, error) {
	pin, ok := b.digital[ch]
	if !ok {
		return 0, fmt.Errorf("hal: unmapped digital channel %s", ch)
	}
	if pin.Read() == gpio.High {
		return 1, nil
	}
	return 0, nil
}

// Close releases the SPI port.
func (b *MCP3008) Close() error {
	return b.port.Close()
}
