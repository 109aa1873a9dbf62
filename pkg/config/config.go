package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the sampling station configuration. Channel assignments are
// read once at startup and treated as immutable afterwards.
type Config struct {
	Station StationConfig `yaml:"station"`
	Serial  SerialConfig  `yaml:"serial"`
	Board   BoardConfig   `yaml:"board"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
}

// StationConfig identifies the station.
type StationConfig struct {
	ID string `yaml:"id"`
}

// SerialConfig describes the reporting link.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// BoardConfig selects and wires the sensing board.
type BoardConfig struct {
	Mode         string         `yaml:"mode"` // "mcp3008" | "sim"
	SPIPort      string         `yaml:"spi_port"`
	AnalogInputs map[string]int `yaml:"analog_inputs"` // channel -> ADC input
	DigitalPins  map[string]string `yaml:"digital_pins"` // channel -> GPIO name
	SimSeed      int64          `yaml:"sim_seed"`
	SimJitter    int            `yaml:"sim_jitter"`
}

// MQTTConfig configures the optional telemetry mirror.
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	ClientID string `yaml:"client_id"`
}

// Default returns the factory configuration.
func Default() *Config {
	return &Config{
		Station: StationConfig{ID: "station1"},
		Serial: SerialConfig{
			Port:     "/dev/ttyUSB0",
			BaudRate: 9600,
		},
		Board: BoardConfig{
			Mode:    "sim",
			SPIPort: "",
			AnalogInputs: map[string]int{
				"A0": 0,
				"A1": 1,
			},
			DigitalPins: map[string]string{
				"D2": "GPIO2",
			},
			SimSeed:   1,
			SimJitter: 6,
		},
		MQTT: MQTTConfig{
			Enabled:  false,
			Host:     "localhost",
			Port:     1883,
			User:     "guest",
			Password: "guest",
			ClientID: "etongue-station1",
		},
	}
}

// Load reads a YAML config file. A missing file yields the defaults;
// missing fields are backfilled from the defaults.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) ensureDefaults() {
	def := Default()

	if c.Station.ID == "" {
		c.Station.ID = def.Station.ID
	}
	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}
	if c.Board.Mode == "" {
		c.Board.Mode = def.Board.Mode
	}
	if len(c.Board.AnalogInputs) == 0 {
		c.Board.AnalogInputs = def.Board.AnalogInputs
	}
	if len(c.Board.DigitalPins) == 0 {
		c.Board.DigitalPins = def.Board.DigitalPins
	}
	if c.Board.SimSeed == 0 {
		c.Board.SimSeed = def.Board.SimSeed
	}
	if c.MQTT.Host == "" {
		c.MQTT.Host = def.MQTT.Host
	}
	if c.MQTT.Port == 0 {
		c.MQTT.Port = def.MQTT.Port
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = def.MQTT.ClientID
	}
}
