package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "station1", cfg.Station.ID)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.Equal(t, "sim", cfg.Board.Mode)
	assert.Equal(t, 0, cfg.Board.AnalogInputs["A0"])
	assert.Equal(t, 1, cfg.Board.AnalogInputs["A1"])
	assert.Equal(t, "GPIO2", cfg.Board.DigitalPins["D2"])
	assert.False(t, cfg.MQTT.Enabled)
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
station:
  id: "chamber-2"

serial:
  port: "/dev/ttyACM0"
  baud_rate: 9600

board:
  mode: "mcp3008"
  spi_port: "SPI0.0"
  analog_inputs:
    A0: 2
    A1: 3
  digital_pins:
    D2: "GPIO17"

mqtt:
  enabled: true
  host: "broker.local"
  port: 1883
  client_id: "etongue-chamber-2"
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)

	assert.Equal(t, "chamber-2", cfg.Station.ID)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, "mcp3008", cfg.Board.Mode)
	assert.Equal(t, "SPI0.0", cfg.Board.SPIPort)
	assert.Equal(t, 2, cfg.Board.AnalogInputs["A0"])
	assert.Equal(t, "GPIO17", cfg.Board.DigitalPins["D2"])
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "broker.local", cfg.MQTT.Host)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("board: [broken")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("serial:\n  port: \"/dev/ttyACM1\"\n")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM1", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate) // default
	assert.Equal(t, "station1", cfg.Station.ID) // default
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB1"
	cfg.Station.ID = "bench"

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	require.NoError(t, cfg.Save(tmpfile.Name()))

	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB1", loaded.Serial.Port)
	assert.Equal(t, "bench", loaded.Station.ID)
}
