package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.bug.st/serial"

	"github.com/etongue-project/etongue/internal/model/entities"
	"github.com/etongue-project/etongue/internal/sampler"
	"github.com/etongue-project/etongue/pkg/config"
	"github.com/etongue-project/etongue/pkg/hal"
	"github.com/etongue-project/etongue/pkg/mqtt"
)

func main() {
	cfgPath := flag.String("config", "station.yaml", "station config file")
	stationID := flag.String("station-id", "", "override station identifier")
	serialPort := flag.String("serial-port", "", "override serial port")
	simMode := flag.Bool("sim", false, "force the simulated board")
	stdout := flag.Bool("stdout", false, "write records to stdout instead of the serial port")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("station: %v", err)
	}
	if *stationID != "" {
		cfg.Station.ID = *stationID
	}
	if *serialPort != "" {
		cfg.Serial.Port = *serialPort
	}
	if *simMode {
		cfg.Board.Mode = "sim"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	board, err := openBoard(cfg)
	if err != nil {
		log.Fatalf("station: %v", err)
	}
	defer board.Close()

	var out = os.Stdout
	var port serial.Port
	if !*stdout {
		mode := &serial.Mode{BaudRate: cfg.Serial.BaudRate}
		port, err = serial.Open(cfg.Serial.Port, mode)
		if err != nil {
			log.Fatalf("station: open serial %s: %v", cfg.Serial.Port, err)
		}
		defer port.Close()
		log.Printf("station %s: reporting on %s at %d baud", cfg.Station.ID, cfg.Serial.Port, cfg.Serial.BaudRate)
	}

	ldrA, ldrD, phA := entities.DefaultChannels()
	station := entities.Station{
		ID:         cfg.Station.ID,
		SerialPort: cfg.Serial.Port,
		LDRAnalog:  ldrA,
		LDRDigital: ldrD,
		PHAnalog:   phA,
	}

	var s *sampler.Sampler
	if port != nil {
		s = sampler.New(station, board, port)
	} else {
		s = sampler.New(station, board, out)
	}

	if cfg.MQTT.Enabled {
		client, err := mqtt.Connect(ctx, &mqtt.BrokerConfig{
			Host:     cfg.MQTT.Host,
			Port:     cfg.MQTT.Port,
			User:     cfg.MQTT.User,
			Password: cfg.MQTT.Password,
			ClientID: cfg.MQTT.ClientID,
		})
		if err != nil {
			log.Fatalf("station: %v", err)
		}
		topic := fmt.Sprintf(mqtt.TopicSampleTmpl, cfg.Station.ID)
		s.SetPublisher(mqtt.NewPublisher(client, topic))
		log.Printf("station %s: mirroring records to %s", cfg.Station.ID, topic)
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		log.Printf("station %s: shutting down", cfg.Station.ID)
		cancel()
	}()

	if err := s.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("station: %v", err)
	}
}

func openBoard(cfg *config.Config) (hal.Board, error) {
	switch cfg.Board.Mode {
	case "sim":
		return hal.NewSimBoard(cfg.Board.SimSeed, cfg.Board.SimJitter), nil
	case "mcp3008":
		analog := make(map[entities.Channel]int, len(cfg.Board.AnalogInputs))
		for ch, input := range cfg.Board.AnalogInputs {
			analog[entities.Channel(ch)] = input
		}
		digital := make(map[entities.Channel]string, len(cfg.Board.DigitalPins))
		for ch, pin := range cfg.Board.DigitalPins {
			digital[entities.Channel(ch)] = pin
		}
		return hal.NewMCP3008(hal.MCP3008Config{
			SPIPort: cfg.Board.SPIPort,
			Analog:  analog,
			Digital: digital,
		})
	default:
		return nil, fmt.Errorf("unknown board mode %q", cfg.Board.Mode)
	}
}
