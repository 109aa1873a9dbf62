package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"go.bug.st/serial"

	"github.com/etongue-project/etongue/internal/services/ingest"
	"github.com/etongue-project/etongue/pkg/mqtt"
)

func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func main() {
	cfg := struct {
		Broker mqtt.BrokerConfig

		InfluxURL    string
		InfluxToken  string
		InfluxOrg    string
		InfluxBucket string

		SampleTopic   string
		BatchSize     int
		FlushInterval time.Duration

		SerialPort string // optional: read the station's line stream directly
		SerialBaud int
		StationID  string

		HTTPPort int
	}{
		Broker: mqtt.BrokerConfig{
			Host:     envStr("MQTT_HOST", "localhost"),
			Port:     envInt("MQTT_PORT", 1883),
			User:     envStr("MQTT_USER", "guest"),
			Password: envStr("MQTT_PASSWORD", "guest"),
			ClientID: envStr("HOSTNAME", "etongue-ingest"),
		},

		InfluxURL:    envStr("INFLUX_URL", "http://localhost:8086"),
		InfluxToken:  os.Getenv("INFLUX_TOKEN"),
		InfluxOrg:    envStr("INFLUX_ORG", "etongue"),
		InfluxBucket: envStr("INFLUX_BUCKET", "samples"),

		SampleTopic:   envStr("SAMPLE_TOPIC", "etongue/sample/#"),
		BatchSize:     envInt("WRITE_BATCH_SIZE", 10),
		FlushInterval: time.Duration(envInt("WRITE_FLUSH_INTERVAL_MS", 200)) * time.Millisecond,

		SerialPort: os.Getenv("SERIAL_PORT"),
		SerialBaud: envInt("SERIAL_BAUD", 9600),
		StationID:  envStr("STATION_ID", "station1"),

		HTTPPort: envInt("HTTP_PORT", 8080),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === InfluxDB ===
	opts := influxdb2.DefaultOptions().
		SetBatchSize(uint(cfg.BatchSize)).
		SetFlushInterval(uint(cfg.FlushInterval.Milliseconds()))
	influx := influxdb2.NewClientWithOptions(cfg.InfluxURL, cfg.InfluxToken, opts)
	defer influx.Close()
	writer := ingest.NewWriter(influx.WriteAPI(cfg.InfluxOrg, cfg.InfluxBucket))

	// === Live feed ===
	hub := ingest.NewHub()
	go hub.Run()

	svc := ingest.NewService(writer, hub)

	// === MQTT ===
	mqttClient, err := mqtt.Connect(ctx, &cfg.Broker)
	if err != nil {
		log.Fatalf("ingest: mqtt connection error: %v", err)
	}
	defer mqtt.Close(mqttClient)

	consumer := mqtt.NewConsumer(mqttClient, svc.HandleMQTT, cfg.SampleTopic)
	go consumer.Consume(ctx)

	// === Optional direct serial source ===
	if cfg.SerialPort != "" {
		port, err := serial.Open(cfg.SerialPort, &serial.Mode{BaudRate: cfg.SerialBaud})
		if err != nil {
			log.Fatalf("ingest: open serial %s: %v", cfg.SerialPort, err)
		}
		defer port.Close()
		log.Printf("ingest: reading %s at %d baud for station %s", cfg.SerialPort, cfg.SerialBaud, cfg.StationID)
		go func() {
			if err := svc.ConsumeSerial(cfg.StationID, port); err != nil {
				log.Printf("ingest: serial reader stopped: %v", err)
			}
		}()
	}

	// === HTTP ===
	mux := ingest.NewHTTPMux(svc, influx, cfg.InfluxOrg, cfg.InfluxBucket)
	mux.Handle("/healthz", ingest.NewHealthHandler(mqttClient, influx, writer))
	mux.Handle("/readyz", ingest.NewReadyHandler(mqttClient, influx, writer, 2*time.Second))
	mux.HandleFunc("/ws", hub.Handler)

	hs := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("ingest: HTTP listening on :%d", cfg.HTTPPort)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ingest: http server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	log.Printf("ingest: shutting down...")

	shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shCancel()
	_ = hs.Shutdown(shCtx)

	// let the async writer flush
	time.Sleep(cfg.FlushInterval + 100*time.Millisecond)
}
