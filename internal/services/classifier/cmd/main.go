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

	"github.com/etongue-project/etongue/internal/services/classifier"
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
		Broker      mqtt.BrokerConfig
		SampleTopic string
		DatasetPath string
		HTTPPort    int
	}{
		Broker: mqtt.BrokerConfig{
			Host:     envStr("MQTT_HOST", "localhost"),
			Port:     envInt("MQTT_PORT", 1883),
			User:     envStr("MQTT_USER", "guest"),
			Password: envStr("MQTT_PASSWORD", "guest"),
			ClientID: envStr("HOSTNAME", "etongue-classifier"),
		},
		SampleTopic: envStr("SAMPLE_TOPIC", "etongue/sample/#"),
		DatasetPath: envStr("DATASET_PATH", "dataset.db"),
		HTTPPort:    envInt("HTTP_PORT", 8081),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := classifier.OpenStore(cfg.DatasetPath)
	if err != nil {
		log.Fatalf("classifier: %v", err)
	}
	defer store.Close()

	client, err := mqtt.Connect(ctx, &cfg.Broker)
	if err != nil {
		log.Fatalf("classifier: mqtt connection error: %v", err)
	}
	defer mqtt.Close(client)

	factory := func(topic string) mqtt.IPublisher {
		return mqtt.NewPublisher(client, topic)
	}

	svc := classifier.NewService(classifier.NewModel(), store, factory)

	consumer := mqtt.NewConsumer(client, svc.HandleMQTT, cfg.SampleTopic)
	go consumer.Consume(ctx)

	hs := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.HTTPPort),
		Handler:           classifier.NewHTTPMux(svc),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("classifier: HTTP listening on :%d", cfg.HTTPPort)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("classifier: http server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	log.Printf("classifier: shutting down...")

	shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shCancel()
	_ = hs.Shutdown(shCtx)
}
