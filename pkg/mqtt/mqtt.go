package mqtt

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Topic layout used across the services.
const (
	// TopicSampleTmpl carries raw station records: etongue/sample/<station>.
	TopicSampleTmpl = "etongue/sample/%s"
	// TopicClassificationTmpl carries classifier results.
	TopicClassificationTmpl = "etongue/classification/%s"
	// TopicAlertTmpl carries sample-quality alerts.
	TopicAlertTmpl = "etongue/alert/%s"
)

// BrokerConfig holds the connection parameters for the MQTT broker.
type BrokerConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	ClientID string
}

// Connect dials the broker with exponential backoff and returns a connected
// client. The client disconnects when ctx is cancelled.
func Connect(ctx context.Context, cfg *BrokerConfig) (mqtt.Client, error) {
	addr := fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(addr)
	opts.SetUsername(cfg.User)
	opts.SetPassword(cfg.Password)
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 10 * time.Second
	const maxRetries = 5

	var client mqtt.Client
	err := backoff.Retry(func() error {
		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			log.Printf("mqtt: connect to %s failed: %v", addr, token.Error())
			return token.Error()
		}
		return nil
	}, backoff.WithMaxRetries(bo, maxRetries-1))
	if err != nil {
		return nil, fmt.Errorf("mqtt: no connection to %s after retries: %w", addr, err)
	}

	log.Printf("mqtt: connected to %s", addr)

	go func() {
		<-ctx.Done()
		client.Disconnect(250)
		log.Println("mqtt: connection closed")
	}()

	return client, nil
}

// Close disconnects the client if it is still connected.
func Close(client mqtt.Client) {
	if client.IsConnected() {
		client.Disconnect(250)
		log.Println("mqtt: disconnected")
	}
}
