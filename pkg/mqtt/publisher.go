package mqtt

import (
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// IPublisher publishes payloads to a single topic.
type IPublisher interface {
	Publish(payload []byte) error
	PublishQoS(qos byte, retained bool, payload []byte) error
	Close()
}

// Publisher binds a shared client to one topic.
type Publisher struct {
	client mqtt.Client
	topic  string
}

// NewPublisher creates a Publisher on topic using the shared client.
func NewPublisher(client mqtt.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

// Publish sends payload at QoS 0.
func (p *Publisher) Publish(payload []byte) error {
	return p.PublishQoS(0, false, payload)
}

// PublishQoS sends payload with an explicit QoS and retained flag.
func (p *Publisher) PublishQoS(qos byte, retained bool, payload []byte) error {
	token := p.client.Publish(p.topic, qos, retained, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, token.Error())
	}
	return nil
}

// Close disconnects the underlying client.
func (p *Publisher) Close() {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
		log.Println("mqtt: publisher disconnected")
	}
}
