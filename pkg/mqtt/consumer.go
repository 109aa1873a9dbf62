package mqtt

import (
	"context"
	"log"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Handler processes one inbound message from a topic.
type Handler func(topic string, message mqtt.Message) error

// IConsumer subscribes to one or more topics and dispatches messages to a
// handler until the context is cancelled.
type IConsumer interface {
	Consume(ctx context.Context)
	SetHandler(h Handler)
}

// qosFor picks the subscription QoS per topic family. Classification and
// alert events ride QoS 1; the raw sample stream tolerates loss and stays
// at QoS 0.
func qosFor(topic string) byte {
	t := strings.TrimSpace(topic)
	if strings.HasPrefix(t, "etongue/classification") || strings.HasPrefix(t, "etongue/alert") {
		return 1
	}
	return 0
}

// Consumer subscribes a shared client to a list of topic filters.
type Consumer struct {
	client  mqtt.Client
	topics  []string
	handler Handler
}

// NewConsumer creates a Consumer for the given topic filters.
func NewConsumer(client mqtt.Client, handler Handler, topics ...string) *Consumer {
	return &Consumer{client: client, topics: topics, handler: handler}
}

func (c *Consumer) SetHandler(h Handler) { c.handler = h }

// Consume subscribes and blocks until ctx is done, then unsubscribes.
func (c *Consumer) Consume(ctx context.Context) {
	for _, topic := range c.topics {
		topic := topic
		token := c.client.Subscribe(topic, qosFor(topic), func(_ mqtt.Client, msg mqtt.Message) {
			if c.handler == nil {
				log.Printf("mqtt: no handler for %s, dropping message", topic)
				return
			}
			if err := c.handler(msg.Topic(), msg); err != nil {
				log.Printf("mqtt: handler error on %s: %v", msg.Topic(), err)
			}
		})
		if token.Wait(); token.Error() != nil {
			log.Printf("mqtt: subscribe %s failed: %v", topic, token.Error())
			continue
		}
		log.Printf("mqtt: subscribed to %s", topic)
	}

	<-ctx.Done()

	for _, topic := range c.topics {
		c.client.Unsubscribe(topic)
	}
}

// StationFromTopic extracts the station id from a topic shaped
// "etongue/<family>/<station>". Empty string when the topic is shorter.
func StationFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) >= 3 {
		return parts[2]
	}
	return ""
}
