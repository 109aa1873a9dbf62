package classifier

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/etongue-project/etongue/internal/model/entities"
	"github.com/etongue-project/etongue/internal/model/messages"
	"github.com/etongue-project/etongue/pkg/mqtt"
)

// PublisherFactory returns a publisher bound to a topic, so the service
// can address per-station classification and alert topics.
type PublisherFactory func(topic string) mqtt.IPublisher

// Service consumes the raw sample stream, classifies each record, records
// the result in the dataset and publishes classification and alert events.
type Service struct {
	model         *Model
	store         *Store
	makePublisher PublisherFactory

	classifyTmpl string
	alertTmpl    string

	mu     sync.RWMutex
	latest map[string]messages.ClassificationEvent
}

// NewService wires the classifier. store and makePublisher may be nil in
// tests.
func NewService(model *Model, store *Store, makePublisher PublisherFactory) *Service {
	return &Service{
		model:         model,
		store:         store,
		makePublisher: makePublisher,
		classifyTmpl:  mqtt.TopicClassificationTmpl,
		alertTmpl:     mqtt.TopicAlertTmpl,
		latest:        make(map[string]messages.ClassificationEvent),
	}
}

// HandleMQTT is the consumer handler for the sample topics.
func (s *Service) HandleMQTT(topic string, msg pahomqtt.Message) error {
	var rec messages.SampleRecord
	if err := json.Unmarshal(msg.Payload(), &rec); err != nil {
		log.Printf("classifier: invalid record on %s: %v", topic, err)
		return nil
	}
	station := mqtt.StationFromTopic(msg.Topic())
	s.Analyze(station, rec, time.Now())
	return nil
}

// Analyze classifies one record and returns the resulting event.
// Samples with an implausible pH are flagged and classified as Unknown.
func (s *Service) Analyze(stationID string, rec messages.SampleRecord, ts time.Time) messages.ClassificationEvent {
	counts := CountsFromVoltage(rec.LDRAnalog)

	evt := messages.ClassificationEvent{
		StationID:  stationID,
		TicketID:   uuid.New().String(),
		LDRAnalog:  rec.LDRAnalog,
		LDRDigital: rec.LDRDigital,
		PH:         rec.PH,
		Timestamp:  ts,
	}

	if !PHInRange(rec.PH) {
		evt.Herb = entities.HerbUnknown
		s.publishAlert(messages.AlertEvent{
			StationID: stationID,
			Severity:  "warning",
			Reason:    "abnormal pH, sample may be invalid",
			PH:        rec.PH,
			Timestamp: ts,
		})
	} else {
		evt.Herb, evt.Distance = s.model.Classify(counts, rec.PH)
	}

	s.mu.Lock()
	s.latest[stationID] = evt
	s.mu.Unlock()

	if s.store != nil {
		row := DatasetRow{
			TicketID:  evt.TicketID,
			StationID: stationID,
			LDRCounts: counts,
			PH:        rec.PH,
			Herb:      evt.Herb,
			CreatedAt: ts,
		}
		if err := s.store.Insert(row); err != nil {
			log.Printf("classifier: %v", err)
		}
	}

	s.publishClassification(evt)
	return evt
}

// Latest returns the newest classification per station.
func (s *Service) Latest() []messages.ClassificationEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]messages.ClassificationEvent, 0, len(s.latest))
	for _, v := range s.latest {
		out = append(out, v)
	}
	return out
}

func (s *Service) publishClassification(evt messages.ClassificationEvent) {
	if s.makePublisher == nil {
		return
	}
	payload, _ := json.Marshal(evt)
	topic := topicFor(s.classifyTmpl, evt.StationID)
	if err := s.makePublisher(topic).PublishQoS(1, false, payload); err != nil {
		log.Printf("classifier: publish classification: %v", err)
	}
}

func (s *Service) publishAlert(evt messages.AlertEvent) {
	if s.makePublisher == nil {
		return
	}
	payload, _ := json.Marshal(evt)
	topic := topicFor(s.alertTmpl, evt.StationID)
	if err := s.makePublisher(topic).PublishQoS(1, false, payload); err != nil {
		log.Printf("classifier: publish alert: %v", err)
	}
}

func topicFor(tmpl, stationID string) string {
	if stationID == "" {
		stationID = "unknown"
	}
	return fmt.Sprintf(tmpl, stationID)
}
