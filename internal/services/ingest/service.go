package ingest

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"sort"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/etongue-project/etongue/internal/model/messages"
	"github.com/etongue-project/etongue/pkg/dedup"
	"github.com/etongue-project/etongue/pkg/mqtt"
)

// StationSample is a record annotated with its station and arrival time.
type StationSample struct {
	StationID string                `json:"station_id"`
	Record    messages.SampleRecord `json:"record"`
	Timestamp time.Time             `json:"timestamp"`
}

// Broadcaster pushes live samples to connected dashboard clients.
type Broadcaster interface {
	Broadcast(v interface{})
}

// Service accepts station records from MQTT or a serial link, persists
// them to Influx and fans them out to live subscribers.
type Service struct {
	writer  *Writer
	deduper *dedup.Deduper
	hub     Broadcaster // optional

	mu     sync.RWMutex
	latest map[string]StationSample
}

// NewService builds the service. hub may be nil.
func NewService(writer *Writer, hub Broadcaster) *Service {
	return &Service{
		writer:  writer,
		deduper: dedup.New(2*time.Minute, 10000),
		hub:     hub,
		latest:  make(map[string]StationSample),
	}
}

// HandleMQTT is the consumer handler for the sample topics. The station id
// comes from the topic; duplicate payloads within the dedup TTL are
// dropped.
func (s *Service) HandleMQTT(topic string, msg pahomqtt.Message) error {
	h := sha256.Sum256(msg.Payload())
	if !s.deduper.ShouldProcess(hex.EncodeToString(h[:])) {
		duplicatesTotal.Inc()
		return nil
	}

	var rec messages.SampleRecord
	if err := json.Unmarshal(msg.Payload(), &rec); err != nil {
		decodeErrorsTotal.Inc()
		log.Printf("ingest: invalid record on %s: %v", topic, err)
		return nil // keep the stream alive
	}

	station := mqtt.StationFromTopic(msg.Topic())
	s.accept(station, rec, time.Now(), "mqtt")
	return nil
}

// ConsumeSerial reads newline-delimited records from r (usually the serial
// port the station reports on) until EOF or ctx-style interruption via a
// closed reader. Malformed lines are counted and skipped.
func (s *Service) ConsumeSerial(stationID string, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec messages.SampleRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			decodeErrorsTotal.Inc()
			log.Printf("ingest: bad serial line from %s: %v", stationID, err)
			continue
		}
		s.accept(stationID, rec, time.Now(), "serial")
	}
	return scanner.Err()
}

func (s *Service) accept(stationID string, rec messages.SampleRecord, ts time.Time, source string) {
	sample := StationSample{StationID: stationID, Record: rec, Timestamp: ts}

	s.mu.Lock()
	s.latest[stationID] = sample
	s.mu.Unlock()

	recordsTotal.WithLabelValues(stationID, source).Inc()
	lastPH.WithLabelValues(stationID).Set(rec.PH)
	lastLDRVoltage.WithLabelValues(stationID).Set(rec.LDRAnalog)

	if s.writer != nil {
		s.writer.WriteSample(stationID, rec, ts)
	}
	if s.hub != nil {
		s.hub.Broadcast(sample)
	}
}

// Latest returns the newest sample per station, ordered by station id.
func (s *Service) Latest() []StationSample {
	s.mu.RLock()
	out := make([]StationSample, 0, len(s.latest))
	for _, v := range s.latest {
		out = append(out, v)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].StationID < out[j].StationID })
	return out
}
