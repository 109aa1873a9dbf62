package ingest

import (
	"log"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/etongue-project/etongue/internal/model/messages"
)

// Measurement under which all station records are stored.
const Measurement = "etongue_sample"

// Writer wraps the async Influx write API and tracks the age of the last
// write error for /healthz and /readyz.
type Writer struct {
	api     api.WriteAPI
	mu      sync.RWMutex
	lastErr time.Time
	counts  map[string]int64
}

// NewWriter starts the async error listener and returns the writer.
func NewWriter(w api.WriteAPI) *Writer {
	ww := &Writer{
		api:     w,
		lastErr: time.Now().Add(-24 * time.Hour),
		counts:  make(map[string]int64),
	}
	go func() {
		for err := range w.Errors() {
			if err != nil {
				ww.mu.Lock()
				ww.lastErr = time.Now()
				ww.mu.Unlock()
				log.Printf("ingest: influx write error: %v", err)
			}
		}
	}()
	return ww
}

// WriteSample queues one station record.
func (w *Writer) WriteSample(stationID string, rec messages.SampleRecord, ts time.Time) {
	w.api.WritePoint(SampleToPoint(stationID, rec, ts))
	w.mu.Lock()
	w.counts[stationID]++
	w.mu.Unlock()
}

// SampleToPoint normalizes a record into an Influx point.
func SampleToPoint(stationID string, rec messages.SampleRecord, ts time.Time) *write.Point {
	tags := map[string]string{}
	if stationID != "" {
		tags["station_id"] = stationID
	}
	fields := map[string]interface{}{
		"ldr_voltage": rec.LDRAnalog,
		"ldr_digital": int64(rec.LDRDigital),
		"ph":          rec.PH,
	}
	return influxdb2.NewPoint(Measurement, tags, fields, ts)
}

// LastErrorAge reports how long ago the last write error happened.
func (w *Writer) LastErrorAge() time.Duration {
	if w == nil {
		return 99999 * time.Hour
	}
	w.mu.RLock()
	t := w.lastErr
	w.mu.RUnlock()
	return time.Since(t)
}

// Count returns how many records were queued for a station.
func (w *Writer) Count(stationID string) int64 {
	if w == nil {
		return 0
	}
	w.mu.RLock()
	c := w.counts[stationID]
	w.mu.RUnlock()
	return c
}
