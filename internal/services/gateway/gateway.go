package gateway

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var upstreamFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "etongue_gateway_upstream_failures_total",
	Help: "Upstream calls that failed or were rejected by the breaker.",
}, []string{"upstream"})

// Config wires the gateway's upstreams.
type Config struct {
	IngestBaseURL     string
	ClassifierBaseURL string
	HTTPTimeout       time.Duration
	BreakerFailures   int
	BreakerOpenFor    time.Duration
}

// SensorView is one station row on the dashboard.
type SensorView struct {
	StationID  string  `json:"station_id"`
	LDRAnalog  float64 `json:"ldr_analog"`
	LDRDigital int     `json:"ldr_digital"`
	PH         float64 `json:"ph"`
	Timestamp  string  `json:"timestamp"`
}

// ClassificationView is one classifier result row.
type ClassificationView struct {
	StationID string    `json:"station_id"`
	TicketID  string    `json:"ticket_id"`
	Herb      string    `json:"herb"`
	PH        float64   `json:"ph"`
	Timestamp time.Time `json:"timestamp"`
}

// DashboardData is the aggregate payload the dashboard renders.
type DashboardData struct {
	Sensors         []SensorView         `json:"sensors"`
	Classifications []ClassificationView `json:"classifications"`
	Stats           map[string]float64   `json:"stats"`
}

// Gateway fans a dashboard request out to the ingest and classifier
// services, each behind its own circuit breaker, and keeps the last good
// classification list as a fallback.
type Gateway struct {
	cfg        Config
	ingest     *Upstream
	classifier *Upstream

	mu       sync.Mutex
	lastGood []ClassificationView
}

// NewGateway builds the gateway from cfg.
func NewGateway(cfg Config) *Gateway {
	return &Gateway{
		cfg:        cfg,
		ingest:     NewUpstream("ingest", cfg.IngestBaseURL, cfg.HTTPTimeout, cfg.BreakerFailures, cfg.BreakerOpenFor),
		classifier: NewUpstream("classifier", cfg.ClassifierBaseURL, cfg.HTTPTimeout, cfg.BreakerFailures, cfg.BreakerOpenFor),
	}
}

// HandleDashboard serves GET /dashboard/data.
func (g *Gateway) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), g.cfg.HTTPTimeout)
	defer cancel()

	var (
		wg        sync.WaitGroup
		sensors   []SensorView
		events    []ClassificationView
		sensorErr error
		eventErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		sensorErr = g.ingest.GetJSON(ctx, "/data/latest", &sensors)
	}()
	go func() {
		defer wg.Done()
		eventErr = g.classifier.GetJSON(ctx, "/classify/latest", &events)
	}()
	wg.Wait()

	if eventErr == nil && len(events) > 0 {
		g.mu.Lock()
		g.lastGood = events
		g.mu.Unlock()
	} else {
		g.mu.Lock()
		events = g.lastGood
		g.mu.Unlock()
	}

	data := DashboardData{
		Sensors:         []SensorView{},
		Classifications: []ClassificationView{},
		Stats:           map[string]float64{},
	}
	if sensors != nil {
		sort.Slice(sensors, func(i, j int) bool { return sensors[i].StationID < sensors[j].StationID })
		data.Sensors = sensors
	}
	if events != nil {
		data.Classifications = events
	}

	if n := len(data.Sensors); n > 0 {
		var sum float64
		minv := data.Sensors[0].PH
		maxv := data.Sensors[0].PH
		for _, s := range data.Sensors {
			sum += s.PH
			if s.PH < minv {
				minv = s.PH
			}
			if s.PH > maxv {
				maxv = s.PH
			}
		}
		data.Stats["ph_mean"] = sum / float64(n)
		data.Stats["ph_min"] = minv
		data.Stats["ph_max"] = maxv
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)

	log.Printf("GET /dashboard/data [%dms] cb[ingest]=%v cb[classifier]=%v sensors=%d classifications=%d err[ingest]=%v",
		time.Since(start).Milliseconds(), g.ingest.State(), g.classifier.State(),
		len(data.Sensors), len(data.Classifications), sensorErr)
}
