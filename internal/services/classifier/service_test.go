package classifier

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etongue-project/etongue/internal/model/messages"
	"github.com/etongue-project/etongue/pkg/mqtt"
)

type fakePublisher struct {
	mu       sync.Mutex
	topic    string
	payloads [][]byte
	qos      []byte
}

func (f *fakePublisher) Publish(p []byte) error { return f.PublishQoS(0, false, p) }

func (f *fakePublisher) PublishQoS(qos byte, _ bool, p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(p))
	copy(cp, p)
	f.payloads = append(f.payloads, cp)
	f.qos = append(f.qos, qos)
	return nil
}

func (f *fakePublisher) Close() {}

type publisherRegistry struct {
	mu   sync.Mutex
	pubs map[string]*fakePublisher
}

func newRegistry() *publisherRegistry {
	return &publisherRegistry{pubs: make(map[string]*fakePublisher)}
}

func (r *publisherRegistry) factory(topic string) mqtt.IPublisher {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.pubs[topic]; ok {
		return p
	}
	p := &fakePublisher{topic: topic}
	r.pubs[topic] = p
	return p
}

func tulsiRecord() messages.SampleRecord {
	// 320 ADC counts as volts, pH at the Tulsi centroid.
	return messages.SampleRecord{LDRAnalog: 320 * 5.0 / 1023.0, LDRDigital: 1, PH: 6.8}
}

func TestAnalyze_ClassifiesAndPublishes(t *testing.T) {
	reg := newRegistry()
	svc := NewService(NewModel(), nil, reg.factory)

	evt := svc.Analyze("station1", tulsiRecord(), time.Now())

	assert.Equal(t, "Tulsi", evt.Herb)
	assert.NotEmpty(t, evt.TicketID)

	pub := reg.pubs["etongue/classification/station1"]
	require.NotNil(t, pub)
	require.Len(t, pub.payloads, 1)
	assert.Equal(t, byte(1), pub.qos[0])

	var out messages.ClassificationEvent
	require.NoError(t, json.Unmarshal(pub.payloads[0], &out))
	assert.Equal(t, "Tulsi", out.Herb)
	assert.Equal(t, evt.TicketID, out.TicketID)
}

func TestAnalyze_AbnormalPHRaisesAlert(t *testing.T) {
	reg := newRegistry()
	svc := NewService(NewModel(), nil, reg.factory)

	rec := messages.SampleRecord{LDRAnalog: 2.5, LDRDigital: 0, PH: 10.5}
	evt := svc.Analyze("station1", rec, time.Now())

	assert.Equal(t, "Unknown", evt.Herb)

	alert := reg.pubs["etongue/alert/station1"]
	require.NotNil(t, alert)
	require.Len(t, alert.payloads, 1)

	var out messages.AlertEvent
	require.NoError(t, json.Unmarshal(alert.payloads[0], &out))
	assert.Equal(t, "warning", out.Severity)
	assert.InDelta(t, 10.5, out.PH, 1e-9)
}

func TestAnalyze_PersistsDatasetRow(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "dataset.db"))
	require.NoError(t, err)
	defer store.Close()

	svc := NewService(NewModel(), store, nil)
	svc.Analyze("station1", tulsiRecord(), time.Now())

	rows, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Tulsi", rows[0].Herb)
	assert.Equal(t, "station1", rows[0].StationID)
	assert.InDelta(t, 320, rows[0].LDRCounts, 0.01)
}

func TestStore_RecentOrderAndLimit(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "dataset.db"))
	require.NoError(t, err)
	defer store.Close()

	for i, herb := range []string{"Tulsi", "Neem", "Ashwagandha"} {
		require.NoError(t, store.Insert(DatasetRow{
			TicketID:  "t",
			StationID: "s",
			LDRCounts: float64(i),
			PH:        7,
			Herb:      herb,
			CreatedAt: time.Now(),
		}))
	}

	rows, err := store.Recent(2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ashwagandha", rows[0].Herb) // newest first
	assert.Equal(t, "Neem", rows[1].Herb)
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 0 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 0 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

func TestHandleMQTT(t *testing.T) {
	svc := NewService(NewModel(), nil, nil)

	rec := tulsiRecord()
	payload, err := json.Marshal(rec)
	require.NoError(t, err)

	msg := &fakeMessage{topic: "etongue/sample/bench", payload: payload}
	require.NoError(t, svc.HandleMQTT(msg.topic, msg))

	latest := svc.Latest()
	require.Len(t, latest, 1)
	assert.Equal(t, "bench", latest[0].StationID)
	assert.Equal(t, "Tulsi", latest[0].Herb)
}

func TestHTTP_ClassifyLatestAndHerbs(t *testing.T) {
	svc := NewService(NewModel(), nil, nil)
	svc.Analyze("station1", tulsiRecord(), time.Now())

	mux := NewHTTPMux(svc)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/classify/latest", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	var events []messages.ClassificationEvent
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "Tulsi", events[0].Herb)

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/herbs?name=Neem", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "blood purifier")
}
