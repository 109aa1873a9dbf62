package ingest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessage struct {
	topic   string
	payload []byte
	id      uint16
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 1 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return m.id }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

type captureHub struct {
	samples []StationSample
}

func (c *captureHub) Broadcast(v interface{}) {
	if s, ok := v.(StationSample); ok {
		c.samples = append(c.samples, s)
	}
}

func TestHandleMQTT_AcceptsRecord(t *testing.T) {
	hub := &captureHub{}
	svc := NewService(nil, hub)

	msg := &fakeMessage{
		topic:   "etongue/sample/station1",
		payload: []byte(`{"LDR_Analog":2.50,"LDR_Digital":1,"pH":10.50}`),
	}
	require.NoError(t, svc.HandleMQTT(msg.topic, msg))

	latest := svc.Latest()
	require.Len(t, latest, 1)
	assert.Equal(t, "station1", latest[0].StationID)
	assert.InDelta(t, 2.50, latest[0].Record.LDRAnalog, 1e-9)
	assert.Equal(t, 1, latest[0].Record.LDRDigital)
	assert.InDelta(t, 10.50, latest[0].Record.PH, 1e-9)

	require.Len(t, hub.samples, 1)
	assert.Equal(t, "station1", hub.samples[0].StationID)
}

func TestHandleMQTT_DropsDuplicatePayload(t *testing.T) {
	hub := &captureHub{}
	svc := NewService(nil, hub)

	msg := &fakeMessage{
		topic:   "etongue/sample/station1",
		payload: []byte(`{"LDR_Analog":2.50,"LDR_Digital":1,"pH":10.50}`),
	}
	require.NoError(t, svc.HandleMQTT(msg.topic, msg))
	require.NoError(t, svc.HandleMQTT(msg.topic, msg))

	assert.Len(t, hub.samples, 1)
}

func TestHandleMQTT_BadPayloadKeepsStream(t *testing.T) {
	svc := NewService(nil, nil)

	msg := &fakeMessage{topic: "etongue/sample/station1", payload: []byte(`not json`)}
	assert.NoError(t, svc.HandleMQTT(msg.topic, msg))
	assert.Empty(t, svc.Latest())
}

func TestConsumeSerial(t *testing.T) {
	svc := NewService(nil, nil)

	stream := strings.Join([]string{
		`{"LDR_Analog":0.00,"LDR_Digital":0,"pH":0.00}`,
		`garbage line`,
		`{"LDR_Analog":2.45,"LDR_Digital":1,"pH":7.12}`,
		``,
	}, "\n")

	require.NoError(t, svc.ConsumeSerial("bench", strings.NewReader(stream)))

	latest := svc.Latest()
	require.Len(t, latest, 1)
	assert.Equal(t, "bench", latest[0].StationID)
	assert.InDelta(t, 7.12, latest[0].Record.PH, 1e-9)
}

func TestLatest_SortedByStation(t *testing.T) {
	svc := NewService(nil, nil)

	for _, station := range []string{"b", "a", "c"} {
		msg := &fakeMessage{
			topic:   "etongue/sample/" + station,
			payload: []byte(`{"LDR_Analog":1.00,"LDR_Digital":0,"pH":3.50,"station":"` + station + `"}`),
		}
		require.NoError(t, svc.HandleMQTT(msg.topic, msg))
	}

	latest := svc.Latest()
	require.Len(t, latest, 3)
	assert.Equal(t, "a", latest[0].StationID)
	assert.Equal(t, "b", latest[1].StationID)
	assert.Equal(t, "c", latest[2].StationID)
}

func TestDataLatest_CacheFallback(t *testing.T) {
	svc := NewService(nil, nil)
	require.NoError(t, svc.ConsumeSerial("station1",
		strings.NewReader(`{"LDR_Analog":2.50,"LDR_Digital":1,"pH":10.50}`+"\n")))

	mux := NewHTTPMux(svc, nil, "", "")
	req := httptest.NewRequest(http.MethodGet, "/data/latest", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "cache", rr.Header().Get("X-Data-Source"))

	var out []struct {
		StationID  string  `json:"station_id"`
		LDRAnalog  float64 `json:"ldr_analog"`
		LDRDigital int     `json:"ldr_digital"`
		PH         float64 `json:"ph"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "station1", out[0].StationID)
	assert.InDelta(t, 10.50, out[0].PH, 1e-9)
}
