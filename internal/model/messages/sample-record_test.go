package messages

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleRecord_MarshalLayout(t *testing.T) {
	b, err := json.Marshal(SampleRecord{LDRAnalog: 2.45, LDRDigital: 1, PH: 7.12})
	require.NoError(t, err)
	assert.Equal(t, `{"LDR_Analog":2.45,"LDR_Digital":1,"pH":7.12}`, string(b))
}

func TestSampleRecord_MarshalTwoDecimals(t *testing.T) {
	b, err := json.Marshal(SampleRecord{LDRAnalog: 2.5, LDRDigital: 1, PH: 10.5})
	require.NoError(t, err)
	assert.Equal(t, `{"LDR_Analog":2.50,"LDR_Digital":1,"pH":10.50}`, string(b))

	b, err = json.Marshal(SampleRecord{LDRAnalog: 5, LDRDigital: 0, PH: 0})
	require.NoError(t, err)
	assert.Equal(t, `{"LDR_Analog":5.00,"LDR_Digital":0,"pH":0.00}`, string(b))
}

func TestSampleRecord_Line(t *testing.T) {
	line := SampleRecord{LDRAnalog: 0, LDRDigital: 0, PH: 0}.Line()
	assert.Equal(t, "{\"LDR_Analog\":0.00,\"LDR_Digital\":0,\"pH\":0.00}\n", line)
}

func TestSampleRecord_Unmarshal(t *testing.T) {
	var r SampleRecord
	err := json.Unmarshal([]byte(`{"LDR_Analog":2.50,"LDR_Digital":1,"pH":10.50}`), &r)
	require.NoError(t, err)
	assert.InDelta(t, 2.50, r.LDRAnalog, 1e-9)
	assert.Equal(t, 1, r.LDRDigital)
	assert.InDelta(t, 10.50, r.PH, 1e-9)
}

func TestSampleRecord_UnmarshalStringNumbers(t *testing.T) {
	var r SampleRecord
	err := json.Unmarshal([]byte(`{"LDR_Analog":"2.45","LDR_Digital":"0","pH":"7.12"}`), &r)
	require.NoError(t, err)
	assert.InDelta(t, 2.45, r.LDRAnalog, 1e-9)
	assert.Equal(t, 0, r.LDRDigital)
}

func TestSampleRecord_UnmarshalMissingKey(t *testing.T) {
	var r SampleRecord
	err := json.Unmarshal([]byte(`{"LDR_Analog":2.45,"pH":7.12}`), &r)
	assert.Error(t, err)
}

func TestSampleRecord_UnmarshalBadDigital(t *testing.T) {
	var r SampleRecord
	err := json.Unmarshal([]byte(`{"LDR_Analog":2.45,"LDR_Digital":3,"pH":7.12}`), &r)
	assert.Error(t, err)
}

func TestSampleRecord_RoundTrip(t *testing.T) {
	in := SampleRecord{LDRAnalog: 4.99, LDRDigital: 1, PH: 8.5}
	b, err := json.Marshal(in)
	require.NoError(t, err)
	var out SampleRecord
	require.NoError(t, json.Unmarshal(b, &out))
	assert.InDelta(t, in.LDRAnalog, out.LDRAnalog, 0.005)
	assert.Equal(t, in.LDRDigital, out.LDRDigital)
	assert.InDelta(t, in.PH, out.PH, 0.005)
}
