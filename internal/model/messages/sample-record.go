package messages

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SampleRecord is one telemetry record from a sensing station:
// the LDR voltage, the LDR threshold bit and the (uncalibrated) pH value.
//
// The serial wire shape is a fixed contract consumed by the dashboard:
//
//	{"LDR_Analog":2.45,"LDR_Digital":1,"pH":7.12}
//
// Key order is fixed, the two float fields always carry exactly two
// decimals and the digital field is a bare integer. MarshalJSON produces
// exactly that layout; do not marshal this struct any other way.
type SampleRecord struct {
	LDRAnalog  float64 // volts, 0.0–5.0
	LDRDigital int     // 0 or 1
	PH         float64 // uncalibrated pH units
}

// MarshalJSON emits the fixed-layout record.
func (r SampleRecord) MarshalJSON() ([]byte, error) {
	b := make([]byte, 0, 48)
	b = append(b, `{"LDR_Analog":`...)
	b = strconv.AppendFloat(b, r.LDRAnalog, 'f', 2, 64)
	b = append(b, `,"LDR_Digital":`...)
	b = strconv.AppendInt(b, int64(r.LDRDigital), 10)
	b = append(b, `,"pH":`...)
	b = strconv.AppendFloat(b, r.PH, 'f', 2, 64)
	b = append(b, '}')
	return b, nil
}

// Line renders the record as a single serial output line, terminator
// included.
func (r SampleRecord) Line() string {
	b, _ := r.MarshalJSON()
	return string(b) + "\n"
}

// UnmarshalJSON accepts the wire layout plus the looser shapes seen from
// hand-rolled senders (numbers as strings, extra keys). The three contract
// keys must all be present.
func (r *SampleRecord) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}

	num := func(key string) (float64, error) {
		raw, ok := m[key]
		if !ok {
			return 0, fmt.Errorf("sample record: missing %q", key)
		}
		switch v := raw.(type) {
		case float64:
			return v, nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return 0, fmt.Errorf("sample record: bad %q: %w", key, err)
			}
			return f, nil
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				return 0, fmt.Errorf("sample record: bad %q: %w", key, err)
			}
			return f, nil
		default:
			return 0, fmt.Errorf("sample record: bad %q type %T", key, raw)
		}
	}

	ldr, err := num("LDR_Analog")
	if err != nil {
		return err
	}
	dig, err := num("LDR_Digital")
	if err != nil {
		return err
	}
	ph, err := num("pH")
	if err != nil {
		return err
	}

	d := int(math.Round(dig))
	if d != 0 && d != 1 {
		return fmt.Errorf("sample record: LDR_Digital out of domain: %v", dig)
	}

	r.LDRAnalog = ldr
	r.LDRDigital = d
	r.PH = ph
	return nil
}
