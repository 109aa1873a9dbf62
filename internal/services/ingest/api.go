package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHTTPMux exposes the service's query surface.
//
// GET /data/latest
//
//	source=auto|influx|cache  (default auto: try Influx, fall back to cache)
//	minutes=<int>             (Influx lookback window, default 1440)
func NewHTTPMux(svc *Service, influx influxdb2.Client, org, bucket string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/data/latest", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		source := strings.ToLower(q.Get("source"))
		if source == "" {
			source = "auto"
		}
		minutes := 60 * 24
		if s := q.Get("minutes"); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n > 0 {
				minutes = n
			}
		}

		var list []StationSample
		used := ""

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if (source == "influx" || source == "auto") && influx != nil {
			if out, err := queryLatest(ctx, influx, org, bucket, minutes); err == nil && len(out) > 0 {
				list = out
				used = "influx"
			}
		}
		if used == "" {
			list = svc.Latest()
			used = "cache"
		}

		type outT struct {
			StationID  string  `json:"station_id"`
			LDRAnalog  float64 `json:"ldr_analog"`
			LDRDigital int     `json:"ldr_digital"`
			PH         float64 `json:"ph"`
			Timestamp  string  `json:"timestamp"`
		}
		out := make([]outT, 0, len(list))
		for _, v := range list {
			out = append(out, outT{
				StationID:  v.StationID,
				LDRAnalog:  v.Record.LDRAnalog,
				LDRDigital: v.Record.LDRDigital,
				PH:         v.Record.PH,
				Timestamp:  v.Timestamp.UTC().Format(time.RFC3339),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Data-Source", used)
		_ = json.NewEncoder(w).Encode(out)
	})

	return mux
}

func buildLatestFlux(bucket string, minutes int) string {
	return fmt.Sprintf(`
from(bucket: %q)
  |> range(start: -%dm)
  |> filter(fn: (r) => r._measurement == %q)
  |> pivot(rowKey: ["_time"], columnKey: ["_field"], valueColumn: "_value")
  |> group(columns: ["station_id"])
  |> sort(columns: ["_time"], desc: false)
  |> last(column: "_time")
`, bucket, minutes, Measurement)
}

func queryLatest(ctx context.Context, influx influxdb2.Client, org, bucket string, minutes int) ([]StationSample, error) {
	res, err := influx.QueryAPI(org).Query(ctx, buildLatestFlux(bucket, minutes))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Close() }()

	var out []StationSample
	for res.Next() {
		rec := res.Record()
		sample := StationSample{Timestamp: rec.Time().UTC()}

		if v := rec.ValueByKey("station_id"); v != nil {
			if s, ok := v.(string); ok {
				sample.StationID = s
			}
		}
		sample.Record.LDRAnalog = floatByKey(rec.ValueByKey("ldr_voltage"))
		sample.Record.PH = floatByKey(rec.ValueByKey("ph"))
		sample.Record.LDRDigital = int(floatByKey(rec.ValueByKey("ldr_digital")))

		out = append(out, sample)
	}
	if res.Err() != nil {
		return out, res.Err()
	}
	return out, nil
}

func floatByKey(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	case int:
		return float64(x)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return f
		}
	}
	return 0
}
