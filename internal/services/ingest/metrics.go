package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "etongue_ingest_records_total",
		Help: "Station records accepted by the ingest service.",
	}, []string{"station_id", "source"})

	decodeErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "etongue_ingest_decode_errors_total",
		Help: "Inbound payloads that failed to decode as a sample record.",
	})

	duplicatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "etongue_ingest_duplicates_total",
		Help: "QoS1 redeliveries dropped by the deduper.",
	})

	lastPH = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "etongue_last_ph",
		Help: "Last pH value seen per station (uncalibrated).",
	}, []string{"station_id"})

	lastLDRVoltage = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "etongue_last_ldr_voltage",
		Help: "Last LDR voltage seen per station.",
	}, []string{"station_id"})
)
