package main

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/etongue-project/etongue/internal/services/gateway"
)

func main() {
	cfg := loadConfig()

	gw := gateway.NewGateway(gateway.Config{
		IngestBaseURL:     cfg.IngestURL,
		ClassifierBaseURL: cfg.ClassifierURL,
		HTTPTimeout:       cfg.timeout(),
		BreakerFailures:   cfg.BreakerFailures,
		BreakerOpenFor:    cfg.breakerOpenFor(),
	})

	http.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/dashboard/data", gw.HandleDashboard)

	addr := ":" + cfg.Port
	log.Printf("gateway listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}
