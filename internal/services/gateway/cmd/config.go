package main

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port          string
	IngestURL     string
	ClassifierURL string
	TimeoutMs     int

	BreakerFailures int
	BreakerOpenMs   int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func loadConfig() Config {
	return Config{
		Port:          getenv("PORT", "5009"),
		IngestURL:     getenv("INGEST_URL", "http://localhost:8080"),
		ClassifierURL: getenv("CLASSIFIER_URL", "http://localhost:8081"),
		TimeoutMs:     getenvInt("TIMEOUT_MS", 3000),

		BreakerFailures: getenvInt("CB_FAILS", 3),
		BreakerOpenMs:   getenvInt("CB_OPEN_MS", 10000),
	}
}

func (c Config) timeout() time.Duration { return time.Duration(c.TimeoutMs) * time.Millisecond }

func (c Config) breakerOpenFor() time.Duration {
	return time.Duration(c.BreakerOpenMs) * time.Millisecond
}
