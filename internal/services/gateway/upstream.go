package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// Upstream wraps HTTP calls to one backend service behind a circuit
// breaker.
type Upstream struct {
	name    string
	base    string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewUpstream builds a client for a backend. Consecutive failures above
// the threshold open the breaker for openFor.
func NewUpstream(name, base string, timeout time.Duration, failures int, openFor time.Duration) *Upstream {
	if failures < 1 {
		failures = 1
	}
	if openFor <= 0 {
		openFor = 10 * time.Second
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: openFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(failures)
		},
	})
	return &Upstream{
		name:    name,
		base:    strings.TrimRight(strings.TrimSpace(base), "/"),
		client:  &http.Client{Timeout: timeout},
		breaker: cb,
	}
}

// GetJSON fetches base+path and decodes the JSON body into out.
func (u *Upstream) GetJSON(ctx context.Context, path string, out any) error {
	if u == nil || u.base == "" {
		// optional upstream not configured, leave out untouched
		return nil
	}

	_, err := u.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.base+path, nil)
		if err != nil {
			return nil, err
		}
		resp, err := u.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s request error: %w", u.name, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%s upstream status %d", u.name, resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("%s decode error: %w", u.name, err)
		}
		return nil, nil
	})
	if err != nil {
		upstreamFailures.WithLabelValues(u.name).Inc()
	}
	return err
}

// State exposes the breaker state for logging.
func (u *Upstream) State() gobreaker.State { return u.breaker.State() }
