package middleware

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	gocircuit "github.com/idum-proxy/idum-proxy/circuit"
	"github.com/idum-proxy/idum-proxy/config"
	"github.com/idum-proxy/idum-proxy/routing"
)

// CircuitBreaker wraps the terminal router+dispatcher, breaking per
// matched endpoint once consecutive backend failures (a >=500 response or
// a request error) hit the configured threshold.
//
// The circuit.Registry is constructed by the caller and injected
// explicitly (see circuit/doc.go).
type CircuitBreaker struct {
	enabled  bool
	registry *gocircuit.Registry
	table    *routing.Table

	// OnOpen, when set, is called with the endpoint key each time an
	// open breaker rejects a request (metrics hook).
	OnOpen func(endpoint string)
}

func NewCircuitBreaker(cfg *config.CircuitBreakerMiddleware, table *routing.Table) *CircuitBreaker {
	cb := &CircuitBreaker{table: table}
	if cfg == nil || !cfg.Enabled {
		return cb
	}
	cb.enabled = true

	threshold := int(cfg.Threshold)
	if threshold <= 0 {
		threshold = 5
	}
	resetTimeout := cfg.ResetTimeoutSeconds
	if resetTimeout <= 0 {
		resetTimeout = 60
	}

	cb.registry = gocircuit.NewRegistry(gocircuit.Options{
		Defaults: gocircuit.BreakerSettings{
			Type:             gocircuit.ConsecutiveFailures,
			Failures:         threshold,
			Timeout:          time.Duration(resetTimeout) * time.Second,
			HalfOpenRequests: 1,
		},
	})
	return cb
}

func (cb *CircuitBreaker) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !cb.enabled {
			next.ServeHTTP(w, r)
			return
		}

		ep, err := cb.table.Select(r.URL.Path)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		key := ep.Prefix
		if key == "" {
			key = ep.Match
		}

		breaker := cb.registry.Get(gocircuit.BreakerSettings{Endpoint: key})
		if breaker == nil {
			next.ServeHTTP(w, r)
			return
		}

		done, ok := breaker.Allow()
		if !ok {
			log.WithField("endpoint", key).Warn("circuit breaker open, rejecting request")
			if cb.OnOpen != nil {
				cb.OnOpen(key)
			}
			http.Error(w, "Service temporarily unavailable due to high load", http.StatusServiceUnavailable)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		done(rec.status < http.StatusInternalServerError)
	})
}

// statusRecorder captures the response status without buffering the body,
// so the circuit breaker's success/failure bookkeeping doesn't add a
// buffering pass on every request the way content-length/compression do.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.wroteHeader = true
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(p)
}
