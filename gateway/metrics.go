package gateway

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/idum-proxy/idum-proxy/cache"
)

// Metrics owns the gateway's Prometheus instruments: request counts and
// latencies, cache hit/miss counters backed by the cache engine's own
// bookkeeping, and circuit-breaker rejection counts. Each Gateway carries
// its own Registry so constructing several gateways in one process never
// double-registers a collector.
type Metrics struct {
	Registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	breakerOpen     *prometheus.CounterVec
}

func NewMetrics(engine *cache.Engine) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		Registry: reg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "idum_proxy_requests_total",
			Help: "Requests handled, by method and response status.",
		}, []string{"method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "idum_proxy_request_duration_seconds",
			Help:    "Request handling latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		breakerOpen: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "idum_proxy_circuit_open_total",
			Help: "Requests rejected by an open circuit breaker, by endpoint.",
		}, []string{"endpoint"}),
	}

	factory.NewCounterFunc(prometheus.CounterOpts{
		Name: "idum_proxy_cache_hits_total",
		Help: "Cache lookups served from either tier.",
	}, func() float64 { return float64(engine.HitCount()) })
	factory.NewCounterFunc(prometheus.CounterOpts{
		Name: "idum_proxy_cache_memory_hits_total",
		Help: "Cache lookups served from the memory tier.",
	}, func() float64 { return float64(engine.MemoryHitCount()) })
	factory.NewCounterFunc(prometheus.CounterOpts{
		Name: "idum_proxy_cache_misses_total",
		Help: "Cache lookups that fell through to the backend.",
	}, func() float64 { return float64(engine.MissCount()) })
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "idum_proxy_cache_memory_entries",
		Help: "Entries currently held in the memory tier.",
	}, func() float64 { return float64(engine.MemoryEntries()) })

	return m
}

// BreakerOpen records one request rejected by an open circuit breaker.
func (m *Metrics) BreakerOpen(endpoint string) {
	m.breakerOpen.WithLabelValues(endpoint).Inc()
}

// Wrap observes every request's method, final status and latency.
func (m *Metrics) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &metricsRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		m.requestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		m.requestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}

// metricsRecorder captures the status code without buffering the body.
type metricsRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *metricsRecorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.wroteHeader = true
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *metricsRecorder) Write(p []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(p)
}

func (r *metricsRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
