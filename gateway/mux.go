package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/idum-proxy/idum-proxy/config"
)

const (
	defaultHealthCheckPath    = "/health"
	defaultMetricsPath        = "/metrics"
	defaultBackendsStatusPath = "/backends-status"
)

// Mux mounts the status/monitoring endpoints and the websocket stub
// outside the wildcard catch-all, then falls through to the assembled
// middleware chain for everything else.
func (g *Gateway) Mux() http.Handler {
	mux := http.NewServeMux()

	mon := firstMonitoring(g.Config)
	healthPath := defaultHealthCheckPath
	metricsPath := defaultMetricsPath
	statusPath := defaultBackendsStatusPath
	prometheusEnabled := true
	if mon != nil {
		if mon.HealthCheckPath != "" {
			healthPath = mon.HealthCheckPath
		}
		if mon.MetricsPath != "" {
			metricsPath = mon.MetricsPath
		}
		if mon.BackendsStatusPath != "" {
			statusPath = mon.BackendsStatusPath
		}
		prometheusEnabled = mon.Prometheus.Enabled
	}

	mux.HandleFunc(healthPath, handleHealth)
	if prometheusEnabled {
		mux.Handle(metricsPath, promhttp.HandlerFor(g.Metrics.Registry, promhttp.HandlerOpts{}))
	}
	mux.HandleFunc(statusPath, g.handleBackendsStatus)
	mux.HandleFunc("/ws/", handleWebSocket)

	mux.Handle("/", g.Handler)
	return mux
}

func firstMonitoring(cfg *config.Config) *config.Monitoring {
	for i := range cfg.Endpoints {
		if cfg.Endpoints[i].Monitoring != nil {
			return cfg.Endpoints[i].Monitoring
		}
	}
	return nil
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

type backendStatus struct {
	Identifier   string `json:"identifier"`
	Prefix       string `json:"prefix"`
	UpstreamKind string `json:"upstream_kind"`
}

// handleBackendsStatus is read-only introspection: it reports what each
// endpoint would dispatch to, without making any network call to the
// backend itself, alongside the cache engine's counters.
func (g *Gateway) handleBackendsStatus(w http.ResponseWriter, r *http.Request) {
	backends := make([]backendStatus, 0, len(g.Table.Endpoints()))
	for _, ep := range g.Table.Endpoints() {
		backends = append(backends, backendStatus{
			Identifier:   ep.Identifier,
			Prefix:       ep.Prefix,
			UpstreamKind: upstreamKind(ep),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"backends": backends,
		"cache":    g.Cache.Stats(),
	})
}

func upstreamKind(ep *config.Endpoint) string {
	switch {
	case ep.Upstream.Virtual != nil && ep.Upstream.Virtual.Enabled:
		return "virtual"
	case ep.Upstream.WebSocket != nil && ep.Upstream.WebSocket.Enabled:
		return "websocket"
	case ep.Upstream.GraphQL != nil && ep.Upstream.GraphQL.Enabled:
		return "graphql"
	case ep.Upstream.ServiceMesh != nil && ep.Upstream.ServiceMesh.Enabled:
		return "service_mesh"
	case ep.Upstream.Function != nil && ep.Upstream.Function.Enabled:
		return "function"
	case ep.Upstream.Proxy != nil && ep.Upstream.Proxy.Enabled:
		for _, b := range ep.AllBackends() {
			switch {
			case len(b.AllHTTPS()) > 0:
				return "https"
			case b.Echo != nil:
				return "echo"
			case b.Mock != nil:
				return "mock"
			case b.Redirect != nil:
				return "redirect"
			case b.File != nil:
				return "file"
			case b.Command != nil:
				return "command"
			case b.Scheduler != nil:
				return "scheduler"
			}
		}
	}
	return "unknown"
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWebSocket is an accept-then-close stub: it completes the
// handshake so clients relying on the endpoint existing don't fail
// outright, then closes without relaying any frames.
func handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Debug("websocket: upgrade failed")
		return
	}
	_ = conn.Close()
}
