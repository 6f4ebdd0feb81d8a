package backend

import (
	"net"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/idum-proxy/idum-proxy/config"
	"github.com/idum-proxy/idum-proxy/routing"
)

// Registry is the gateway's terminal http.Handler: it selects the matched
// endpoint's backend and invokes the matching handler. Constructed once
// at startup and shared across requests; the *http.Transport it owns is
// the one shared per-process connection pool (http.Transport is already
// goroutine-safe, so there is no per-goroutine connector duplication).
type Registry struct {
	table   *routing.Table
	version string

	shortClient  *http.Client
	streamClient *http.Client

	// Reenter is the full gateway pipeline (every middleware plus this
	// Registry itself), set by the gateway package after construction so
	// the Virtual backend can re-enter the whole stack by reference
	// rather than just this terminal handler.
	Reenter http.HandlerFunc
}

// NewRegistry builds a Registry with a shared transport and two timeout
// profiles: short for ordinary requests, long for streaming responses.
func NewRegistry(table *routing.Table, version string) *Registry {
	transport := &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Registry{
		table:   table,
		version: version,
		shortClient: &http.Client{
			Transport: transport,
			Timeout:   60 * time.Second,
		},
		streamClient: &http.Client{
			Transport: transport,
			Timeout:   1800 * time.Second,
		},
	}
}

// ServeHTTP routes the request and dispatches it; this is the terminal
// handler the middleware pipeline wraps.
func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	ep, err := r.table.Select(req.URL.Path)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	r.Dispatch(w, req, ep)
}

// Dispatch selects the endpoint's upstream mode (proxy vs virtual) and
// invokes the corresponding backend, recovering from any panic a handler
// raises so one bad backend can't take the worker down.
func (r *Registry) Dispatch(w http.ResponseWriter, req *http.Request, ep *config.Endpoint) {
	defer func() {
		if rec := recover(); rec != nil {
			log.WithField("endpoint", ep.Prefix).WithField("panic", rec).Error("backend panic")
			writeJSONError(w, http.StatusInternalServerError, "internal error")
		}
	}()

	switch {
	case ep.Upstream.Proxy != nil && ep.Upstream.Proxy.Enabled:
		backends := ep.AllBackends()
		if len(backends) == 0 {
			writeJSONError(w, http.StatusInternalServerError, "no handler found for backend")
			return
		}
		r.dispatchBackend(w, req, ep, &backends[0])
	case ep.Upstream.Virtual != nil && ep.Upstream.Virtual.Enabled:
		r.dispatchVirtual(w, req, ep)
	default:
		writeJSONError(w, http.StatusNotFound, "not found")
	}
}

// dispatchBackend is the exhaustive switch over the backend tagged
// union.
func (r *Registry) dispatchBackend(w http.ResponseWriter, req *http.Request, ep *config.Endpoint, b *config.Backends) {
	headers := cleanedHeaders(req.Header, r.version)

	switch {
	case len(b.AllHTTPS()) > 0:
		r.handleHTTPS(w, req, ep, b.AllHTTPS()[0], headers)
	case b.Echo != nil:
		handleEcho(w, req, ep, b.Echo, headers)
	case b.Mock != nil:
		handleMock(w, req, ep, b.Mock)
	case b.Redirect != nil:
		handleRedirect(w, req, ep, b.Redirect, headers)
	case b.File != nil:
		handleFile(w, req, ep, b.File)
	case b.Command != nil:
		handleCommand(w, req, b.Command)
	case b.Scheduler != nil:
		handleSchedulerStatus(w, b.Scheduler)
	default:
		writeJSONError(w, http.StatusInternalServerError, "no handler found for backend")
	}
}

// cleanedHeaders copies the client's headers minus the ones the backend
// always overrides, and stamps the proxy's own User-Agent.
func cleanedHeaders(h http.Header, version string) map[string]string {
	out := make(map[string]string, len(h)+1)
	for k := range h {
		switch http.CanonicalHeaderKey(k) {
		case "Host", "Content-Length", "Accept-Encoding", "User-Agent":
			continue
		}
		out[k] = h.Get(k)
	}
	out["User-Agent"] = "proxy/" + version
	return out
}

func clientIPOf(req *http.Request) string {
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}
