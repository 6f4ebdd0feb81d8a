package backend

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/idum-proxy/idum-proxy/config"
)

// virtualStackKey is the context key holding the chain of virtual
// endpoint identifiers already entered on this request, for cycle
// detection.
type virtualStackKey struct{}

// virtualCycleHeader marks a re-entered response as a cycle failure so
// the outer virtual dispatch aborts instead of trying its next source.
const virtualCycleHeader = "X-Virtual-Cycle"

// dispatchVirtual implements the "first-match" composite backend: it
// tries each source endpoint in order, re-entering the full gateway
// pipeline in-process, and returns the first 200 response verbatim.
func (r *Registry) dispatchVirtual(w http.ResponseWriter, req *http.Request, ep *config.Endpoint) {
	v := ep.Upstream.Virtual
	if v.Strategy != "" && v.Strategy != "first-match" {
		writeJSONError(w, http.StatusNotImplemented, fmt.Sprintf("unsupported virtual strategy %q", v.Strategy))
		return
	}

	selfKey := ep.Identifier
	if selfKey == "" {
		selfKey = ep.Prefix
	}

	stack, _ := req.Context().Value(virtualStackKey{}).([]string)
	for _, seen := range stack {
		if seen == selfKey {
			w.Header().Set(virtualCycleHeader, selfKey)
			writeJSONError(w, http.StatusInternalServerError, "virtual backend cycle detected for "+selfKey)
			return
		}
	}
	ctx := context.WithValue(req.Context(), virtualStackKey{}, append(append([]string(nil), stack...), selfKey))

	byIdentifier := make(map[string]*config.Endpoint)
	for _, e := range r.table.Endpoints() {
		if e.Identifier != "" {
			byIdentifier[e.Identifier] = e
		}
	}

	sources := v.Sources
	if ep.Failover != nil && ep.Failover.MaxFallbacks > 0 && ep.Failover.MaxFallbacks < len(sources) {
		sources = sources[:ep.Failover.MaxFallbacks]
	}

	resourcePath := strings.TrimPrefix(req.URL.Path, ep.Prefix)

	for _, source := range sources {
		sourceEndpoint, ok := byIdentifier[source]
		if !ok {
			log.WithField("source", source).Warn("virtual: unknown source identifier")
			continue
		}

		targetPath := sourceEndpoint.Prefix + resourcePath
		rec, ok := r.reenter(ctx, req, targetPath)
		if !ok {
			continue
		}
		if cycled := rec.header.Get(virtualCycleHeader); cycled != "" {
			w.Header().Set(virtualCycleHeader, cycled)
			writeJSONError(w, http.StatusInternalServerError, "virtual backend cycle detected for "+cycled)
			return
		}
		if rec.status != http.StatusOK {
			continue
		}

		contentType := rec.header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/text"
		}
		for k, vals := range rec.header {
			if http.CanonicalHeaderKey(k) == "Content-Length" {
				continue
			}
			w.Header()[k] = vals
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(rec.status)
		_, _ = w.Write(rec.body.Bytes())
		return
	}

	writeJSONError(w, http.StatusNotFound, "not found")
}

// capturedResponse records a re-entered request's response in memory
// instead of writing it to the client connection.
type capturedResponse struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newCapturedResponse() *capturedResponse {
	return &capturedResponse{header: make(http.Header), status: http.StatusOK}
}

func (c *capturedResponse) Header() http.Header { return c.header }

func (c *capturedResponse) WriteHeader(status int) { c.status = status }

func (c *capturedResponse) Write(p []byte) (int, error) { return c.body.Write(p) }

// reenter re-runs the request, rewritten to targetPath, through the whole
// gateway pipeline (Registry.Reenter, injected by the gateway package),
// capturing the response instead of writing it directly to the client.
func (r *Registry) reenter(ctx context.Context, orig *http.Request, targetPath string) (*capturedResponse, bool) {
	if r.Reenter == nil {
		return nil, false
	}

	target := targetPath
	if orig.URL.RawQuery != "" {
		target += "?" + orig.URL.RawQuery
	}

	newReq, err := http.NewRequestWithContext(ctx, orig.Method, target, nil)
	if err != nil {
		return nil, false
	}
	newReq.Header = orig.Header.Clone()
	newReq.RemoteAddr = orig.RemoteAddr

	rec := newCapturedResponse()
	r.Reenter(rec, newReq)
	return rec, true
}
