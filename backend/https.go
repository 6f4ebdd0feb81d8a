package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/idum-proxy/idum-proxy/config"
)

// handleHTTPS rewrites the target URL, enforces the method gate, forwards
// the body and streams or buffers the response.
func (r *Registry) handleHTTPS(w http.ResponseWriter, req *http.Request, ep *config.Endpoint, b config.HTTPSBackend, headers map[string]string) {
	if len(b.Methods) > 0 && !methodAllowed(req.Method, b.Methods) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	target := forgeTargetURL(b.URL, req.URL.Path, ep.Prefix, req.URL.RawQuery)

	for k, v := range b.Headers {
		headers[k] = v
	}
	if provider := AuthFromConfig(ep.Auth); provider != nil {
		if extra, err := provider.GetHeaders(req.Context()); err == nil {
			for k, v := range extra {
				headers[k] = v
			}
		}
	}

	var body []byte
	if req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch {
		body, _ = io.ReadAll(req.Body)
	}
	outBody, outContentType := prepareOutboundBody(req.Header.Get("Content-Type"), body)

	if acceptsStream(req.Header.Get("Accept")) {
		r.streamHTTPS(w, req.Context(), req.Method, target, headers, outBody, outContentType)
		return
	}
	r.forwardHTTPS(w, req.Context(), req.Method, target, headers, outBody, outContentType)
}

func methodAllowed(method string, allowed []string) bool {
	for _, m := range allowed {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

// forgeTargetURL builds the upstream URL: a trailing "$" pins the URL
// verbatim (request path/query ignored); otherwise the request path with
// the endpoint prefix stripped is appended, with surrounding slashes
// collapsed.
func forgeTargetURL(rawURL, path, prefix, query string) string {
	var target string
	if strings.HasSuffix(rawURL, "$") {
		target = strings.TrimSuffix(rawURL, "$")
	} else {
		rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
		target = rawURL + "/" + rest
	}
	target = strings.Trim(target, "/")
	if query != "" {
		target += "?" + query
	}
	return target
}

// acceptsStream reports whether the client's Accept header names a
// streaming content type (any value containing "-stream").
func acceptsStream(accept string) bool {
	return strings.Contains(strings.ToLower(accept), "-stream")
}

// prepareOutboundBody normalizes the outbound body: one whose request
// Content-Type claims JSON is parsed and re-encoded; if parsing fails
// despite the claimed content type, the raw bytes are sent as-is.
func prepareOutboundBody(contentType string, body []byte) ([]byte, string) {
	if len(body) == 0 {
		return nil, contentType
	}
	if strings.Contains(strings.ToLower(contentType), "application/json") {
		var v interface{}
		if err := json.Unmarshal(body, &v); err == nil {
			encoded, err := json.Marshal(v)
			if err == nil {
				return encoded, "application/json"
			}
		}
	}
	return body, contentType
}

func applyOutboundHeaders(req *http.Request, headers map[string]string, contentType string) {
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
}

// forwardHTTPS uses the short-timeout pooled client and routes the
// response by upstream Content-Type: JSON is decoded and re-encoded,
// text/* forwarded as text, application/* as bytes, and a missing
// content type answers 204.
func (r *Registry) forwardHTTPS(w http.ResponseWriter, ctx context.Context, method, target string, headers map[string]string, body []byte, contentType string) {
	outReq, err := http.NewRequestWithContext(ctx, method, target, bodyReader(body))
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	applyOutboundHeaders(outReq, headers, contentType)

	resp, err := r.shortClient.Do(outReq)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	ct := resp.Header.Get("Content-Type")

	if ct == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	for k, v := range resp.Header {
		if http.CanonicalHeaderKey(k) == "Content-Length" {
			continue
		}
		w.Header()[k] = v
	}

	switch {
	case strings.Contains(ct, "application/json"):
		var v interface{}
		if err := json.Unmarshal(respBody, &v); err == nil {
			if encoded, err := json.Marshal(v); err == nil {
				respBody = encoded
			}
		}
		w.Header().Set("Content-Type", "application/json")
	case strings.HasPrefix(ct, "text/"), strings.HasPrefix(ct, "application/"):
		w.Header().Set("Content-Type", ct)
	default:
		w.Header().Set("Content-Type", ct)
	}

	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(respBody)
}

// streamHTTPS uses the long-timeout pooled client and relays the upstream
// body in 8KiB chunks.
func (r *Registry) streamHTTPS(w http.ResponseWriter, ctx context.Context, method, target string, headers map[string]string, body []byte, contentType string) {
	outReq, err := http.NewRequestWithContext(ctx, method, target, bodyReader(body))
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	applyOutboundHeaders(outReq, headers, contentType)

	resp, err := r.streamClient.Do(outReq)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer resp.Body.Close()

	w.Header().Set("Content-Type", "text/octet-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(resp.StatusCode)

	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 8192)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if readErr != nil {
			return
		}
	}
}

func bodyReader(body []byte) io.Reader {
	if len(body) == 0 {
		return nil
	}
	return bytes.NewReader(body)
}
