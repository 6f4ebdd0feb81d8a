package backend

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/idum-proxy/idum-proxy/config"
)

// handleEcho answers with the observed request, round-tripping method,
// path, headers, body, query params (array-aware) and cookies.
func handleEcho(w http.ResponseWriter, req *http.Request, ep *config.Endpoint, cfg *config.EchoConfig, baseHeaders map[string]string) {
	if cfg.ResponseDelayMS > 0 {
		time.Sleep(time.Duration(cfg.ResponseDelayMS) * time.Millisecond)
	}

	headers := make(map[string]string, len(baseHeaders)+len(cfg.AddHeaders))
	for k, v := range baseHeaders {
		headers[k] = v
	}
	timestamp := strconv.FormatInt(time.Now().UTC().Unix(), 10)
	for k, v := range cfg.AddHeaders {
		headers[k] = strings.ReplaceAll(v, "${timestamp}", timestamp)
	}

	path := strings.TrimPrefix(req.URL.Path, ep.Prefix)
	if req.URL.RawQuery != "" {
		path += "?" + req.URL.RawQuery
	}

	body, _ := io.ReadAll(req.Body)

	cookies := make(map[string]string, len(req.Cookies()))
	for _, c := range req.Cookies() {
		cookies[c.Name] = c.Value
	}

	payload := map[string]interface{}{
		"method":       req.Method,
		"path":         path,
		"ip":           clientIPOf(req),
		"headers":      headers,
		"body":         string(body),
		"query_params": queryParamsWithArrays(req),
		"cookies":      cookies,
	}

	for k, v := range headers {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(payload)
}

// queryParamsWithArrays folds repeated query keys into a JSON array; a
// single occurrence stays a scalar string.
func queryParamsWithArrays(req *http.Request) map[string]interface{} {
	out := map[string]interface{}{}
	for k, values := range req.URL.Query() {
		if len(values) == 1 {
			out[k] = values[0]
		} else {
			out[k] = values
		}
	}
	return out
}
