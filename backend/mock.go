package backend

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/idum-proxy/idum-proxy/config"
	"github.com/idum-proxy/idum-proxy/pathmatch"
)

// handleMock matches the path (minus prefix) against path_templates in
// config-file order, falling back to default_response.
func handleMock(w http.ResponseWriter, req *http.Request, ep *config.Endpoint, cfg *config.MockConfig) {
	path := strings.TrimPrefix(req.URL.Path, ep.Prefix)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	tmpl := cfg.DefaultResponse
	for _, entry := range cfg.OrderedPathTemplates() {
		if pathmatch.Match(entry.Pattern, path) {
			t := entry.Template
			tmpl = &t
			break
		}
	}
	if tmpl == nil {
		writeJSONError(w, http.StatusNotFound, "no mock response configured for "+path)
		return
	}

	if tmpl.DelayMS > 0 {
		time.Sleep(time.Duration(tmpl.DelayMS) * time.Millisecond)
	}

	for k, v := range tmpl.Headers {
		w.Header().Set(k, v)
	}

	status := tmpl.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	if strings.Contains(tmpl.ContentType, "application/json") {
		w.Header().Set("Content-Type", tmpl.ContentType)
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(tmpl.Body)
		return
	}

	if tmpl.ContentType != "" {
		w.Header().Set("Content-Type", tmpl.ContentType)
	}
	w.WriteHeader(status)
	switch body := tmpl.Body.(type) {
	case nil:
	case string:
		_, _ = w.Write([]byte(body))
	default:
		_ = json.NewEncoder(w).Encode(body)
	}
}
