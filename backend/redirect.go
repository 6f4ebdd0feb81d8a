package backend

import (
	"net/http"
	"strings"

	"github.com/idum-proxy/idum-proxy/config"
)

// handleRedirect responds with a (by default) 302 to backend.redirect's
// location, optionally appending the request's resource path and query
// when preserve_path is set.
func handleRedirect(w http.ResponseWriter, req *http.Request, ep *config.Endpoint, cfg *config.RedirectConfig, headers map[string]string) {
	location := cfg.Location
	if cfg.PreservePath {
		path := strings.TrimPrefix(req.URL.Path, ep.Prefix)
		if req.URL.RawQuery != "" {
			path += "?" + req.URL.RawQuery
		}
		location += path
	}

	status := cfg.StatusCode
	if status == 0 {
		status = http.StatusFound
	}

	for k, v := range headers {
		w.Header().Set(k, v)
	}
	http.Redirect(w, req, location, status)
}
