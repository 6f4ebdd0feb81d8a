package middleware

import (
	"net/http"
	"strings"

	"github.com/idum-proxy/idum-proxy/config"
	"github.com/idum-proxy/idum-proxy/pathmatch"
)

// ResourceFilter short-circuits requests to configured skip paths with a
// bare 204, avoiding the cost of routing/dispatch for resources the
// gateway doesn't need to serve (favicon probes, well-known health pings
// handled elsewhere, etc).
type ResourceFilter struct {
	enabled bool
	skip    []*pathmatch.Pattern
}

func NewResourceFilter(cfg *config.ResourceFilterMiddleware) *ResourceFilter {
	f := &ResourceFilter{}
	if cfg == nil || !cfg.Enabled {
		return f
	}
	f.enabled = true
	for _, p := range cfg.SkipPaths {
		f.skip = append(f.skip, pathmatch.Compile(p))
	}
	return f
}

func (f *ResourceFilter) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.enabled {
			path := strings.TrimPrefix(r.URL.Path, "/")
			for _, p := range f.skip {
				if p.Match(path) {
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}
