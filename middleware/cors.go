package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/idum-proxy/idum-proxy/routing"
)

// CORS applies the matched endpoint's CORS config: short-circuits
// preflight requests with a 204 and the configured Access-Control-Allow-*
// headers, and adds Access-Control-Allow-Origin to actual responses.
// The allowed origin is echoed back verbatim, or "*" when the allowed
// list itself contains "*".
type CORS struct {
	table *routing.Table
}

func NewCORS(table *routing.Table) *CORS {
	return &CORS{table: table}
}

func (c *CORS) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ep, err := c.table.Select(r.URL.Path)
		if err != nil || ep.CORS == nil || !ep.CORS.Enabled {
			next.ServeHTTP(w, r)
			return
		}
		cors := ep.CORS

		origin := r.Header.Get("Origin")
		allowedOrigin := allowedOrigin(cors.AllowedOrigins, origin)

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if allowedOrigin != "" {
				w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			}
			w.Header().Set("Access-Control-Allow-Methods", strings.Join(cors.AllowedMethods, ", "))
			w.Header().Set("Access-Control-Allow-Headers", strings.Join(cors.AllowedHeaders, ", "))
			if cors.MaxAgeSeconds > 0 {
				w.Header().Set("Access-Control-Max-Age", strconv.Itoa(cors.MaxAgeSeconds))
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if allowedOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		}
		next.ServeHTTP(w, r)
	})
}

func allowedOrigin(allowed []string, origin string) string {
	for _, o := range allowed {
		if o == "*" {
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, o := range allowed {
		if o == origin {
			return origin
		}
	}
	return ""
}
