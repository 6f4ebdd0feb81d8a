package middleware

import (
	"net"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/idum-proxy/idum-proxy/config"
	"github.com/idum-proxy/idum-proxy/pathmatch"
)

// IPFilter denies requests whose remote address (supporting Ant-style
// glob entries like "192.168.1.*") matches a configured blacklist entry.
type IPFilter struct {
	enabled   bool
	blacklist []*pathmatch.Pattern
}

func NewIPFilter(cfg *config.IPFilterMiddleware) *IPFilter {
	f := &IPFilter{}
	if cfg == nil || !cfg.Enabled {
		return f
	}
	f.enabled = true
	for _, p := range cfg.Blacklist {
		f.blacklist = append(f.blacklist, pathmatch.Compile(p))
	}
	return f
}

func (f *IPFilter) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.enabled {
			clientIP := clientIPOf(r)
			if clientIP == "" {
				log.Warn("ipfilter: client IP is empty")
			} else {
				for _, p := range f.blacklist {
					if p.Match(clientIP) {
						log.WithField("client_ip", clientIP).Info("ipfilter: access denied")
						http.Error(w, "Access denied", http.StatusForbidden)
						return
					}
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

func clientIPOf(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
