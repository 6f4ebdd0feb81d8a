package middleware

import (
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/idum-proxy/idum-proxy/config"
	"github.com/idum-proxy/idum-proxy/pathmatch"
)

type botPattern struct {
	name    string
	pattern *pathmatch.Pattern
}

// BotFilter allows or denies requests by matching their User-Agent header
// against whitelist/blacklist Ant-glob patterns, whitelist taking
// precedence.
type BotFilter struct {
	enabled   bool
	whitelist []botPattern
	blacklist []botPattern
}

// uaSegment hides the "/" in a User-Agent (or pattern) so the whole string
// is matched as one segment: "*BadScraper*" then matches "BadScraper/1.0".
func uaSegment(s string) string {
	return strings.ReplaceAll(s, "/", "\x00")
}

func NewBotFilter(cfg *config.BotFilterMiddleware) *BotFilter {
	f := &BotFilter{}
	if cfg == nil || !cfg.Enabled {
		return f
	}
	f.enabled = true
	for _, b := range cfg.Whitelist {
		f.whitelist = append(f.whitelist, botPattern{name: b.Name, pattern: pathmatch.Compile(uaSegment(b.UserAgent))})
	}
	for _, b := range cfg.Blacklist {
		f.blacklist = append(f.blacklist, botPattern{name: b.Name, pattern: pathmatch.Compile(uaSegment(b.UserAgent))})
	}
	return f
}

func (f *BotFilter) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.enabled {
			userAgent := uaSegment(r.Header.Get("User-Agent"))
			if userAgent != "" {
				for _, b := range f.whitelist {
					if b.pattern.Match(userAgent) {
						log.WithField("bot", b.name).Debug("botfilter: whitelisted")
						next.ServeHTTP(w, r)
						return
					}
				}
				for _, b := range f.blacklist {
					if b.pattern.Match(userAgent) {
						log.WithField("bot", b.name).Debug("botfilter: blocked")
						http.Error(w, "Access denied", http.StatusForbidden)
						return
					}
				}
			} else {
				log.Debug("botfilter: user-agent is empty")
			}
		}
		next.ServeHTTP(w, r)
	})
}
