// Package routing selects which configured endpoint handles an incoming
// request path: the first endpoint (in weight-descending order, as Load
// already sorted them) whose match pattern accepts the path.
//
// The path is normalized to end with "/" before matching, and the first
// match wins. There is no longest-prefix or most-specific-match
// tie-breaking, so endpoint order (by weight) is the only thing that
// decides between overlapping patterns.
package routing

import (
	"fmt"
	"strings"

	"github.com/idum-proxy/idum-proxy/config"
	"github.com/idum-proxy/idum-proxy/pathmatch"
)

// ErrNotRouted is returned when no configured endpoint's match pattern
// accepts the request path.
type ErrNotRouted struct {
	Path string
}

func (e *ErrNotRouted) Error() string {
	return fmt.Sprintf("no endpoint found for %s", e.Path)
}

// compiledEndpoint pairs a config.Endpoint with its pre-compiled match
// pattern so Select never re-parses the pattern per request.
type compiledEndpoint struct {
	endpoint *config.Endpoint
	pattern  *pathmatch.Pattern
}

// Table is a compiled, ready-to-query routing table built from a Config's
// endpoints, in the order they appear (callers pass an already
// weight-sorted Config, as config.Load produces).
type Table struct {
	entries []compiledEndpoint
}

// NewTable compiles every endpoint's match pattern once.
func NewTable(cfg *config.Config) *Table {
	t := &Table{entries: make([]compiledEndpoint, len(cfg.Endpoints))}
	for i := range cfg.Endpoints {
		ep := &cfg.Endpoints[i]
		pattern := ep.Match
		if pattern == "" {
			pattern = ep.Prefix
		}
		t.entries[i] = compiledEndpoint{
			endpoint: ep,
			pattern:  pathmatch.Compile(pattern),
		}
	}
	return t
}

// Select returns the first endpoint whose match pattern accepts path.
func (t *Table) Select(path string) (*config.Endpoint, error) {
	normalized := path
	if !strings.HasSuffix(normalized, "/") {
		normalized += "/"
	}

	for _, e := range t.entries {
		if e.pattern.Match(normalized) {
			return e.endpoint, nil
		}
	}
	return nil, &ErrNotRouted{Path: path}
}

// Endpoints returns every compiled endpoint in table order, for the
// read-only status/introspection surface.
func (t *Table) Endpoints() []*config.Endpoint {
	out := make([]*config.Endpoint, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.endpoint
	}
	return out
}
