package circuit

import "time"

// Options configures a Registry: process-wide defaults, plus an optional
// per-endpoint override list for the (currently unused by the gateway,
// but supported) case where one endpoint needs different thresholds than
// the rest.
type Options struct {
	Defaults         BreakerSettings
	EndpointSettings []BreakerSettings
	IdleTTL          time.Duration
}

// Registry owns every endpoint's Breaker, keyed by endpoint rather than
// by a config-file settings block; this gateway's circuit breaking
// config is a single process-wide middlewares.performance.circuit_breaking
// block (see package config) applied per matched endpoint, not a
// per-route override list. It evicts breakers that have gone idle (no
// traffic for IdleTTL) so state doesn't accumulate forever for endpoints
// that stop seeing requests.
type Registry struct {
	defaults         BreakerSettings
	endpointSettings map[string]BreakerSettings
	idleTTL          time.Duration
	lookup           map[BreakerSettings]*Breaker
	access           *list
	sync             chan *Registry
}

// NewRegistry builds a Registry from the given Options, pre-applying the
// process-wide defaults to every per-endpoint override so Get never has
// to merge twice for the same endpoint.
func NewRegistry(o Options) *Registry {
	perEndpoint := make(map[string]BreakerSettings)
	for _, s := range o.EndpointSettings {
		perEndpoint[s.Endpoint] = applySettings(s, o.Defaults)
	}

	if o.IdleTTL <= 0 {
		o.IdleTTL = time.Hour
	}

	r := &Registry{
		defaults:         o.Defaults,
		endpointSettings: perEndpoint,
		idleTTL:          o.IdleTTL,
		lookup:           make(map[BreakerSettings]*Breaker),
		access:           &list{},
		sync:             make(chan *Registry, 1),
	}

	r.sync <- r
	return r
}

func (r *Registry) synced(f func()) {
	r = <-r.sync
	f()
	r.sync <- r
}

func (r *Registry) applySettings(s BreakerSettings) BreakerSettings {
	config, ok := r.endpointSettings[s.Endpoint]
	if !ok {
		config = r.defaults
	}

	return applySettings(s, config)
}

// applySettings fills any field left at its zero value in `to` from `from`,
// the free-function form used both when pre-computing the per-endpoint
// settings table in NewRegistry and from the Registry.applySettings method
// below.
func applySettings(to, from BreakerSettings) BreakerSettings {
	return to.mergeSettings(from)
}

func (r *Registry) dropLookup(b *Breaker) {
	for b != nil {
		delete(r.lookup, b.settings)
		b = b.next
	}
}

func (r *Registry) Get(s BreakerSettings) *Breaker {
	// require an endpoint key, because we don't want to use shared global breakers
	if s.Disabled || s.Endpoint == "" {
		return nil
	}

	// apply endpoint-specific and global defaults when not set in the request
	s = r.applySettings(s)
	if s.Type == BreakerNone {
		return nil
	}

	var b *Breaker
	r.synced(func() {
		now := time.Now()

		// a breaker is idle past its own IdleTTL, or the registry-wide
		// one when its settings leave IdleTTL unset
		idle := func(b *Breaker) bool {
			ttl := b.settings.IdleTTL
			if ttl <= 0 {
				ttl = r.idleTTL
			}
			return now.Sub(b.ts) > ttl
		}

		var ok bool
		b, ok = r.lookup[s]
		if !ok || idle(b) {
			// if the breaker doesn't exist with the requested settings or
			// has gone idle, check if there is any to evict, evict if yes,
			// and create a new one
			r.access.remove(b, b)

			drop, _ := r.access.dropHeadIf(idle)

			r.dropLookup(drop)
			b = newBreaker(s)
			r.lookup[s] = b
		}

		// append/move the breaker to the last position of the access history
		b.ts = now
		r.access.appendLast(b)
	})

	return b
}
