package circuit

import (
	"fmt"
	"time"
)

// BreakerType selects how a Breaker decides to trip: by counting
// consecutive failures against one endpoint's backend, or by sampling a
// failure rate over a sliding window of recent outcomes.
type BreakerType int

const (
	BreakerNone BreakerType = iota
	ConsecutiveFailures
	FailureRate
)

func (t BreakerType) String() string {
	switch t {
	case ConsecutiveFailures:
		return "consecutive"
	case FailureRate:
		return "rate"
	default:
		return "disabled"
	}
}

// BreakerSettings configures one circuit breaker. Endpoint identifies which
// routing-table endpoint (by prefix, in practice) the breaker guards; the
// zero value of every other field means "inherit from the registry-wide
// defaults", see mergeSettings.
type BreakerSettings struct {
	Type             BreakerType
	Endpoint         string
	Window, Failures int
	Timeout          time.Duration
	HalfOpenRequests int
	Disabled         bool
	IdleTTL          time.Duration
}

// String renders settings in the same key=value,key=value shape the
// gateway's startup log uses when it reports the effective circuit
// breaker configuration for an endpoint.
func (s BreakerSettings) String() string {
	return fmt.Sprintf(
		"type=%s,host=%s,window=%d,failures=%d,timeout=%s,half-open-requests=%d,idle-ttl=%s",
		s.Type, s.Endpoint, s.Window, s.Failures, s.Timeout, s.HalfOpenRequests, s.IdleTTL,
	)
}

type breakerImplementation interface {
	Allow() (func(bool), bool)
}

// voidBreaker never trips: it backs endpoints with circuit breaking
// disabled (or unconfigured), so the registry can hand back a real
// Breaker uniformly instead of making callers branch on nil.
type voidBreaker struct{}

// Breaker is one endpoint's circuit breaker: either a consecutive-failure
// or a failure-rate state machine underneath, wrapping sony/gobreaker.
// Breakers also double as nodes in the registry's idle-eviction list (see
// list.go), hence the prev/next links living here rather than in a
// separate wrapper type.
type Breaker struct {
	settings   BreakerSettings
	ts         time.Time
	prev, next *Breaker
	impl       breakerImplementation
}

// mergeSettings fills any zero-valued field of the endpoint-specific
// settings `to` from the registry-wide defaults `from`, so a JSON config
// block only needs to override what it actually cares about (typically
// just threshold and reset_timeout_seconds; window/half-open-requests/
// idle-ttl commonly come from the process-wide default).
func (to BreakerSettings) mergeSettings(from BreakerSettings) BreakerSettings {
	if to.Type == BreakerNone {
		to.Type = from.Type

		if from.Type == ConsecutiveFailures {
			to.Failures = from.Failures
		}

		if from.Type == FailureRate {
			to.Window = from.Window
			to.Failures = from.Failures
		}
	}

	if to.Timeout == 0 {
		to.Timeout = from.Timeout
	}

	if to.HalfOpenRequests == 0 {
		to.HalfOpenRequests = from.HalfOpenRequests
	}

	if to.IdleTTL == 0 {
		to.IdleTTL = from.IdleTTL
	}

	return to
}

func (b voidBreaker) Allow() (func(bool), bool) {
	return func(bool) {}, true
}

func newBreaker(s BreakerSettings) *Breaker {
	var impl breakerImplementation
	switch s.Type {
	case ConsecutiveFailures:
		impl = newConsecutive(s)
	case FailureRate:
		impl = newRate(s)
	default:
		impl = voidBreaker{}
	}

	return &Breaker{
		settings: s,
		impl:     impl,
	}
}

// Allow asks the breaker whether the next request to this endpoint's
// backend may proceed. When it returns false, the middleware short-circuits
// with a 503 without ever calling the backend dispatcher.
func (b *Breaker) Allow() (func(bool), bool) {
	return b.impl.Allow()
}

func (b *Breaker) idle(now time.Time) bool {
	return now.Sub(b.ts) > b.settings.IdleTTL
}
