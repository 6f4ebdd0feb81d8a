package circuit

import (
	"sync"

	"github.com/sony/gobreaker"
)

// rateBreaker trips once the failure rate within a sliding window of the
// last Window outcomes reaches Failures, independent of how many requests
// that took. The window bookkeeping (binarySampler) is layered outside
// gobreaker's own counters, since gobreaker only exposes consecutive and
// cumulative counts, not a bounded sliding window.
type rateBreaker struct {
	settings BreakerSettings
	mx       *sync.Mutex
	sampler  *binarySampler
	gb       *gobreaker.TwoStepCircuitBreaker
}

func newRate(s BreakerSettings) *rateBreaker {
	b := &rateBreaker{
		settings: s,
		mx:       &sync.Mutex{},
	}

	b.gb = gobreaker.NewTwoStepCircuitBreaker(gobreaker.Settings{
		Name:        s.Endpoint,
		MaxRequests: uint32(s.HalfOpenRequests),
		Timeout:     s.Timeout,
		ReadyToTrip: func(gobreaker.Counts) bool { return b.readyToTrip() },
	})

	return b
}

func (b *rateBreaker) readyToTrip() bool {
	b.mx.Lock()
	defer b.mx.Unlock()

	if b.sampler == nil {
		return false
	}

	ready := b.sampler.count >= b.settings.Failures
	if ready {
		b.sampler = nil
	}

	return ready
}

// countRate records one closed- or half-open-state outcome in the sliding
// window, lazily allocating the sampler on first use.
func (b *rateBreaker) countRate(success bool) {
	b.mx.Lock()
	defer b.mx.Unlock()

	if b.sampler == nil {
		b.sampler = newBinarySampler(b.settings.Window)
	}

	b.sampler.tick(!success)
}

func (b *rateBreaker) Allow() (func(bool), bool) {
	done, err := b.gb.Allow()

	// gobreaker.Allow only errors when the breaker is currently open
	if err != nil {
		return nil, false
	}

	return func(success bool) {
		b.countRate(success)
		done(success)
	}, true
}
