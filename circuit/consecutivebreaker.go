package circuit

import "github.com/sony/gobreaker"

// consecutiveBreaker trips once a run of N consecutive failures against
// one endpoint's backend is observed, wrapping sony/gobreaker's
// TwoStepCircuitBreaker for the actual closed/open/half-open state
// machine.
type consecutiveBreaker struct {
	gb *gobreaker.TwoStepCircuitBreaker
}

func newConsecutive(s BreakerSettings) *consecutiveBreaker {
	return &consecutiveBreaker{
		gb: gobreaker.NewTwoStepCircuitBreaker(gobreaker.Settings{
			Name:        s.Endpoint,
			MaxRequests: uint32(s.HalfOpenRequests),
			Timeout:     s.Timeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return int(c.ConsecutiveFailures) >= s.Failures
			},
		}),
	}
}

func (b *consecutiveBreaker) Allow() (func(bool), bool) {
	done, err := b.gb.Allow()

	// gobreaker.Allow only errors when the breaker is currently open
	if err != nil {
		return nil, false
	}

	return done, true
}
