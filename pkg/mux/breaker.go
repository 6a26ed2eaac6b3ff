package mux

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/Saoudyahya/tournament-stream-relay/internal/metrics"
)

// newBreaker opens after a failure rate of 60% or more over at least 10 calls
// in a one minute window and probes again after 30 seconds. 4xx responses
// count as successes and caller cancellations are not counted at all.
func newBreaker(name string, m *metrics.ProviderMetrics, logger zerolog.Logger) *gobreaker.CircuitBreaker[int] {
	m.SetBreakerState(name, stateValue(gobreaker.StateClosed))

	return gobreaker.NewCircuitBreaker[int](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
			m.SetBreakerState(name, stateValue(to))
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var apiErr *APIError
			return errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError
		},
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled)
		},
	})
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
