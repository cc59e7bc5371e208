package capture

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/ugc-dashboard/reporting/internal/metrics"
)

const breakerName = "capture-api"

// Capturer is implemented by Client
type Capturer interface {
	Capture(ctx context.Context, target string) ([]byte, error)
}

// BreakerClient wraps a Capturer with a circuit breaker.
// Unknown targets do not count as failures.
type BreakerClient struct {
	next   Capturer
	cb     *gobreaker.CircuitBreaker[[]byte]
	logger zerolog.Logger
}

// BreakerSettings tunes the breaker. Zero values take defaults.
type BreakerSettings struct {
	MinRequests  uint32
	FailureRatio float64
	Interval     time.Duration
	Timeout      time.Duration
}

func (s BreakerSettings) withDefaults() BreakerSettings {
	if s.MinRequests == 0 {
		s.MinRequests = 5
	}
	if s.FailureRatio == 0 {
		s.FailureRatio = 0.6
	}
	if s.Interval == 0 {
		s.Interval = time.Minute
	}
	if s.Timeout == 0 {
		s.Timeout = 30 * time.Second
	}
	return s
}

// NewBreakerClient creates a capture client guarded by a circuit breaker
func NewBreakerClient(next Capturer, settings BreakerSettings, logger zerolog.Logger) *BreakerClient {
	s := settings.withDefaults()
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	bc := &BreakerClient{next: next, logger: logger}
	bc.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrTargetNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return bc
}

// Capture runs the wrapped call through the breaker
func (bc *BreakerClient) Capture(ctx context.Context, target string) ([]byte, error) {
	data, err := bc.cb.Execute(func() ([]byte, error) {
		return bc.next.Capture(ctx, target)
	})

	switch {
	case err == nil:
		metrics.UpstreamRequests.WithLabelValues("capture", "success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.UpstreamRequests.WithLabelValues("capture", "rejected").Inc()
		bc.logger.Warn().Err(err).Str("target", target).Msg("capture rejected by circuit breaker")
	default:
		metrics.UpstreamRequests.WithLabelValues("capture", "failure").Inc()
	}

	return data, err
}

// State reports the current breaker state
func (bc *BreakerClient) State() gobreaker.State {
	return bc.cb.State()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
