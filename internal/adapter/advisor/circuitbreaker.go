package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"gift-advisor/internal/domain"
	"gift-advisor/internal/infra/config"
)

// Default circuit breaker settings.
const (
	defaultCBMaxFailures uint32        = 5
	defaultCBTimeout     time.Duration = 30 * time.Second
	defaultCBInterval    time.Duration = 60 * time.Second
)

// emitError marks a failure to deliver a fragment downstream, typically a
// client that went away. It says nothing about the advisor's health.
type emitError struct{ err error }

func (e *emitError) Error() string { return e.err.Error() }
func (e *emitError) Unwrap() error { return e.err }

// CircuitBreakerAdvisor wraps an Advisor so repeated failures fail fast
// instead of piling requests onto a struggling model API.
type CircuitBreakerAdvisor struct {
	inner   domain.Advisor
	breaker *gobreaker.CircuitBreaker[[]domain.GiftIdea]
}

// NewCircuitBreakerAdvisor wraps inner. Zero-valued settings fall back to
// defaults.
func NewCircuitBreakerAdvisor(inner domain.Advisor, cfg config.CircuitBreakerConfig, logger *slog.Logger) *CircuitBreakerAdvisor {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultCBMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultCBTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultCBInterval
	}

	cb := gobreaker.NewCircuitBreaker[[]domain.GiftIdea](gobreaker.Settings{
		Name:        "advisor:" + inner.Name(),
		MaxRequests: 1, // allow 1 probe in half-open state
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: func(err error) bool {
			var ee *emitError
			return err == nil || domain.IsCancelled(err) || errors.As(err, &ee)
		},
	})

	return &CircuitBreakerAdvisor{inner: inner, breaker: cb}
}

// Name implements domain.Advisor.
func (a *CircuitBreakerAdvisor) Name() string { return a.inner.Name() }

// StreamTrending implements domain.Advisor.
func (a *CircuitBreakerAdvisor) StreamTrending(ctx context.Context, member string, emit func(string) error) error {
	_, err := a.breaker.Execute(func() ([]domain.GiftIdea, error) {
		return nil, a.inner.StreamTrending(ctx, member, func(fragment string) error {
			if err := emit(fragment); err != nil {
				return &emitError{err: err}
			}
			return nil
		})
	})
	var ee *emitError
	if errors.As(err, &ee) {
		return ee.err
	}
	return a.wrap("StreamTrending", err)
}

// GiftIdeas implements domain.Advisor.
func (a *CircuitBreakerAdvisor) GiftIdeas(ctx context.Context, member string) ([]domain.GiftIdea, error) {
	ideas, err := a.breaker.Execute(func() ([]domain.GiftIdea, error) {
		return a.inner.GiftIdeas(ctx, member)
	})
	if err != nil {
		return nil, a.wrap("GiftIdeas", err)
	}
	return ideas, nil
}

// State returns the current circuit breaker state for monitoring.
func (a *CircuitBreakerAdvisor) State() gobreaker.State {
	return a.breaker.State()
}

func (a *CircuitBreakerAdvisor) wrap(op string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.NewDomainError("advisor."+op,
			fmt.Errorf("%w: %w", domain.ErrProviderError, domain.ErrCircuitOpen),
			fmt.Sprintf("advisor %q: %v", a.inner.Name(), err))
	}
	return err
}

var _ domain.Advisor = (*CircuitBreakerAdvisor)(nil)
