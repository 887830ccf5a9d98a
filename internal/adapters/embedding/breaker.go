package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Breaker configuration constants.
const (
	breakerMaxRequests = 3
	breakerInterval    = time.Minute
	breakerTimeout     = 30 * time.Second
	breakerMinRequests = 5
	breakerFailureRate = 0.6
)

// Embedder is the contract the rest of the service consumes.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Breaker decorates an Embedder with a circuit breaker so a failing
// provider sheds load fast instead of tying up workers on timeouts.
// It is not a retry policy; callers still see ErrProviderUnavailable.
type Breaker struct {
	inner Embedder
	cb    *gobreaker.CircuitBreaker[[]float64]
}

// NewBreaker wraps inner with a circuit breaker.
func NewBreaker(inner Embedder) *Breaker {
	settings := gobreaker.Settings{
		Name:        "embedding-provider",
		MaxRequests: breakerMaxRequests,
		Interval:    breakerInterval,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRate := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= breakerMinRequests && failureRate >= breakerFailureRate
		},
		IsSuccessful: func(err error) bool {
			// Bad input is the caller's fault, not provider health.
			return err == nil || errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrDimensionMismatch)
		},
	}

	return &Breaker{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[[]float64](settings),
	}
}

// Embed forwards to the wrapped Embedder unless the breaker is open.
func (b *Breaker) Embed(ctx context.Context, text string) ([]float64, error) {
	vec, err := b.cb.Execute(func() ([]float64, error) {
		return b.inner.Embed(ctx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("circuit open: %w", ErrProviderUnavailable)
		}
		return nil, err
	}
	return vec, nil
}
