package logstream

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/sony/gobreaker"

	"ArbiOps/internal/model"
)

// BreakerSource short-circuits a failing source so ticks fall back immediately
// instead of waiting on a dead endpoint.
type BreakerSource struct {
	Inner Source
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerSource opens after maxFailures consecutive failures and probes again
// after cooldown.
func NewBreakerSource(inner Source, maxFailures uint32, cooldown time.Duration) *BreakerSource {
	if maxFailures == 0 {
		maxFailures = 3
	}
	st := gobreaker.Settings{
		Name:        inner.Name(),
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= maxFailures
		},
		// a stop cancelling an in-flight request says nothing about the source
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("[WARN] log source %s breaker: %s -> %s", name, from, to)
		},
	}
	return &BreakerSource{Inner: inner, cb: gobreaker.NewCircuitBreaker(st)}
}

func (b *BreakerSource) Name() string { return b.Inner.Name() }

// State exposes the breaker state for status reporting.
func (b *BreakerSource) State() gobreaker.State { return b.cb.State() }

func (b *BreakerSource) RequestLogs(ctx context.Context, count int) ([]model.LogEntry, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.Inner.RequestLogs(ctx, count)
	})
	if err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) {
			return nil, pe
		}
		return nil, providerErr(b.Name(), "breaker", err)
	}
	return out.([]model.LogEntry), nil
}
