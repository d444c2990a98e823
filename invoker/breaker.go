package invoker

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/mvasek/switchboard/capability"
	"github.com/mvasek/switchboard/logging"
)

// BreakerOptions configure a BreakerBinding.
type BreakerOptions struct {
	// MaxFailures is the consecutive-failure count that opens the circuit.
	MaxFailures uint32

	// OpenTimeout is how long the circuit stays open before allowing a probe.
	OpenTimeout time.Duration

	// Logger receives state-change events.
	Logger logging.Logger
}

// BreakerBinding wraps a Binding with a circuit breaker so a delegate backed
// by a failing upstream fails fast instead of burning its deadline on every
// cycle. Breaker failures surface as transient errors, so idempotent
// capabilities resume normally once the circuit closes.
type BreakerBinding struct {
	name    string
	inner   capability.Binding
	breaker *gobreaker.CircuitBreaker[any]
}

// NewBreakerBinding wraps inner with a circuit breaker named after the
// capability.
func NewBreakerBinding(name string, inner capability.Binding, optFns ...func(o *BreakerOptions)) *BreakerBinding {
	opts := BreakerOptions{
		MaxFailures: 5,
		OpenTimeout: 30 * time.Second,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "delegate:" + name,
		MaxRequests: 1, // allow 1 probe in half-open state
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			opts.Logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &BreakerBinding{name: name, inner: inner, breaker: cb}
}

// Invoke implements capability.Binding.
func (b *BreakerBinding) Invoke(ctx context.Context, args map[string]any) (any, error) {
	payload, err := b.breaker.Execute(func() (any, error) {
		return b.inner.Invoke(ctx, args)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, fmt.Errorf("delegate %q circuit open: %w", b.name, ErrTransient)
		}
		return nil, err
	}
	return payload, nil
}

// State exposes the breaker state for observability.
func (b *BreakerBinding) State() gobreaker.State { return b.breaker.State() }
