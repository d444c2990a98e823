package invoker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvasek/switchboard/capability"
)

func testSpec(idempotent bool) capability.Spec {
	return capability.Spec{
		Name:        "query_database",
		Description: "Runs a query.",
		Idempotent:  idempotent,
	}
}

func fastInvoker(timeout time.Duration) *Invoker {
	return New(func(o *Options) {
		o.DefaultTimeout = timeout
		o.RetryDelay = time.Millisecond
	})
}

func TestInvokeSuccess(t *testing.T) {
	iv := New()
	var calls atomic.Int32

	binding := capability.BindingFunc(func(_ context.Context, args map[string]any) (any, error) {
		calls.Add(1)
		return map[string]any{"rows": 3}, nil
	})

	result := iv.Invoke(context.Background(), testSpec(true), binding, map[string]any{"query": "SELECT 1"})

	assert.True(t, result.OK())
	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.JSONEq(t, `{"rows":3}`, result.Payload)
	assert.Equal(t, 1, result.Attempts)
	assert.EqualValues(t, 1, calls.Load())
}

func TestInvokeStringPayloadPassesThrough(t *testing.T) {
	iv := New()
	binding := capability.BindingFunc(func(_ context.Context, _ map[string]any) (any, error) {
		return "bonjour", nil
	})

	result := iv.Invoke(context.Background(), testSpec(false), binding, nil)
	assert.Equal(t, "bonjour", result.Payload)
}

func TestInvokeTimeout(t *testing.T) {
	iv := fastInvoker(20 * time.Millisecond)
	var calls atomic.Int32

	binding := capability.BindingFunc(func(ctx context.Context, _ map[string]any) (any, error) {
		calls.Add(1)
		<-ctx.Done()
		return nil, ctx.Err()
	})

	result := iv.Invoke(context.Background(), testSpec(true), binding, nil)

	assert.Equal(t, OutcomeTimeout, result.Outcome)
	assert.Equal(t, 2, result.Attempts)
	assert.EqualValues(t, 2, calls.Load(), "idempotent timeout gets exactly one retry")
}

func TestInvokeTimeoutNonIdempotentNotRetried(t *testing.T) {
	iv := fastInvoker(20 * time.Millisecond)
	var calls atomic.Int32

	binding := capability.BindingFunc(func(ctx context.Context, _ map[string]any) (any, error) {
		calls.Add(1)
		<-ctx.Done()
		return nil, ctx.Err()
	})

	result := iv.Invoke(context.Background(), testSpec(false), binding, nil)

	assert.Equal(t, OutcomeTimeout, result.Outcome)
	assert.Equal(t, 1, result.Attempts)
	assert.EqualValues(t, 1, calls.Load())
}

func TestInvokeSpecTimeoutOverride(t *testing.T) {
	iv := fastInvoker(time.Minute)
	spec := testSpec(false)
	spec.Timeout = 20 * time.Millisecond

	binding := capability.BindingFunc(func(ctx context.Context, _ map[string]any) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	result := iv.Invoke(context.Background(), spec, binding, nil)
	assert.Equal(t, OutcomeTimeout, result.Outcome)
}

func TestInvokeTransientErrorRetriedOnce(t *testing.T) {
	iv := fastInvoker(time.Second)
	var calls atomic.Int32

	binding := capability.BindingFunc(func(_ context.Context, _ map[string]any) (any, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("dial tcp: connection refused")
		}
		return "recovered", nil
	})

	result := iv.Invoke(context.Background(), testSpec(true), binding, nil)

	assert.True(t, result.OK())
	assert.Equal(t, "recovered", result.Payload)
	assert.Equal(t, 2, result.Attempts)
}

func TestInvokePermanentErrorNotRetried(t *testing.T) {
	iv := fastInvoker(time.Second)
	var calls atomic.Int32

	binding := capability.BindingFunc(func(_ context.Context, _ map[string]any) (any, error) {
		calls.Add(1)
		return nil, errors.New("syntax error at line 1")
	})

	result := iv.Invoke(context.Background(), testSpec(true), binding, nil)

	assert.Equal(t, OutcomeDelegateError, result.Outcome)
	assert.Contains(t, result.Diagnostic, "syntax error")
	assert.EqualValues(t, 1, calls.Load())
}

func TestInvokeInvalidArgumentsNeverRetried(t *testing.T) {
	iv := fastInvoker(time.Second)
	var calls atomic.Int32

	binding := capability.BindingFunc(func(_ context.Context, _ map[string]any) (any, error) {
		calls.Add(1)
		return nil, fmt.Errorf("%w: query must not be empty", capability.ErrInvalidArguments)
	})

	result := iv.Invoke(context.Background(), testSpec(true), binding, nil)

	assert.Equal(t, OutcomeInvalidArguments, result.Outcome)
	assert.EqualValues(t, 1, calls.Load())
}

func TestInvokePanicContained(t *testing.T) {
	iv := New()
	binding := capability.BindingFunc(func(_ context.Context, _ map[string]any) (any, error) {
		panic("delegate blew up")
	})

	result := iv.Invoke(context.Background(), testSpec(false), binding, nil)

	assert.Equal(t, OutcomeDelegateError, result.Outcome)
	assert.Contains(t, result.Diagnostic, "delegate blew up")
}

func TestInvokeCallerCancellation(t *testing.T) {
	iv := New()
	ctx, cancel := context.WithCancel(context.Background())

	binding := capability.BindingFunc(func(ctx context.Context, _ map[string]any) (any, error) {
		cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	})

	result := iv.Invoke(ctx, testSpec(true), binding, nil)

	assert.Equal(t, OutcomeCancelled, result.Outcome)
	assert.Equal(t, 1, result.Attempts)
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("permission denied")))
	assert.True(t, IsTransient(errors.New("503 Service Unavailable")))
	assert.True(t, IsTransient(errors.New("read tcp: connection reset by peer")))
	assert.True(t, IsTransient(fmt.Errorf("upstream: %w", ErrTransient)))
}

func TestBreakerBindingOpensAndRecovers(t *testing.T) {
	var shouldFail atomic.Bool
	shouldFail.Store(true)

	inner := capability.BindingFunc(func(_ context.Context, _ map[string]any) (any, error) {
		if shouldFail.Load() {
			return nil, errors.New("backend down")
		}
		return "ok", nil
	})

	b := NewBreakerBinding("query_database", inner, func(o *BreakerOptions) {
		o.MaxFailures = 2
		o.OpenTimeout = 50 * time.Millisecond
	})

	for i := 0; i < 2; i++ {
		_, err := b.Invoke(context.Background(), nil)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	// Open circuit fails fast and is classified transient.
	_, err := b.Invoke(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransient)

	// Half-open probe succeeds and closes the circuit.
	shouldFail.Store(false)
	time.Sleep(60 * time.Millisecond)
	payload, err := b.Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", payload)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}
