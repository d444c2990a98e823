package invoker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mvasek/switchboard/capability"
	"github.com/mvasek/switchboard/logging"
)

// Options configure an Invoker.
type Options struct {
	// DefaultTimeout bounds each delegate call unless the capability spec
	// overrides it.
	DefaultTimeout time.Duration

	// RetryDelay is the pause before the single retry of an idempotent
	// capability after a transient failure.
	RetryDelay time.Duration

	// Logger receives invocation lifecycle events.
	Logger logging.Logger
}

// Invoker executes bindings with deadline enforcement, panic containment and
// outcome classification. Safe for concurrent use.
type Invoker struct {
	opts Options
}

// New creates an Invoker with a 30 second default per-call deadline.
func New(optFns ...func(o *Options)) *Invoker {
	opts := Options{
		DefaultTimeout: 30 * time.Second,
		RetryDelay:     250 * time.Millisecond,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Invoker{opts: opts}
}

// Invoke runs the binding under the capability's deadline and returns a
// classified Result. It never returns a Go error: every failure mode is
// folded into the Result so one bad delegate cannot abort the routing cycle.
// Idempotent capabilities are retried exactly once after a transient failure
// or timeout; invalid arguments and caller cancellation are never retried.
func (iv *Invoker) Invoke(ctx context.Context, spec capability.Spec, binding capability.Binding, args map[string]any) Result {
	timeout := iv.opts.DefaultTimeout
	if spec.Timeout > 0 {
		timeout = spec.Timeout
	}

	result := iv.attempt(ctx, spec, binding, args, timeout)
	result.Attempts = 1

	if !iv.shouldRetry(spec, result) || ctx.Err() != nil {
		return result
	}

	iv.opts.Logger.Warn("retrying delegate after transient failure",
		"capability", spec.Name, "outcome", string(result.Outcome), "diagnostic", result.Diagnostic)

	select {
	case <-ctx.Done():
		result.Outcome = OutcomeCancelled
		result.Diagnostic = ctx.Err().Error()
		return result
	case <-time.After(iv.opts.RetryDelay):
	}

	retried := iv.attempt(ctx, spec, binding, args, timeout)
	retried.Attempts = 2
	return retried
}

// shouldRetry limits the retry policy to idempotent capabilities that failed
// transiently. Timeouts count as transient; argument rejection never does.
func (iv *Invoker) shouldRetry(spec capability.Spec, result Result) bool {
	if !spec.Idempotent {
		return false
	}
	switch result.Outcome {
	case OutcomeTimeout:
		return true
	case OutcomeDelegateError:
		return result.transient
	default:
		return false
	}
}

// attempt performs a single bounded call and classifies its outcome.
func (iv *Invoker) attempt(ctx context.Context, spec capability.Spec, binding capability.Binding, args map[string]any, timeout time.Duration) Result {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	payload, err := safeInvoke(callCtx, binding, args)
	elapsed := time.Since(started)

	if err == nil {
		text, serr := encodePayload(payload)
		if serr != nil {
			return Result{
				Outcome:    OutcomeDelegateError,
				Diagnostic: fmt.Sprintf("payload not serializable: %v", serr),
			}
		}
		iv.opts.Logger.Debug("delegate call succeeded",
			"capability", spec.Name, "duration_ms", elapsed.Milliseconds())
		return Result{Outcome: OutcomeSuccess, Payload: text}
	}

	result := iv.classify(ctx, callCtx, spec, err)
	iv.opts.Logger.Warn("delegate call failed",
		"capability", spec.Name, "outcome", string(result.Outcome),
		"duration_ms", elapsed.Milliseconds(), "diagnostic", result.Diagnostic)
	return result
}

// classify maps a binding error onto the outcome taxonomy. The caller's
// context wins over the per-call deadline so shutdown is not misreported as a
// delegate timeout.
func (iv *Invoker) classify(parent, callCtx context.Context, spec capability.Spec, err error) Result {
	switch {
	case parent.Err() != nil:
		return Result{Outcome: OutcomeCancelled, Diagnostic: parent.Err().Error()}
	case errors.Is(err, capability.ErrInvalidArguments):
		return Result{Outcome: OutcomeInvalidArguments, Diagnostic: err.Error()}
	case errors.Is(callCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded):
		return Result{
			Outcome:    OutcomeTimeout,
			Diagnostic: fmt.Sprintf("capability %q exceeded its deadline", spec.Name),
		}
	default:
		return Result{Outcome: OutcomeDelegateError, Diagnostic: err.Error(), transient: IsTransient(err)}
	}
}

// safeInvoke calls the binding with panic containment. A panicking delegate
// is reported as an ordinary error.
func safeInvoke(ctx context.Context, binding capability.Binding, args map[string]any) (payload any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("delegate panicked: %v", r)
		}
	}()
	return binding.Invoke(ctx, args)
}

// encodePayload renders a binding's return value as the string carried in
// tool-result turns. Strings pass through; everything else is JSON-encoded.
func encodePayload(payload any) (string, error) {
	switch v := payload.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
}
