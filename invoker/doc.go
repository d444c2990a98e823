// Package invoker executes delegate bindings on behalf of the orchestrator.
// Every invocation runs under a deadline, panics are contained, and failures
// are classified into a small outcome taxonomy (success, timeout, delegate
// error, invalid arguments, cancelled) instead of propagating raw errors.
// Idempotent capabilities get a single retry after transient failures; a
// circuit breaker wrapper is available for delegates backed by flaky
// upstreams.
package invoker
