// Package orchestrator drives the routing cycle at the heart of the module.
// For each incoming request it alternates between reasoning steps (one model
// call deciding to answer or delegate) and delegation steps (one bounded
// capability invocation), appending every step to the session history, until
// the model produces a final answer or a degradation policy ends the cycle.
//
// The cycle is bounded: a fixed iteration limit caps reasoning steps,
// repeated unknown-tool requests abort early, and caller cancellation is
// honored between and during steps. Failures inside a delegation never
// surface as Go errors; they re-enter the conversation as tool-result turns
// so the model can react, and only the terminal outcome is reported.
package orchestrator
