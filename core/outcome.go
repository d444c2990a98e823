package core

import "fmt"

// FailureReason names the condition that terminated a routing cycle without
// a final answer.
type FailureReason string

const (
	// FailureLoopLimit signals the per-cycle iteration bound was exceeded.
	FailureLoopLimit FailureReason = "loop_limit_exceeded"
	// FailureUnknownTool signals repeated requests for an unregistered tool.
	FailureUnknownTool FailureReason = "unknown_tool"
	// FailureCancelled signals the enclosing context was cancelled.
	FailureCancelled FailureReason = "cancelled"
	// FailureModel signals the reasoning model itself failed repeatedly.
	FailureModel FailureReason = "model_error"
)

// Outcome is the terminal value of one full routing cycle: either a
// FinalAnswer or a FailureReport. The closed set is enforced by the
// unexported marker method.
type Outcome interface{ isOutcome() }

// FinalAnswer carries the user-visible answer text of a completed cycle.
type FinalAnswer struct {
	Text string `json:"text"`
}

func (FinalAnswer) isOutcome() {}

// FailureReport carries a machine-readable reason plus a human-readable
// message describing why the cycle aborted. Raw collaborator errors never
// surface here; they are translated before crossing the core boundary.
type FailureReport struct {
	Reason  FailureReason `json:"reason"`
	Message string        `json:"message"`
}

func (FailureReport) isOutcome() {}

// Error makes FailureReport usable as an error value at call sites that
// propagate outcomes through error returns.
func (f FailureReport) Error() string {
	return fmt.Sprintf("routing cycle aborted (%s): %s", f.Reason, f.Message)
}
