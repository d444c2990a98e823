package invoker

// OutcomeKind classifies how a delegate invocation ended.
type OutcomeKind string

const (
	// OutcomeSuccess means the binding returned a payload.
	OutcomeSuccess OutcomeKind = "success"
	// OutcomeTimeout means the per-call deadline elapsed before the binding
	// returned.
	OutcomeTimeout OutcomeKind = "timeout"
	// OutcomeDelegateError means the binding returned an error or panicked.
	OutcomeDelegateError OutcomeKind = "delegate_error"
	// OutcomeInvalidArguments means the binding rejected its arguments.
	// Never retried.
	OutcomeInvalidArguments OutcomeKind = "invalid_arguments"
	// OutcomeCancelled means the caller's context was cancelled while the
	// invocation was in flight.
	OutcomeCancelled OutcomeKind = "cancelled"
)

// Result is the terminal record of one delegate invocation. Exactly one of
// Payload (on success) or Diagnostic (on failure) is meaningful; Attempts
// counts calls actually made, including the retried one.
type Result struct {
	Outcome    OutcomeKind
	Payload    string
	Diagnostic string
	Attempts   int

	// transient records whether a delegate error matched the transient
	// classifier, feeding the retry decision.
	transient bool
}

// OK reports whether the invocation produced a payload.
func (r Result) OK() bool { return r.Outcome == OutcomeSuccess }
