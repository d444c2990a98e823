// Package protocol translates between raw model output and the orchestrator's
// decision vocabulary. Parse classifies a completed model response into a
// closed set of decisions (final answer, tool-call request, parse failure),
// ValidateArguments checks decoded tool arguments against a capability's
// declared schema, and EncodeSpecs renders registry specs as the tool
// definitions sent to the model.
//
// Malformed model output is contained here: it never propagates as a Go error
// but degrades into an explicit ParseFailure decision the orchestrator can
// act on.
package protocol
