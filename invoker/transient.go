package invoker

import (
	"errors"
	"strings"
)

// ErrTransient marks an error as transient. Bindings can wrap their errors
// with it to request a retry without matching any message pattern.
var ErrTransient = errors.New("transient failure")

// transientSentinels lists errors that indicate transient failures worth
// retrying. These typically represent backend/network issues that resolve on
// their own.
var transientSentinels = []error{
	ErrTransient,
}

// transientPatterns are substrings in error messages that indicate transient
// failures. Checked case-insensitively.
var transientPatterns = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"broken pipe",
	"temporarily unavailable",
	"service unavailable",
	"try again",
	"too many requests",
	"rate limit",
	"unavailable",
}

// IsTransient returns true if the error is transient and the invocation may
// succeed on retry. Returns false for nil, permanent, or unknown errors.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	// Check sentinels via errors.Is (handles wrapped errors).
	for _, sentinel := range transientSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}

	// String-based fallback for errors without sentinel wrapping.
	lower := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}

	return false
}
