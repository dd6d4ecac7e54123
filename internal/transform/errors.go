package transform

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes transform errors.
type ErrorCode string

const (
	// ErrCodeMissingEquivalence: a mapper was configured without an
	// equivalence predicate.
	ErrCodeMissingEquivalence ErrorCode = "MISSING_EQUIVALENCE"

	// ErrCodeTypeMismatch: no mapper, but source and output types differ.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"

	// ErrCodeNotComparable: identity comparison requested for a type whose
	// == is unsupported or can panic (interfaces).
	ErrCodeNotComparable ErrorCode = "NOT_COMPARABLE"

	// ErrCodeMissingComparator: Custom order with a nil comparator.
	ErrCodeMissingComparator ErrorCode = "MISSING_COMPARATOR"

	// ErrCodeMissingOutput: an included source element has no output element.
	ErrCodeMissingOutput ErrorCode = "MISSING_OUTPUT"

	// ErrCodeStrayOutput: an output element corresponds to no included
	// source element.
	ErrCodeStrayOutput ErrorCode = "STRAY_OUTPUT"

	// ErrCodeOrderViolation: the output order breaks the configured order.
	ErrCodeOrderViolation ErrorCode = "ORDER_VIOLATION"
)

// ConfigError is returned when a transform cannot be built or reconfigured.
type ConfigError struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// InvariantError describes a failed consistency check.
type InvariantError struct {
	Code       ErrorCode
	Message    string
	Generation int64 // Synchronization the check ran after
	Index      int   // Offending source or output index, -1 if none
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: %s (generation=%d, index=%d)", e.Code, e.Message, e.Generation, e.Index)
	}
	return fmt.Sprintf("%s: %s (generation=%d)", e.Code, e.Message, e.Generation)
}

// IsConfigError returns true if err is or wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsInvariantError returns true if err is or wraps an InvariantError.
func IsInvariantError(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

// ErrorCodeOf returns the code of a ConfigError or InvariantError, or "".
func ErrorCodeOf(err error) ErrorCode {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code
	}
	var ie *InvariantError
	if errors.As(err, &ie) {
		return ie.Code
	}
	return ""
}
