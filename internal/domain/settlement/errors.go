package settlement

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidInput           = errors.New("invalid settlement input")
	ErrUnknownItemization     = errors.New("unknown itemization")
	ErrUnknownNonFinitePolicy = errors.New("unknown non-finite policy")
)

// ValidationError names the input field that made a calculation impossible.
// It always matches ErrInvalidInput under errors.Is.
type ValidationError struct {
	// Field is a path into the input, e.g. "players[2].points" or "segments[1].teams[0]".
	Field  string
	Reason string
	// Cause is the underlying error from another package, if any.
	Cause error
}

// NewValidationError reports cause against field.
func NewValidationError(field string, cause error) *ValidationError {
	return &ValidationError{Field: field, Reason: cause.Error(), Cause: cause}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidInput, e.Field, e.Reason)
}

// Unwrap exposes the sentinel kind and the cause.
func (e *ValidationError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrInvalidInput, e.Cause}
	}
	return []error{ErrInvalidInput}
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func invalidf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
