package clinic

import (
	"errors"
	"fmt"
)

// ErrDuplicate is matched (via errors.Is) by every DuplicateError.
var ErrDuplicate = errors.New("duplicate record")

// DuplicateError reports an insert rejected by a uniqueness rule.
type DuplicateError struct {
	Kind  string
	Field string
	Value string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Kind, e.Field, e.Value)
}

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

// ValidationError is returned for client input that fails validation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Invalid(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsClientError reports whether err should be surfaced as a 400.
func IsClientError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) || errors.Is(err, ErrDuplicate)
}
