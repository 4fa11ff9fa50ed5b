package model

import (
	"errors"
	"fmt"
)

// ErrOrderNotFound reports an operation on a symbol the store does not hold.
var ErrOrderNotFound = errors.New("order not found")

// ValidationError reports a rejected request field. It is distinct from
// ErrOrderNotFound so the handler layer can map them to 400 vs 404.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
