package service

import (
	"errors"
	"fmt"
)

// ErrExternalService marks failures of downstream dependencies (the model
// server). Handlers map it to 502.
var ErrExternalService = errors.New("external service error")

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// ExternalError wraps a downstream failure so that
// errors.Is(err, ErrExternalService) holds for callers.
func ExternalError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", msg, ErrExternalService, err)
}
