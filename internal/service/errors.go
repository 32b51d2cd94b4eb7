package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrExternalService is returned when an external provider fails in a
	// way retrying cannot fix (malformed response, auth failure).
	ErrExternalService = errors.New("external service error")
	// ErrRetriesExhausted is returned when a transient provider failure
	// persisted through every retry attempt.
	ErrRetriesExhausted = errors.New("retries exhausted")
	// ErrInfrastructure is returned when the vector store or another
	// backing service is unreachable.
	ErrInfrastructure = errors.New("infrastructure error")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Unwrap makes ValidationError match ErrInvalidInput under errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
