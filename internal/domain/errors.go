package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")

	// ErrUnavailable wraps infrastructure failures (store unreachable).
	// Callers may retry with backoff; business-rule errors never use it.
	ErrUnavailable = errors.New("unavailable")

	// ErrConfiguration marks operator errors (bad study plan, missing
	// active consent version). Surfaced as 500, never user-recoverable.
	ErrConfiguration = errors.New("configuration error")
)

// Progress state-machine errors. All are terminal for the caller: the
// record reached a state that rejects the attempted write.
var (
	ErrAlreadyCompleted = errors.New("already completed")
	ErrReadOnly         = errors.New("read-only")
	ErrPathReadOnly     = errors.New("path read-only")
)

// Consent errors.
var (
	ErrNoActiveConsentVersion = fmt.Errorf("no active consent version: %w", ErrConfiguration)
	ErrVersionNotActive       = errors.New("consent version not active")
	ErrAlreadyConsented       = errors.New("already consented")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}
