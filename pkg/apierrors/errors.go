// Package apierrors is the typed error taxonomy shared between the
// domain packages and the HTTP handlers. Domain code returns these
// errors (often wrapped with fmt.Errorf("...: %w", err)); the API layer
// unwraps them once, at the boundary, to pick an HTTP status.
package apierrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a conversation, node, or attachment
	// does not exist (or is not visible to the caller).
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller does not own the
	// resource it is trying to act on.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation is returned for malformed request input (e.g. no
	// roles supplied to a DxO run).
	ErrValidation = errors.New("validation failed")

	// ErrAttachmentTooLarge is returned by the store's attach operation
	// when file_size exceeds the per-type limit (§3).
	ErrAttachmentTooLarge = errors.New("attachment too large")

	// ErrUnsupportedType is returned when an attachment's file_type is
	// not one of the known enum values.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrNoAPIKey is returned when the server has no gateway API key
	// configured — a configuration error that
	// must surface before streaming begins (§6).
	ErrNoAPIKey = errors.New("no API key configured")

	// ErrAttachmentExpired is returned when an upload-staging token is
	// consumed after its TTL has elapsed (§9 "Staging map lifetime").
	ErrAttachmentExpired = errors.New("attachment expired")
)

// FieldError wraps a single-field validation failure, joinable with
// errors.Is(err, ErrValidation) via Unwrap.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field '%s': %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error {
	return ErrValidation
}

// NewFieldError builds a FieldError for request validation failures.
func NewFieldError(field, message string) error {
	return &FieldError{Field: field, Message: message}
}
