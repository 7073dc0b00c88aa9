package domain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// Sentinels the HTTP layer maps to status codes. Typed errors below unwrap
// to one of them.
var (
	// ErrNotFound also covers records owned by another user.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrRateLimited   = errors.New("rate limited")
	// ErrServiceUnavailable marks a dependency we own (Temporal, an open
	// circuit) that is down for now.
	ErrServiceUnavailable = errors.New("service unavailable")
	// ErrUpstream marks a failed call to a metadata source or LLM provider.
	ErrUpstream = errors.New("upstream request failed")
	// ErrFeatureDisabled is returned when the integration an operation needs
	// is switched off in configuration.
	ErrFeatureDisabled = errors.New("feature disabled")
)

// ValidationError rejects a single field.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// FieldErrors collects every failing field of a request body, keyed by the
// JSON field name.
type FieldErrors map[string]string

// Add keeps the first message recorded for field.
func (e FieldErrors) Add(field, msg string) {
	if _, seen := e[field]; !seen {
		e[field] = msg
	}
}

// Err returns e, or nil when it is empty.
func (e FieldErrors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e FieldErrors) Error() string {
	var b strings.Builder
	b.WriteString("validation error: ")
	for i, f := range slices.Sorted(maps.Keys(e)) {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f + ": " + e[f])
	}
	return b.String()
}

func (e FieldErrors) Unwrap() error { return ErrInvalidInput }

// NotFoundError names the missing record.
type NotFoundError struct {
	Entity string
	ID     string
}

func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string { return e.Entity + " not found: " + e.ID }

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// AlreadyExistsError names the record a unique constraint rejected.
type AlreadyExistsError struct {
	Entity string
	ID     string
}

func NewAlreadyExistsError(entity, id string) *AlreadyExistsError {
	return &AlreadyExistsError{Entity: entity, ID: id}
}

func (e *AlreadyExistsError) Error() string { return e.Entity + " already exists: " + e.ID }

func (e *AlreadyExistsError) Unwrap() error { return ErrAlreadyExists }

// RateLimitError is a 429 from an external source. RetryAfter is zero when
// the source sent no hint.
type RateLimitError struct {
	Source     string
	RetryAfter time.Duration
}

func NewRateLimitError(source string, retryAfter time.Duration) *RateLimitError {
	return &RateLimitError{Source: source, RetryAfter: retryAfter}
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by %s: retry after %s", e.Source, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// ExternalAPIError is a failed call to a metadata source. StatusCode is zero
// when no response arrived; Cause is then the transport error.
type ExternalAPIError struct {
	Source     string
	StatusCode int
	Message    string
	Cause      error
}

func NewExternalAPIError(source string, statusCode int, message string, cause error) *ExternalAPIError {
	return &ExternalAPIError{Source: source, StatusCode: statusCode, Message: message, Cause: cause}
}

func (e *ExternalAPIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s API error: %s", e.Source, e.Message)
	}
	return fmt.Sprintf("%s API error (status %d): %s", e.Source, e.StatusCode, e.Message)
}

// Unwrap matches both ErrUpstream and Cause.
func (e *ExternalAPIError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrUpstream}
	}
	return []error{ErrUpstream, e.Cause}
}
