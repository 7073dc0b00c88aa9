package llm

import (
	"fmt"

	"github.com/helixir/paper-library-service/internal/domain"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = fmt.Errorf("llm: circuit open: %w", domain.ErrServiceUnavailable)

// ErrEmptyResponse is returned when the provider answered without text.
var ErrEmptyResponse = fmt.Errorf("llm: response contains no text: %w", domain.ErrUpstream)

// APIError represents an error returned by an LLM provider API.
type APIError struct {
	// Provider is the name of the LLM provider (e.g., "openai", "anthropic").
	Provider string
	// StatusCode is the HTTP status code, or 0 when no response was received.
	StatusCode int
	// Message is the error message from the API.
	Message string
	// Type is the error type classification from the API.
	Type string
	// Code is the provider-specific error code (if available).
	Code string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s: API error (status %d, type %s): %s", e.Provider, e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("%s: API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// Unwrap classifies provider failures as upstream errors.
func (e *APIError) Unwrap() error {
	return domain.ErrUpstream
}

// IsClientError reports whether the provider rejected the request itself
// (4xx other than 429). Such errors do not count against the breaker.
func (e *APIError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != 429
}
