package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrors_UnwrapToSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"not found", NewNotFoundError("paper", "abc"), ErrNotFound},
		{"already exists", NewAlreadyExistsError("tag", "ml"), ErrAlreadyExists},
		{"validation", NewValidationError("title", "is required"), ErrInvalidInput},
		{"field errors", FieldErrors{"title": "is required"}, ErrInvalidInput},
		{"rate limit", NewRateLimitError("openalex", time.Second), ErrRateLimited},
		{"external api", NewExternalAPIError("anthropic", 500, "boom", nil), ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("failed to do thing: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
		})
	}
}

func TestExternalAPIError_ExposesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewExternalAPIError("semantic_scholar", 0, "request failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, "semantic_scholar API error: request failed", err.Error())

	withStatus := NewExternalAPIError("openai", 429, "slow down", nil)
	assert.Equal(t, "openai API error (status 429): slow down", withStatus.Error())
}

func TestFieldErrors(t *testing.T) {
	errs := FieldErrors{}
	assert.NoError(t, errs.Err())

	errs.Add("year", "must be between 1000 and 2100")
	errs.Add("title", "is required")
	errs.Add("title", "ignored second message")

	assert.Equal(t, "is required", errs["title"])
	assert.Equal(t, "validation error: title: is required; year: must be between 1000 and 2100", errs.Error())
	assert.ErrorIs(t, errs.Err(), ErrInvalidInput)
}
