package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// endpoint is one provider URL plus the auth headers it expects.
type endpoint struct {
	provider string
	url      string
	header   http.Header
	client   *http.Client
}

// errorEnvelope is the {"error":{...}} body both providers send on failure.
type errorEnvelope struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// call POSTs payload as JSON and decodes a 200 response into out. Every
// failure is an *APIError.
func (e endpoint) call(ctx context.Context, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: failed to marshal request: %w", e.provider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", e.provider, err)
	}
	req.Header = e.header.Clone()
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return e.failure(0, "network_error", "request failed: "+err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return e.failure(0, "network_error", "failed to read response body: "+err.Error())
	}
	if resp.StatusCode != http.StatusOK {
		return e.statusError(resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return e.failure(resp.StatusCode, "decode_error", "malformed response body")
	}
	return nil
}

func (e endpoint) failure(status int, kind, msg string) *APIError {
	return &APIError{Provider: e.provider, StatusCode: status, Type: kind, Message: msg}
}

// statusError prefers the provider's own message and falls back to the raw body.
func (e endpoint) statusError(status int, raw []byte) *APIError {
	var env errorEnvelope
	if json.Unmarshal(raw, &env) != nil || env.Error.Message == "" {
		return &APIError{Provider: e.provider, StatusCode: status, Message: string(raw)}
	}
	return &APIError{
		Provider:   e.provider,
		StatusCode: status,
		Message:    env.Error.Message,
		Type:       env.Error.Type,
		Code:       env.Error.Code,
	}
}

// orDefault returns the model a response names, or fallback when it names none.
func orDefault(model, fallback string) string {
	if model == "" {
		return fallback
	}
	return model
}
