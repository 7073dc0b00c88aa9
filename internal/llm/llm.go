// Package llm talks to chat-completion providers (Anthropic, OpenAI) for the
// summary and chat features. Calls are attempted once; a circuit breaker in
// front of the provider sheds load while it is failing.
package llm

import (
	"context"
	"time"
)

// Roles accepted in Message.Role.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversation turn.
type Message struct {
	Role    string
	Content string
}

// Request is a completion request.
type Request struct {
	// System is the system prompt.
	System string
	// Messages is the conversation, oldest first.
	Messages []Message
	// MaxTokens overrides the client default when positive.
	MaxTokens int
	// JSON asks the provider for a JSON object response where supported.
	JSON bool
}

// Completion is a provider response.
type Completion struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
}

// Client produces completions.
type Client interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
	// Provider returns the provider name.
	Provider() string
	// Model returns the configured model identifier.
	Model() string
}

// ProviderConfig holds the parameters for one provider.
// Defined here so the package does not depend on internal/config.
type ProviderConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

func (c *ProviderConfig) applyDefaults(baseURL, model string) {
	if c.BaseURL == "" {
		c.BaseURL = baseURL
	}
	if c.Model == "" {
		c.Model = model
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = defaultMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

const (
	defaultMaxTokens = 1024
	defaultTimeout   = 60 * time.Second
	maxResponseBytes = 10 << 20
)
