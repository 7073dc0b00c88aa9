package llm

import (
	"context"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicAPIVersion     = "2023-06-01"
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	defaultAnthropicModel   = "claude-3-5-haiku-latest"
)

type messagesRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// AnthropicProvider calls the Anthropic Messages API.
type AnthropicProvider struct {
	api endpoint
	cfg ProviderConfig
}

var _ Client = (*AnthropicProvider)(nil)

// NewAnthropicProvider creates a provider. Empty fields take defaults.
func NewAnthropicProvider(cfg ProviderConfig) *AnthropicProvider {
	cfg.applyDefaults(defaultAnthropicBaseURL, defaultAnthropicModel)
	header := http.Header{}
	header.Set("x-api-key", cfg.APIKey)
	header.Set("anthropic-version", anthropicAPIVersion)
	return &AnthropicProvider{
		cfg: cfg,
		api: endpoint{
			provider: "anthropic",
			url:      cfg.BaseURL + "/v1/messages",
			header:   header,
			client: &http.Client{
				Timeout:   cfg.Timeout,
				Transport: &http.Transport{MaxIdleConnsPerHost: 10, IdleConnTimeout: 90 * time.Second},
			},
		},
	}
}

func (p *AnthropicProvider) Provider() string { return p.api.provider }

func (p *AnthropicProvider) Model() string { return p.cfg.Model }

// Complete joins every text block of the reply. The Messages API has no JSON
// mode, so req.JSON only shapes the caller's prompt.
func (p *AnthropicProvider) Complete(ctx context.Context, req Request) (*Completion, error) {
	payload := messagesRequest{
		Model:       p.cfg.Model,
		MaxTokens:   p.cfg.MaxTokens,
		System:      req.System,
		Temperature: p.cfg.Temperature,
		Messages:    make([]anthropicMessage, 0, len(req.Messages)),
	}
	if req.MaxTokens > 0 {
		payload.MaxTokens = req.MaxTokens
	}
	for _, m := range req.Messages {
		payload.Messages = append(payload.Messages, anthropicMessage(m))
	}

	var resp messagesResponse
	if err := p.api.call(ctx, payload, &resp); err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, ErrEmptyResponse
	}
	return &Completion{
		Text:         text.String(),
		Model:        orDefault(resp.Model, p.cfg.Model),
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}, nil
}
