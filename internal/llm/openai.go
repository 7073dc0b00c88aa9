package llm

import (
	"context"
	"net/http"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
)

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// OpenAIProvider calls the Chat Completions API.
type OpenAIProvider struct {
	api endpoint
	cfg ProviderConfig
}

var _ Client = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates a provider. Empty fields take defaults.
func NewOpenAIProvider(cfg ProviderConfig) *OpenAIProvider {
	cfg.applyDefaults(defaultOpenAIBaseURL, defaultOpenAIModel)
	header := http.Header{}
	header.Set("Authorization", "Bearer "+cfg.APIKey)
	return &OpenAIProvider{
		cfg: cfg,
		api: endpoint{
			provider: "openai",
			url:      cfg.BaseURL + "/chat/completions",
			header:   header,
			client:   &http.Client{Timeout: cfg.Timeout},
		},
	}
}

func (p *OpenAIProvider) Provider() string { return p.api.provider }

func (p *OpenAIProvider) Model() string { return p.cfg.Model }

// Complete sends the system prompt as the first message. req.JSON switches
// on json_object response format.
func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (*Completion, error) {
	payload := chatRequest{
		Model:       p.cfg.Model,
		Temperature: p.cfg.Temperature,
		MaxTokens:   p.cfg.MaxTokens,
		Messages:    make([]chatMessage, 0, len(req.Messages)+1),
	}
	if req.MaxTokens > 0 {
		payload.MaxTokens = req.MaxTokens
	}
	if req.JSON {
		payload.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	if req.System != "" {
		payload.Messages = append(payload.Messages, chatMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		payload.Messages = append(payload.Messages, chatMessage(m))
	}

	var resp chatResponse
	if err := p.api.call(ctx, payload, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, ErrEmptyResponse
	}
	return &Completion{
		Text:         resp.Choices[0].Message.Content,
		Model:        orDefault(resp.Model, p.cfg.Model),
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}
