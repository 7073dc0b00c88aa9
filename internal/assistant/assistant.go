// Package assistant generates paper summaries and answers chat questions
// through the configured LLM client.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/helixir/paper-library-service/internal/domain"
	"github.com/helixir/paper-library-service/internal/events"
	"github.com/helixir/paper-library-service/internal/llm"
)

// At most this many notes are put into a summary prompt.
const maxPromptNotes = 50

// PaperReader is the subset of the paper repository the assistant needs.
type PaperReader interface {
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.Paper, error)
}

// NoteLister is the subset of the note repository the assistant needs.
type NoteLister interface {
	List(ctx context.Context, userID uuid.UUID, paperID *uuid.UUID, page domain.PageRequest) (domain.Page[*domain.Note], error)
}

// SummaryStore is the subset of the summary repository the assistant needs.
type SummaryStore interface {
	Upsert(ctx context.Context, summary *domain.AiSummary) (*domain.AiSummary, error)
	GetForPaper(ctx context.Context, userID, paperID uuid.UUID) (*domain.AiSummary, error)
}

// ChatReply is the answer to a chat request.
type ChatReply struct {
	Reply string
	Model string
}

// Service builds prompts from library data and calls the LLM.
type Service struct {
	client    llm.Client
	papers    PaperReader
	notes     NoteLister
	summaries SummaryStore
	emitter   *events.Emitter
	logger    zerolog.Logger
}

// NewService creates the assistant. A nil client disables every operation
// with domain.ErrFeatureDisabled.
func NewService(client llm.Client, papers PaperReader, notes NoteLister, summaries SummaryStore, emitter *events.Emitter, logger zerolog.Logger) *Service {
	return &Service{
		client:    client,
		papers:    papers,
		notes:     notes,
		summaries: summaries,
		emitter:   emitter,
		logger:    logger.With().Str("component", "assistant").Logger(),
	}
}

// Enabled reports whether an LLM client is configured.
func (s *Service) Enabled() bool {
	return s.client != nil
}

// Summarize generates the summary of one of the user's papers and stores
// it, replacing the previous one.
func (s *Service) Summarize(ctx context.Context, userID, paperID uuid.UUID) (*domain.AiSummary, error) {
	if s.client == nil {
		return nil, domain.ErrFeatureDisabled
	}
	paper, err := s.papers.Get(ctx, userID, paperID)
	if err != nil {
		return nil, err
	}

	notes, err := s.notes.List(ctx, userID, &paperID, domain.PageRequest{Page: 1, PageSize: maxPromptNotes})
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}

	completion, err := s.client.Complete(ctx, llm.Request{
		System:   summarySystemPrompt,
		Messages: []llm.Message{{Role: llm.RoleUser, Content: summaryPrompt(paper, notes.Items)}},
		JSON:     true,
	})
	if err != nil {
		return nil, err
	}

	text, findings := parseSummary(completion.Text)
	summary, err := s.summaries.Upsert(ctx, &domain.AiSummary{
		UserID:      userID,
		PaperID:     paperID,
		Summary:     text,
		KeyFindings: findings,
		Model:       completion.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store summary: %w", err)
	}

	s.emitter.Emit(ctx, domain.EventTypeSummaryGenerated, events.AggregateSummary, summary.ID, userID,
		domain.SummaryGeneratedPayload{PaperID: paperID, Model: summary.Model})

	s.logger.Info().
		Str("paper_id", paperID.String()).
		Str("model", summary.Model).
		Int("key_findings", len(findings)).
		Msg("summary generated")
	return summary, nil
}

// Chat answers the conversation. When paperID is set, the paper and its
// current summary become context in the system prompt.
func (s *Service) Chat(ctx context.Context, userID uuid.UUID, paperID *uuid.UUID, messages []llm.Message) (*ChatReply, error) {
	if s.client == nil {
		return nil, domain.ErrFeatureDisabled
	}
	if err := validateConversation(messages); err != nil {
		return nil, err
	}

	system := chatSystemPrompt
	if paperID != nil {
		paper, err := s.papers.Get(ctx, userID, *paperID)
		if err != nil {
			return nil, err
		}
		summary, err := s.summaries.GetForPaper(ctx, userID, *paperID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("failed to load summary: %w", err)
		}
		system += "\n\n" + paperContext(paper, summary)
	}

	completion, err := s.client.Complete(ctx, llm.Request{System: system, Messages: messages})
	if err != nil {
		return nil, err
	}
	return &ChatReply{Reply: completion.Text, Model: completion.Model}, nil
}

func validateConversation(messages []llm.Message) error {
	errs := domain.FieldErrors{}
	if len(messages) == 0 {
		errs.Add("messages", "must not be empty")
		return errs.Err()
	}
	for i, m := range messages {
		if m.Role != llm.RoleUser && m.Role != llm.RoleAssistant {
			errs.Add("messages["+strconv.Itoa(i)+"].role", "must be user or assistant")
		}
		if strings.TrimSpace(m.Content) == "" {
			errs.Add("messages["+strconv.Itoa(i)+"].content", "is required")
		}
	}
	if last := messages[len(messages)-1]; last.Role != llm.RoleUser {
		errs.Add("messages", "last message must be from the user")
	}
	return errs.Err()
}

type summaryResponse struct {
	Summary     string   `json:"summary"`
	KeyFindings []string `json:"keyFindings"`
}

// parseSummary reads the model's JSON answer. Anything unparsable is kept
// as the summary text with no findings.
func parseSummary(raw string) (string, []string) {
	text := strings.TrimSpace(raw)
	body := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(text, "```json"), "```"), "```"))

	var resp summaryResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil || strings.TrimSpace(resp.Summary) == "" {
		return text, []string{}
	}

	findings := make([]string, 0, len(resp.KeyFindings))
	for _, f := range resp.KeyFindings {
		if f = strings.TrimSpace(f); f != "" {
			findings = append(findings, f)
		}
	}
	return strings.TrimSpace(resp.Summary), findings
}
