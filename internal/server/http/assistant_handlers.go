package httpserver

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/helixir/paper-library-service/internal/domain"
	"github.com/helixir/paper-library-service/internal/llm"
)

type chatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,max=20000"`
}

type chatRequest struct {
	PaperID  *uuid.UUID    `json:"paperId"`
	Messages []chatMessage `json:"messages" validate:"required,min=1,max=50,dive"`
}

// generateSummary handles POST /summaries/papers/{paperID}.
func (s *Server) generateSummary(w http.ResponseWriter, r *http.Request) {
	paperID, err := pathID(r, "paperID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if s.deps.Assistant == nil {
		s.writeDomainError(w, r, domain.ErrFeatureDisabled)
		return
	}

	summary, err := s.deps.Assistant.Summarize(r.Context(), currentUser(r), paperID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

// getSummary handles GET /summaries/papers/{paperID}.
func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	paperID, err := pathID(r, "paperID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	summary, err := s.deps.Summaries.GetForPaper(r.Context(), currentUser(r), paperID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

// deleteSummary handles DELETE /summaries/papers/{paperID}.
func (s *Server) deleteSummary(w http.ResponseWriter, r *http.Request) {
	paperID, err := pathID(r, "paperID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if err := s.deps.Summaries.DeleteForPaper(r.Context(), currentUser(r), paperID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// chat handles POST /chat.
func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if s.deps.Assistant == nil {
		s.writeDomainError(w, r, domain.ErrFeatureDisabled)
		return
	}

	messages := make([]llm.Message, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = llm.Message{Role: m.Role, Content: m.Content}
	}

	reply, err := s.deps.Assistant.Chat(r.Context(), currentUser(r), req.PaperID, messages)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply.Reply, Model: reply.Model})
}
