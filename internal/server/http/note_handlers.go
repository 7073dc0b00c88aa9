package httpserver

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/helixir/paper-library-service/internal/domain"
)

type createNoteRequest struct {
	PaperID         uuid.UUID `json:"paperId" validate:"required"`
	Title           string    `json:"title" validate:"required,max=255"`
	Content         string    `json:"content"`
	HighlightedText *string   `json:"highlightedText"`
	PageNumber      *int      `json:"pageNumber" validate:"omitempty,gte=1"`
}

type updateNoteRequest struct {
	Title           *string `json:"title" validate:"omitempty,max=255"`
	Content         *string `json:"content"`
	HighlightedText *string `json:"highlightedText"`
	PageNumber      *int    `json:"pageNumber" validate:"omitempty,gte=1"`
}

// createNote handles POST /notes.
func (s *Server) createNote(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	note := &domain.Note{
		UserID:          currentUser(r),
		PaperID:         req.PaperID,
		Title:           strings.TrimSpace(req.Title),
		Content:         req.Content,
		HighlightedText: req.HighlightedText,
		PageNumber:      req.PageNumber,
	}
	if err := note.Validate(); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	created, err := s.deps.Notes.Create(r.Context(), note)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toNoteResponse(created))
}

// listNotes handles GET /notes, optionally narrowed by ?paperId=.
func (s *Server) listNotes(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	errs := domain.FieldErrors{}
	paperID := queryUUID(r, "paperId", errs)
	if err := errs.Err(); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	result, err := s.deps.Notes.List(r.Context(), currentUser(r), paperID, page)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageResponse(result, toNoteResponse))
}

// getNote handles GET /notes/{noteID}.
func (s *Server) getNote(w http.ResponseWriter, r *http.Request) {
	noteID, err := pathID(r, "noteID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	note, err := s.deps.Notes.Get(r.Context(), currentUser(r), noteID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toNoteResponse(note))
}

// updateNote handles PATCH /notes/{noteID}.
func (s *Server) updateNote(w http.ResponseWriter, r *http.Request) {
	noteID, err := pathID(r, "noteID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	var req updateNoteRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	note, err := s.deps.Notes.Get(r.Context(), currentUser(r), noteID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	domain.NoteUpdate{
		Title:           req.Title,
		Content:         req.Content,
		HighlightedText: req.HighlightedText,
		PageNumber:      req.PageNumber,
	}.Apply(note)
	if err := note.Validate(); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if err := s.deps.Notes.Update(r.Context(), note); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toNoteResponse(note))
}

// deleteNote handles DELETE /notes/{noteID}.
func (s *Server) deleteNote(w http.ResponseWriter, r *http.Request) {
	noteID, err := pathID(r, "noteID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if err := s.deps.Notes.Delete(r.Context(), currentUser(r), noteID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
