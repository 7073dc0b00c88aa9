package httpserver

import (
	"net/http"
	"strings"

	"github.com/helixir/paper-library-service/internal/domain"
)

type createTagRequest struct {
	Name  string `json:"name" validate:"required,max=64"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

type updateTagRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=64"`
	Color *string `json:"color" validate:"omitempty,hexcolor"`
}

// createTag handles POST /tags.
func (s *Server) createTag(w http.ResponseWriter, r *http.Request) {
	var req createTagRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	tag := &domain.Tag{
		UserID: currentUser(r),
		Name:   strings.TrimSpace(req.Name),
		Color:  req.Color,
	}
	if tag.Color == "" {
		tag.Color = domain.DefaultTagColor
	}
	if err := tag.Validate(); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	created, err := s.deps.Tags.Create(r.Context(), tag)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTagResponse(created))
}

// listTags handles GET /tags.
func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.deps.Tags.List(r.Context(), currentUser(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convertAll(tags, toTagResponse))
}

// updateTag handles PATCH /tags/{tagID}.
func (s *Server) updateTag(w http.ResponseWriter, r *http.Request) {
	tagID, err := pathID(r, "tagID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	var req updateTagRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	tag, err := s.deps.Tags.Get(r.Context(), currentUser(r), tagID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if req.Name != nil {
		tag.Name = strings.TrimSpace(*req.Name)
	}
	if req.Color != nil {
		tag.Color = *req.Color
	}
	if err := tag.Validate(); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if err := s.deps.Tags.Update(r.Context(), tag); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTagResponse(tag))
}

// deleteTag handles DELETE /tags/{tagID}.
func (s *Server) deleteTag(w http.ResponseWriter, r *http.Request) {
	tagID, err := pathID(r, "tagID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if err := s.deps.Tags.Delete(r.Context(), currentUser(r), tagID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
