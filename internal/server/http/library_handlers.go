package httpserver

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/helixir/paper-library-service/internal/domain"
)

type libraryRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Description *string `json:"description"`
}

type addLibraryItemRequest struct {
	PaperID       uuid.UUID `json:"paperId" validate:"required"`
	ReadingStatus string    `json:"readingStatus" validate:"omitempty,oneof=to_read reading completed"`
	Rating        *int      `json:"rating" validate:"omitempty,gte=1,lte=5"`
}

type updateLibraryItemRequest struct {
	ReadingStatus *string `json:"readingStatus" validate:"omitempty,oneof=to_read reading completed"`
	Rating        *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
}

// createLibrary handles POST /libraries.
func (s *Server) createLibrary(w http.ResponseWriter, r *http.Request) {
	var req libraryRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	library := &domain.Library{UserID: currentUser(r)}
	applyLibraryRequest(library, req)
	if err := library.Validate(); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	created, err := s.deps.Libraries.Create(r.Context(), library)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLibraryResponse(created))
}

// listLibraries handles GET /libraries.
func (s *Server) listLibraries(w http.ResponseWriter, r *http.Request) {
	libraries, err := s.deps.Libraries.List(r.Context(), currentUser(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convertAll(libraries, toLibraryResponse))
}

// getLibrary handles GET /libraries/{libraryID}.
func (s *Server) getLibrary(w http.ResponseWriter, r *http.Request) {
	libraryID, err := pathID(r, "libraryID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	library, err := s.deps.Libraries.Get(r.Context(), currentUser(r), libraryID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLibraryResponse(library))
}

// updateLibrary handles PATCH /libraries/{libraryID}.
func (s *Server) updateLibrary(w http.ResponseWriter, r *http.Request) {
	libraryID, err := pathID(r, "libraryID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	var req libraryRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	library, err := s.deps.Libraries.Get(r.Context(), currentUser(r), libraryID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	applyLibraryRequest(library, req)
	if err := library.Validate(); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if err := s.deps.Libraries.Update(r.Context(), library); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLibraryResponse(library))
}

// deleteLibrary handles DELETE /libraries/{libraryID}.
func (s *Server) deleteLibrary(w http.ResponseWriter, r *http.Request) {
	libraryID, err := pathID(r, "libraryID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if err := s.deps.Libraries.Delete(r.Context(), currentUser(r), libraryID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// addLibraryItem handles POST /libraries/{libraryID}/items.
func (s *Server) addLibraryItem(w http.ResponseWriter, r *http.Request) {
	libraryID, err := pathID(r, "libraryID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	var req addLibraryItemRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	item := &domain.LibraryItem{
		LibraryID:     libraryID,
		PaperID:       req.PaperID,
		ReadingStatus: domain.ReadingStatus(req.ReadingStatus),
		Rating:        req.Rating,
	}
	if item.ReadingStatus == "" {
		item.ReadingStatus = domain.ReadingStatusToRead
	}
	if err := item.Validate(); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	created, err := s.deps.Libraries.AddItem(r.Context(), currentUser(r), item)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLibraryItemResponse(created))
}

// listLibraryItems handles GET /libraries/{libraryID}/items.
func (s *Server) listLibraryItems(w http.ResponseWriter, r *http.Request) {
	libraryID, err := pathID(r, "libraryID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	page, err := pageRequest(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	userID := currentUser(r)
	if _, err := s.deps.Libraries.Get(r.Context(), userID, libraryID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	result, err := s.deps.Libraries.ListItems(r.Context(), userID, libraryID, page)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageResponse(result, toLibraryItemResponse))
}

// updateLibraryItem handles PATCH /libraries/{libraryID}/items/{itemID}.
func (s *Server) updateLibraryItem(w http.ResponseWriter, r *http.Request) {
	libraryID, err := pathID(r, "libraryID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	itemID, err := pathID(r, "itemID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	var req updateLibraryItemRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	userID := currentUser(r)
	item, err := s.deps.Libraries.GetItem(r.Context(), userID, libraryID, itemID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	update := domain.LibraryItemUpdate{Rating: req.Rating}
	if req.ReadingStatus != nil {
		status := domain.ReadingStatus(*req.ReadingStatus)
		update.ReadingStatus = &status
	}
	update.Apply(item)
	if err := item.Validate(); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if err := s.deps.Libraries.UpdateItem(r.Context(), userID, item); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLibraryItemResponse(item))
}

// removeLibraryItem handles DELETE /libraries/{libraryID}/items/{itemID}.
func (s *Server) removeLibraryItem(w http.ResponseWriter, r *http.Request) {
	libraryID, err := pathID(r, "libraryID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	itemID, err := pathID(r, "itemID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if err := s.deps.Libraries.RemoveItem(r.Context(), currentUser(r), libraryID, itemID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func applyLibraryRequest(l *domain.Library, req libraryRequest) {
	if req.Name != nil {
		l.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		l.Description = *req.Description
	}
}
