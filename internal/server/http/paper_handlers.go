package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/helixir/paper-library-service/internal/domain"
	"github.com/helixir/paper-library-service/internal/events"
	"github.com/helixir/paper-library-service/internal/repository"
)

type createPaperRequest struct {
	Title         string  `json:"title" validate:"required,max=500"`
	Authors       string  `json:"authors"`
	Abstract      string  `json:"abstract"`
	Year          *int    `json:"year" validate:"omitempty,gte=1000,lte=2100"`
	Journal       string  `json:"journal"`
	DOI           *string `json:"doi"`
	URL           string  `json:"url"`
	ArXivID       *string `json:"arxivId"`
	CitationCount int     `json:"citationCount" validate:"gte=0"`
	ReadingStatus string  `json:"readingStatus" validate:"omitempty,oneof=to_read reading completed"`
}

type updatePaperRequest struct {
	Title         *string `json:"title" validate:"omitempty,max=500"`
	Authors       *string `json:"authors"`
	Abstract      *string `json:"abstract"`
	Year          *int    `json:"year" validate:"omitempty,gte=1000,lte=2100"`
	Journal       *string `json:"journal"`
	DOI           *string `json:"doi"`
	URL           *string `json:"url"`
	CitationCount *int    `json:"citationCount" validate:"omitempty,gte=0"`
	IsFavorite    *bool   `json:"isFavorite"`
	ReadingStatus *string `json:"readingStatus" validate:"omitempty,oneof=to_read reading completed"`
}

type quickAddRequest struct {
	Identifier string `json:"identifier" validate:"required"`
}

type replaceTagsRequest struct {
	TagIDs []uuid.UUID `json:"tagIds" validate:"max=100"`
}

// createPaper handles POST /papers.
func (s *Server) createPaper(w http.ResponseWriter, r *http.Request) {
	var req createPaperRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	paper := &domain.Paper{
		UserID:        currentUser(r),
		Title:         strings.TrimSpace(req.Title),
		Authors:       req.Authors,
		Abstract:      req.Abstract,
		Year:          req.Year,
		Journal:       req.Journal,
		URL:           req.URL,
		ArXivID:       req.ArXivID,
		CitationCount: req.CitationCount,
		ReadingStatus: domain.ReadingStatus(req.ReadingStatus),
	}
	if paper.ReadingStatus == "" {
		paper.ReadingStatus = domain.ReadingStatusToRead
	}
	if req.DOI != nil && strings.TrimSpace(*req.DOI) != "" {
		doi := domain.NormalizeDOI(*req.DOI)
		paper.DOI = &doi
	}
	if err := paper.Validate(); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	created, err := s.deps.Papers.Create(r.Context(), paper)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.emitPaper(r, domain.EventTypePaperCreated, created)
	writeJSON(w, http.StatusCreated, toPaperResponse(created))
}

// listPapers handles GET /papers.
func (s *Server) listPapers(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	q := r.URL.Query()
	errs := domain.FieldErrors{}
	filter := domain.PaperFilter{
		Search:   strings.TrimSpace(q.Get("search")),
		Favorite: queryBool(r, "favorite", errs),
		TagID:    queryUUID(r, "tagId", errs),
		Sort:     domain.PaperSortCreatedAt,
	}
	if v := q.Get("status"); v != "" {
		status := domain.ReadingStatus(v)
		if !status.Valid() {
			errs.Add("status", "must be one of to_read, reading, completed")
		}
		filter.ReadingStatus = &status
	}
	if q.Get("year") != "" {
		year := queryInt(r, "year", 0, errs)
		filter.Year = &year
	}
	if v := q.Get("sort"); v != "" {
		switch sort := domain.PaperSort(v); sort {
		case domain.PaperSortCreatedAt, domain.PaperSortYear, domain.PaperSortTitle:
			filter.Sort = sort
		default:
			errs.Add("sort", "must be one of createdAt, year, title")
		}
	}
	if err := errs.Err(); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	result, err := s.deps.Papers.List(r.Context(), currentUser(r), filter, page)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageResponse(result, toPaperResponse))
}

// getPaper handles GET /papers/{paperID}.
func (s *Server) getPaper(w http.ResponseWriter, r *http.Request) {
	paperID, err := pathID(r, "paperID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	paper, err := s.deps.Papers.Get(r.Context(), currentUser(r), paperID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaperResponse(paper))
}

// updatePaper handles PATCH /papers/{paperID}.
func (s *Server) updatePaper(w http.ResponseWriter, r *http.Request) {
	paperID, err := pathID(r, "paperID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	var req updatePaperRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	paper, err := s.deps.Papers.Get(r.Context(), currentUser(r), paperID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	update := domain.PaperUpdate{
		Title:         req.Title,
		Authors:       req.Authors,
		Abstract:      req.Abstract,
		Year:          req.Year,
		Journal:       req.Journal,
		DOI:           req.DOI,
		URL:           req.URL,
		CitationCount: req.CitationCount,
		IsFavorite:    req.IsFavorite,
	}
	if req.ReadingStatus != nil {
		status := domain.ReadingStatus(*req.ReadingStatus)
		update.ReadingStatus = &status
	}
	update.Apply(paper)
	if err := paper.Validate(); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if err := s.deps.Papers.Update(r.Context(), paper); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.emitPaper(r, domain.EventTypePaperUpdated, paper)
	writeJSON(w, http.StatusOK, toPaperResponse(paper))
}

// deletePaper handles DELETE /papers/{paperID}.
func (s *Server) deletePaper(w http.ResponseWriter, r *http.Request) {
	paperID, err := pathID(r, "paperID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if err := s.deps.Papers.Delete(r.Context(), currentUser(r), paperID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.deps.Emitter.Emit(r.Context(), domain.EventTypePaperDeleted, events.AggregatePaper, paperID, currentUser(r),
		domain.PaperEventPayload{PaperID: paperID})
	w.WriteHeader(http.StatusNoContent)
}

// toggleFavorite handles POST /papers/{paperID}/favorite.
func (s *Server) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	paperID, err := pathID(r, "paperID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	paper, err := s.deps.Papers.ToggleFavorite(r.Context(), currentUser(r), paperID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.emitPaper(r, domain.EventTypePaperUpdated, paper)
	writeJSON(w, http.StatusOK, toPaperResponse(paper))
}

// quickAddPaper handles POST /papers/quick-add. A paper the user already
// has under the same identifier is returned as is.
func (s *Server) quickAddPaper(w http.ResponseWriter, r *http.Request) {
	var req quickAddRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	id, err := domain.ParseIdentifier(req.Identifier)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	ctx := r.Context()
	userID := currentUser(r)

	existing, err := s.deps.Papers.FindByIdentifier(ctx, userID, id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, toPaperResponse(existing))
		return
	case !errors.Is(err, domain.ErrNotFound):
		s.writeDomainError(w, r, err)
		return
	}

	meta, err := s.deps.Resolver.Resolve(ctx, id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	paper := meta.ToPaper(userID)
	if id.Kind == domain.IdentifierDOI && paper.DOI == nil {
		doi := id.Value
		paper.DOI = &doi
	}
	if id.Kind == domain.IdentifierArXiv && paper.ArXivID == nil {
		arxivID := id.Value
		paper.ArXivID = &arxivID
	}
	if err := paper.Validate(); err != nil {
		s.requestLogger(r).Warn().Err(err).Str("identifier", id.String()).Msg("resolved metadata is incomplete")
		s.writeDomainError(w, r, err)
		return
	}

	created, err := s.deps.Papers.Create(ctx, paper)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.emitPaper(r, domain.EventTypePaperCreated, created)
	writeJSON(w, http.StatusCreated, toPaperResponse(created))
}

// listPaperTags handles GET /papers/{paperID}/tags.
func (s *Server) listPaperTags(w http.ResponseWriter, r *http.Request) {
	paperID, err := pathID(r, "paperID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	userID := currentUser(r)

	if _, err := s.deps.Papers.Get(r.Context(), userID, paperID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	tags, err := s.deps.Tags.ListForPaper(r.Context(), userID, paperID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convertAll(tags, toTagResponse))
}

// replacePaperTags handles PUT /papers/{paperID}/tags.
func (s *Server) replacePaperTags(w http.ResponseWriter, r *http.Request) {
	paperID, err := pathID(r, "paperID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	var req replaceTagsRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	ctx := r.Context()
	userID := currentUser(r)
	if _, err := s.deps.Papers.Get(ctx, userID, paperID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	replace := func(tags repository.TagRepository) error {
		return tags.ReplacePaperTags(ctx, userID, paperID, req.TagIDs)
	}
	if s.deps.TagTx != nil {
		err = s.deps.TagTx(ctx, replace)
	} else {
		err = replace(s.deps.Tags)
	}
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	tags, err := s.deps.Tags.ListForPaper(ctx, userID, paperID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convertAll(tags, toTagResponse))
}

func (s *Server) emitPaper(r *http.Request, eventType string, p *domain.Paper) {
	s.deps.Emitter.Emit(r.Context(), eventType, events.AggregatePaper, p.ID, p.UserID, domain.PaperEventPayload{
		PaperID: p.ID,
		Title:   p.Title,
		DOI:     p.DOI,
	})
}
