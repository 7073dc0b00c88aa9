package httpserver

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/helixir/paper-library-service/internal/analysis"
	"github.com/helixir/paper-library-service/internal/domain"
	"github.com/helixir/paper-library-service/internal/events"
)

type createCitationRequest struct {
	CitingPaperID     uuid.UUID `json:"citingPaperId" validate:"required"`
	CitedPaperID      uuid.UUID `json:"citedPaperId" validate:"required"`
	RelevanceScore    *float64  `json:"relevanceScore" validate:"omitempty,gte=0,lte=1"`
	IsInfluential     bool      `json:"isInfluential"`
	Context           string    `json:"context"`
	CitationDepth     *int      `json:"citationDepth" validate:"omitempty,gte=1"`
	ParsedAuthors     *string   `json:"parsedAuthors"`
	ParsedTitle       *string   `json:"parsedTitle"`
	ParsedYear        *int      `json:"parsedYear"`
	ParsingConfidence *float64  `json:"parsingConfidence" validate:"omitempty,gte=0,lte=1"`
}

type updateCitationRequest struct {
	RelevanceScore    *float64 `json:"relevanceScore" validate:"omitempty,gte=0,lte=1"`
	IsInfluential     *bool    `json:"isInfluential"`
	Context           *string  `json:"context"`
	CitationDepth     *int     `json:"citationDepth" validate:"omitempty,gte=1"`
	ParsedAuthors     *string  `json:"parsedAuthors"`
	ParsedTitle       *string  `json:"parsedTitle"`
	ParsedYear        *int     `json:"parsedYear"`
	ParsingConfidence *float64 `json:"parsingConfidence" validate:"omitempty,gte=0,lte=1"`
}

// createCitation handles POST /citations.
func (s *Server) createCitation(w http.ResponseWriter, r *http.Request) {
	var req createCitationRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	citation := &domain.Citation{
		UserID:            currentUser(r),
		CitingPaperID:     req.CitingPaperID,
		CitedPaperID:      req.CitedPaperID,
		RelevanceScore:    req.RelevanceScore,
		IsInfluential:     req.IsInfluential,
		Context:           req.Context,
		Depth:             1,
		ParsedAuthors:     req.ParsedAuthors,
		ParsedTitle:       req.ParsedTitle,
		ParsedYear:        req.ParsedYear,
		ParsingConfidence: req.ParsingConfidence,
	}
	if req.CitationDepth != nil {
		citation.Depth = *req.CitationDepth
	}
	if err := citation.Validate(); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	created, err := s.deps.Citations.Create(r.Context(), citation)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.deps.Emitter.Emit(r.Context(), domain.EventTypeCitationCreated, events.AggregateCitation, created.ID, created.UserID,
		domain.CitationEventPayload{
			CitationID:    created.ID,
			CitingPaperID: created.CitingPaperID,
			CitedPaperID:  created.CitedPaperID,
		})
	writeJSON(w, http.StatusCreated, toCitationResponse(created))
}

// updateCitation handles PATCH /citations/{citationID}.
func (s *Server) updateCitation(w http.ResponseWriter, r *http.Request) {
	citationID, err := pathID(r, "citationID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	var req updateCitationRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	citation, err := s.deps.Citations.Get(r.Context(), currentUser(r), citationID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	domain.CitationUpdate{
		RelevanceScore:    req.RelevanceScore,
		IsInfluential:     req.IsInfluential,
		Context:           req.Context,
		Depth:             req.CitationDepth,
		ParsedAuthors:     req.ParsedAuthors,
		ParsedTitle:       req.ParsedTitle,
		ParsedYear:        req.ParsedYear,
		ParsingConfidence: req.ParsingConfidence,
	}.Apply(citation)
	if err := citation.Validate(); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if err := s.deps.Citations.Update(r.Context(), citation); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCitationResponse(citation))
}

// deleteCitation handles DELETE /citations/{citationID}.
func (s *Server) deleteCitation(w http.ResponseWriter, r *http.Request) {
	citationID, err := pathID(r, "citationID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	ctx := r.Context()
	userID := currentUser(r)

	citation, err := s.deps.Citations.Get(ctx, userID, citationID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if err := s.deps.Citations.Delete(ctx, userID, citationID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.deps.Emitter.Emit(ctx, domain.EventTypeCitationDeleted, events.AggregateCitation, citationID, userID,
		domain.CitationEventPayload{
			CitationID:    citationID,
			CitingPaperID: citation.CitingPaperID,
			CitedPaperID:  citation.CitedPaperID,
		})
	w.WriteHeader(http.StatusNoContent)
}

// listReferences handles GET /citations/paper/{paperID}/references.
func (s *Server) listReferences(w http.ResponseWriter, r *http.Request) {
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
	refs, err := s.deps.Citations.ListReferences(r.Context(), userID, paperID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convertAll(refs, toReferenceResponse))
}

// listCitedBy handles GET /citations/paper/{paperID}/cited-by.
func (s *Server) listCitedBy(w http.ResponseWriter, r *http.Request) {
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
	refs, err := s.deps.Citations.ListCitedBy(r.Context(), userID, paperID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convertAll(refs, toReferenceResponse))
}

// analyzeReferences handles GET /citations/paper/{paperID}/analyze.
func (s *Server) analyzeReferences(w http.ResponseWriter, r *http.Request) {
	paperID, err := pathID(r, "paperID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	errs := domain.FieldErrors{}
	opts := analysis.DefaultRankOptions()
	opts.Limit = queryInt(r, "limit", opts.Limit, errs)
	opts.MinRelevance = queryFloat(r, "minRelevance", opts.MinRelevance, errs)
	if err := errs.Err(); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if err := opts.Validate(); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	result, err := s.deps.Analysis.AnalyzeReferences(r.Context(), currentUser(r), paperID, opts)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAnalysisResponse(result))
}

// citationNetwork handles GET /citations/network/{paperID}.
func (s *Server) citationNetwork(w http.ResponseWriter, r *http.Request) {
	paperID, err := pathID(r, "paperID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	errs := domain.FieldErrors{}
	depth := queryInt(r, "depth", analysis.DefaultDepth, errs)
	if err := errs.Err(); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if _, err := analysis.NormalizeDepth(depth); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	network, err := s.deps.Analysis.CitationNetwork(r.Context(), currentUser(r), paperID, depth)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toNetworkResponse(network))
}
