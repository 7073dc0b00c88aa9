package httpserver

import (
	"time"

	"github.com/google/uuid"

	"github.com/helixir/paper-library-service/internal/analysis"
	"github.com/helixir/paper-library-service/internal/auth"
	"github.com/helixir/paper-library-service/internal/domain"
)

// Response types for JSON serialization.

type errorResponse struct {
	Error string `json:"error"`
}

type validationResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

type paginatedResponse[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

type userResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

type sessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

type paperResponse struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Authors       string    `json:"authors"`
	Abstract      string    `json:"abstract,omitempty"`
	Year          *int      `json:"year"`
	Journal       string    `json:"journal,omitempty"`
	DOI           *string   `json:"doi"`
	URL           string    `json:"url,omitempty"`
	ArXivID       *string   `json:"arxivId,omitempty"`
	CitationCount int       `json:"citationCount"`
	IsFavorite    bool      `json:"isFavorite"`
	ReadingStatus string    `json:"readingStatus"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type citationResponse struct {
	ID                uuid.UUID `json:"id"`
	CitingPaperID     uuid.UUID `json:"citingPaperId"`
	CitedPaperID      uuid.UUID `json:"citedPaperId"`
	RelevanceScore    *float64  `json:"relevanceScore"`
	IsInfluential     bool      `json:"isInfluential"`
	Context           string    `json:"context,omitempty"`
	CitationDepth     int       `json:"citationDepth"`
	ParsedAuthors     *string   `json:"parsedAuthors,omitempty"`
	ParsedTitle       *string   `json:"parsedTitle,omitempty"`
	ParsedYear        *int      `json:"parsedYear,omitempty"`
	ParsingConfidence *float64  `json:"parsingConfidence,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

type referenceResponse struct {
	Citation citationResponse `json:"citation"`
	Paper    paperResponse    `json:"paper"`
	HasPDF   bool             `json:"hasPdf"`
}

type scoredReferenceResponse struct {
	Citation      citationResponse `json:"citation"`
	Paper         paperResponse    `json:"paper"`
	Score         float64          `json:"score"`
	CitationCount int              `json:"citationCount"`
	HasPDF        bool             `json:"hasPdf"`
}

type recommendationsResponse struct {
	HighPriority   int `json:"highPriority"`
	ShouldDownload int `json:"shouldDownload"`
}

type referenceAnalysisResponse struct {
	PaperID            uuid.UUID                 `json:"paperId"`
	TopReferences      []scoredReferenceResponse `json:"topReferences"`
	Recommendations    recommendationsResponse   `json:"recommendations"`
	TotalReferences    int                       `json:"totalReferences"`
	AnalyzedReferences int                       `json:"analyzedReferences"`
}

type networkNodeResponse struct {
	ID      uuid.UUID `json:"id"`
	Title   string    `json:"title"`
	Year    *int      `json:"year"`
	Authors string    `json:"authors"`
}

type networkEdgeResponse struct {
	Source uuid.UUID `json:"source"`
	Target uuid.UUID `json:"target"`
}

type networkResponse struct {
	Nodes []networkNodeResponse `json:"nodes"`
	Edges []networkEdgeResponse `json:"edges"`
}

type tagResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Color      string    `json:"color"`
	PaperCount int       `json:"paperCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

type noteResponse struct {
	ID              uuid.UUID `json:"id"`
	PaperID         uuid.UUID `json:"paperId"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	HighlightedText *string   `json:"highlightedText,omitempty"`
	PageNumber      *int      `json:"pageNumber,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type libraryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ItemCount   int       `json:"itemCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type libraryItemResponse struct {
	ID            uuid.UUID      `json:"id"`
	LibraryID     uuid.UUID      `json:"libraryId"`
	PaperID       uuid.UUID      `json:"paperId"`
	ReadingStatus string         `json:"readingStatus"`
	Rating        *int           `json:"rating"`
	AddedAt       time.Time      `json:"addedAt"`
	Paper         *paperResponse `json:"paper,omitempty"`
}

type pdfFileResponse struct {
	ID          uuid.UUID `json:"id"`
	PaperID     uuid.UUID `json:"paperId"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	ContentHash string    `json:"contentHash"`
	CreatedAt   time.Time `json:"createdAt"`
}

type downloadLogResponse struct {
	ID           uuid.UUID `json:"id"`
	PaperID      uuid.UUID `json:"paperId"`
	Method       string    `json:"method"`
	Status       string    `json:"status"`
	ErrorMessage *string   `json:"errorMessage"`
	RetryCount   int       `json:"retryCount"`
	SourceURL    string    `json:"sourceUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type fetchResponse struct {
	WorkflowID string `json:"workflowId"`
	RunID      string `json:"runId"`
	Status     string `json:"status"`
}

type fetchStatusResponse struct {
	WorkflowID string `json:"workflowId"`
	Status     string `json:"status"`
}

type summaryResponse struct {
	ID          uuid.UUID `json:"id"`
	PaperID     uuid.UUID `json:"paperId"`
	Summary     string    `json:"summary"`
	KeyFindings []string  `json:"keyFindings"`
	Model       string    `json:"model"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type chatResponse struct {
	Reply string `json:"reply"`
	Model string `json:"model"`
}

type publisherAccountResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Publisher          string     `json:"publisher"`
	Username           string     `json:"username"`
	Institution        string     `json:"institution,omitempty"`
	VerificationStatus string     `json:"verificationStatus"`
	LastVerifiedAt     *time.Time `json:"lastVerifiedAt"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// Conversion helpers.

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func toSessionResponse(s *auth.Session) sessionResponse {
	return sessionResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		User:      toUserResponse(s.User),
	}
}

func toPaperResponse(p *domain.Paper) paperResponse {
	return paperResponse{
		ID:            p.ID,
		Title:         p.Title,
		Authors:       p.Authors,
		Abstract:      p.Abstract,
		Year:          p.Year,
		Journal:       p.Journal,
		DOI:           p.DOI,
		URL:           p.URL,
		ArXivID:       p.ArXivID,
		CitationCount: p.CitationCount,
		IsFavorite:    p.IsFavorite,
		ReadingStatus: string(p.ReadingStatus),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toCitationResponse(c *domain.Citation) citationResponse {
	return citationResponse{
		ID:                c.ID,
		CitingPaperID:     c.CitingPaperID,
		CitedPaperID:      c.CitedPaperID,
		RelevanceScore:    c.RelevanceScore,
		IsInfluential:     c.IsInfluential,
		Context:           c.Context,
		CitationDepth:     c.Depth,
		ParsedAuthors:     c.ParsedAuthors,
		ParsedTitle:       c.ParsedTitle,
		ParsedYear:        c.ParsedYear,
		ParsingConfidence: c.ParsingConfidence,
		CreatedAt:         c.CreatedAt,
	}
}

func toReferenceResponse(ref *domain.Reference) referenceResponse {
	return referenceResponse{
		Citation: toCitationResponse(&ref.Citation),
		Paper:    toPaperResponse(&ref.Paper),
		HasPDF:   ref.HasPDF,
	}
}

func toAnalysisResponse(a *analysis.ReferenceAnalysis) referenceAnalysisResponse {
	top := make([]scoredReferenceResponse, len(a.TopReferences))
	for i, sr := range a.TopReferences {
		top[i] = scoredReferenceResponse{
			Citation:      toCitationResponse(&sr.Reference.Citation),
			Paper:         toPaperResponse(&sr.Reference.Paper),
			Score:         sr.Score,
			CitationCount: sr.Reference.Paper.CitationCount,
			HasPDF:        sr.Reference.HasPDF,
		}
	}
	return referenceAnalysisResponse{
		PaperID:       a.PaperID,
		TopReferences: top,
		Recommendations: recommendationsResponse{
			HighPriority:   a.Recommendations.HighPriority,
			ShouldDownload: a.Recommendations.ShouldDownload,
		},
		TotalReferences:    a.TotalReferences,
		AnalyzedReferences: a.AnalyzedReferences,
	}
}

func toNetworkResponse(n *analysis.Network) networkResponse {
	nodes := make([]networkNodeResponse, len(n.Nodes))
	for i, node := range n.Nodes {
		nodes[i] = networkNodeResponse{ID: node.ID, Title: node.Title, Year: node.Year, Authors: node.Authors}
	}
	edges := make([]networkEdgeResponse, len(n.Edges))
	for i, e := range n.Edges {
		edges[i] = networkEdgeResponse{Source: e.Source, Target: e.Target}
	}
	return networkResponse{Nodes: nodes, Edges: edges}
}

func toTagResponse(t *domain.Tag) tagResponse {
	return tagResponse{
		ID:         t.ID,
		Name:       t.Name,
		Color:      t.Color,
		PaperCount: t.PaperCount,
		CreatedAt:  t.CreatedAt,
	}
}

func toNoteResponse(n *domain.Note) noteResponse {
	return noteResponse{
		ID:              n.ID,
		PaperID:         n.PaperID,
		Title:           n.Title,
		Content:         n.Content,
		HighlightedText: n.HighlightedText,
		PageNumber:      n.PageNumber,
		CreatedAt:       n.CreatedAt,
		UpdatedAt:       n.UpdatedAt,
	}
}

func toLibraryResponse(l *domain.Library) libraryResponse {
	return libraryResponse{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		ItemCount:   l.ItemCount,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func toLibraryItemResponse(i *domain.LibraryItem) libraryItemResponse {
	resp := libraryItemResponse{
		ID:            i.ID,
		LibraryID:     i.LibraryID,
		PaperID:       i.PaperID,
		ReadingStatus: string(i.ReadingStatus),
		Rating:        i.Rating,
		AddedAt:       i.AddedAt,
	}
	if i.Paper != nil {
		p := toPaperResponse(i.Paper)
		resp.Paper = &p
	}
	return resp
}

func toPdfFileResponse(f *domain.PdfFile) pdfFileResponse {
	return pdfFileResponse{
		ID:          f.ID,
		PaperID:     f.PaperID,
		FileName:    f.FileName,
		ContentType: f.ContentType,
		SizeBytes:   f.SizeBytes,
		ContentHash: f.ContentHash,
		CreatedAt:   f.CreatedAt,
	}
}

func toDownloadLogResponse(l *domain.DownloadLog) downloadLogResponse {
	return downloadLogResponse{
		ID:           l.ID,
		PaperID:      l.PaperID,
		Method:       string(l.Method),
		Status:       string(l.Status),
		ErrorMessage: l.ErrorMessage,
		RetryCount:   l.RetryCount,
		SourceURL:    l.SourceURL,
		CreatedAt:    l.CreatedAt,
	}
}

func toSummaryResponse(s *domain.AiSummary) summaryResponse {
	findings := s.KeyFindings
	if findings == nil {
		findings = []string{}
	}
	return summaryResponse{
		ID:          s.ID,
		PaperID:     s.PaperID,
		Summary:     s.Summary,
		KeyFindings: findings,
		Model:       s.Model,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func toPublisherAccountResponse(a *domain.PublisherAccount) publisherAccountResponse {
	return publisherAccountResponse{
		ID:                 a.ID,
		Publisher:          a.Publisher,
		Username:           a.Username,
		Institution:        a.Institution,
		VerificationStatus: string(a.VerificationStatus),
		LastVerifiedAt:     a.LastVerifiedAt,
		CreatedAt:          a.CreatedAt,
	}
}
