// Package papersources holds the shared HTTP plumbing and result type for the
// bibliographic metadata APIs (Semantic Scholar, OpenAlex, arXiv, Unpaywall).
// Each API lives in its own subpackage; internal/metadata composes them.
package papersources

import (
	"strings"

	"github.com/google/uuid"

	"github.com/helixir/paper-library-service/internal/domain"
)

// Source names, used in errors, logs and metrics labels.
const (
	SourceSemanticScholar = "semantic_scholar"
	SourceOpenAlex        = "openalex"
	SourceArXiv           = "arxiv"
	SourceUnpaywall       = "unpaywall"
)

// Metadata is the bibliographic record returned by a source.
type Metadata struct {
	Source        string   `json:"source"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors,omitempty"`
	Abstract      string   `json:"abstract,omitempty"`
	Year          *int     `json:"year,omitempty"`
	Journal       string   `json:"journal,omitempty"`
	DOI           string   `json:"doi,omitempty"`
	ArXivID       string   `json:"arxivId,omitempty"`
	URL           string   `json:"url,omitempty"`
	CitationCount int      `json:"citationCount"`
	// PDFURL is an open-access PDF location when the source knows one.
	PDFURL string `json:"pdfUrl,omitempty"`
}

// ToPaper builds an unsaved paper owned by userID.
func (m *Metadata) ToPaper(userID uuid.UUID) *domain.Paper {
	p := &domain.Paper{
		UserID:        userID,
		Title:         strings.TrimSpace(m.Title),
		Authors:       strings.Join(m.Authors, ", "),
		Abstract:      m.Abstract,
		Journal:       m.Journal,
		URL:           m.URL,
		CitationCount: m.CitationCount,
		ReadingStatus: domain.ReadingStatusToRead,
	}
	if m.Year != nil && *m.Year >= domain.MinYear && *m.Year <= domain.MaxYear {
		y := *m.Year
		p.Year = &y
	}
	if m.DOI != "" {
		doi := domain.NormalizeDOI(m.DOI)
		if domain.IsDOI(doi) {
			p.DOI = &doi
		}
	}
	if m.ArXivID != "" {
		id := m.ArXivID
		p.ArXivID = &id
	}
	if p.CitationCount < 0 {
		p.CitationCount = 0
	}
	return p
}

// NormalizeWhitespace trims s and collapses runs of whitespace.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
