package semanticscholar

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/helixir/paper-library-service/internal/papersources"
)

const (
	// DefaultBaseURL is the Semantic Scholar Graph API root.
	DefaultBaseURL = "https://api.semanticscholar.org/graph/v1"

	// DefaultRateLimit matches the unauthenticated quota.
	DefaultRateLimit = 1.0

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 15 * time.Second

	apiKeyHeader = "x-api-key"

	paperFields = "paperId,externalIds,title,abstract,year,venue,journal,authors,citationCount,url,openAccessPdf"
)

// Config contains configuration options for the Semantic Scholar client.
type Config struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string
	// APIKey raises the rate limit when set.
	APIKey string
	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration
	// RateLimit defaults to DefaultRateLimit requests per second.
	RateLimit float64
}

// Client looks up papers by DOI or arXiv id.
type Client struct {
	httpClient *papersources.HTTPClient
	baseURL    string
}

// NewClient creates a client. If httpClient is nil one is built from cfg.
func NewClient(cfg Config, httpClient *papersources.HTTPClient) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if httpClient == nil {
		httpClient = papersources.NewHTTPClient(papersources.HTTPClientConfig{
			Source:       papersources.SourceSemanticScholar,
			Timeout:      cfg.Timeout,
			RateLimit:    cfg.RateLimit,
			BurstSize:    1,
			APIKey:       cfg.APIKey,
			APIKeyHeader: apiKeyHeader,
		})
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// Name returns the source name.
func (c *Client) Name() string {
	return papersources.SourceSemanticScholar
}

// GetByDOI fetches the paper with the given DOI.
func (c *Client) GetByDOI(ctx context.Context, doi string) (*papersources.Metadata, error) {
	return c.getPaper(ctx, "DOI:"+doi)
}

// GetByArXiv fetches the paper with the given arXiv id.
func (c *Client) GetByArXiv(ctx context.Context, arxivID string) (*papersources.Metadata, error) {
	return c.getPaper(ctx, "ARXIV:"+arxivID)
}

func (c *Client) getPaper(ctx context.Context, id string) (*papersources.Metadata, error) {
	paperURL := fmt.Sprintf("%s/paper/%s?fields=%s", c.baseURL, url.PathEscape(id), paperFields)

	var result PaperResult
	if err := c.httpClient.GetJSON(ctx, paperURL, &result); err != nil {
		return nil, fmt.Errorf("semantic scholar lookup %s: %w", id, err)
	}
	return toMetadata(result), nil
}

func toMetadata(r PaperResult) *papersources.Metadata {
	m := &papersources.Metadata{
		Source:        papersources.SourceSemanticScholar,
		Title:         papersources.NormalizeWhitespace(r.Title),
		Abstract:      strings.TrimSpace(r.Abstract),
		Journal:       r.Venue,
		URL:           r.URL,
		CitationCount: r.CitationCount,
	}
	if r.Year > 0 {
		y := r.Year
		m.Year = &y
	}
	if r.Journal != nil && r.Journal.Name != "" {
		m.Journal = r.Journal.Name
	}
	for _, a := range r.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			m.Authors = append(m.Authors, name)
		}
	}
	if r.ExternalIDs != nil {
		m.DOI = r.ExternalIDs.DOI
		m.ArXivID = r.ExternalIDs.ArXiv
	}
	if r.OpenAccessPDF != nil {
		m.PDFURL = r.OpenAccessPDF.URL
	}
	return m
}
