// Package arxiv provides a client for the arXiv Atom query API.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/helixir/paper-library-service/internal/domain"
	"github.com/helixir/paper-library-service/internal/papersources"
)

const (
	// DefaultBaseURL is the arXiv API root.
	DefaultBaseURL = "https://export.arxiv.org/api"

	// DefaultRateLimit follows arXiv's one request every three seconds.
	DefaultRateLimit = 1.0 / 3.0

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 20 * time.Second
)

// entryIDPattern extracts the id from "http://arxiv.org/abs/2301.12345v1"
// or "http://arxiv.org/abs/hep-th/9901001v1", dropping the version.
var entryIDPattern = regexp.MustCompile(`arxiv\.org/abs/(.+?)(?:v\d+)?$`)

// Config holds configuration for the arXiv client.
type Config struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string
	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration
	// RateLimit defaults to DefaultRateLimit requests per second.
	RateLimit float64
}

// Client looks up preprints by arXiv id.
type Client struct {
	httpClient *papersources.HTTPClient
	baseURL    string
}

// New creates a client. If httpClient is nil one is built from cfg.
func New(cfg Config, httpClient *papersources.HTTPClient) *Client {
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
			Source:    papersources.SourceArXiv,
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			BurstSize: 1,
		})
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// Name returns the source name.
func (c *Client) Name() string {
	return papersources.SourceArXiv
}

// GetByID fetches the preprint with the given arXiv id.
// An empty feed is reported as domain.ErrNotFound.
func (c *Client) GetByID(ctx context.Context, id string) (*papersources.Metadata, error) {
	queryURL := c.baseURL + "/query?" + url.Values{"id_list": {id}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/atom+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arxiv lookup %s: %w", id, err)
	}
	defer resp.Body.Close()

	var feed Feed
	if err := xml.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&feed); err != nil {
		return nil, domain.NewExternalAPIError(papersources.SourceArXiv, resp.StatusCode, "malformed feed", err)
	}

	for i := range feed.Entries {
		if m := toMetadata(&feed.Entries[i]); m != nil {
			return m, nil
		}
	}
	return nil, domain.NewNotFoundError("arxiv record", id)
}

// toMetadata returns nil for error entries, which carry no abs URL.
func toMetadata(e *Entry) *papersources.Metadata {
	id := extractID(e.ID)
	if id == "" {
		return nil
	}

	m := &papersources.Metadata{
		Source:   papersources.SourceArXiv,
		Title:    papersources.NormalizeWhitespace(e.Title),
		Abstract: papersources.NormalizeWhitespace(e.Summary),
		ArXivID:  id,
		DOI:      strings.TrimSpace(e.DOI),
		Journal:  papersources.NormalizeWhitespace(e.JournalRef),
		URL:      "https://arxiv.org/abs/" + id,
		PDFURL:   "https://arxiv.org/pdf/" + id,
	}
	if t, err := time.Parse(time.RFC3339, e.Published); err == nil {
		y := t.Year()
		m.Year = &y
	}
	for _, a := range e.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			m.Authors = append(m.Authors, name)
		}
	}
	for _, l := range e.Links {
		if l.Title == "pdf" || l.Type == "application/pdf" {
			m.PDFURL = strings.Replace(l.Href, "http://", "https://", 1)
			break
		}
	}
	return m
}

func extractID(entryURL string) string {
	matches := entryIDPattern.FindStringSubmatch(strings.TrimSpace(entryURL))
	if len(matches) < 2 {
		return ""
	}
	return matches[1]
}
