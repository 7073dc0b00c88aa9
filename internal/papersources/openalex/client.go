package openalex

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/helixir/paper-library-service/internal/papersources"
)

const (
	// DefaultBaseURL is the OpenAlex API root.
	DefaultBaseURL = "https://api.openalex.org"

	// DefaultRateLimit stays well under the polite pool limit.
	DefaultRateLimit = 5.0

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 15 * time.Second

	doiURLPrefix     = "https://doi.org/"
	maxAbstractWords = 100_000
)

// Config holds configuration for the OpenAlex client.
type Config struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string
	// Email is sent as mailto to join the polite pool.
	Email string
	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration
	// RateLimit defaults to DefaultRateLimit requests per second.
	RateLimit float64
}

// Client looks up works by DOI.
type Client struct {
	httpClient *papersources.HTTPClient
	baseURL    string
	email      string
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
			Source:    papersources.SourceOpenAlex,
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			BurstSize: 2,
		})
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		email:      cfg.Email,
	}
}

// Name returns the source name.
func (c *Client) Name() string {
	return papersources.SourceOpenAlex
}

// GetByDOI fetches the work registered under doi.
func (c *Client) GetByDOI(ctx context.Context, doi string) (*papersources.Metadata, error) {
	// OpenAlex expects the DOI URL verbatim in the path.
	workURL := c.baseURL + "/works/" + doiURLPrefix + doi
	if c.email != "" {
		workURL += "?" + url.Values{"mailto": {c.email}}.Encode()
	}

	var work Work
	if err := c.httpClient.GetJSON(ctx, workURL, &work); err != nil {
		return nil, fmt.Errorf("openalex lookup %s: %w", doi, err)
	}
	return toMetadata(&work), nil
}

func toMetadata(w *Work) *papersources.Metadata {
	m := &papersources.Metadata{
		Source:        papersources.SourceOpenAlex,
		Title:         papersources.NormalizeWhitespace(w.DisplayName),
		Abstract:      reconstructAbstract(w.AbstractInvertedIndex),
		CitationCount: w.CitedByCount,
		DOI:           strings.TrimPrefix(strings.ToLower(firstNonEmpty(w.DOI, w.IDs.DOI)), doiURLPrefix),
	}
	if m.Title == "" {
		m.Title = papersources.NormalizeWhitespace(w.Title)
	}
	if w.PublicationYear > 0 {
		y := w.PublicationYear
		m.Year = &y
	}
	for _, a := range w.Authorships {
		if name := strings.TrimSpace(a.Author.DisplayName); name != "" {
			m.Authors = append(m.Authors, name)
		}
	}
	if loc := w.PrimaryLocation; loc != nil {
		if loc.Source != nil {
			m.Journal = loc.Source.DisplayName
		}
		m.URL = loc.LandingPageURL
	}
	switch {
	case w.BestOALocation != nil && w.BestOALocation.PDFURL != "":
		m.PDFURL = w.BestOALocation.PDFURL
	case w.PrimaryLocation != nil && w.PrimaryLocation.PDFURL != "":
		m.PDFURL = w.PrimaryLocation.PDFURL
	}
	return m
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// reconstructAbstract rebuilds text from OpenAlex's word -> positions index.
func reconstructAbstract(index map[string][]int) string {
	if len(index) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	total := 0
	for _, positions := range index {
		total += len(positions)
	}
	if total > maxAbstractWords {
		return ""
	}

	pairs := make([]posWord, 0, total)
	for word, positions := range index {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].pos < pairs[j].pos })

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}
