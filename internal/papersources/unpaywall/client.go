// Package unpaywall looks up open-access PDF locations for DOIs.
//
// API Documentation: https://unpaywall.org/products/api
package unpaywall

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/helixir/paper-library-service/internal/domain"
	"github.com/helixir/paper-library-service/internal/papersources"
)

const (
	// DefaultBaseURL is the Unpaywall API root.
	DefaultBaseURL = "https://api.unpaywall.org/v2"

	// DefaultRateLimit stays under the documented daily quota.
	DefaultRateLimit = 5.0

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 15 * time.Second
)

// Config holds configuration for the Unpaywall client.
type Config struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string
	// Email is required by the API on every request.
	Email string
	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration
	// RateLimit defaults to DefaultRateLimit requests per second.
	RateLimit float64
}

type response struct {
	DOI            string     `json:"doi"`
	IsOA           bool       `json:"is_oa"`
	BestOALocation *location  `json:"best_oa_location"`
	OALocations    []location `json:"oa_locations"`
}

type location struct {
	URL       string `json:"url"`
	URLForPDF string `json:"url_for_pdf"`
}

// Client resolves DOIs to open-access PDF URLs.
type Client struct {
	httpClient *papersources.HTTPClient
	baseURL    string
	email      string
}

// New creates a client. Email must be set.
func New(cfg Config, httpClient *papersources.HTTPClient) (*Client, error) {
	if cfg.Email == "" {
		return nil, errors.New("unpaywall requires a contact email")
	}
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
			Source:    papersources.SourceUnpaywall,
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			BurstSize: 1,
		})
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		email:      cfg.Email,
	}, nil
}

// Name returns the source name.
func (c *Client) Name() string {
	return papersources.SourceUnpaywall
}

// FindPDF returns the best open-access PDF URL for doi, or
// domain.ErrNotFound when no free PDF is known.
func (c *Client) FindPDF(ctx context.Context, doi string) (string, error) {
	reqURL := c.baseURL + "/" + doi + "?" + url.Values{"email": {c.email}}.Encode()

	var resp response
	if err := c.httpClient.GetJSON(ctx, reqURL, &resp); err != nil {
		return "", fmt.Errorf("unpaywall lookup %s: %w", doi, err)
	}

	if resp.BestOALocation != nil && resp.BestOALocation.URLForPDF != "" {
		return resp.BestOALocation.URLForPDF, nil
	}
	for _, loc := range resp.OALocations {
		if loc.URLForPDF != "" {
			return loc.URLForPDF, nil
		}
	}
	return "", domain.NewNotFoundError("open access pdf", doi)
}
