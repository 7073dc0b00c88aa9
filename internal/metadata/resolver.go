// Package metadata resolves DOIs and arXiv ids to bibliographic records and
// open-access PDF locations by chaining the papersources clients.
package metadata

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/helixir/paper-library-service/internal/config"
	"github.com/helixir/paper-library-service/internal/domain"
	"github.com/helixir/paper-library-service/internal/observability"
	"github.com/helixir/paper-library-service/internal/papersources"
	"github.com/helixir/paper-library-service/internal/papersources/arxiv"
	"github.com/helixir/paper-library-service/internal/papersources/openalex"
	"github.com/helixir/paper-library-service/internal/papersources/semanticscholar"
	"github.com/helixir/paper-library-service/internal/papersources/unpaywall"
)

// Lookup is one source able to fetch a record for an identifier value.
type Lookup struct {
	Source string
	Fetch  func(ctx context.Context, value string) (*papersources.Metadata, error)
}

// Cache stores resolved records. Implementations swallow their own failures.
type Cache interface {
	Get(ctx context.Context, id domain.Identifier) (*papersources.Metadata, bool)
	Set(ctx context.Context, id domain.Identifier, m *papersources.Metadata)
}

// PDFFinder locates an open-access PDF for a DOI.
type PDFFinder interface {
	FindPDF(ctx context.Context, doi string) (string, error)
}

// Sources lists the lookups tried, in order, per identifier kind.
type Sources struct {
	DOI   []Lookup
	ArXiv []Lookup
	PDF   PDFFinder
}

// Resolver tries each source in order and falls through on any error.
type Resolver struct {
	sources Sources
	cache   Cache
	metrics *observability.Metrics
	logger  zerolog.Logger
}

// NewResolver creates a Resolver over explicit sources. cache and metrics may be nil.
func NewResolver(sources Sources, cache Cache, metrics *observability.Metrics, logger zerolog.Logger) *Resolver {
	return &Resolver{
		sources: sources,
		cache:   cache,
		metrics: metrics,
		logger:  logger.With().Str("component", "metadata_resolver").Logger(),
	}
}

// New builds the enabled clients from cfg.
// DOI: Semantic Scholar then OpenAlex. arXiv: arXiv then Semantic Scholar.
func New(cfg config.PaperSourcesConfig, cache Cache, metrics *observability.Metrics, logger zerolog.Logger) (*Resolver, error) {
	var sources Sources

	var s2 *semanticscholar.Client
	if c := cfg.SemanticScholar; c.Enabled {
		s2 = semanticscholar.NewClient(semanticscholar.Config{
			BaseURL:   c.BaseURL,
			APIKey:    c.APIKey,
			Timeout:   c.Timeout,
			RateLimit: c.RateLimit,
		}, nil)
		sources.DOI = append(sources.DOI, Lookup{Source: s2.Name(), Fetch: s2.GetByDOI})
	}
	if c := cfg.OpenAlex; c.Enabled {
		oa := openalex.New(openalex.Config{
			BaseURL:   c.BaseURL,
			Email:     cfg.ContactEmail,
			Timeout:   c.Timeout,
			RateLimit: c.RateLimit,
		}, nil)
		sources.DOI = append(sources.DOI, Lookup{Source: oa.Name(), Fetch: oa.GetByDOI})
	}
	if c := cfg.ArXiv; c.Enabled {
		ax := arxiv.New(arxiv.Config{
			BaseURL:   c.BaseURL,
			Timeout:   c.Timeout,
			RateLimit: c.RateLimit,
		}, nil)
		sources.ArXiv = append(sources.ArXiv, Lookup{Source: ax.Name(), Fetch: ax.GetByID})
	}
	if s2 != nil {
		sources.ArXiv = append(sources.ArXiv, Lookup{Source: s2.Name(), Fetch: s2.GetByArXiv})
	}
	if c := cfg.Unpaywall; c.Enabled {
		if cfg.ContactEmail == "" {
			logger.Warn().Msg("unpaywall disabled: paper_sources.contact_email is not set")
		} else {
			up, err := unpaywall.New(unpaywall.Config{
				BaseURL:   c.BaseURL,
				Email:     cfg.ContactEmail,
				Timeout:   c.Timeout,
				RateLimit: c.RateLimit,
			}, nil)
			if err != nil {
				return nil, fmt.Errorf("failed to create unpaywall client: %w", err)
			}
			sources.PDF = up
		}
	}

	return NewResolver(sources, cache, metrics, logger), nil
}

// Resolve returns metadata for id. Returns domain.ErrNotFound when every
// source reports the record missing, and the last upstream error otherwise.
func (r *Resolver) Resolve(ctx context.Context, id domain.Identifier) (*papersources.Metadata, error) {
	var lookups []Lookup
	switch id.Kind {
	case domain.IdentifierDOI:
		lookups = r.sources.DOI
	case domain.IdentifierArXiv:
		lookups = r.sources.ArXiv
	default:
		return nil, domain.NewValidationError("identifier", "unsupported identifier kind")
	}
	if len(lookups) == 0 {
		return nil, fmt.Errorf("%w: no metadata source for %s identifiers", domain.ErrFeatureDisabled, id.Kind)
	}

	if r.cache != nil {
		if m, ok := r.cache.Get(ctx, id); ok {
			if r.metrics != nil {
				r.metrics.RecordMetadataCacheHit()
			}
			return m, nil
		}
	}

	var lastErr error
	for _, l := range lookups {
		m, err := l.Fetch(ctx, id.Value)
		if err == nil {
			r.record(l.Source, "success")
			if r.cache != nil {
				r.cache.Set(ctx, id, m)
			}
			return m, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if errors.Is(err, domain.ErrNotFound) {
			r.record(l.Source, "not_found")
		} else {
			r.record(l.Source, "error")
			r.logger.Warn().Err(err).Str("source", l.Source).Str("identifier", id.String()).Msg("metadata lookup failed")
			lastErr = err
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, domain.NewNotFoundError("paper metadata", id.String())
}

// FindOpenAccessPDF returns a free PDF URL for paper. It tries Unpaywall,
// then the PDF links known to the metadata sources, then arXiv directly.
func (r *Resolver) FindOpenAccessPDF(ctx context.Context, paper *domain.Paper) (string, error) {
	if paper.DOI != nil && *paper.DOI != "" {
		if r.sources.PDF != nil {
			u, err := r.sources.PDF.FindPDF(ctx, *paper.DOI)
			switch {
			case err == nil:
				r.record(papersources.SourceUnpaywall, "success")
				return u, nil
			case errors.Is(err, domain.ErrNotFound):
				r.record(papersources.SourceUnpaywall, "not_found")
			default:
				r.record(papersources.SourceUnpaywall, "error")
				r.logger.Warn().Err(err).Str("doi", *paper.DOI).Msg("unpaywall lookup failed")
			}
		}
		if u := r.pdfFromMetadata(ctx, domain.Identifier{Kind: domain.IdentifierDOI, Value: *paper.DOI}); u != "" {
			return u, nil
		}
	}

	if paper.ArXivID != nil && *paper.ArXivID != "" {
		return "https://arxiv.org/pdf/" + *paper.ArXivID, nil
	}

	return "", domain.NewNotFoundError("open access pdf", paper.ID.String())
}

func (r *Resolver) pdfFromMetadata(ctx context.Context, id domain.Identifier) string {
	m, err := r.Resolve(ctx, id)
	if err != nil {
		return ""
	}
	return m.PDFURL
}

func (r *Resolver) record(source, status string) {
	if r.metrics != nil {
		r.metrics.RecordMetadataLookup(source, status)
	}
}
