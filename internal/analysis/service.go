package analysis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/helixir/paper-library-service/internal/domain"
	"github.com/helixir/paper-library-service/internal/observability"
)

// PaperReader is the subset of the paper repository the service needs.
type PaperReader interface {
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.Paper, error)
	GetMany(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*domain.Paper, error)
}

// CitationReader is the subset of the citation repository the service needs.
type CitationReader interface {
	ListReferences(ctx context.Context, userID, paperID uuid.UUID) ([]*domain.Reference, error)
	ListEdgesTouching(ctx context.Context, userID uuid.UUID, paperIDs []uuid.UUID) ([]domain.CitationEdge, error)
}

// Service loads data for ranking and network assembly on behalf of a user.
type Service struct {
	papers    PaperReader
	citations CitationReader
	metrics   *observability.Metrics
	logger    zerolog.Logger
}

// NewService creates an analysis service. metrics may be nil.
func NewService(papers PaperReader, citations CitationReader, metrics *observability.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		papers:    papers,
		citations: citations,
		metrics:   metrics,
		logger:    logger.With().Str("component", "analysis").Logger(),
	}
}

// AnalyzeReferences ranks the outgoing citations of one of the user's papers.
// Returns domain.ErrNotFound if the paper does not exist or is not the user's.
func (s *Service) AnalyzeReferences(ctx context.Context, userID, paperID uuid.UUID, opts RankOptions) (*ReferenceAnalysis, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.papers.Get(ctx, userID, paperID); err != nil {
		return nil, err
	}

	refs, err := s.citations.ListReferences(ctx, userID, paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to load references: %w", err)
	}

	result, err := RankReferences(paperID, refs, opts)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordReferenceAnalysis(result.AnalyzedReferences)
	}
	s.logger.Debug().
		Str("paper_id", paperID.String()).
		Int("total", result.TotalReferences).
		Int("analyzed", result.AnalyzedReferences).
		Int("high_priority", result.Recommendations.HighPriority).
		Msg("references ranked")

	return result, nil
}

// CitationNetwork assembles the network around one of the user's papers.
// Returns domain.ErrNotFound if the paper does not exist or is not the user's.
func (s *Service) CitationNetwork(ctx context.Context, userID, paperID uuid.UUID, depth int) (*Network, error) {
	depth, err := NormalizeDepth(depth)
	if err != nil {
		return nil, err
	}

	focal, err := s.papers.Get(ctx, userID, paperID)
	if err != nil {
		return nil, err
	}

	load := func(ctx context.Context, frontier []uuid.UUID) ([]domain.CitationEdge, error) {
		return s.citations.ListEdgesTouching(ctx, userID, frontier)
	}
	traversal, err := BuildNetwork(ctx, paperID, depth, load)
	if err != nil {
		return nil, err
	}

	papers, err := s.papers.GetMany(ctx, userID, traversal.NodeIDs[1:])
	if err != nil {
		return nil, fmt.Errorf("failed to load network papers: %w", err)
	}
	if papers == nil {
		papers = make(map[uuid.UUID]*domain.Paper, 1)
	}
	papers[focal.ID] = focal

	network := Assemble(traversal, papers)

	if s.metrics != nil {
		s.metrics.RecordNetworkBuild(strconv.Itoa(depth), len(network.Nodes), len(network.Edges))
	}
	s.logger.Debug().
		Str("paper_id", paperID.String()).
		Int("depth", depth).
		Int("nodes", len(network.Nodes)).
		Int("edges", len(network.Edges)).
		Msg("citation network built")

	return network, nil
}
