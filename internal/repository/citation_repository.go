package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/helixir/paper-library-service/internal/domain"
)

// CitationRepository handles citation edges between a user's papers.
type CitationRepository interface {
	// Create inserts an edge. Both papers must belong to citation.UserID,
	// otherwise domain.ErrNotFound is returned. A duplicate (citing, cited)
	// pair returns domain.ErrAlreadyExists.
	Create(ctx context.Context, citation *domain.Citation) (*domain.Citation, error)

	// Get returns domain.ErrNotFound if the citation does not exist or is not owned by the user.
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.Citation, error)

	// Update persists every mutable field of citation.
	Update(ctx context.Context, citation *domain.Citation) error

	// Delete removes the edge.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// ListReferences returns the outgoing citations of paperID joined to the
	// cited paper and whether that paper has a stored PDF.
	ListReferences(ctx context.Context, userID, paperID uuid.UUID) ([]*domain.Reference, error)

	// ListCitedBy returns the incoming citations of paperID joined to the citing paper.
	ListCitedBy(ctx context.Context, userID, paperID uuid.UUID) ([]*domain.Reference, error)

	// ListEdgesTouching returns, in one query, every edge of the user whose
	// citing or cited end is in paperIDs. Order is deterministic.
	ListEdgesTouching(ctx context.Context, userID uuid.UUID, paperIDs []uuid.UUID) ([]domain.CitationEdge, error)
}
