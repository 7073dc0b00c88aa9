package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/helixir/paper-library-service/internal/domain"
)

// PaperRepository handles paper persistence for a single owner at a time.
type PaperRepository interface {
	// Create inserts a paper and fills its id and timestamps.
	// Returns domain.ErrAlreadyExists if the user already has a paper with the same DOI.
	Create(ctx context.Context, paper *domain.Paper) (*domain.Paper, error)

	// Get retrieves one of the user's papers.
	// Returns domain.ErrNotFound if the paper does not exist or is not owned by the user.
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.Paper, error)

	// GetMany retrieves the user's papers with the given ids.
	// Missing or foreign ids are skipped. The result is keyed by paper id.
	GetMany(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*domain.Paper, error)

	// FindByIdentifier retrieves the user's paper carrying a DOI or arXiv id.
	// Returns domain.ErrNotFound if none does.
	FindByIdentifier(ctx context.Context, userID uuid.UUID, id domain.Identifier) (*domain.Paper, error)

	// Update persists every mutable field of paper.
	// Returns domain.ErrNotFound if the paper does not exist or is not owned by paper.UserID.
	Update(ctx context.Context, paper *domain.Paper) error

	// ToggleFavorite flips the favorite flag and returns the updated paper.
	ToggleFavorite(ctx context.Context, userID, id uuid.UUID) (*domain.Paper, error)

	// Delete removes the paper; dependent rows cascade.
	// Returns domain.ErrNotFound if the paper does not exist or is not owned by the user.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// List returns one page of the user's papers matching filter.
	List(ctx context.Context, userID uuid.UUID, filter domain.PaperFilter, page domain.PageRequest) (domain.Page[*domain.Paper], error)
}
