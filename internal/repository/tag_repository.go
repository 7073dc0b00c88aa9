package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/helixir/paper-library-service/internal/domain"
)

// TagRepository handles tags and their assignment to papers.
type TagRepository interface {
	// Create inserts a tag. Returns domain.ErrAlreadyExists for a duplicate name.
	Create(ctx context.Context, tag *domain.Tag) (*domain.Tag, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.Tag, error)
	// List returns all of the user's tags ordered by name, with paper counts.
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Tag, error)
	Update(ctx context.Context, tag *domain.Tag) error
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// ListForPaper returns the tags attached to one of the user's papers.
	ListForPaper(ctx context.Context, userID, paperID uuid.UUID) ([]*domain.Tag, error)

	// ReplacePaperTags sets the paper's tag set to exactly tagIDs. Every tag
	// must belong to the user, otherwise domain.ErrNotFound is returned and
	// nothing changes. Callers run it inside a transaction.
	ReplacePaperTags(ctx context.Context, userID, paperID uuid.UUID, tagIDs []uuid.UUID) error
}
