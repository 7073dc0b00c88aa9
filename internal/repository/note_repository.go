package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/helixir/paper-library-service/internal/domain"
)

// NoteRepository handles paper notes.
type NoteRepository interface {
	// Create inserts a note on one of the user's papers; a foreign paper is not found.
	Create(ctx context.Context, note *domain.Note) (*domain.Note, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.Note, error)
	Update(ctx context.Context, note *domain.Note) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	// List returns one page of the user's notes, optionally for a single paper.
	List(ctx context.Context, userID uuid.UUID, paperID *uuid.UUID, page domain.PageRequest) (domain.Page[*domain.Note], error)
}
