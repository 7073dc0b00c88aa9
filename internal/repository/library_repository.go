package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/helixir/paper-library-service/internal/domain"
)

// LibraryRepository handles libraries and the papers placed in them.
type LibraryRepository interface {
	Create(ctx context.Context, library *domain.Library) (*domain.Library, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.Library, error)
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Library, error)
	Update(ctx context.Context, library *domain.Library) error
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// AddItem places one of the user's papers in one of the user's libraries.
	// Returns domain.ErrNotFound if either is foreign and
	// domain.ErrAlreadyExists if the paper is already there.
	AddItem(ctx context.Context, userID uuid.UUID, item *domain.LibraryItem) (*domain.LibraryItem, error)
	GetItem(ctx context.Context, userID, libraryID, itemID uuid.UUID) (*domain.LibraryItem, error)
	UpdateItem(ctx context.Context, userID uuid.UUID, item *domain.LibraryItem) error
	RemoveItem(ctx context.Context, userID, libraryID, itemID uuid.UUID) error
	// ListItems returns one page of items with their papers, newest first.
	ListItems(ctx context.Context, userID, libraryID uuid.UUID, page domain.PageRequest) (domain.Page[*domain.LibraryItem], error)
}
