package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/helixir/paper-library-service/internal/domain"
)

// UserRepository handles account persistence.
type UserRepository interface {
	// Create inserts a user. Returns domain.ErrAlreadyExists if the e-mail is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)

	// GetByID returns domain.ErrNotFound for an unknown id.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail looks the user up case-insensitively.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
