package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/helixir/paper-library-service/internal/domain"
)

// PublisherAccountRepository handles stored publisher logins.
type PublisherAccountRepository interface {
	// Create returns domain.ErrAlreadyExists if the user already has an account for the publisher.
	Create(ctx context.Context, account *domain.PublisherAccount) (*domain.PublisherAccount, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.PublisherAccount, error)
	GetByPublisher(ctx context.Context, userID uuid.UUID, publisher string) (*domain.PublisherAccount, error)
	List(ctx context.Context, userID uuid.UUID) ([]*domain.PublisherAccount, error)
	// SetVerification records the outcome of a credential check.
	SetVerification(ctx context.Context, userID, id uuid.UUID, status domain.VerificationStatus, at time.Time) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
