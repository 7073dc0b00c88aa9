package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helixir/paper-library-service/internal/domain"
)

var _ PublisherAccountRepository = (*PgPublisherAccountRepository)(nil)

const publisherAccountColumns = `id, user_id, publisher, username, encrypted_credentials, institution,
	verification_status, last_verified_at, created_at, updated_at`

// PgPublisherAccountRepository is a PostgreSQL implementation of PublisherAccountRepository.
type PgPublisherAccountRepository struct {
	db DBTX
}

// NewPgPublisherAccountRepository creates a new PostgreSQL publisher account repository.
func NewPgPublisherAccountRepository(db DBTX) *PgPublisherAccountRepository {
	return &PgPublisherAccountRepository{db: db}
}

// Create inserts an account with sealed credentials.
func (r *PgPublisherAccountRepository) Create(ctx context.Context, account *domain.PublisherAccount) (*domain.PublisherAccount, error) {
	if account.VerificationStatus == "" {
		account.VerificationStatus = domain.VerificationPending
	}

	query := `
		INSERT INTO publisher_accounts (user_id, publisher, username, encrypted_credentials, institution, verification_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		account.UserID, account.Publisher, account.Username, account.EncryptedCredentials,
		account.Institution, account.VerificationStatus,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, translateWriteError(err, "insert publisher account", "publisher account", account.Publisher, nil)
	}
	return account, nil
}

// Get retrieves one of the user's accounts.
func (r *PgPublisherAccountRepository) Get(ctx context.Context, userID, id uuid.UUID) (*domain.PublisherAccount, error) {
	query := `SELECT ` + publisherAccountColumns + ` FROM publisher_accounts WHERE id = $1 AND user_id = $2`

	account, err := scanPublisherAccount(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, notFound(err, "get publisher account", "publisher account", id.String())
	}
	return account, nil
}

// GetByPublisher retrieves the user's account for a publisher.
func (r *PgPublisherAccountRepository) GetByPublisher(ctx context.Context, userID uuid.UUID, publisher string) (*domain.PublisherAccount, error) {
	query := `SELECT ` + publisherAccountColumns + ` FROM publisher_accounts WHERE user_id = $1 AND publisher = $2`

	account, err := scanPublisherAccount(r.db.QueryRow(ctx, query, userID, publisher))
	if err != nil {
		return nil, notFound(err, "get publisher account", "publisher account", publisher)
	}
	return account, nil
}

// List returns the user's accounts ordered by publisher.
func (r *PgPublisherAccountRepository) List(ctx context.Context, userID uuid.UUID) ([]*domain.PublisherAccount, error) {
	query := `SELECT ` + publisherAccountColumns + ` FROM publisher_accounts WHERE user_id = $1 ORDER BY publisher`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list publisher accounts: %w", err)
	}
	accounts, err := collect(rows, scanPublisherAccount)
	if err != nil {
		return nil, fmt.Errorf("failed to scan publisher accounts: %w", err)
	}
	return accounts, nil
}

// SetVerification records the outcome of a credential check.
func (r *PgPublisherAccountRepository) SetVerification(ctx context.Context, userID, id uuid.UUID, status domain.VerificationStatus, at time.Time) error {
	result, err := r.db.Exec(ctx, `
		UPDATE publisher_accounts
		SET verification_status = $3, last_verified_at = $4, updated_at = now()
		WHERE id = $1 AND user_id = $2`, id, userID, status, at)
	if err != nil {
		return fmt.Errorf("failed to update verification status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("publisher account", id.String())
	}
	return nil
}

// Delete removes an account.
func (r *PgPublisherAccountRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM publisher_accounts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete publisher account: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("publisher account", id.String())
	}
	return nil
}

func scanPublisherAccount(row pgx.Row) (*domain.PublisherAccount, error) {
	var a domain.PublisherAccount
	err := row.Scan(&a.ID, &a.UserID, &a.Publisher, &a.Username, &a.EncryptedCredentials, &a.Institution,
		&a.VerificationStatus, &a.LastVerifiedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
