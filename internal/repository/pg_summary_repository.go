package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helixir/paper-library-service/internal/domain"
)

var _ SummaryRepository = (*PgSummaryRepository)(nil)

// PgSummaryRepository is a PostgreSQL implementation of SummaryRepository.
type PgSummaryRepository struct {
	db DBTX
}

// NewPgSummaryRepository creates a new PostgreSQL summary repository.
func NewPgSummaryRepository(db DBTX) *PgSummaryRepository {
	return &PgSummaryRepository{db: db}
}

// Upsert stores summary for one of the user's papers.
func (r *PgSummaryRepository) Upsert(ctx context.Context, summary *domain.AiSummary) (*domain.AiSummary, error) {
	if summary.KeyFindings == nil {
		summary.KeyFindings = []string{}
	}

	query := `
		INSERT INTO ai_summaries (user_id, paper_id, summary, key_findings, model)
		SELECT $1::uuid, $2::uuid, $3::text, $4::text[], $5::text
		WHERE EXISTS (SELECT 1 FROM papers WHERE id = $2 AND user_id = $1)
		ON CONFLICT (paper_id) DO UPDATE SET
			summary = EXCLUDED.summary,
			key_findings = EXCLUDED.key_findings,
			model = EXCLUDED.model,
			updated_at = now()
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		summary.UserID, summary.PaperID, summary.Summary, summary.KeyFindings, summary.Model,
	).Scan(&summary.ID, &summary.CreatedAt, &summary.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("paper", summary.PaperID.String())
		}
		return nil, fmt.Errorf("failed to upsert summary: %w", err)
	}
	return summary, nil
}

// GetForPaper retrieves the paper's current summary.
func (r *PgSummaryRepository) GetForPaper(ctx context.Context, userID, paperID uuid.UUID) (*domain.AiSummary, error) {
	query := `
		SELECT id, user_id, paper_id, summary, key_findings, model, created_at, updated_at
		FROM ai_summaries WHERE paper_id = $1 AND user_id = $2`

	var s domain.AiSummary
	err := r.db.QueryRow(ctx, query, paperID, userID).Scan(
		&s.ID, &s.UserID, &s.PaperID, &s.Summary, &s.KeyFindings, &s.Model, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "get summary", "summary", paperID.String())
	}
	return &s, nil
}

// DeleteForPaper removes the paper's summary.
func (r *PgSummaryRepository) DeleteForPaper(ctx context.Context, userID, paperID uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM ai_summaries WHERE paper_id = $1 AND user_id = $2`, paperID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete summary: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("summary", paperID.String())
	}
	return nil
}
