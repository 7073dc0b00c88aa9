package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/helixir/paper-library-service/internal/domain"
)

// SummaryRepository handles the one current AI summary per paper.
type SummaryRepository interface {
	// Upsert stores summary, replacing any previous summary of the paper.
	Upsert(ctx context.Context, summary *domain.AiSummary) (*domain.AiSummary, error)
	GetForPaper(ctx context.Context, userID, paperID uuid.UUID) (*domain.AiSummary, error)
	DeleteForPaper(ctx context.Context, userID, paperID uuid.UUID) error
}
