package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/helixir/paper-library-service/internal/domain"
)

// PdfFileRepository handles stored PDF records.
type PdfFileRepository interface {
	// Create inserts a record for a blob already written to the store.
	Create(ctx context.Context, file *domain.PdfFile) (*domain.PdfFile, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.PdfFile, error)
	ListForPaper(ctx context.Context, userID, paperID uuid.UUID) ([]*domain.PdfFile, error)
	// FindByHash returns the paper's PDF with the given content hash, if any.
	FindByHash(ctx context.Context, userID, paperID uuid.UUID, contentHash string) (*domain.PdfFile, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// DownloadLogRepository handles the PDF acquisition audit trail.
type DownloadLogRepository interface {
	Create(ctx context.Context, log *domain.DownloadLog) (*domain.DownloadLog, error)
	// ListForPaper returns the paper's attempts, newest first.
	ListForPaper(ctx context.Context, userID, paperID uuid.UUID) ([]*domain.DownloadLog, error)
	// DeleteOlderThan prunes attempts created before cutoff and reports how many went.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
