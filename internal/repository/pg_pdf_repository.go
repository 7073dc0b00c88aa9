package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helixir/paper-library-service/internal/domain"
)

var (
	_ PdfFileRepository     = (*PgPdfFileRepository)(nil)
	_ DownloadLogRepository = (*PgDownloadLogRepository)(nil)
)

const pdfFileColumns = `f.id, f.user_id, f.paper_id, f.file_name, f.storage_key, f.content_type,
	f.size_bytes, f.content_hash, f.created_at`

// PgPdfFileRepository is a PostgreSQL implementation of PdfFileRepository.
type PgPdfFileRepository struct {
	db DBTX
}

// NewPgPdfFileRepository creates a new PostgreSQL PDF file repository.
func NewPgPdfFileRepository(db DBTX) *PgPdfFileRepository {
	return &PgPdfFileRepository{db: db}
}

// Create inserts a PDF record for one of the user's papers.
func (r *PgPdfFileRepository) Create(ctx context.Context, file *domain.PdfFile) (*domain.PdfFile, error) {
	query := `
		INSERT INTO pdf_files (user_id, paper_id, file_name, storage_key, content_type, size_bytes, content_hash)
		SELECT $1::uuid, $2::uuid, $3::text, $4::text, $5::text, $6::bigint, $7::text
		WHERE EXISTS (SELECT 1 FROM papers WHERE id = $2 AND user_id = $1)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		file.UserID, file.PaperID, file.FileName, file.StorageKey, file.ContentType, file.SizeBytes, file.ContentHash,
	).Scan(&file.ID, &file.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("paper", file.PaperID.String())
		}
		return nil, translateWriteError(err, "insert pdf file", "pdf file", file.StorageKey, nil)
	}
	return file, nil
}

// Get retrieves one of the user's PDF records.
func (r *PgPdfFileRepository) Get(ctx context.Context, userID, id uuid.UUID) (*domain.PdfFile, error) {
	query := `SELECT ` + pdfFileColumns + ` FROM pdf_files f WHERE f.id = $1 AND f.user_id = $2`

	file, err := scanPdfFile(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, notFound(err, "get pdf file", "pdf file", id.String())
	}
	return file, nil
}

// ListForPaper returns the paper's PDFs, newest first.
func (r *PgPdfFileRepository) ListForPaper(ctx context.Context, userID, paperID uuid.UUID) ([]*domain.PdfFile, error) {
	query := `SELECT ` + pdfFileColumns + `
		FROM pdf_files f WHERE f.paper_id = $1 AND f.user_id = $2
		ORDER BY f.created_at DESC, f.id`

	rows, err := r.db.Query(ctx, query, paperID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pdf files: %w", err)
	}
	files, err := collect(rows, scanPdfFile)
	if err != nil {
		return nil, fmt.Errorf("failed to scan pdf files: %w", err)
	}
	return files, nil
}

// FindByHash returns the paper's PDF with the given content hash.
func (r *PgPdfFileRepository) FindByHash(ctx context.Context, userID, paperID uuid.UUID, contentHash string) (*domain.PdfFile, error) {
	query := `SELECT ` + pdfFileColumns + `
		FROM pdf_files f WHERE f.paper_id = $1 AND f.user_id = $2 AND f.content_hash = $3
		LIMIT 1`

	file, err := scanPdfFile(r.db.QueryRow(ctx, query, paperID, userID, contentHash))
	if err != nil {
		return nil, notFound(err, "find pdf file by hash", "pdf file", contentHash)
	}
	return file, nil
}

// Delete removes a PDF record. The caller removes the blob.
func (r *PgPdfFileRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM pdf_files WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete pdf file: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("pdf file", id.String())
	}
	return nil
}

func scanPdfFile(row pgx.Row) (*domain.PdfFile, error) {
	var f domain.PdfFile
	err := row.Scan(&f.ID, &f.UserID, &f.PaperID, &f.FileName, &f.StorageKey, &f.ContentType,
		&f.SizeBytes, &f.ContentHash, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// PgDownloadLogRepository is a PostgreSQL implementation of DownloadLogRepository.
type PgDownloadLogRepository struct {
	db DBTX
}

// NewPgDownloadLogRepository creates a new PostgreSQL download log repository.
func NewPgDownloadLogRepository(db DBTX) *PgDownloadLogRepository {
	return &PgDownloadLogRepository{db: db}
}

// Create records one acquisition attempt.
func (r *PgDownloadLogRepository) Create(ctx context.Context, log *domain.DownloadLog) (*domain.DownloadLog, error) {
	query := `
		INSERT INTO download_logs (user_id, paper_id, method, status, error_message, retry_count, source_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		log.UserID, log.PaperID, log.Method, log.Status, log.ErrorMessage, log.RetryCount, log.SourceURL,
	).Scan(&log.ID, &log.CreatedAt)
	if err != nil {
		return nil, translateWriteError(err, "insert download log", "download log", log.PaperID.String(), nil)
	}
	return log, nil
}

// ListForPaper returns the paper's attempts, newest first.
func (r *PgDownloadLogRepository) ListForPaper(ctx context.Context, userID, paperID uuid.UUID) ([]*domain.DownloadLog, error) {
	query := `
		SELECT id, user_id, paper_id, method, status, error_message, retry_count, source_url, created_at
		FROM download_logs
		WHERE paper_id = $1 AND user_id = $2
		ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, query, paperID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list download logs: %w", err)
	}
	logs, err := collect(rows, func(row pgx.Row) (*domain.DownloadLog, error) {
		var l domain.DownloadLog
		err := row.Scan(&l.ID, &l.UserID, &l.PaperID, &l.Method, &l.Status, &l.ErrorMessage,
			&l.RetryCount, &l.SourceURL, &l.CreatedAt)
		return &l, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan download logs: %w", err)
	}
	return logs, nil
}

// DeleteOlderThan prunes attempts created before cutoff.
func (r *PgDownloadLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM download_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune download logs: %w", err)
	}
	return result.RowsAffected(), nil
}
