package pdf

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/helixir/paper-library-service/internal/blobstore"
	"github.com/helixir/paper-library-service/internal/domain"
	"github.com/helixir/paper-library-service/internal/events"
)

// FileStore is the subset of the PDF file repository the library needs.
type FileStore interface {
	Create(ctx context.Context, file *domain.PdfFile) (*domain.PdfFile, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.PdfFile, error)
	FindByHash(ctx context.Context, userID, paperID uuid.UUID, contentHash string) (*domain.PdfFile, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// Library attaches validated PDFs to papers: blob first, then the record.
type Library struct {
	blobs   blobstore.Store
	files   FileStore
	emitter *events.Emitter
	logger  zerolog.Logger
}

// NewLibrary creates a Library.
func NewLibrary(blobs blobstore.Store, files FileStore, emitter *events.Emitter, logger zerolog.Logger) *Library {
	return &Library{
		blobs:   blobs,
		files:   files,
		emitter: emitter,
		logger:  logger.With().Str("component", "pdf").Logger(),
	}
}

// Attach stores doc for the paper. When the paper already has a PDF with the
// same content hash, that record is returned and created is false.
func (l *Library) Attach(ctx context.Context, userID, paperID uuid.UUID, doc *Document, fileName string, method domain.DownloadMethod) (file *domain.PdfFile, created bool, err error) {
	existing, err := l.files.FindByHash(ctx, userID, paperID, doc.SHA256)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, false, err
	}

	key := blobstore.PDFKey(userID, paperID, doc.SHA256)
	if err := l.blobs.Put(ctx, key, doc.Reader(), doc.SizeBytes, "application/pdf"); err != nil {
		return nil, false, fmt.Errorf("failed to store pdf: %w", err)
	}

	if fileName == "" {
		fileName = doc.SHA256[:12] + ".pdf"
	}
	file, err = l.files.Create(ctx, &domain.PdfFile{
		UserID:      userID,
		PaperID:     paperID,
		FileName:    fileName,
		StorageKey:  key,
		ContentType: "application/pdf",
		SizeBytes:   doc.SizeBytes,
		ContentHash: doc.SHA256,
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		// A concurrent attach of the same bytes committed first. Its row
		// points at the same key, so the blob stays.
		existing, findErr := l.files.FindByHash(ctx, userID, paperID, doc.SHA256)
		if findErr != nil {
			return nil, false, fmt.Errorf("failed to load concurrently attached pdf: %w", findErr)
		}
		return existing, false, nil
	}
	if err != nil {
		if delErr := l.blobs.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			l.logger.Warn().Err(delErr).Str("key", key).Msg("failed to remove orphaned blob")
		}
		return nil, false, err
	}

	l.emitter.Emit(ctx, domain.EventTypePDFAttached, events.AggregatePdfFile, file.ID, userID, domain.PDFAttachedPayload{
		PdfFileID: file.ID,
		PaperID:   paperID,
		SizeBytes: file.SizeBytes,
		Method:    method,
	})
	l.logger.Info().
		Str("pdf_file_id", file.ID.String()).
		Str("paper_id", paperID.String()).
		Int64("size_bytes", file.SizeBytes).
		Str("method", string(method)).
		Msg("pdf attached")
	return file, true, nil
}

// Open returns the record and a reader over the blob. The caller closes it.
func (l *Library) Open(ctx context.Context, userID, id uuid.UUID) (*domain.PdfFile, io.ReadCloser, error) {
	file, err := l.files.Get(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	body, err := l.blobs.Get(ctx, file.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	return file, body, nil
}

// Delete removes the record and then the blob. A failed blob removal is
// logged only; the record is already gone.
func (l *Library) Delete(ctx context.Context, userID, id uuid.UUID) error {
	file, err := l.files.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := l.files.Delete(ctx, userID, id); err != nil {
		return err
	}
	if err := l.blobs.Delete(ctx, file.StorageKey); err != nil {
		l.logger.Warn().Err(err).Str("key", file.StorageKey).Msg("failed to delete pdf blob")
	}
	return nil
}
