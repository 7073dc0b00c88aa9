// Package blobstore stores PDF bytes under opaque keys, either on local
// disk or in an S3-compatible bucket.
package blobstore

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/helixir/paper-library-service/internal/config"
)

// Store is an object store keyed by slash-separated paths.
type Store interface {
	// Put writes size bytes from body under key, replacing any existing object.
	Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error
	// Get opens the object under key. Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the object under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// New creates the store selected by cfg.Backend.
func New(ctx context.Context, cfg config.BlobStoreConfig, logger zerolog.Logger) (Store, error) {
	switch cfg.Backend {
	case config.BlobBackendLocal:
		logger.Info().Str("dir", cfg.LocalDir).Msg("using local blob store")
		return NewLocalStore(cfg.LocalDir)
	case config.BlobBackendS3:
		logger.Info().Str("bucket", cfg.S3.Bucket).Str("endpoint", cfg.S3.Endpoint).Msg("using s3 blob store")
		return NewS3Store(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("invalid blob store backend: %q", cfg.Backend)
	}
}

// PDFKey is the storage key for a paper's PDF content.
func PDFKey(userID, paperID uuid.UUID, sha256Hex string) string {
	return fmt.Sprintf("users/%s/papers/%s/%s.pdf", userID, paperID, sha256Hex)
}
