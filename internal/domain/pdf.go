package domain

import (
	"time"

	"github.com/google/uuid"
)

// PdfFile is a stored PDF attached to a paper.
type PdfFile struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	PaperID     uuid.UUID
	FileName    string
	StorageKey  string
	ContentType string
	SizeBytes   int64
	ContentHash string
	CreatedAt   time.Time
}

// DownloadMethod says how a PDF acquisition was attempted.
type DownloadMethod string

// Download methods.
const (
	DownloadMethodDirectURL  DownloadMethod = "direct_url"
	DownloadMethodOpenAccess DownloadMethod = "open_access"
	DownloadMethodPublisher  DownloadMethod = "publisher"
	// DownloadMethodUpload marks a PDF the user uploaded directly. It is
	// never written to the download log.
	DownloadMethodUpload DownloadMethod = "upload"
)

// DownloadStatus is the outcome of an acquisition attempt.
type DownloadStatus string

// Download statuses.
const (
	DownloadStatusPending DownloadStatus = "pending"
	DownloadStatusSuccess DownloadStatus = "success"
	DownloadStatusFailed  DownloadStatus = "failed"
)

// DownloadLog is the audit record of one PDF acquisition attempt.
type DownloadLog struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	PaperID      uuid.UUID
	Method       DownloadMethod
	Status       DownloadStatus
	ErrorMessage *string
	RetryCount   int
	SourceURL    string
	CreatedAt    time.Time
}
