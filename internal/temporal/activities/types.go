// Package activities implements the Temporal activities of PDF acquisition.
package activities

import (
	"github.com/google/uuid"

	"github.com/helixir/paper-library-service/internal/domain"
)

// Application error types. The workflow marks the permanent ones as
// non-retryable.
const (
	ErrTypeNotPDF         = "NotPDF"
	ErrTypeTooLarge       = "TooLarge"
	ErrTypeSSRF           = "SSRF"
	ErrTypeNotFound       = "NotFound"
	ErrTypeDownloadFailed = "DownloadFailed"
	ErrTypeInvalidInput   = "InvalidInput"
)

// ResolvePDFSourceInput asks for the URL to download a paper's PDF from.
type ResolvePDFSourceInput struct {
	UserID  uuid.UUID `json:"user_id"`
	PaperID uuid.UUID `json:"paper_id"`
	URL     string    `json:"url,omitempty"`
}

// ResolvePDFSourceOutput is the URL to download and how it was found.
type ResolvePDFSourceOutput struct {
	URL        string                `json:"url"`
	Method     domain.DownloadMethod `json:"method"`
	PaperTitle string                `json:"paper_title"`
}

// DownloadAndStoreInput is one download to perform.
type DownloadAndStoreInput struct {
	UserID  uuid.UUID             `json:"user_id"`
	PaperID uuid.UUID             `json:"paper_id"`
	URL     string                `json:"url"`
	Method  domain.DownloadMethod `json:"method"`
}

// DownloadAndStoreOutput describes the stored file.
type DownloadAndStoreOutput struct {
	PdfFileID   uuid.UUID `json:"pdf_file_id"`
	SizeBytes   int64     `json:"size_bytes"`
	ContentHash string    `json:"content_hash"`
	SourceURL   string    `json:"source_url"`
	// Created is false when the paper already had this exact file.
	Created bool `json:"created"`
	// Attempt is the activity attempt that succeeded, starting at 1.
	Attempt int32 `json:"attempt"`
}

// DownloadFailureDetails is attached to download errors so the workflow can
// log how many attempts were made.
type DownloadFailureDetails struct {
	Attempt int32 `json:"attempt"`
}

// RecordDownloadAttemptInput is one download_logs row.
type RecordDownloadAttemptInput struct {
	UserID     uuid.UUID             `json:"user_id"`
	PaperID    uuid.UUID             `json:"paper_id"`
	Method     domain.DownloadMethod `json:"method"`
	Status     domain.DownloadStatus `json:"status"`
	Error      string                `json:"error,omitempty"`
	RetryCount int                   `json:"retry_count"`
	SourceURL  string                `json:"source_url"`
	SizeBytes  int64                 `json:"size_bytes"`
}

// NotifyAcquisitionInput is the outcome to tell the user about.
type NotifyAcquisitionInput struct {
	UserID     uuid.UUID `json:"user_id"`
	PaperTitle string    `json:"paper_title"`
	Succeeded  bool      `json:"succeeded"`
	SourceURL  string    `json:"source_url,omitempty"`
	SizeBytes  int64     `json:"size_bytes,omitempty"`
	Error      string    `json:"error,omitempty"`
}
