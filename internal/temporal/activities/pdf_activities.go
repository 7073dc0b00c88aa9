package activities

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/helixir/paper-library-service/internal/domain"
	"github.com/helixir/paper-library-service/internal/notify"
	"github.com/helixir/paper-library-service/internal/observability"
	"github.com/helixir/paper-library-service/internal/pdf"
)

// PaperReader loads a paper.
type PaperReader interface {
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.Paper, error)
}

// UserReader loads an account.
type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// SourceFinder finds an open-access PDF URL for a paper.
type SourceFinder interface {
	FindOpenAccessPDF(ctx context.Context, paper *domain.Paper) (string, error)
}

// Downloader fetches and validates a PDF.
type Downloader interface {
	Download(ctx context.Context, rawURL string) (*pdf.Document, error)
}

// Attacher stores a validated PDF on a paper.
type Attacher interface {
	Attach(ctx context.Context, userID, paperID uuid.UUID, doc *pdf.Document, fileName string, method domain.DownloadMethod) (*domain.PdfFile, bool, error)
}

// DownloadLogWriter inserts download_logs rows.
type DownloadLogWriter interface {
	Create(ctx context.Context, log *domain.DownloadLog) (*domain.DownloadLog, error)
}

// PDFActivities holds the dependencies of the acquisition activities.
// Methods on this struct are registered as Temporal activities by the worker.
type PDFActivities struct {
	papers     PaperReader
	users      UserReader
	sources    SourceFinder
	downloader Downloader
	library    Attacher
	logs       DownloadLogWriter
	notifier   notify.Notifier
	metrics    *observability.Metrics
}

// NewPDFActivities creates the activities. sources may be nil, in which case
// only explicit URLs can be acquired. notifier and metrics may be nil.
func NewPDFActivities(
	papers PaperReader,
	users UserReader,
	sources SourceFinder,
	downloader Downloader,
	library Attacher,
	logs DownloadLogWriter,
	notifier notify.Notifier,
	metrics *observability.Metrics,
) *PDFActivities {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &PDFActivities{
		papers:     papers,
		users:      users,
		sources:    sources,
		downloader: downloader,
		library:    library,
		logs:       logs,
		notifier:   notifier,
		metrics:    metrics,
	}
}

// ResolvePDFSource returns the URL to download. An explicit URL wins;
// otherwise an open-access copy is looked up.
func (a *PDFActivities) ResolvePDFSource(ctx context.Context, input ResolvePDFSourceInput) (*ResolvePDFSourceOutput, error) {
	logger := activity.GetLogger(ctx)

	paper, err := a.papers.Get(ctx, input.UserID, input.PaperID)
	if err != nil {
		return nil, classify(err)
	}

	if input.URL != "" {
		return &ResolvePDFSourceOutput{URL: input.URL, Method: domain.DownloadMethodDirectURL, PaperTitle: paper.Title}, nil
	}

	if a.sources == nil {
		return nil, temporal.NewNonRetryableApplicationError("no open-access sources configured", ErrTypeNotFound, nil)
	}
	url, err := a.sources.FindOpenAccessPDF(ctx, paper)
	if err != nil {
		logger.Info("no open-access PDF found", "paperID", input.PaperID, "error", err)
		return nil, classify(err)
	}

	logger.Info("resolved open-access PDF", "paperID", input.PaperID, "url", url)
	return &ResolvePDFSourceOutput{URL: url, Method: domain.DownloadMethodOpenAccess, PaperTitle: paper.Title}, nil
}

// DownloadAndStorePDF downloads the URL and attaches the PDF to the paper.
// Permanent failures are returned as non-retryable application errors.
func (a *PDFActivities) DownloadAndStorePDF(ctx context.Context, input DownloadAndStoreInput) (*DownloadAndStoreOutput, error) {
	logger := activity.GetLogger(ctx)
	attempt := activity.GetInfo(ctx).Attempt

	doc, err := a.downloader.Download(ctx, input.URL)
	if err != nil {
		logger.Warn("PDF download failed", "paperID", input.PaperID, "url", input.URL, "attempt", attempt, "error", err)
		return nil, downloadError(err, attempt)
	}
	activity.RecordHeartbeat(ctx, "downloaded")

	file, created, err := a.library.Attach(ctx, input.UserID, input.PaperID, doc, fileNameFromURL(doc.SourceURL), input.Method)
	if err != nil {
		return nil, classify(fmt.Errorf("attach pdf: %w", err))
	}

	logger.Info("PDF stored",
		"paperID", input.PaperID,
		"pdfFileID", file.ID,
		"sizeBytes", file.SizeBytes,
		"created", created,
	)
	return &DownloadAndStoreOutput{
		PdfFileID:   file.ID,
		SizeBytes:   file.SizeBytes,
		ContentHash: file.ContentHash,
		SourceURL:   doc.SourceURL,
		Created:     created,
		Attempt:     attempt,
	}, nil
}

// RecordDownloadAttempt writes the audit row of one acquisition outcome.
func (a *PDFActivities) RecordDownloadAttempt(ctx context.Context, input RecordDownloadAttemptInput) error {
	entry := &domain.DownloadLog{
		UserID:     input.UserID,
		PaperID:    input.PaperID,
		Method:     input.Method,
		Status:     input.Status,
		RetryCount: input.RetryCount,
		SourceURL:  input.SourceURL,
	}
	if input.Error != "" {
		msg := input.Error
		entry.ErrorMessage = &msg
	}

	if _, err := a.logs.Create(ctx, entry); err != nil {
		return fmt.Errorf("record download attempt: %w", err)
	}
	if a.metrics != nil {
		a.metrics.RecordPDFAcquisition(string(input.Method), string(input.Status), input.SizeBytes)
	}
	return nil
}

// NotifyAcquisition mails the outcome to the user.
func (a *PDFActivities) NotifyAcquisition(ctx context.Context, input NotifyAcquisitionInput) error {
	user, err := a.users.GetByID(ctx, input.UserID)
	if err != nil {
		return classify(err)
	}
	return a.notifier.NotifyAcquisition(ctx, user.Email, notify.Acquisition{
		PaperTitle: input.PaperTitle,
		Succeeded:  input.Succeeded,
		SourceURL:  input.SourceURL,
		SizeBytes:  input.SizeBytes,
		Error:      input.Error,
	})
}

func downloadError(err error, attempt int32) error {
	details := DownloadFailureDetails{Attempt: attempt}
	switch {
	case errors.Is(err, pdf.ErrNotPDF):
		return temporal.NewNonRetryableApplicationError("downloaded file is not a PDF", ErrTypeNotPDF, err, details)
	case errors.Is(err, pdf.ErrTooLarge):
		return temporal.NewNonRetryableApplicationError("PDF exceeds the size limit", ErrTypeTooLarge, err, details)
	case errors.Is(err, pdf.ErrSSRF):
		return temporal.NewNonRetryableApplicationError("URL is not allowed", ErrTypeSSRF, err, details)
	case errors.Is(err, domain.ErrNotFound):
		return temporal.NewNonRetryableApplicationError("PDF not found at URL", ErrTypeNotFound, err, details)
	default:
		return temporal.NewApplicationErrorWithCause("PDF download failed", ErrTypeDownloadFailed, err, details)
	}
}

// classify turns missing or invalid data into non-retryable errors and leaves
// everything else retryable.
func classify(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeNotFound, err)
	case errors.Is(err, domain.ErrInvalidInput):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidInput, err)
	default:
		return err
	}
}

func fileNameFromURL(raw string) string {
	name := path.Base(strings.SplitN(strings.SplitN(raw, "?", 2)[0], "#", 2)[0])
	if name == "." || name == "/" || name == "" || !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		return ""
	}
	return name
}
