// Package workflows contains the Temporal workflow definitions.
package workflows

import (
	"errors"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/helixir/paper-library-service/internal/domain"
	litemporal "github.com/helixir/paper-library-service/internal/temporal"
	"github.com/helixir/paper-library-service/internal/temporal/activities"
)

// Acquisition steps reported by the status query.
const (
	StatusResolving   = "resolving"
	StatusDownloading = "downloading"
	StatusRecording   = "recording"
	StatusNotifying   = "notifying"
	StatusCompleted   = "completed"
	StatusFailed      = "failed"
)

// MaxDownloadAttempts bounds the download activity.
const MaxDownloadAttempts = 3

// PDFAcquisitionResult is the outcome of an acquisition.
type PDFAcquisitionResult struct {
	Status    domain.DownloadStatus `json:"status"`
	PdfFileID string                `json:"pdf_file_id,omitempty"`
	SizeBytes int64                 `json:"size_bytes,omitempty"`
	SourceURL string                `json:"source_url,omitempty"`
	Created   bool                  `json:"created"`
	Error     string                `json:"error,omitempty"`
}

// PDFAcquisitionWorkflow downloads a PDF for a paper and attaches it.
//
//  1. ResolvePDFSource: the input URL, or an open-access URL.
//  2. DownloadAndStorePDF: guarded download, blob put, pdf_files row.
//  3. RecordDownloadAttempt: download_logs row for the outcome.
//  4. NotifyAcquisition: optional e-mail to the user.
//
// Recording and notification failures are logged and do not fail the
// acquisition.
func PDFAcquisitionWorkflow(ctx workflow.Context, input litemporal.PDFAcquisitionInput) (*PDFAcquisitionResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("starting PDF acquisition", "paperID", input.PaperID, "hasURL", input.URL != "")

	status := StatusResolving
	if err := workflow.SetQueryHandler(ctx, litemporal.QueryAcquisitionStatus, func() (string, error) {
		return status, nil
	}); err != nil {
		return nil, err
	}

	var act *activities.PDFActivities

	resolveCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 1 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        2 * time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        30 * time.Second,
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{activities.ErrTypeNotFound, activities.ErrTypeInvalidInput},
		},
	})

	downloadCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    5 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    1 * time.Minute,
			MaximumAttempts:    MaxDownloadAttempts,
			NonRetryableErrorTypes: []string{
				activities.ErrTypeNotPDF,
				activities.ErrTypeTooLarge,
				activities.ErrTypeSSRF,
				activities.ErrTypeNotFound,
				activities.ErrTypeInvalidInput,
			},
		},
	})

	bookkeepingCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    500 * time.Millisecond,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	})

	method := domain.DownloadMethodOpenAccess
	if input.URL != "" {
		method = domain.DownloadMethodDirectURL
	}

	finish := func(record activities.RecordDownloadAttemptInput, note activities.NotifyAcquisitionInput) {
		status = StatusRecording
		if err := workflow.ExecuteActivity(bookkeepingCtx, act.RecordDownloadAttempt, record).Get(ctx, nil); err != nil {
			logger.Warn("failed to record download attempt", "paperID", input.PaperID, "error", err)
		}
		status = StatusNotifying
		if err := workflow.ExecuteActivity(bookkeepingCtx, act.NotifyAcquisition, note).Get(ctx, nil); err != nil {
			logger.Warn("failed to send acquisition notification", "paperID", input.PaperID, "error", err)
		}
	}

	fail := func(err error, title, sourceURL string, m domain.DownloadMethod) (*PDFAcquisitionResult, error) {
		msg := failureMessage(err)
		finish(activities.RecordDownloadAttemptInput{
			UserID:     input.UserID,
			PaperID:    input.PaperID,
			Method:     m,
			Status:     domain.DownloadStatusFailed,
			Error:      msg,
			RetryCount: retryCount(err),
			SourceURL:  sourceURL,
		}, activities.NotifyAcquisitionInput{
			UserID:     input.UserID,
			PaperTitle: title,
			Error:      msg,
		})
		status = StatusFailed
		logger.Warn("PDF acquisition failed", "paperID", input.PaperID, "error", msg)
		return &PDFAcquisitionResult{Status: domain.DownloadStatusFailed, SourceURL: sourceURL, Error: msg},
			temporal.NewNonRetryableApplicationError("PDF acquisition failed: "+msg, "AcquisitionFailed", err)
	}

	var source activities.ResolvePDFSourceOutput
	err := workflow.ExecuteActivity(resolveCtx, act.ResolvePDFSource, activities.ResolvePDFSourceInput{
		UserID:  input.UserID,
		PaperID: input.PaperID,
		URL:     input.URL,
	}).Get(ctx, &source)
	if err != nil {
		return fail(err, "", input.URL, method)
	}

	status = StatusDownloading
	var stored activities.DownloadAndStoreOutput
	err = workflow.ExecuteActivity(downloadCtx, act.DownloadAndStorePDF, activities.DownloadAndStoreInput{
		UserID:  input.UserID,
		PaperID: input.PaperID,
		URL:     source.URL,
		Method:  source.Method,
	}).Get(ctx, &stored)
	if err != nil {
		return fail(err, source.PaperTitle, source.URL, source.Method)
	}

	retries := 0
	if stored.Attempt > 1 {
		retries = int(stored.Attempt - 1)
	}
	finish(activities.RecordDownloadAttemptInput{
		UserID:     input.UserID,
		PaperID:    input.PaperID,
		Method:     source.Method,
		Status:     domain.DownloadStatusSuccess,
		RetryCount: retries,
		SourceURL:  stored.SourceURL,
		SizeBytes:  stored.SizeBytes,
	}, activities.NotifyAcquisitionInput{
		UserID:     input.UserID,
		PaperTitle: source.PaperTitle,
		Succeeded:  true,
		SourceURL:  stored.SourceURL,
		SizeBytes:  stored.SizeBytes,
	})

	status = StatusCompleted
	logger.Info("PDF acquisition completed", "paperID", input.PaperID, "pdfFileID", stored.PdfFileID, "created", stored.Created)
	return &PDFAcquisitionResult{
		Status:    domain.DownloadStatusSuccess,
		PdfFileID: stored.PdfFileID.String(),
		SizeBytes: stored.SizeBytes,
		SourceURL: stored.SourceURL,
		Created:   stored.Created,
	}, nil
}

// retryCount is the number of retries behind a failed download, read from
// the failure details of the last attempt.
func retryCount(err error) int {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) || !appErr.HasDetails() {
		return 0
	}
	var details activities.DownloadFailureDetails
	if appErr.Details(&details) != nil || details.Attempt < 1 {
		return 0
	}
	return int(details.Attempt - 1)
}

func failureMessage(err error) string {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) && appErr.Message() != "" {
		return appErr.Message()
	}
	var timeoutErr *temporal.TimeoutError
	if errors.As(err, &timeoutErr) {
		return "PDF download timed out"
	}
	return err.Error()
}
