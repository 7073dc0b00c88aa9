package temporal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/helixir/paper-library-service/internal/config"
	"github.com/helixir/paper-library-service/internal/domain"
	"github.com/helixir/paper-library-service/internal/observability"
)

// Workflow names. The API server starts workflows by name so it does not
// import the workflow implementations.
const (
	WorkflowPDFAcquisition = "PDFAcquisitionWorkflow"

	// QueryAcquisitionStatus returns the current step of an acquisition.
	QueryAcquisitionStatus = "status"
)

// Default timeouts.
const (
	DefaultAcquisitionTimeout = 30 * time.Minute
	DefaultHealthCheckTimeout = 5 * time.Second
)

// Sentinel errors for workflow client operations.
var (
	// ErrWorkflowNotFound indicates the workflow execution was not found.
	ErrWorkflowNotFound = errors.New("workflow not found")
	// ErrWorkflowAlreadyStarted indicates a workflow with the same ID is already running.
	ErrWorkflowAlreadyStarted = errors.New("workflow already started")
	// ErrConnectionFailed indicates the Temporal server could not be reached.
	ErrConnectionFailed = errors.New("connection failed")
	// ErrDeadlineExceeded indicates the operation deadline was exceeded.
	ErrDeadlineExceeded = errors.New("deadline exceeded")
	// ErrClientClosed indicates the call was cancelled or the client closed.
	ErrClientClosed = errors.New("client closed")
)

// TemporalError wraps a Temporal error with the operation and workflow it concerns.
type TemporalError struct {
	Op         string
	Kind       error
	WorkflowID string
	Err        error
}

// Error returns the error message.
func (e *TemporalError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.WorkflowID != "" {
		msg += fmt.Sprintf(" [workflowID=%s]", e.WorkflowID)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Unwrap exposes the underlying error and the domain classification of Kind.
func (e *TemporalError) Unwrap() []error {
	errs := []error{e.Err}
	switch e.Kind {
	case ErrWorkflowNotFound:
		errs = append(errs, domain.ErrNotFound)
	case ErrWorkflowAlreadyStarted:
		errs = append(errs, domain.ErrAlreadyExists)
	case ErrConnectionFailed, ErrDeadlineExceeded:
		errs = append(errs, domain.ErrServiceUnavailable)
	}
	return errs
}

// Is reports whether target matches this error's Kind.
func (e *TemporalError) Is(target error) bool {
	return e.Kind == target
}

func wrapTemporalError(op string, err error, workflowID string) error {
	if err == nil {
		return nil
	}

	te := &TemporalError{Op: op, WorkflowID: workflowID, Err: err}

	var notFoundErr *serviceerror.NotFound
	var alreadyStartedErr *serviceerror.WorkflowExecutionAlreadyStarted
	var deadlineExceededErr *serviceerror.DeadlineExceeded

	switch {
	case errors.As(err, &notFoundErr):
		te.Kind = ErrWorkflowNotFound
	case errors.As(err, &alreadyStartedErr):
		te.Kind = ErrWorkflowAlreadyStarted
	case errors.As(err, &deadlineExceededErr), errors.Is(err, context.DeadlineExceeded):
		te.Kind = ErrDeadlineExceeded
	case errors.Is(err, context.Canceled):
		te.Kind = ErrClientClosed
	default:
		te.Kind = ErrConnectionFailed
	}
	return te
}

// NewClient dials Temporal with SDK logs routed through logger.
func NewClient(cfg config.TemporalConfig, logger zerolog.Logger) (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.HostPort,
		Namespace: cfg.Namespace,
		Logger:    observability.NewTemporalLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("create Temporal client: %w", err)
	}
	return c, nil
}

// PDFAcquisitionInput starts a PDF acquisition for one paper. An empty URL
// lets the worker look for an open-access copy.
type PDFAcquisitionInput struct {
	UserID  uuid.UUID `json:"user_id"`
	PaperID uuid.UUID `json:"paper_id"`
	URL     string    `json:"url,omitempty"`
}

// AcquisitionWorkflowID is the id of the acquisition workflow of a paper.
// One acquisition per paper runs at a time.
func AcquisitionWorkflowID(paperID uuid.UUID) string {
	return "pdf-acquisition-" + paperID.String()
}

// AcquisitionClient starts and inspects PDF acquisition workflows.
type AcquisitionClient struct {
	client             client.Client
	taskQueue          string
	healthCheckTimeout time.Duration
}

// NewAcquisitionClient creates an AcquisitionClient on taskQueue.
func NewAcquisitionClient(c client.Client, taskQueue string) *AcquisitionClient {
	return &AcquisitionClient{
		client:             c,
		taskQueue:          taskQueue,
		healthCheckTimeout: DefaultHealthCheckTimeout,
	}
}

// StartPDFAcquisition starts the workflow and returns its ids. While an
// acquisition of the same paper runs, it fails with domain.ErrAlreadyExists.
func (c *AcquisitionClient) StartPDFAcquisition(ctx context.Context, input PDFAcquisitionInput) (workflowID, runID string, err error) {
	workflowID = AcquisitionWorkflowID(input.PaperID)
	run, err := c.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:                                       workflowID,
		TaskQueue:                                c.taskQueue,
		WorkflowExecutionTimeout:                 DefaultAcquisitionTimeout,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}, WorkflowPDFAcquisition, input)
	if err != nil {
		return "", "", wrapTemporalError("StartPDFAcquisition", err, workflowID)
	}
	return workflowID, run.GetRunID(), nil
}

// AcquisitionStatus queries the current step of a running acquisition.
func (c *AcquisitionClient) AcquisitionStatus(ctx context.Context, paperID uuid.UUID) (string, error) {
	workflowID := AcquisitionWorkflowID(paperID)
	resp, err := c.client.QueryWorkflow(ctx, workflowID, "", QueryAcquisitionStatus)
	if err != nil {
		return "", wrapTemporalError("AcquisitionStatus", err, workflowID)
	}
	var status string
	if err := resp.Get(&status); err != nil {
		return "", fmt.Errorf("decode acquisition status: %w", err)
	}
	return status, nil
}

// Health checks the connection to the Temporal server.
func (c *AcquisitionClient) Health(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, c.healthCheckTimeout)
	defer cancel()

	if _, err := c.client.CheckHealth(checkCtx, &client.CheckHealthRequest{}); err != nil {
		return wrapTemporalError("Health", err, "")
	}
	return nil
}

// Close closes the underlying Temporal client.
func (c *AcquisitionClient) Close() {
	c.client.Close()
}
