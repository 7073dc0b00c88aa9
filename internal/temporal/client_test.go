package temporal

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/mocks"

	"github.com/helixir/paper-library-service/internal/domain"
)

func TestTemporalError(t *testing.T) {
	t.Run("Error includes all fields", func(t *testing.T) {
		err := &TemporalError{
			Op:         "StartPDFAcquisition",
			Kind:       ErrWorkflowAlreadyStarted,
			WorkflowID: "pdf-acquisition-1",
			Err:        errors.New("underlying error"),
		}

		msg := err.Error()
		assert.Contains(t, msg, "StartPDFAcquisition")
		assert.Contains(t, msg, "workflow already started")
		assert.Contains(t, msg, "pdf-acquisition-1")
		assert.Contains(t, msg, "underlying error")
	})

	t.Run("Is matches Kind", func(t *testing.T) {
		err := &TemporalError{Op: "Test", Kind: ErrWorkflowNotFound}
		assert.True(t, errors.Is(err, ErrWorkflowNotFound))
		assert.False(t, errors.Is(err, ErrConnectionFailed))
	})

	t.Run("maps to domain errors", func(t *testing.T) {
		assert.ErrorIs(t, &TemporalError{Kind: ErrWorkflowNotFound}, domain.ErrNotFound)
		assert.ErrorIs(t, &TemporalError{Kind: ErrWorkflowAlreadyStarted}, domain.ErrAlreadyExists)
		assert.ErrorIs(t, &TemporalError{Kind: ErrConnectionFailed}, domain.ErrServiceUnavailable)
		assert.NotErrorIs(t, &TemporalError{Kind: ErrClientClosed}, domain.ErrServiceUnavailable)
	})
}

func TestWrapTemporalError(t *testing.T) {
	assert.Nil(t, wrapTemporalError("Test", nil, ""))

	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"not found", serviceerror.NewNotFound("not found"), ErrWorkflowNotFound},
		{"already started", serviceerror.NewWorkflowExecutionAlreadyStarted("already started", "", ""), ErrWorkflowAlreadyStarted},
		{"deadline", context.DeadlineExceeded, ErrDeadlineExceeded},
		{"canceled", context.Canceled, ErrClientClosed},
		{"unavailable", serviceerror.NewUnavailable("down"), ErrConnectionFailed},
		{"unknown", errors.New("boom"), ErrConnectionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var te *TemporalError
			require.ErrorAs(t, wrapTemporalError("Test", tt.err, "wf"), &te)
			assert.Equal(t, tt.kind, te.Kind)
			assert.Equal(t, "wf", te.WorkflowID)
		})
	}
}

func TestAcquisitionClient_Start(t *testing.T) {
	c := &mocks.Client{}
	run := &mocks.WorkflowRun{}
	input := PDFAcquisitionInput{UserID: uuid.New(), PaperID: uuid.New(), URL: "https://example.org/a.pdf"}
	wantID := AcquisitionWorkflowID(input.PaperID)

	c.On("ExecuteWorkflow", mock.Anything, mock.MatchedBy(func(o client.StartWorkflowOptions) bool {
		return o.ID == wantID && o.TaskQueue == "pdf-acquisition" && o.WorkflowExecutionErrorWhenAlreadyStarted
	}), WorkflowPDFAcquisition, input).Return(run, nil).Once()
	run.On("GetRunID").Return("run-1")

	ac := NewAcquisitionClient(c, "pdf-acquisition")
	workflowID, runID, err := ac.StartPDFAcquisition(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, wantID, workflowID)
	assert.Equal(t, "run-1", runID)
	c.AssertExpectations(t)
}

func TestAcquisitionClient_StartAlreadyRunning(t *testing.T) {
	c := &mocks.Client{}
	c.On("ExecuteWorkflow", mock.Anything, mock.Anything, WorkflowPDFAcquisition, mock.Anything).
		Return(nil, serviceerror.NewWorkflowExecutionAlreadyStarted("running", "", ""))

	ac := NewAcquisitionClient(c, "pdf-acquisition")
	_, _, err := ac.StartPDFAcquisition(context.Background(), PDFAcquisitionInput{PaperID: uuid.New()})
	assert.ErrorIs(t, err, ErrWorkflowAlreadyStarted)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestAcquisitionClient_Health(t *testing.T) {
	c := &mocks.Client{}
	c.On("CheckHealth", mock.Anything, mock.Anything).Return(&client.CheckHealthResponse{}, nil).Once()
	c.On("CheckHealth", mock.Anything, mock.Anything).Return(nil, serviceerror.NewUnavailable("down")).Once()

	ac := NewAcquisitionClient(c, "q")
	assert.NoError(t, ac.Health(context.Background()))
	assert.ErrorIs(t, ac.Health(context.Background()), domain.ErrServiceUnavailable)
}

func TestAcquisitionWorkflowID(t *testing.T) {
	id := uuid.MustParse("7b0c0f0e-3f5e-4d8c-9a55-2f3f1f0d9e11")
	assert.Equal(t, "pdf-acquisition-7b0c0f0e-3f5e-4d8c-9a55-2f3f1f0d9e11", AcquisitionWorkflowID(id))
}
