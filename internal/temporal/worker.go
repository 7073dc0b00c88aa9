package temporal

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/helixir/paper-library-service/internal/config"
)

// Worker polls the PDF acquisition task queue.
type Worker struct {
	w     worker.Worker
	queue string
	fatal chan error
}

// NewWorker creates a worker for cfg.TaskQueue. Nothing is polled until Run.
func NewWorker(c client.Client, cfg config.TemporalConfig) (*Worker, error) {
	if cfg.TaskQueue == "" {
		return nil, errors.New("task queue is required")
	}
	wk := &Worker{queue: cfg.TaskQueue, fatal: make(chan error, 1)}
	wk.w = worker.New(c, cfg.TaskQueue, wk.options(cfg))
	return wk, nil
}

func (wk *Worker) options(cfg config.TemporalConfig) worker.Options {
	return worker.Options{
		MaxConcurrentActivityExecutionSize:     cfg.MaxConcurrentDownloads,
		MaxConcurrentWorkflowTaskExecutionSize: cfg.MaxConcurrentWorkflowTasks,
		OnFatalError: func(err error) {
			select {
			case wk.fatal <- err:
			default:
			}
		},
	}
}

// Workflow registers fn under name, the type name clients start it by.
func (wk *Worker) Workflow(name string, fn any) *Worker {
	wk.w.RegisterWorkflowWithOptions(fn, workflow.RegisterOptions{Name: name})
	return wk
}

// Activities registers every exported method of acts.
func (wk *Worker) Activities(acts any) *Worker {
	wk.w.RegisterActivity(acts)
	return wk
}

// TaskQueue returns the polled queue.
func (wk *Worker) TaskQueue() string { return wk.queue }

// Run polls until ctx is done or the worker hits a fatal error, then stops
// the worker and waits for in-flight activities to finish.
func (wk *Worker) Run(ctx context.Context) error {
	if err := wk.w.Start(); err != nil {
		return fmt.Errorf("start worker on %s: %w", wk.queue, err)
	}
	defer wk.w.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-wk.fatal:
		return fmt.Errorf("worker on %s: %w", wk.queue, err)
	}
}
