package worker

import (
	"context"

	"automarket/internal/domain"
	"automarket/internal/domain/service/catalog"
	"automarket/pkg/errcodes"
)

// Controller is what the API and the bot drive. Both *Runner and
// QueuedRunner implement it.
type Controller interface {
	Start(ctx context.Context, mode catalog.Mode) (string, error)
	Stop(ctx context.Context) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	TogglePause(ctx context.Context) (bool, error)
	Status() Status
}

var (
	_ Controller = (*Runner)(nil)
	_ Controller = QueuedRunner{}
)

type Enqueuer interface {
	Enqueue(ctx context.Context, runID string, mode catalog.Mode) error
}

// QueuedRunner starts runs through a task queue instead of a local goroutine.
// Stop, pause and status still act on the run executing in this process.
type QueuedRunner struct {
	*Runner
	enqueuer Enqueuer
}

func NewQueuedRunner(runner *Runner, enqueuer Enqueuer) QueuedRunner {
	return QueuedRunner{Runner: runner, enqueuer: enqueuer}
}

func (q QueuedRunner) Start(ctx context.Context, mode catalog.Mode) (string, error) {
	if q.IsRunning() {
		return "", domain.NewError(errcodes.RunInProgress, "sell run "+q.Status().RunID+" is in progress")
	}

	runID := NewRunID()

	if err := q.enqueuer.Enqueue(ctx, runID, mode); err != nil {
		return "", err
	}

	return runID, nil
}
