// Package queue hands sell runs to an asynq worker so that requests from the
// API and the bot are serialized through redis.
package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	jsoniter "github.com/json-iterator/go"

	"automarket/internal/domain"
	"automarket/internal/domain/entity"
	"automarket/internal/domain/service/catalog"
	"automarket/pkg/contextx"
	"automarket/pkg/errcodes"
	"automarket/pkg/logx"
)

var (
	logger = contextx.LoggerFromContextOrDefault          //nolint:gochecknoglobals
	json   = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals
)

const (
	TypeSellRun = "sell:run"
	QueueSell   = "sell"
)

type RunPayload struct {
	RunID string `json:"run_id"`
	Mode  string `json:"mode,omitempty"`
}

func NewRunTask(p RunPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	// A sell run drives a live UI; replaying it after a crash is never safe.
	return asynq.NewTask(TypeSellRun, payload, asynq.MaxRetry(0), asynq.Queue(QueueSell)), nil
}

func ParseRunTask(t *asynq.Task) (RunPayload, error) {
	var p RunPayload

	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return RunPayload{}, domain.WrapError(err, errcodes.ValidationError, "invalid sell run payload")
	}

	if p.RunID == "" {
		return RunPayload{}, domain.NewError(errcodes.InvalidRunID, "sell run payload has no run id")
	}

	return p, nil
}

type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

func (e *Enqueuer) Enqueue(ctx context.Context, runID string, mode catalog.Mode) error {
	task, err := NewRunTask(RunPayload{RunID: runID, Mode: mode.String()})
	if err != nil {
		return err
	}

	info, err := e.client.EnqueueContext(ctx, task)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to enqueue sell run")
	}

	logger(ctx).Info("sell run enqueued",
		slog.String(logx.FieldRunID, runID),
		slog.String("task-id", info.ID),
		slog.String("queue", info.Queue),
	)

	return nil
}

func (e *Enqueuer) Close() error {
	return e.client.Close()
}

// Executor runs one sell run to completion.
type Executor interface {
	Execute(ctx context.Context, runID string, mode catalog.Mode) (entity.RunSummary, error)
}

type Handler struct {
	executor Executor
}

func NewHandler(executor Executor) *Handler {
	return &Handler{executor: executor}
}

func (h *Handler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	p, err := ParseRunTask(t)
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	mode, err := catalog.ParseMode(p.Mode)
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	ctx = contextx.WithRunID(ctx, contextx.RunID(p.RunID))

	summary, err := h.executor.Execute(ctx, p.RunID, mode)
	if err != nil {
		return fmt.Errorf("executor.Execute: %w: %w", err, asynq.SkipRetry)
	}

	logger(ctx).Info("sell run task done",
		slog.String(logx.FieldRunID, p.RunID),
		slog.Int("listed", summary.ItemsListed),
		slog.Int("vendored", summary.ItemsVendored),
	)

	return nil
}
