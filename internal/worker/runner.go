package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/samber/lo"

	"automarket/internal/domain"
	"automarket/internal/domain/entity"
	"automarket/internal/domain/service/catalog"
	"automarket/internal/domain/service/sell"
	"automarket/pkg/contextx"
	"automarket/pkg/errcodes"
	"automarket/pkg/logx"
	"automarket/pkg/pausex"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type RunRepository interface {
	Start(ctx context.Context, summary *entity.RunSummary) error
	Finish(ctx context.Context, summary *entity.RunSummary, outcomes []entity.ItemOutcome) error
}

type RunLock interface {
	Acquire(ctx context.Context, owner string) error
	Release(ctx context.Context, owner string) error
	Extend(ctx context.Context, owner string) error
	TTL() time.Duration
}

type Metrics interface {
	sell.Observer
	RunStarted()
	RunFinished(result string)
}

// CatalogLoader returns a fresh copy of the stock catalog for one run.
type CatalogLoader func(ctx context.Context) ([]*entity.StockItem, error)

type Status struct {
	Running   bool      `json:"running"`
	Paused    bool      `json:"paused"`
	RunID     string    `json:"run_id,omitempty"`
	Mode      string    `json:"mode,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty"`
}

// activeRun is the control block of the run in progress.
type activeRun struct {
	id        string
	mode      catalog.Mode
	startedAt time.Time
	cancel    context.CancelFunc
	gate      *pausex.Gate
	done      chan struct{}
}

// Runner executes sell runs one at a time and exposes start, stop and pause
// controls for them.
type Runner struct {
	deps     sell.Deps
	load     CatalogLoader
	repo     RunRepository
	lock     RunLock
	metrics  Metrics
	events   chan<- entity.RunEvent
	filter   catalog.FilterOptions
	evaluate *catalog.EvaluateOptions
	priceTTL time.Duration
	now      func() time.Time

	mu     sync.Mutex
	active *activeRun
	wg     sync.WaitGroup
}

func NewRunner(deps sell.Deps, load CatalogLoader, repo RunRepository) *Runner {
	return &Runner{
		deps:     deps,
		load:     load,
		repo:     repo,
		priceTTL: time.Hour,
		now:      time.Now,
	}
}

func (r *Runner) WithLock(lock RunLock) *Runner {
	r.lock = lock
	return r
}

func (r *Runner) WithMetrics(metrics Metrics) *Runner {
	r.metrics = metrics
	return r
}

// WithEvents makes the runner publish lifecycle events. Sends never block the
// run: events are dropped when the channel is full.
func (r *Runner) WithEvents(events chan<- entity.RunEvent) *Runner {
	r.events = events
	return r
}

func (r *Runner) WithFilter(opts catalog.FilterOptions) *Runner {
	r.filter = opts
	return r
}

// WithEvaluate recomputes profitability of each item before queues are built.
// Without it the catalog flags are trusted as is.
func (r *Runner) WithEvaluate(opts catalog.EvaluateOptions) *Runner {
	r.evaluate = &opts
	return r
}

func (r *Runner) WithPriceTTL(ttl time.Duration) *Runner {
	r.priceTTL = ttl
	return r
}

func NewRunID() string {
	return xid.New().String()
}

// Start launches a run in the background and returns its id. The run outlives
// ctx; use Stop to cancel it.
func (r *Runner) Start(ctx context.Context, mode catalog.Mode) (string, error) {
	runID := NewRunID()

	runCtx, active, err := r.begin(context.WithoutCancel(ctx), runID, mode)
	if err != nil {
		return "", err
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		if _, err := r.execute(runCtx, active); err != nil && !errors.Is(err, context.Canceled) {
			logger(runCtx).Error("sell run failed", logx.Error(err))
		}
	}()

	return runID, nil
}

// Execute runs synchronously under the given id. It fails with RunInProgress
// if another run is active in this process or holds the run lock.
func (r *Runner) Execute(ctx context.Context, runID string, mode catalog.Mode) (entity.RunSummary, error) {
	runCtx, active, err := r.begin(ctx, runID, mode)
	if err != nil {
		return entity.RunSummary{}, err
	}

	return r.execute(runCtx, active)
}

// Stop cancels the active run and waits until it has unwound.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	active := r.active
	r.mu.Unlock()

	if active == nil {
		return domain.NewError(errcodes.NoRunActive, "no sell run is active")
	}

	active.cancel()

	select {
	case <-active.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown cancels the active run, if any, and waits for background runs.
func (r *Runner) Shutdown() {
	r.mu.Lock()
	if r.active != nil {
		r.active.cancel()
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Runner) Pause(ctx context.Context) error {
	active, err := r.current()
	if err != nil {
		return err
	}

	if active.gate.Pause() {
		logger(ctx).Info("sell run paused", slog.String(logx.FieldRunID, active.id))
		r.publish(ctx, entity.RunEvent{Kind: entity.RunPaused, RunID: active.id})
	}

	return nil
}

func (r *Runner) Resume(ctx context.Context) error {
	active, err := r.current()
	if err != nil {
		return err
	}

	if active.gate.Resume() {
		logger(ctx).Info("sell run resumed", slog.String(logx.FieldRunID, active.id))
		r.publish(ctx, entity.RunEvent{Kind: entity.RunResumed, RunID: active.id})
	}

	return nil
}

// TogglePause pauses a running run or resumes a paused one and reports the
// new paused state.
func (r *Runner) TogglePause(ctx context.Context) (bool, error) {
	active, err := r.current()
	if err != nil {
		return false, err
	}

	paused := active.gate.Toggle()

	kind := lo.Ternary(paused, entity.RunPaused, entity.RunResumed)
	logger(ctx).Info("sell run "+string(kind), slog.String(logx.FieldRunID, active.id))
	r.publish(ctx, entity.RunEvent{Kind: kind, RunID: active.id})

	return paused, nil
}

func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.active != nil
}

func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil {
		return Status{}
	}

	return Status{
		Running:   true,
		Paused:    r.active.gate.Paused(),
		RunID:     r.active.id,
		Mode:      r.active.mode.String(),
		StartedAt: r.active.startedAt,
	}
}

func (r *Runner) current() (*activeRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil {
		return nil, domain.NewError(errcodes.NoRunActive, "no sell run is active")
	}

	return r.active, nil
}

func (r *Runner) begin(ctx context.Context, runID string, mode catalog.Mode) (context.Context, *activeRun, error) {
	if runID == "" {
		return nil, nil, domain.NewError(errcodes.InvalidRunID, "run id is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil {
		return nil, nil, domain.NewError(errcodes.RunInProgress, "sell run "+r.active.id+" is in progress")
	}

	runCtx, cancel := context.WithCancel(ctx)
	gate := pausex.New()

	runCtx = contextx.WithRunID(runCtx, contextx.RunID(runID))
	runCtx = contextx.WithPauseGate(runCtx, gate)
	runCtx = contextx.WithLogger(runCtx, logger(runCtx).With(
		slog.String(logx.FieldRunID, runID),
		slog.String("mode", mode.String()),
	))

	r.active = &activeRun{
		id:        runID,
		mode:      mode,
		startedAt: r.now(),
		cancel:    cancel,
		gate:      gate,
		done:      make(chan struct{}),
	}

	return runCtx, r.active, nil
}

func (r *Runner) end(active *activeRun) {
	r.mu.Lock()
	defer r.mu.Unlock()

	active.cancel()
	close(active.done)

	if r.active == active {
		r.active = nil
	}
}

func (r *Runner) execute(ctx context.Context, active *activeRun) (entity.RunSummary, error) {
	defer r.end(active)

	if r.lock != nil {
		// The lock outlives cancellation of the run so that it is always
		// released.
		lockCtx := context.WithoutCancel(ctx)

		if err := r.lock.Acquire(lockCtx, active.id); err != nil {
			return entity.RunSummary{}, err
		}
		defer func() {
			if err := r.lock.Release(lockCtx, active.id); err != nil {
				logger(ctx).Warn("failed to release run lock", logx.Error(err))
			}
		}()

		stopRenewal := r.renewLock(lockCtx, active)
		defer stopRenewal()
	}

	summary, err := r.run(ctx, active)
	if err != nil {
		r.publish(ctx, entity.RunEvent{Kind: entity.RunFailed, RunID: active.id, Err: err})
		if r.metrics != nil {
			r.metrics.RunFinished("failed")
		}

		return summary, err
	}

	r.publish(ctx, entity.RunEvent{Kind: entity.RunFinished, RunID: active.id, Summary: summary})
	if r.metrics != nil {
		r.metrics.RunFinished(lo.Ternary(summary.Cancelled, "cancelled", "completed"))
	}

	return summary, nil
}

// renewLock extends the run lock every third of its TTL until the returned
// stop func is called. A run that can no longer prove it holds the lock is
// cancelled so that it never drives the target next to another worker.
func (r *Runner) renewLock(ctx context.Context, active *activeRun) func() {
	interval := r.lock.TTL() / 3
	if interval <= 0 {
		return func() {}
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := r.lock.Extend(ctx, active.id); err != nil {
					logger(ctx).Error("run lock lost, cancelling run", logx.Error(err))
					active.cancel()
					return
				}
			}
		}
	}()

	return func() {
		close(stop)
		wg.Wait()
	}
}

func (r *Runner) run(ctx context.Context, active *activeRun) (entity.RunSummary, error) {
	log := logger(ctx)

	items, err := r.load(ctx)
	if err != nil {
		return entity.RunSummary{}, err
	}

	items = catalog.Filter(items, r.filter)
	if r.evaluate != nil {
		catalog.Evaluate(items, *r.evaluate)
	}
	queues := catalog.BuildQueues(items, active.mode)

	// History writes must land even when the run is cancelled.
	storeCtx := context.WithoutCancel(ctx)

	summary := entity.RunSummary{RunID: active.id, StartedAt: active.startedAt}
	if err := r.repo.Start(storeCtx, &summary); err != nil {
		return summary, err
	}

	r.publish(ctx, entity.RunEvent{Kind: entity.RunStarted, RunID: active.id})
	if r.metrics != nil {
		r.metrics.RunStarted()
	}

	collector := &outcomeCollector{next: r.metrics}

	deps := r.deps
	deps.Observer = collector
	deps.Prices = sell.NewPriceMemo(r.priceTTL)

	result := sell.NewScheduler(deps).Run(ctx, queues)
	result.RunID = active.id
	result.StartedAt = active.startedAt
	result.Finish(r.now(), result.Cancelled || ctx.Err() != nil)

	if err := r.repo.Finish(storeCtx, &result, collector.outcomes); err != nil {
		return result, err
	}

	log.Info("sell run stored",
		slog.Int("outcomes", len(collector.outcomes)),
		slog.Bool("cancelled", result.Cancelled),
	)

	return result, nil
}

func (r *Runner) publish(ctx context.Context, event entity.RunEvent) {
	if r.events == nil {
		return
	}

	select {
	case r.events <- event:
	default:
		logger(ctx).Warn("event channel full, dropping event", slog.String("kind", string(event.Kind)))
	}
}

// outcomeCollector records settled items for the run history and forwards
// every event to next.
type outcomeCollector struct {
	next     sell.Observer
	outcomes []entity.ItemOutcome
}

func (c *outcomeCollector) BatchListed(ctx context.Context, item *entity.StockItem, quantity int, price int64) {
	if c.next != nil {
		c.next.BatchListed(ctx, item, quantity, price)
	}
}

func (c *outcomeCollector) ItemSettled(ctx context.Context, outcome entity.ItemOutcome) {
	c.outcomes = append(c.outcomes, outcome)

	if c.next != nil {
		c.next.ItemSettled(ctx, outcome)
	}
}

func (c *outcomeCollector) PollExhausted(ctx context.Context, surface sell.Surface) {
	if c.next != nil {
		c.next.PollExhausted(ctx, surface)
	}
}
