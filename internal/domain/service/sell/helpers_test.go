package sell_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"automarket/internal/domain/entity"
	"automarket/internal/domain/service/retry"
	"automarket/internal/domain/service/sell"
	"automarket/internal/domain/value"
	"automarket/internal/infrastructure/target/sim"
)

func slot(container value.Container, n int) value.Location {
	return value.Location{Container: container, Slot: n}
}

func fastDeps(target sell.TargetSystem) sell.Deps {
	fast := retry.Policy{Attempts: 3, Interval: time.Millisecond}

	return sell.Deps{
		Target: target,
		Policies: sell.Policies{
			AgentList:   fast,
			AgentMenu:   fast,
			SellList:    fast,
			ContextMenu: fast,
			SellDialog:  fast,
			Compare:     fast,
			Confirm:     fast,
		},
		Options: sell.Options{
			UndercutAmount:      1,
			MaxListingsPerAgent: 20,
			MaxBatchSize:        99,
		},
	}
}

func openAgent(t *testing.T, ctx context.Context, deps sell.Deps, agent int) *sell.Session {
	t.Helper()

	session := sell.NewSession(deps)
	require.True(t, session.Open(ctx, agent))

	return session
}

// fixedProbe reports a constant starting count plus what was recorded.
type fixedProbe struct {
	count    int
	recorded int
}

func (p *fixedProbe) Listings(context.Context) (int, error) {
	return p.count + p.recorded, nil
}

func (p *fixedProbe) Record(n int) {
	p.recorded += n
}

type recordingObserver struct {
	mu        sync.Mutex
	batches   []int
	outcomes  []entity.ItemOutcome
	exhausted []sell.Surface
}

func (o *recordingObserver) BatchListed(_ context.Context, _ *entity.StockItem, quantity int, _ int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.batches = append(o.batches, quantity)
}

func (o *recordingObserver) ItemSettled(_ context.Context, outcome entity.ItemOutcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func (o *recordingObserver) PollExhausted(_ context.Context, surface sell.Surface) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.exhausted = append(o.exhausted, surface)
}

func (o *recordingObserver) statuses() []entity.OutcomeStatus {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]entity.OutcomeStatus, 0, len(o.outcomes))
	for _, outcome := range o.outcomes {
		out = append(out, outcome.Status)
	}
	return out
}

func batchesOf(submissions []sim.Submission) []int {
	out := make([]int, 0, len(submissions))
	for _, s := range submissions {
		out = append(out, s.Quantity)
	}
	return out
}
