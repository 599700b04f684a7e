package persistence

import (
	"context"
	"slices"
	"sync"

	"automarket/internal/domain"
	"automarket/internal/domain/entity"
	"automarket/pkg/errcodes"
)

// MemoryRunRepository keeps run history in process. It is used when no
// database is configured and in dry-run mode.
type MemoryRunRepository struct {
	mu       sync.RWMutex
	runs     map[string]entity.RunSummary
	order    []string
	outcomes map[string][]entity.ItemOutcome
}

func NewMemoryRunRepository() *MemoryRunRepository {
	return &MemoryRunRepository{
		runs:     make(map[string]entity.RunSummary),
		outcomes: make(map[string][]entity.ItemOutcome),
	}
}

func (r *MemoryRunRepository) Start(_ context.Context, summary *entity.RunSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[summary.RunID]; !ok {
		r.order = append(r.order, summary.RunID)
	}
	r.runs[summary.RunID] = *summary

	return nil
}

func (r *MemoryRunRepository) Finish(_ context.Context, summary *entity.RunSummary, outcomes []entity.ItemOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[summary.RunID]; !ok {
		return domain.NewError(errcodes.RunNotFound, "run not found")
	}

	r.runs[summary.RunID] = *summary

	stored := make([]entity.ItemOutcome, 0, len(outcomes))
	for _, outcome := range outcomes {
		outcome.RunID = summary.RunID
		stored = append(stored, outcome)
	}
	r.outcomes[summary.RunID] = stored

	return nil
}

func (r *MemoryRunRepository) Get(_ context.Context, id string) (*entity.RunSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summary, ok := r.runs[id]
	if !ok {
		return nil, domain.NewError(errcodes.RunNotFound, "run not found")
	}

	return &summary, nil
}

func (r *MemoryRunRepository) Last(_ context.Context) (*entity.RunSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.order) == 0 {
		return nil, domain.NewError(errcodes.RunNotFound, "no runs yet")
	}

	summary := r.runs[r.order[len(r.order)-1]]

	return &summary, nil
}

func (r *MemoryRunRepository) Outcomes(_ context.Context, runID string) ([]entity.ItemOutcome, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.outcomes[runID]), nil
}
