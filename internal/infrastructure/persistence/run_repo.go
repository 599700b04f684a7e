package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"automarket/internal/domain"
	"automarket/internal/domain/entity"
	"automarket/pkg/errcodes"
)

const runColumns = `id, total_items, items_listed, items_vendored, items_dropped,
	items_deferred, estimated_revenue, cancelled, started_at, finished_at`

// RunRepository keeps the history of sell runs and what happened to every
// item in them.
type RunRepository struct {
	db *sqlx.DB
}

func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return domain.WrapError(
				fmt.Errorf("%w; rollback: %v", err, rbErr),
				errcodes.InternalServerError,
				"transaction failed",
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to commit")
	}

	return nil
}

// Start records a run that has just begun.
func (r *RunRepository) Start(ctx context.Context, summary *entity.RunSummary) error {
	query := `
		INSERT INTO sell_runs (` + runColumns + `)
		VALUES (:id, :total_items, :items_listed, :items_vendored, :items_dropped,
			:items_deferred, :estimated_revenue, :cancelled, :started_at, :finished_at)`

	if _, err := r.db.NamedExecContext(ctx, query, fromRunSummary(summary)); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to insert run")
	}

	return nil
}

// Finish stores the final counters and the item outcomes atomically.
func (r *RunRepository) Finish(ctx context.Context, summary *entity.RunSummary, outcomes []entity.ItemOutcome) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE sell_runs
			SET total_items = :total_items, items_listed = :items_listed,
				items_vendored = :items_vendored, items_dropped = :items_dropped,
				items_deferred = :items_deferred, estimated_revenue = :estimated_revenue,
				cancelled = :cancelled, finished_at = :finished_at
			WHERE id = :id`

		res, err := tx.NamedExecContext(ctx, query, fromRunSummary(summary))
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to update run")
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to check affected rows")
		}
		if rows == 0 {
			return domain.NewError(errcodes.RunNotFound, "run not found")
		}

		for i, outcome := range outcomes {
			outcome.RunID = summary.RunID
			if err := r.insertOutcomeTx(ctx, tx, outcome); err != nil {
				return domain.WrapError(err, errcodes.InternalServerError, fmt.Sprintf("failed at outcome %d", i))
			}
		}

		return nil
	})
}

func (r *RunRepository) insertOutcomeTx(ctx context.Context, tx *sqlx.Tx, outcome entity.ItemOutcome) error {
	query := `
		INSERT INTO sell_run_items (run_id, agent, item_id, is_hq, name, status, quantity, price, reason)
		VALUES (:run_id, :agent, :item_id, :is_hq, :name, :status, :quantity, :price, :reason)`

	if _, err := tx.NamedExecContext(ctx, query, outcome); err != nil {
		return fmt.Errorf("tx.NamedExecContext: %w", err)
	}

	return nil
}

func (r *RunRepository) Get(ctx context.Context, id string) (*entity.RunSummary, error) {
	query := `SELECT ` + runColumns + ` FROM sell_runs WHERE id = $1`

	var schema runSchema
	if err := r.db.GetContext(ctx, &schema, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(errcodes.RunNotFound, "run not found")
		}
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get run")
	}

	return schema.toDomain(), nil
}

// Last returns the most recently started run.
func (r *RunRepository) Last(ctx context.Context) (*entity.RunSummary, error) {
	query := `SELECT ` + runColumns + ` FROM sell_runs ORDER BY started_at DESC LIMIT 1`

	var schema runSchema
	if err := r.db.GetContext(ctx, &schema, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(errcodes.RunNotFound, "no runs yet")
		}
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get last run")
	}

	return schema.toDomain(), nil
}

func (r *RunRepository) Outcomes(ctx context.Context, runID string) ([]entity.ItemOutcome, error) {
	query := `
		SELECT run_id, agent, item_id, is_hq, name, status, quantity, price, reason
		FROM sell_run_items
		WHERE run_id = $1
		ORDER BY id`

	var outcomes []entity.ItemOutcome
	if err := r.db.SelectContext(ctx, &outcomes, query, runID); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get run items")
	}

	return outcomes, nil
}
