package persistence

import (
	"database/sql"
	"time"

	"automarket/internal/domain/entity"
)

// runSchema maps a sell_runs row.
type runSchema struct {
	ID               string       `db:"id"`
	TotalItems       int          `db:"total_items"`
	ItemsListed      int          `db:"items_listed"`
	ItemsVendored    int          `db:"items_vendored"`
	ItemsDropped     int          `db:"items_dropped"`
	ItemsDeferred    int          `db:"items_deferred"`
	EstimatedRevenue int64        `db:"estimated_revenue"`
	Cancelled        bool         `db:"cancelled"`
	StartedAt        time.Time    `db:"started_at"`
	FinishedAt       sql.NullTime `db:"finished_at"`
}

func fromRunSummary(s *entity.RunSummary) runSchema {
	schema := runSchema{
		ID:               s.RunID,
		TotalItems:       s.TotalItems,
		ItemsListed:      s.ItemsListed,
		ItemsVendored:    s.ItemsVendored,
		ItemsDropped:     s.ItemsDropped,
		ItemsDeferred:    s.ItemsDeferred,
		EstimatedRevenue: s.EstimatedRevenue,
		Cancelled:        s.Cancelled,
		StartedAt:        s.StartedAt,
	}

	if s.FinishedAt != nil {
		schema.FinishedAt = sql.NullTime{Time: *s.FinishedAt, Valid: true}
	}

	return schema
}

func (s *runSchema) toDomain() *entity.RunSummary {
	summary := &entity.RunSummary{
		RunID:            s.ID,
		TotalItems:       s.TotalItems,
		ItemsListed:      s.ItemsListed,
		ItemsVendored:    s.ItemsVendored,
		ItemsDropped:     s.ItemsDropped,
		ItemsDeferred:    s.ItemsDeferred,
		EstimatedRevenue: s.EstimatedRevenue,
		Cancelled:        s.Cancelled,
		StartedAt:        s.StartedAt,
	}

	if s.FinishedAt.Valid {
		finished := s.FinishedAt.Time
		summary.FinishedAt = &finished
	}

	return summary
}
