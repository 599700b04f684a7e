package entity

import "time"

type RunSummary struct {
	RunID            string     `json:"run_id" db:"id"`
	TotalItems       int        `json:"total_items" db:"total_items"`
	ItemsListed      int        `json:"items_listed" db:"items_listed"`
	ItemsVendored    int        `json:"items_vendored" db:"items_vendored"`
	ItemsDropped     int        `json:"items_dropped" db:"items_dropped"`
	ItemsDeferred    int        `json:"items_deferred" db:"items_deferred"`
	EstimatedRevenue int64      `json:"estimated_revenue" db:"estimated_revenue"`
	Cancelled        bool       `json:"cancelled" db:"cancelled"`
	StartedAt        time.Time  `json:"started_at" db:"started_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty" db:"finished_at"`
}

func (s *RunSummary) AddListed(quantity int, price int64) {
	s.ItemsListed++
	s.TotalItems = s.ItemsListed + s.ItemsVendored
	s.EstimatedRevenue += price * int64(quantity)
}

func (s *RunSummary) AddVendored(quantity int, price int64) {
	s.ItemsVendored++
	s.TotalItems = s.ItemsListed + s.ItemsVendored
	s.EstimatedRevenue += price * int64(quantity)
}

func (s *RunSummary) Finish(at time.Time, cancelled bool) {
	s.FinishedAt = &at
	s.Cancelled = cancelled
}
