// Package rest holds the JSON models of the control API.
package rest

import "time"

type StartRunRequest struct {
	Mode string `json:"mode" validate:"omitempty,oneof=normal list-only vendor-only"`
}

type StartRunResponse struct {
	RunID string `json:"run_id"`
}

type RunStatus struct {
	Running   bool       `json:"running"`
	Paused    bool       `json:"paused"`
	RunID     string     `json:"run_id,omitempty"`
	Mode      string     `json:"mode,omitempty"`
	StartedAt *time.Time `json:"started_at,omitempty"`
}

type RunSummary struct {
	RunID            string     `json:"run_id"`
	TotalItems       int        `json:"total_items"`
	ItemsListed      int        `json:"items_listed"`
	ItemsVendored    int        `json:"items_vendored"`
	ItemsDropped     int        `json:"items_dropped"`
	ItemsDeferred    int        `json:"items_deferred"`
	EstimatedRevenue int64      `json:"estimated_revenue"`
	Cancelled        bool       `json:"cancelled"`
	StartedAt        time.Time  `json:"started_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
}

type ItemOutcome struct {
	Agent    int    `json:"agent"`
	ItemID   uint32 `json:"item_id"`
	IsHQ     bool   `json:"is_hq"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
	Reason   string `json:"reason,omitempty"`
}

type Run struct {
	Summary  RunSummary    `json:"summary"`
	Outcomes []ItemOutcome `json:"outcomes"`
}

type Error struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	SupportID string    `json:"supportId"`
}

type ErrorCode string
