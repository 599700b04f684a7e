package server

import (
	"github.com/samber/lo"

	"automarket/internal/domain/entity"
	"automarket/internal/worker"
	"automarket/pkg/rest"
)

func newRESTStatus(status worker.Status) rest.RunStatus {
	result := rest.RunStatus{
		Running: status.Running,
		Paused:  status.Paused,
		RunID:   status.RunID,
		Mode:    status.Mode,
	}

	if !status.StartedAt.IsZero() {
		result.StartedAt = &status.StartedAt
	}

	return result
}

func newRESTRun(summary *entity.RunSummary, outcomes []entity.ItemOutcome) rest.Run {
	return rest.Run{
		Summary: rest.RunSummary{
			RunID:            summary.RunID,
			TotalItems:       summary.TotalItems,
			ItemsListed:      summary.ItemsListed,
			ItemsVendored:    summary.ItemsVendored,
			ItemsDropped:     summary.ItemsDropped,
			ItemsDeferred:    summary.ItemsDeferred,
			EstimatedRevenue: summary.EstimatedRevenue,
			Cancelled:        summary.Cancelled,
			StartedAt:        summary.StartedAt,
			FinishedAt:       summary.FinishedAt,
		},
		Outcomes: lo.Map(outcomes, func(o entity.ItemOutcome, _ int) rest.ItemOutcome {
			return rest.ItemOutcome{
				Agent:    o.Agent,
				ItemID:   o.ItemID,
				IsHQ:     o.IsHQ,
				Name:     o.Name,
				Status:   string(o.Status),
				Quantity: o.Quantity,
				Price:    o.Price,
				Reason:   o.Reason,
			}
		}),
	}
}
