package notifier_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"automarket/internal/domain/entity"
	"automarket/internal/infrastructure/notifier"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		event    entity.RunEvent
		contains []string
		absent   []string
	}{
		{
			name:     "started",
			event:    entity.RunEvent{Kind: entity.RunStarted, RunID: "abc"},
			contains: []string{"Sell run started", "<code>abc</code>"},
			absent:   []string{"Listed"},
		},
		{
			name: "finished",
			event: entity.RunEvent{Kind: entity.RunFinished, RunID: "abc", Summary: entity.RunSummary{
				ItemsListed: 3, ItemsVendored: 2, ItemsDropped: 1, EstimatedRevenue: 4200,
			}},
			contains: []string{"Sell run finished", "<b>Listed:</b> 3", "<b>Vendored:</b> 2", "<b>Dropped:</b> 1", "4200"},
			absent:   []string{"Deferred"},
		},
		{
			name:     "cancelled",
			event:    entity.RunEvent{Kind: entity.RunFinished, RunID: "abc", Summary: entity.RunSummary{Cancelled: true}},
			contains: []string{"Sell run cancelled"},
		},
		{
			name:     "failed escapes error",
			event:    entity.RunEvent{Kind: entity.RunFailed, RunID: "abc", Err: errors.New("bad <input>")},
			contains: []string{"Sell run failed", "bad &lt;input&gt;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rq := require.New(t)

			text := notifier.Format(tt.event)
			for _, s := range tt.contains {
				rq.Contains(text, s)
			}
			for _, s := range tt.absent {
				rq.NotContains(text, s)
			}
		})
	}
}
