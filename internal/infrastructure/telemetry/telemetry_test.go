package telemetry

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"automarket/internal/domain/entity"
	"automarket/internal/domain/service/sell"
)

func TestMetrics_Observer(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	m := New()
	item := &entity.StockItem{ItemID: 5057, Name: "Iron Ore"}

	m.BatchListed(ctx, item, 99, 10)
	m.BatchListed(ctx, item, 52, 10)
	m.ItemSettled(ctx, entity.ItemOutcome{Agent: 0, ItemID: 5057, Status: entity.OutcomeListed})
	m.ItemSettled(ctx, entity.ItemOutcome{Agent: 1, ItemID: 5058, Status: entity.OutcomeDropped})
	m.ItemSettled(ctx, entity.ItemOutcome{Agent: 1, ItemID: 5059, Status: entity.OutcomeDropped})
	m.PollExhausted(ctx, sell.SurfaceSellDialog)

	rq.InDelta(2, testutil.ToFloat64(m.batches), 0)
	rq.InDelta(151, testutil.ToFloat64(m.listedUnits), 0)
	rq.InDelta(1510, testutil.ToFloat64(m.revenue), 0)
	rq.InDelta(1, testutil.ToFloat64(m.outcomes.WithLabelValues("listed", "0")), 0)
	rq.InDelta(2, testutil.ToFloat64(m.outcomes.WithLabelValues("dropped", "1")), 0)
	rq.InDelta(1, testutil.ToFloat64(m.pollExhausted.WithLabelValues(sell.SurfaceSellDialog.String())), 0)
}

func TestMetrics_Runs(t *testing.T) {
	rq := require.New(t)

	m := New()

	m.RunStarted()
	rq.InDelta(1, testutil.ToFloat64(m.running), 0)

	m.RunFinished("cancelled")
	rq.InDelta(0, testutil.ToFloat64(m.running), 0)
	rq.InDelta(1, testutil.ToFloat64(m.runs.WithLabelValues("cancelled")), 0)

	families, err := m.Gatherer().Gather()
	rq.NoError(err)
	rq.NotEmpty(families)
}
