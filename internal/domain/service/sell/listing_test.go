package sell_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"automarket/internal/domain/entity"
	"automarket/internal/domain/service/sell"
	"automarket/internal/domain/value"
	"automarket/internal/infrastructure/target/sim"
)

func TestListItem_SplitsIntoBatches(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	target := sim.New(
		sim.WithStack(slot(value.Inventory1, 0), 7, 250),
		sim.WithCompetingPrice(7, false, 1000),
	)
	deps := fastDeps(target)
	openAgent(t, ctx, deps, 0)

	item := &entity.StockItem{ItemID: 7, Name: "Iron Ore", Quantity: 250, Location: slot(value.Inventory1, 0)}
	res := sell.NewListing(deps).ListItem(ctx, item, &fixedProbe{}, 20)

	rq.Equal([]int{99, 99, 52}, res.Batches)
	rq.Equal(250, res.Listed)
	rq.Equal(int64(999), res.Price)
	rq.True(res.Succeeded())
	rq.True(res.Drained())
	rq.Equal(0, item.Quantity)
	rq.Equal([]int{99, 99, 52}, batchesOf(target.Submissions()))

	compares := 0
	for _, text := range target.Invoked() {
		if text == "Compare Prices" {
			compares++
		}
	}
	rq.Equal(1, compares, "only the first batch compares prices")
}

func TestListItem_BatchConservation(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		stacks   map[value.Location]int
		want     []int
	}{
		{name: "single unit", quantity: 1, stacks: map[value.Location]int{slot(value.Inventory1, 0): 1}, want: []int{1}},
		{name: "exact batch", quantity: 99, stacks: map[value.Location]int{slot(value.Inventory1, 0): 99}, want: []int{99}},
		{name: "one over", quantity: 100, stacks: map[value.Location]int{slot(value.Inventory1, 0): 100}, want: []int{99, 1}},
		{
			name:     "split across stacks",
			quantity: 150,
			stacks: map[value.Location]int{
				slot(value.Inventory1, 0): 60,
				slot(value.Inventory2, 3): 90,
			},
			want: []int{60, 90},
		},
		{
			name:     "fewer units than recorded",
			quantity: 120,
			stacks:   map[value.Location]int{slot(value.Inventory1, 0): 70},
			want:     []int{70},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rq := require.New(t)
			ctx := context.Background()

			opts := []sim.Option{sim.WithCompetingPrice(3, false, 50)}
			for location, quantity := range tt.stacks {
				opts = append(opts, sim.WithStack(location, 3, quantity))
			}

			target := sim.New(opts...)
			deps := fastDeps(target)
			openAgent(t, ctx, deps, 0)

			item := &entity.StockItem{ItemID: 3, Quantity: tt.quantity, Location: slot(value.Inventory1, 0)}
			res := sell.NewListing(deps).ListItem(ctx, item, &fixedProbe{}, 20)

			rq.Equal(tt.want, res.Batches)

			total := 0
			for _, b := range res.Batches {
				total += b
			}
			rq.Equal(tt.quantity-item.Quantity, total)
			rq.Equal(total, res.Listed)
			rq.Equal(res.Batches, batchesOf(target.Submissions()))
		})
	}
}

func TestListItem_PriceFloor(t *testing.T) {
	tests := []struct {
		name     string
		lowest   int64
		undercut int64
		want     int64
	}{
		{name: "undercut by one", lowest: 100, undercut: 1, want: 99},
		{name: "never below one", lowest: 1, undercut: 5, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rq := require.New(t)
			ctx := context.Background()

			target := sim.New(
				sim.WithStack(slot(value.Inventory1, 0), 9, 5),
				sim.WithCompetingPrice(9, true, tt.lowest),
			)
			deps := fastDeps(target)
			deps.Options.UndercutAmount = tt.undercut
			openAgent(t, ctx, deps, 0)

			item := &entity.StockItem{ItemID: 9, IsHQ: true, Quantity: 5, Location: slot(value.Inventory1, 0)}
			res := sell.NewListing(deps).ListItem(ctx, item, &fixedProbe{}, 20)

			rq.Equal(tt.want, res.Price)
			rq.Equal(tt.want, target.Submissions()[0].Price)
		})
	}
}

func TestListItem_PriceSources(t *testing.T) {
	t.Run("catalog price when nothing competes", func(t *testing.T) {
		rq := require.New(t)
		ctx := context.Background()

		target := sim.New(sim.WithStack(slot(value.Inventory1, 0), 4, 2))
		deps := fastDeps(target)
		openAgent(t, ctx, deps, 0)

		item := &entity.StockItem{ItemID: 4, Quantity: 2, ListingPrice: 420, Location: slot(value.Inventory1, 0)}
		res := sell.NewListing(deps).ListItem(ctx, item, &fixedProbe{}, 20)

		rq.True(res.Drained())
		rq.Equal(int64(420), res.Price)
	})

	t.Run("no price cancels the dialog", func(t *testing.T) {
		rq := require.New(t)
		ctx := context.Background()

		target := sim.New(sim.WithStack(slot(value.Inventory1, 0), 4, 2))
		deps := fastDeps(target)
		openAgent(t, ctx, deps, 0)

		item := &entity.StockItem{ItemID: 4, Quantity: 2, Location: slot(value.Inventory1, 0)}
		res := sell.NewListing(deps).ListItem(ctx, item, &fixedProbe{}, 20)

		rq.Equal(sell.StopNoPrice, res.Stop)
		rq.False(res.Succeeded())
		rq.Empty(target.Submissions())
		rq.False(target.IsOpen(sell.SurfaceSellDialog))
		rq.Contains(target.Calls(), "CancelSellDialog")
	})

	t.Run("precomputed price skips comparison", func(t *testing.T) {
		rq := require.New(t)
		ctx := context.Background()

		target := sim.New(
			sim.WithStack(slot(value.Inventory1, 0), 4, 150),
			sim.WithCompetingPrice(4, false, 10),
		)
		deps := fastDeps(target)
		deps.Options.PrecomputedPrice = true
		openAgent(t, ctx, deps, 0)

		item := &entity.StockItem{ItemID: 4, Quantity: 150, ListingPrice: 77, Location: slot(value.Inventory1, 0)}
		res := sell.NewListing(deps).ListItem(ctx, item, &fixedProbe{}, 20)

		rq.Equal([]int{99, 51}, res.Batches)
		for _, s := range target.Submissions() {
			rq.Equal(int64(77), s.Price)
		}
		rq.NotContains(target.Invoked(), "Compare Prices")
	})

	t.Run("remembered price is reused", func(t *testing.T) {
		rq := require.New(t)
		ctx := context.Background()

		target := sim.New(
			sim.WithStack(slot(value.Inventory1, 0), 4, 3),
			sim.WithCompetingPrice(4, false, 10),
		)
		item := &entity.StockItem{ItemID: 4, Quantity: 3, Location: slot(value.Inventory1, 0)}

		deps := fastDeps(target)
		deps.Prices = sell.NewPriceMemo(time.Minute)
		deps.Prices.Set(item, 500)
		openAgent(t, ctx, deps, 0)

		res := sell.NewListing(deps).ListItem(ctx, item, &fixedProbe{}, 20)

		rq.Equal(int64(500), res.Price)
		rq.NotContains(target.Invoked(), "Compare Prices")
	})
}

func TestListItem_SeparateStacksCompareEach(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	target := sim.New(
		sim.WithStack(slot(value.Inventory1, 0), 4, 3),
		sim.WithStack(slot(value.Inventory2, 0), 4, 2),
		sim.WithCompetingPrice(4, false, 10),
	)
	deps := fastDeps(target)
	deps.Prices = sell.NewPriceMemo(time.Minute)
	openAgent(t, ctx, deps, 0)

	first := &entity.StockItem{ItemID: 4, Quantity: 3, Location: slot(value.Inventory1, 0)}
	second := &entity.StockItem{ItemID: 4, Quantity: 2, Location: slot(value.Inventory2, 0)}
	listing := sell.NewListing(deps)

	rq.True(listing.ListItem(ctx, first, &fixedProbe{}, 20).Succeeded())
	rq.True(listing.ListItem(ctx, second, &fixedProbe{}, 20).Succeeded())

	compares := 0
	for _, label := range target.Invoked() {
		if label == "Compare Prices" {
			compares++
		}
	}
	rq.Equal(2, compares)
}

func TestPriceMemo(t *testing.T) {
	rq := require.New(t)

	item := &entity.StockItem{ItemID: 4}
	twin := &entity.StockItem{ItemID: 4}

	memo := sell.NewPriceMemo(time.Minute)
	memo.Set(item, 9)

	price, ok := memo.Get(item)
	rq.True(ok)
	rq.Equal(int64(9), price)

	_, ok = memo.Get(twin)
	rq.False(ok)

	short := sell.NewPriceMemo(time.Millisecond)
	short.Set(item, 9)
	time.Sleep(5 * time.Millisecond)

	_, ok = short.Get(item)
	rq.False(ok)
}

func TestListItem_CancelledMidItem(t *testing.T) {
	rq := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	target := sim.New(
		sim.WithStack(slot(value.Inventory1, 0), 7, 250),
		sim.WithCompetingPrice(7, false, 1000),
		sim.OnSubmit(func(sim.Submission) { cancel() }),
	)
	deps := fastDeps(target)
	openAgent(t, ctx, deps, 0)

	item := &entity.StockItem{ItemID: 7, Quantity: 250, Location: slot(value.Inventory1, 0)}
	res := sell.NewListing(deps).ListItem(ctx, item, &fixedProbe{}, 20)

	rq.Equal(sell.StopCancelled, res.Stop)
	rq.Equal([]int{99}, res.Batches)
	rq.Equal(250-99, item.Quantity)
	rq.Len(target.Submissions(), 1)
}

func TestListItem_Stops(t *testing.T) {
	tests := []struct {
		name    string
		opts    []sim.Option
		probe   *fixedProbe
		want    sell.StopReason
		batches []int
	}{
		{
			name: "location lost",
			opts: []sim.Option{sim.WithStack(slot(value.Inventory2, 0), 99, 4)},
			want: sell.StopLocationLost,
		},
		{
			name:    "capacity reached after one batch",
			opts:    []sim.Option{sim.WithStack(slot(value.Inventory1, 0), 7, 250)},
			probe:   &fixedProbe{count: 19},
			want:    sell.StopCapacity,
			batches: []int{99},
		},
		{
			name:  "already at capacity",
			opts:  []sim.Option{sim.WithStack(slot(value.Inventory1, 0), 7, 250)},
			probe: &fixedProbe{count: 20},
			want:  sell.StopCapacity,
		},
		{
			name: "sell dialog never appears",
			opts: []sim.Option{sim.WithStack(slot(value.Inventory1, 0), 7, 250), sim.WithBroken(sell.SurfaceSellDialog)},
			want: sell.StopSurfaceNotReady,
		},
		{
			name: "submit fails",
			opts: []sim.Option{sim.WithStack(slot(value.Inventory1, 0), 7, 250), sim.WithFault("SubmitPriceAndQuantity", sim.ErrInjected)},
			want: sell.StopFault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rq := require.New(t)
			ctx := context.Background()

			target := sim.New(append(tt.opts, sim.WithCompetingPrice(7, false, 100))...)
			deps := fastDeps(target)
			openAgent(t, ctx, deps, 0)

			probe := tt.probe
			if probe == nil {
				probe = &fixedProbe{}
			}

			item := &entity.StockItem{ItemID: 7, Quantity: 250, Location: slot(value.Inventory1, 0)}
			res := sell.NewListing(deps).ListItem(ctx, item, probe, 20)

			rq.Equal(tt.want, res.Stop)
			rq.Equal(tt.batches, res.Batches)
			rq.Equal(250-res.Listed, item.Quantity)
		})
	}
}

func TestListItem_Relocates(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	target := sim.New(
		sim.WithStack(slot(value.Inventory1, 2), 7, 10),
		sim.WithStack(slot(value.Inventory3, 0), 7, 20),
		sim.WithCompetingPrice(7, false, 100),
	)
	deps := fastDeps(target)
	openAgent(t, ctx, deps, 0)

	// the recorded slot is stale, the first stack after it is inventory3:0
	item := &entity.StockItem{ItemID: 7, Quantity: 20, Location: slot(value.Inventory2, 5)}
	res := sell.NewListing(deps).ListItem(ctx, item, &fixedProbe{}, 20)

	rq.True(res.Drained())
	rq.Equal([]int{20}, res.Batches)
	rq.Equal(slot(value.Inventory3, 0), item.Location)
}
