package sell_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"automarket/internal/domain/service/sell"
	"automarket/internal/infrastructure/target/sim"
)

func TestResolver_CandidateOrder(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	// the looser "Sell items" matches the first entry, but the more specific
	// candidate comes first in the list and must win
	target := sim.New(sim.WithAgentMenu(
		sim.MenuEntry{Text: "Sell items", Kind: sim.EntryInert},
		sim.MenuEntry{Text: "Sell items in your inventory", Kind: sim.EntryOpenSellList},
	))
	opened, err := target.OpenAgent(ctx, 0)
	rq.NoError(err)
	rq.True(opened)

	index, found, err := sell.NewResolver(nil).Resolve(ctx, target, sell.ActionSellFromInventory)
	rq.NoError(err)
	rq.True(found)
	rq.Equal(1, index)

	_, found, err = sell.NewResolver(nil).Resolve(ctx, target, sell.ActionComparePrices)
	rq.NoError(err)
	rq.False(found)
}

func TestResolver_Overrides(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	labels := sell.DefaultLabels().With(sell.Labels{
		sell.ActionSellFromInventory: {"Verkaufen"},
		sell.ActionVendor:            nil,
	})

	rq.Equal([]string{"Verkaufen"}, labels[sell.ActionSellFromInventory])
	rq.Equal(sell.DefaultLabels()[sell.ActionVendor], labels[sell.ActionVendor])
	rq.Equal("Sell items in your inventory on the market", sell.DefaultLabels()[sell.ActionSellFromInventory][0])

	target := sim.New(sim.WithAgentMenu(sim.MenuEntry{Text: "Gegenstände verkaufen", Kind: sim.EntryOpenSellList}))
	session := sell.NewSession(sell.Deps{
		Target:   target,
		Resolver: sell.NewResolver(labels),
		Policies: fastDeps(target).Policies,
	})

	rq.True(session.Open(ctx, 0))
}

func TestResolver_TargetError(t *testing.T) {
	rq := require.New(t)

	target := sim.New(sim.WithFault("FindActionByLabel", sim.ErrInjected))

	_, _, err := sell.NewResolver(nil).Resolve(context.Background(), target, sell.ActionVendor)
	rq.ErrorIs(err, sim.ErrInjected)
}
