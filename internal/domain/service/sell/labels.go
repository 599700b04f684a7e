package sell

import (
	"context"
	"fmt"
	"maps"
)

// Action is an operation the engine selects from a menu. Menu text differs
// between client languages and versions, so every action is resolved through
// an ordered list of candidate labels, most specific first.
type Action uint8

const (
	ActionSellFromInventory Action = iota + 1
	ActionPutUpForSale
	ActionComparePrices
	ActionVendor
)

func (a Action) String() string {
	switch a {
	case ActionSellFromInventory:
		return "sell-from-inventory"
	case ActionPutUpForSale:
		return "put-up-for-sale"
	case ActionComparePrices:
		return "compare-prices"
	case ActionVendor:
		return "vendor"
	default:
		return "unknown"
	}
}

type Labels map[Action][]string

func DefaultLabels() Labels {
	return Labels{
		ActionSellFromInventory: {
			"Sell items in your inventory on the market",
			"Sell items in your inventory",
			"Sell items",
			"inventory on the market",
		},
		ActionPutUpForSale:  {"Put Up for Sale", "Sell items"},
		ActionComparePrices: {"Compare Prices", "Compare"},
		ActionVendor:        {"Have Retainer Sell Items", "Sell Items"},
	}
}

// With returns a copy of l where every non empty list in overrides replaces
// the built-in one.
func (l Labels) With(overrides Labels) Labels {
	merged := maps.Clone(l)
	for action, labels := range overrides {
		if len(labels) > 0 {
			merged[action] = labels
		}
	}
	return merged
}

type Resolver struct {
	labels Labels
}

func NewResolver(labels Labels) *Resolver {
	if labels == nil {
		labels = DefaultLabels()
	}
	return &Resolver{labels: labels}
}

func (r *Resolver) Candidates(action Action) []string {
	return r.labels[action]
}

// Resolve returns the menu index for action. Candidates are tried one at a
// time so that an earlier candidate wins even when a looser one matches an
// entry higher up in the menu.
func (r *Resolver) Resolve(ctx context.Context, target TargetSystem, action Action) (int, bool, error) {
	for _, label := range r.labels[action] {
		index, found, err := target.FindActionByLabel(ctx, []string{label})
		if err != nil {
			return 0, false, fmt.Errorf("target.FindActionByLabel(%q): %w", label, err)
		}

		if found {
			return index, true, nil
		}
	}

	return 0, false, nil
}
