package sell

import (
	"time"

	"automarket/internal/domain/service/retry"
)

// Policies are the poll budgets used at each touch point.
type Policies struct {
	AgentList   retry.Policy
	AgentMenu   retry.Policy
	SellList    retry.Policy
	ContextMenu retry.Policy
	SellDialog  retry.Policy
	Compare     retry.Policy
	Confirm     retry.Policy
}

func DefaultPolicies() Policies {
	return Policies{
		AgentList:   retry.SurfaceFast,
		AgentMenu:   retry.AgentSelect,
		SellList:    retry.SurfaceSlow,
		ContextMenu: retry.Menu,
		SellDialog:  retry.SurfaceFast,
		Compare:     retry.SurfaceSlow,
		Confirm:     retry.Dialog,
	}
}

type Options struct {
	UndercutAmount      int64
	ActionDelay         time.Duration
	InterAgentDelay     time.Duration
	MaxListingsPerAgent int
	MaxBatchSize        int
	PrecomputedPrice    bool
}

func DefaultOptions() Options {
	return Options{
		UndercutAmount:      1,
		ActionDelay:         300 * time.Millisecond,
		InterAgentDelay:     time.Second,
		MaxListingsPerAgent: 20,
		MaxBatchSize:        99,
	}
}

// Deps is everything the workflows touch. Nil optional fields fall back to
// defaults in New.
type Deps struct {
	Target   TargetSystem
	Resolver *Resolver
	Prices   *PriceMemo
	Observer Observer
	Policies Policies
	Options  Options
}

func (d Deps) withDefaults() Deps {
	if d.Resolver == nil {
		d.Resolver = NewResolver(nil)
	}
	if d.Prices == nil {
		d.Prices = NewPriceMemo(time.Hour)
	}
	if d.Observer == nil {
		d.Observer = NopObserver{}
	}
	if d.Policies == (Policies{}) {
		d.Policies = DefaultPolicies()
	}
	if d.Options.MaxBatchSize <= 0 {
		d.Options.MaxBatchSize = 99
	}
	if d.Options.MaxListingsPerAgent <= 0 {
		d.Options.MaxListingsPerAgent = 20
	}
	return d
}
