package sell

import (
	"context"
	"log/slog"

	"automarket/internal/domain/entity"
	"automarket/internal/domain/service/catalog"
	"automarket/internal/domain/service/retry"
	"automarket/pkg/contextx"
	"automarket/pkg/logx"
)

// Scheduler walks the agents in order and feeds them the two queues. It is
// strictly sequential: one agent, one item, one interaction at a time.
type Scheduler struct {
	deps      Deps
	listing   *Listing
	vendoring *Vendoring
}

func NewScheduler(deps Deps) *Scheduler {
	deps = deps.withDefaults()

	return &Scheduler{
		deps:      deps,
		listing:   NewListing(deps),
		vendoring: NewVendoring(deps),
	}
}

// agentCapacity is the capacity probe for one agent session. The count read
// from the target may lag behind the engine's own submissions, so the larger
// of the two is trusted.
type agentCapacity struct {
	target   TargetSystem
	agent    int
	baseline int
	added    int
}

func (c *agentCapacity) Listings(ctx context.Context) (int, error) {
	current, err := c.target.QueryAgentListingCount(ctx, c.agent)
	if err != nil {
		return 0, err
	}

	return max(current, c.baseline+c.added), nil
}

func (c *agentCapacity) Record(listings int) {
	c.added += listings
}

// run holds the state owned by one Run call.
type run struct {
	queues  catalog.Queues
	summary entity.RunSummary
	// partial marks items that listed some units on an earlier agent.
	partial map[*entity.StockItem]bool
}

// Run processes the queues and returns what was achieved. It stops early only
// when ctx is cancelled; every other failure is contained to one item or one
// agent.
func (s *Scheduler) Run(ctx context.Context, queues catalog.Queues) entity.RunSummary {
	r := &run{queues: queues, partial: make(map[*entity.StockItem]bool)}
	log := logger(ctx)

	agents, err := s.deps.Target.QueryAgentCount(ctx)
	if err != nil {
		log.Error("target.QueryAgentCount", logx.Error(err))
		return r.summary
	}
	if agents == 0 {
		log.Error("no selling agents available")
		return r.summary
	}

	log.Info("sell run started",
		slog.Int("agents", agents),
		slog.Int("to-list", queues.List.Len()),
		slog.Int("to-vendor", queues.Vendor.Len()),
	)

	for agent := 0; agent < agents && !queues.Empty(); agent++ {
		if err := contextx.PauseGateFromContext(ctx).Wait(ctx); err != nil {
			r.summary.Cancelled = true
			break
		}

		if cancelled := s.runAgent(ctx, r, agent); cancelled {
			r.summary.Cancelled = true
			break
		}

		if agent+1 < agents && !queues.Empty() {
			if err := retry.Wait(ctx, s.deps.Options.InterAgentDelay); err != nil {
				r.summary.Cancelled = true
				break
			}
		}
	}

	log.Info("sell run finished",
		slog.Int("listed", r.summary.ItemsListed),
		slog.Int("vendored", r.summary.ItemsVendored),
		slog.Int("dropped", r.summary.ItemsDropped),
		slog.Int64("revenue", r.summary.EstimatedRevenue),
		slog.Bool("cancelled", r.summary.Cancelled),
		slog.Int("left-to-list", queues.List.Len()),
		slog.Int("left-to-vendor", queues.Vendor.Len()),
	)

	return r.summary
}

// runAgent serves one agent and reports whether the run was cancelled.
func (s *Scheduler) runAgent(ctx context.Context, r *run, agent int) bool {
	ctx = contextx.WithLogger(ctx, logger(ctx).With(slog.Int(logx.FieldAgent, agent)))
	log := logger(ctx)
	capacityCap := s.deps.Options.MaxListingsPerAgent

	session := NewSession(s.deps)
	if !session.Open(ctx, agent) {
		log.Warn("skipping agent, session did not open")
		return ctx.Err() != nil
	}

	baseline, err := s.deps.Target.QueryAgentListingCount(ctx, agent)
	if err != nil {
		log.Error("target.QueryAgentListingCount", logx.Error(err))
		session.Close(ctx, false)
		return ctx.Err() != nil
	}

	probe := &agentCapacity{target: s.deps.Target, agent: agent, baseline: baseline}
	agentView := entity.Agent{Index: agent, CapacityCap: capacityCap, CurrentCount: baseline}
	atCapacity := agentView.AvailableSlots() == 0
	toAttempt := min(r.queues.List.Len(), agentView.AvailableSlots())

	log.Info("agent ready", slog.Int(logx.FieldListings, baseline), slog.Int("to-attempt", toAttempt))

	// Only items that listed something use up a free slot; a dropped item
	// leaves its slot to the next one in the queue.
	for listedHere := 0; listedHere < toAttempt; {
		item, ok := r.queues.List.Peek()
		if !ok {
			break
		}

		if err := contextx.PauseGateFromContext(ctx).Wait(ctx); err != nil {
			return true
		}

		listings, err := probe.Listings(ctx)
		if err != nil {
			log.Error("capacity check failed", logx.Error(err))
			break
		}
		if listings >= capacityCap {
			atCapacity = true
			break
		}

		res := s.listing.ListItem(ctx, item, probe, capacityCap)
		if res.Stop == StopCancelled {
			if res.Succeeded() {
				r.summary.EstimatedRevenue += res.Price * int64(res.Listed)
			}
			return true
		}

		if res.Succeeded() {
			listedHere++
		}

		if deferred := s.settleListing(ctx, r, agent, item, res); deferred {
			atCapacity = res.Stop == StopCapacity
			break
		}
	}

	didVendor, cancelled := s.drainVendor(ctx, r, agent)
	if cancelled {
		return true
	}

	if !atCapacity {
		if listings, err := probe.Listings(ctx); err == nil && listings >= capacityCap {
			atCapacity = true
		}
	}

	if !r.queues.Empty() || atCapacity {
		session.Close(ctx, didVendor)
	} else {
		log.Info("all queues drained, leaving agent open")
	}

	return false
}

// settleListing applies the outcome of one ListItem call to the queue and the
// summary. It reports whether the item was deferred to the next agent, which
// also ends listing on this agent.
//
// Every item gets at most one failed attempt per agent: a stop with nothing
// listed drops the item unless the agent was simply full. An item that listed
// units on an earlier agent still counts as listed when it is dropped.
func (s *Scheduler) settleListing(ctx context.Context, r *run, agent int, item *entity.StockItem, res ListResult) bool {
	outcome := entity.ItemOutcome{
		Agent:    agent,
		ItemID:   item.ItemID,
		IsHQ:     item.IsHQ,
		Name:     item.Name,
		Quantity: res.Listed,
		Price:    res.Price,
	}
	if res.Stop != StopNone {
		outcome.Reason = res.Stop.String()
	}

	switch {
	case res.Drained() || (res.Succeeded() && res.Stop.Terminal()):
		r.queues.List.Pop()
		delete(r.partial, item)

		outcome.Status = entity.OutcomeListed
		r.summary.AddListed(res.Listed, res.Price)

	case res.Succeeded():
		r.partial[item] = true
		r.summary.ItemsDeferred++
		r.summary.EstimatedRevenue += res.Price * int64(res.Listed)

		outcome.Status = entity.OutcomeDeferred
		s.deps.Observer.ItemSettled(ctx, s.withRunID(ctx, outcome))

		return true

	case res.Stop == StopCapacity:
		return true

	default:
		r.queues.List.Pop()

		if r.partial[item] {
			delete(r.partial, item)
			outcome.Status = entity.OutcomeListed
			r.summary.AddListed(0, 0)
		} else {
			outcome.Status = entity.OutcomeDropped
			r.summary.ItemsDropped++
		}

		logger(ctx).Warn("item dropped from list queue",
			slog.Uint64(logx.FieldItemID, uint64(item.ItemID)),
			slog.String(logx.FieldReason, res.Stop.String()),
			slog.Any(logx.FieldCode, res.Stop.Code()),
		)
	}

	s.deps.Observer.ItemSettled(ctx, s.withRunID(ctx, outcome))

	return false
}

// drainVendor vendors the whole vendor queue on this agent. Vendoring has no
// capacity limit.
func (s *Scheduler) drainVendor(ctx context.Context, r *run, agent int) (didVendor, cancelled bool) {
	for {
		item, ok := r.queues.Vendor.Peek()
		if !ok {
			return didVendor, false
		}

		if err := contextx.PauseGateFromContext(ctx).Wait(ctx); err != nil {
			return didVendor, true
		}

		quantity := item.Quantity
		outcome := entity.ItemOutcome{
			Agent:    agent,
			ItemID:   item.ItemID,
			IsHQ:     item.IsHQ,
			Name:     item.Name,
			Quantity: quantity,
			Price:    item.VendorPrice,
		}

		vendored := s.vendoring.VendorItem(ctx, item)
		if !vendored && ctx.Err() != nil {
			return didVendor, true
		}

		r.queues.Vendor.Pop()

		if vendored {
			didVendor = true
			item.Quantity = 0
			r.summary.AddVendored(quantity, item.VendorPrice)
			outcome.Status = entity.OutcomeVendored
		} else {
			r.summary.ItemsDropped++
			outcome.Status = entity.OutcomeDropped
			outcome.Quantity = 0
			outcome.Reason = "vendor-failed"
		}

		s.deps.Observer.ItemSettled(ctx, s.withRunID(ctx, outcome))

		if err := retry.Wait(ctx, s.deps.Options.ActionDelay); err != nil {
			return didVendor, true
		}
	}
}

func (s *Scheduler) withRunID(ctx context.Context, outcome entity.ItemOutcome) entity.ItemOutcome {
	if runID, err := contextx.RunIDFromContext(ctx); err == nil {
		outcome.RunID = runID.String()
	}
	return outcome
}
