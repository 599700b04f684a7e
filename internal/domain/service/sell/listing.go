package sell

import (
	"context"
	"fmt"
	"log/slog"

	"automarket/internal/domain/entity"
	"automarket/internal/domain/service/catalog"
	"automarket/internal/domain/service/retry"
	"automarket/pkg/contextx"
	"automarket/pkg/logx"
)

const compareAttempts = 2

// CapacityProbe reports the listing count of the current agent. Record is
// told about every listing the engine adds so the probe never trails the
// engine's own writes.
type CapacityProbe interface {
	Listings(ctx context.Context) (int, error)
	Record(listings int)
}

type ListResult struct {
	Batches []int
	Listed  int
	Price   int64
	Stop    StopReason
}

// Succeeded reports whether at least one batch was listed.
func (r ListResult) Succeeded() bool {
	return len(r.Batches) > 0
}

// Drained reports whether the loop ended because nothing was left to list.
func (r ListResult) Drained() bool {
	return r.Stop == StopNone
}

type Listing struct {
	deps Deps
}

func NewListing(deps Deps) *Listing {
	return &Listing{deps: deps.withDefaults()}
}

// ListItem lists item in batches until it is drained, the agent is full or a
// step fails. Quantity and Location of item are updated after every batch so
// the item can be resumed later.
func (l *Listing) ListItem(ctx context.Context, item *entity.StockItem, probe CapacityProbe, maxListings int) (res ListResult) {
	ctx = contextx.WithLogger(ctx, logger(ctx).With(
		slog.Uint64(logx.FieldItemID, uint64(item.ItemID)),
		slog.String(logx.FieldItemName, item.Name),
	))
	log := logger(ctx)

	defer func() {
		if r := recover(); r != nil {
			log.Error("listing panicked", slog.Any("panic", r))
			res.Stop = StopFault
		}
	}()

	gate := contextx.PauseGateFromContext(ctx)

	for item.Quantity > 0 {
		if err := gate.Wait(ctx); err != nil {
			res.Stop = StopCancelled
			return res
		}

		listings, err := probe.Listings(ctx)
		if err != nil {
			log.Error("probe.Listings", logx.Error(err))
			res.Stop = StopFault
			return res
		}
		if listings >= maxListings {
			log.Info("agent at capacity", slog.Int(logx.FieldListings, listings))
			res.Stop = StopCapacity
			return res
		}

		available, stop := locate(ctx, l.deps.Target, item)
		if stop != StopNone {
			res.Stop = stop
			return res
		}

		batch := min(l.deps.Options.MaxBatchSize, item.Quantity, available)
		if batch <= 0 {
			log.Error("invalid batch size", slog.Int(logx.FieldBatch, batch))
			res.Stop = StopInvalidBatch
			return res
		}

		if !openActionAt(ctx, l.deps, item, ActionPutUpForSale) ||
			!await(ctx, l.deps, l.deps.Policies.SellDialog, SurfaceSellDialog) {
			res.Stop = notReady(ctx)
			return res
		}

		price, stop := l.price(ctx, item, res)
		if stop != StopNone {
			if err := l.deps.Target.CancelSellDialog(ctx); err != nil {
				log.Warn("target.CancelSellDialog", logx.Error(err))
			}
			res.Stop = stop
			return res
		}

		if err := l.deps.Target.SubmitPriceAndQuantity(ctx, price, batch); err != nil {
			log.Error("target.SubmitPriceAndQuantity", logx.Error(err))
			res.Stop = StopFault
			return res
		}

		item.Quantity -= batch
		res.Batches = append(res.Batches, batch)
		res.Listed += batch
		res.Price = price
		probe.Record(1)
		l.deps.Observer.BatchListed(ctx, item, batch, price)

		log.Info("batch listed",
			slog.Int(logx.FieldBatch, batch),
			slog.Int64(logx.FieldPrice, price),
			slog.Int(logx.FieldQuantity, item.Quantity),
		)

		if item.Quantity > 0 {
			if err := retry.Wait(ctx, l.deps.Options.ActionDelay); err != nil {
				res.Stop = StopCancelled
				return res
			}
		}
	}

	res.Stop = StopNone

	return res
}

// price decides the price for the next batch. Only the first batch of an item
// looks at competing listings; later batches reuse it.
func (l *Listing) price(ctx context.Context, item *entity.StockItem, res ListResult) (int64, StopReason) {
	if l.deps.Options.PrecomputedPrice {
		if item.ListingPrice > 0 {
			return item.ListingPrice, StopNone
		}
		logger(ctx).Warn("no precomputed price")
		return 0, StopNoPrice
	}

	if res.Succeeded() {
		return res.Price, StopNone
	}

	if price, ok := l.deps.Prices.Get(item); ok {
		return price, StopNone
	}

	lowest, found := l.comparePrices(ctx, item)

	var price int64

	switch {
	case found:
		price = catalog.ListingPrice(lowest, l.deps.Options.UndercutAmount)
	case ctx.Err() != nil:
		return 0, StopCancelled
	case item.ListingPrice > 0:
		logger(ctx).Info("no competing price, using catalog price", slog.Int64(logx.FieldPrice, item.ListingPrice))
		price = item.ListingPrice
	default:
		logger(ctx).Warn("no price could be determined")
		return 0, StopNoPrice
	}

	l.deps.Prices.Set(item, price)

	return price, StopNone
}

func (l *Listing) comparePrices(ctx context.Context, item *entity.StockItem) (int64, bool) {
	for attempt := 1; attempt <= compareAttempts; attempt++ {
		lowest, found, err := l.compareOnce(ctx, item)
		if err != nil {
			logger(ctx).Warn("compare prices failed", slog.Int(logx.FieldAttempts, attempt), logx.Error(err))
		}
		if found && lowest > 0 {
			return lowest, true
		}
		if ctx.Err() != nil {
			return 0, false
		}
	}

	return 0, false
}

func (l *Listing) compareOnce(ctx context.Context, item *entity.StockItem) (int64, bool, error) {
	if !invoke(ctx, l.deps, ActionComparePrices) {
		return 0, false, nil
	}

	if !await(ctx, l.deps, l.deps.Policies.Compare, SurfaceComparePrices) {
		return 0, false, nil
	}

	lowest, found, err := l.deps.Target.QueryLowestCompetingPrice(ctx, item.ItemID, item.IsHQ)

	if _, closeErr := l.deps.Target.CloseSurface(ctx, SurfaceComparePrices); closeErr != nil {
		logger(ctx).Warn("target.CloseSurface", slog.String(logx.FieldSurface, SurfaceComparePrices.String()), logx.Error(closeErr))
	}

	if err != nil {
		return 0, false, fmt.Errorf("target.QueryLowestCompetingPrice: %w", err)
	}

	if !await(ctx, l.deps, l.deps.Policies.SellDialog, SurfaceSellDialog) {
		return 0, false, nil
	}

	return lowest, found, nil
}

func notReady(ctx context.Context) StopReason {
	if ctx.Err() != nil {
		return StopCancelled
	}
	return StopSurfaceNotReady
}
