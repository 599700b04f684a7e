package sell

import (
	"context"
	"log/slog"

	"automarket/internal/domain/entity"
	"automarket/pkg/logx"
)

// locate re-reads the quantity at the item's last known location and moves
// the item to the next stack of the same id when the old one is gone.
func locate(ctx context.Context, target TargetSystem, item *entity.StockItem) (int, StopReason) {
	log := logger(ctx)

	quantity, err := target.QueryQuantityAt(ctx, item.Location, item.ItemID)
	if err != nil {
		log.Error("target.QueryQuantityAt", logx.Error(err))
		return 0, StopFault
	}
	if quantity > 0 {
		return quantity, StopNone
	}

	next, found, err := target.FindNextLocationOfItem(ctx, item.ItemID, item.Location)
	if err != nil {
		log.Error("target.FindNextLocationOfItem", logx.Error(err))
		return 0, StopFault
	}
	if !found {
		log.Warn("item no longer found", slog.String(logx.FieldLocation, item.Location.String()))
		return 0, StopLocationLost
	}

	log.Info("item relocated", slog.String("from", item.Location.String()), slog.String("to", next.String()))
	item.Location = next

	quantity, err = target.QueryQuantityAt(ctx, item.Location, item.ItemID)
	if err != nil {
		log.Error("target.QueryQuantityAt", logx.Error(err))
		return 0, StopFault
	}
	if quantity <= 0 {
		return 0, StopLocationLost
	}

	return quantity, StopNone
}

// openActionAt opens the interaction menu on location and triggers action.
func openActionAt(ctx context.Context, deps Deps, item *entity.StockItem, action Action) bool {
	opened, err := deps.Target.OpenInteractionSurface(ctx, item.Location)
	if err != nil {
		logger(ctx).Error("target.OpenInteractionSurface", logx.Error(err))
		return false
	}
	if !opened || !await(ctx, deps, deps.Policies.ContextMenu, SurfaceContextMenu) {
		return false
	}

	if !invoke(ctx, deps, action) {
		_, _ = deps.Target.CloseSurface(ctx, SurfaceContextMenu)
		return false
	}

	return true
}
