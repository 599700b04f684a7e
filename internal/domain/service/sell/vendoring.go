package sell

import (
	"context"
	"log/slog"

	"automarket/internal/domain/entity"
	"automarket/pkg/contextx"
	"automarket/pkg/logx"
)

type Vendoring struct {
	deps Deps
}

func NewVendoring(deps Deps) *Vendoring {
	return &Vendoring{deps: deps.withDefaults()}
}

// VendorItem liquidates the whole stack through the agent in one action. A
// confirmation dialog is accepted when the application shows one; not every
// item prompts.
func (v *Vendoring) VendorItem(ctx context.Context, item *entity.StockItem) (ok bool) {
	ctx = contextx.WithLogger(ctx, logger(ctx).With(
		slog.Uint64(logx.FieldItemID, uint64(item.ItemID)),
		slog.String(logx.FieldItemName, item.Name),
	))
	log := logger(ctx)

	defer func() {
		if r := recover(); r != nil {
			log.Error("vendoring panicked", slog.Any("panic", r))
			ok = false
		}
	}()

	if err := contextx.PauseGateFromContext(ctx).Wait(ctx); err != nil {
		return false
	}

	if _, stop := locate(ctx, v.deps.Target, item); stop != StopNone {
		log.Warn("vendor skipped", slog.String(logx.FieldReason, stop.String()))
		return false
	}

	if !openActionAt(ctx, v.deps, item, ActionVendor) {
		log.Warn("vendor action unavailable")
		return false
	}

	confirmed := v.deps.Policies.Confirm.PollUntilReady(ctx, v.deps.Target.ConfirmDialogIfPresent)
	if ctx.Err() != nil {
		return false
	}

	log.Info("item vendored",
		slog.Int(logx.FieldQuantity, item.Quantity),
		slog.Int64(logx.FieldPrice, item.VendorPrice),
		slog.Bool("confirmed", confirmed),
	)

	return true
}
