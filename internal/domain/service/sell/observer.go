package sell

import (
	"context"

	"automarket/internal/domain/entity"
)

// Observer receives engine events. It is called from the scheduler goroutine
// and must not block for long.
type Observer interface {
	BatchListed(ctx context.Context, item *entity.StockItem, quantity int, price int64)
	ItemSettled(ctx context.Context, outcome entity.ItemOutcome)
	PollExhausted(ctx context.Context, surface Surface)
}

type NopObserver struct{}

func (NopObserver) BatchListed(context.Context, *entity.StockItem, int, int64) {}
func (NopObserver) ItemSettled(context.Context, entity.ItemOutcome)            {}
func (NopObserver) PollExhausted(context.Context, Surface)                     {}
