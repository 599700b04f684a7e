package sell

import (
	"context"

	"automarket/internal/domain/value"
)

// Surface names a well known screen of the target application. Surfaces are
// always addressed by name, never by a handle kept from an earlier call.
type Surface uint8

const (
	SurfaceAgentList Surface = iota + 1
	SurfaceAgentMenu
	SurfaceSellList
	SurfaceContextMenu
	SurfaceSellDialog
	SurfaceComparePrices
	SurfaceConfirmDialog
)

func (s Surface) String() string {
	switch s {
	case SurfaceAgentList:
		return "agent-list"
	case SurfaceAgentMenu:
		return "agent-menu"
	case SurfaceSellList:
		return "sell-list"
	case SurfaceContextMenu:
		return "context-menu"
	case SurfaceSellDialog:
		return "sell-dialog"
	case SurfaceComparePrices:
		return "compare-prices"
	case SurfaceConfirmDialog:
		return "confirm-dialog"
	default:
		return "unknown"
	}
}

// TargetSystem is the capability set the engine needs from the application
// it drives. Calls may be slow and the surface may not be ready yet, so
// callers wrap them in a retry policy. An error means something unexpected
// happened and is never part of the normal not-ready flow.
type TargetSystem interface {
	OpenAgent(ctx context.Context, index int) (bool, error)
	CloseAgent(ctx context.Context) error

	SurfaceReady(ctx context.Context, surface Surface) (bool, error)
	CloseSurface(ctx context.Context, surface Surface) (bool, error)

	OpenInteractionSurface(ctx context.Context, location value.Location) (bool, error)
	// FindActionByLabel searches the topmost menu for an entry whose text
	// contains one of labels, ignoring case.
	FindActionByLabel(ctx context.Context, labels []string) (int, bool, error)
	InvokeAction(ctx context.Context, index int) error

	SubmitPriceAndQuantity(ctx context.Context, price int64, quantity int) error
	CancelSellDialog(ctx context.Context) error
	ConfirmDialogIfPresent(ctx context.Context) (bool, error)

	QueryAgentCount(ctx context.Context) (int, error)
	QueryAgentListingCount(ctx context.Context, index int) (int, error)

	QueryQuantityAt(ctx context.Context, location value.Location, itemID uint32) (int, error)
	FindNextLocationOfItem(ctx context.Context, itemID uint32, after value.Location) (value.Location, bool, error)
	// QueryLowestCompetingPrice reads the open compare surface. found is
	// false when no competing listing is shown.
	QueryLowestCompetingPrice(ctx context.Context, itemID uint32, isHQ bool) (int64, bool, error)
}
