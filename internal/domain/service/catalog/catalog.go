// Package catalog turns a scanned item list into the sell backlogs of a run.
package catalog

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"automarket/internal/domain/entity"
)

// BuildQueues partitions items by mode. Items that cannot be listed always go
// to the vendor queue. Order within each queue follows the input order.
func BuildQueues(items []*entity.StockItem, mode Mode) Queues {
	toList, toVendor := make([]*entity.StockItem, 0, len(items)), make([]*entity.StockItem, 0)

	for _, item := range items {
		if routeToList(item, mode) {
			toList = append(toList, item)
		} else {
			toVendor = append(toVendor, item)
		}
	}

	return Queues{
		List:   NewSellQueue(toList...),
		Vendor: NewSellQueue(toVendor...),
	}
}

func routeToList(item *entity.StockItem, mode Mode) bool {
	switch mode {
	case ModeVendorOnly:
		return false
	case ModeListOnly:
		return item.CanBeListed
	default:
		return item.CanBeListed && item.IsProfitable
	}
}

type FilterOptions struct {
	IgnoredItemIDs []uint32
	SkipHQ         bool
}

// Filter drops ignored ids, empty stacks and, when asked, HQ items.
func Filter(items []*entity.StockItem, opts FilterOptions) []*entity.StockItem {
	return lo.Filter(items, func(item *entity.StockItem, _ int) bool {
		switch {
		case item.Quantity <= 0:
			return false
		case opts.SkipHQ && item.IsHQ:
			return false
		default:
			return !lo.Contains(opts.IgnoredItemIDs, item.ItemID)
		}
	})
}

type EvaluateOptions struct {
	AutoUndercut       bool
	UndercutAmount     int64
	MinProfitThreshold int64
}

// Evaluate fills listing price and profitability from the market figures and
// sorts items by total profit, highest first.
//
// A recent sale price replaces the market price as the expected sale price
// when it is more than twice the market price, or when the market sits below
// twice the vendor price while the recent sale clears vendor plus threshold.
func Evaluate(items []*entity.StockItem, opts EvaluateOptions) {
	for _, item := range items {
		useRecent := item.RecentSalePrice > 0 &&
			(item.RecentSalePrice > item.MarketPrice*2 ||
				(item.MarketPrice < item.VendorPrice*2 && item.RecentSalePrice > item.VendorPrice+opts.MinProfitThreshold))

		if opts.AutoUndercut && item.MarketPrice > 0 {
			item.ListingPrice = ListingPrice(item.MarketPrice, opts.UndercutAmount)
		} else {
			item.ListingPrice = item.MarketPrice
		}

		expected := lo.Ternary(useRecent, item.RecentSalePrice, item.ListingPrice)

		item.ProfitPerItem = expected - item.VendorPrice
		item.TotalProfit = item.ProfitPerItem * int64(item.Quantity)
		item.IsProfitable = item.TotalProfit > opts.MinProfitThreshold
	}

	slices.SortStableFunc(items, func(a, b *entity.StockItem) int {
		return cmp.Compare(b.TotalProfit, a.TotalProfit)
	})
}

// ListingPrice undercuts the lowest competing price, never going below 1.
func ListingPrice(lowest, undercut int64) int64 {
	return max(1, lowest-undercut)
}
