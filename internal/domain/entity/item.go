package entity

import "automarket/internal/domain/value"

// StockItem is one scanned stack. Quantity and Location are updated in place
// while the item is processed so that a partially sold item can be resumed.
type StockItem struct {
	ItemID          uint32         `json:"item_id"`
	IsHQ            bool           `json:"is_hq"`
	Name            string         `json:"name"`
	Quantity        int            `json:"quantity"`
	Location        value.Location `json:"location"`
	VendorPrice     int64          `json:"vendor_price"`
	ListingPrice    int64          `json:"listing_price"`
	MarketPrice     int64          `json:"market_price"`
	RecentSalePrice int64          `json:"recent_sale_price"`
	CanBeListed     bool           `json:"can_be_listed"`
	IsProfitable    bool           `json:"is_profitable"`
	ProfitPerItem   int64          `json:"profit_per_item"`
	TotalProfit     int64          `json:"total_profit"`
}

// Key identifies the item kind regardless of where its stacks sit.
type ItemKey struct {
	ItemID uint32
	IsHQ   bool
}

func (i *StockItem) Key() ItemKey {
	return ItemKey{ItemID: i.ItemID, IsHQ: i.IsHQ}
}
