package sell

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"automarket/internal/domain/entity"
)

// PriceMemo remembers the price chosen for the first batch of one item so
// that the item keeps its price when it resumes on the next agent. Entries
// are per stack, not per item kind: another stack of the same kind compares
// prices on its own first batch. A resumed item whose entry has expired
// compares again.
type PriceMemo struct {
	cache *cache.Cache
}

func NewPriceMemo(ttl time.Duration) *PriceMemo {
	return &PriceMemo{cache: cache.New(ttl, 2*ttl)}
}

func (m *PriceMemo) Get(item *entity.StockItem) (int64, bool) {
	v, ok := m.cache.Get(memoKey(item))
	if !ok {
		return 0, false
	}

	price, ok := v.(int64)

	return price, ok
}

func (m *PriceMemo) Set(item *entity.StockItem, price int64) {
	m.cache.Set(memoKey(item), price, cache.DefaultExpiration)
}

func memoKey(item *entity.StockItem) string {
	return fmt.Sprintf("%d:%p", item.ItemID, item)
}
