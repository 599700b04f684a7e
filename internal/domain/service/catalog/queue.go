package catalog

import "automarket/internal/domain/entity"

// SellQueue is a FIFO backlog consumed destructively. Items are pointers so
// that partial progress recorded by a workflow survives a deferral.
type SellQueue struct {
	items []*entity.StockItem
}

func NewSellQueue(items ...*entity.StockItem) *SellQueue {
	return &SellQueue{items: items}
}

// Peek returns the head without removing it.
func (q *SellQueue) Peek() (*entity.StockItem, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	return q.items[0], true
}

func (q *SellQueue) Pop() (*entity.StockItem, bool) {
	item, ok := q.Peek()
	if !ok {
		return nil, false
	}

	q.items[0] = nil
	q.items = q.items[1:]

	return item, true
}

func (q *SellQueue) Len() int {
	return len(q.items)
}

func (q *SellQueue) Empty() bool {
	return len(q.items) == 0
}

// Items returns a snapshot of the remaining items.
func (q *SellQueue) Items() []*entity.StockItem {
	return append([]*entity.StockItem(nil), q.items...)
}

// Queues holds the two backlogs of one run.
type Queues struct {
	List   *SellQueue
	Vendor *SellQueue
}

func (q Queues) Empty() bool {
	return q.List.Empty() && q.Vendor.Empty()
}
