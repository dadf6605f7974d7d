package engine

import (
	"github.com/google/btree"

	"github.com/efreitasn/matchcore/internal/domain"
)

// bookEntry wraps a resting order for B-tree storage. The tree key is
// (price rank, seq); a reduced order keeps both, so replacing it by key
// preserves its queue position.
type bookEntry struct {
	order domain.Order
}

// bidLess defines ordering for the bid side: price descending, then
// submission sequence ascending. Min() returns the best bid (highest
// price, earliest submission).
func bidLess(a, b bookEntry) bool {
	if a.order.Price != b.order.Price {
		return a.order.Price > b.order.Price
	}
	return a.order.Seq < b.order.Seq
}

// askLess defines ordering for the ask side: price ascending, then
// submission sequence ascending. Min() returns the best ask (lowest
// price, earliest submission).
func askLess(a, b bookEntry) bool {
	if a.order.Price != b.order.Price {
		return a.order.Price < b.order.Price
	}
	return a.order.Seq < b.order.Seq
}

// Book holds the two price-time priority sequences of resting orders,
// as B-trees with a secondary index by order ID for O(log n) removal
// and replacement. Orders are immutable values: a partial fill replaces
// the stored value with a reduced copy under the same tree key.
//
// Book carries no lock of its own — the Matcher serializes all access.
type Book struct {
	bids  *btree.BTreeG[bookEntry]
	asks  *btree.BTreeG[bookEntry]
	index map[int64]bookEntry // order ID → entry
}

// NewBook creates an empty order book.
func NewBook() *Book {
	const degree = 32
	return &Book{
		bids:  btree.NewG[bookEntry](degree, bidLess),
		asks:  btree.NewG[bookEntry](degree, askLess),
		index: make(map[int64]bookEntry),
	}
}

func (b *Book) tree(side domain.Side) *btree.BTreeG[bookEntry] {
	if side == domain.SideBid {
		return b.bids
	}
	return b.asks
}

// Insert places an order on its side of the book.
func (b *Book) Insert(o domain.Order) {
	entry := bookEntry{order: o}
	b.tree(o.Side).ReplaceOrInsert(entry)
	b.index[o.ID] = entry
}

// Replace swaps a resting order for its reduced copy. Since the copy
// shares the (price, seq) tree key, ReplaceOrInsert overwrites in place
// and the order keeps its priority position.
func (b *Book) Replace(updated domain.Order) {
	entry := bookEntry{order: updated}
	b.tree(updated.Side).ReplaceOrInsert(entry)
	b.index[updated.ID] = entry
}

// Remove deletes an order by ID using the secondary index. It returns
// the removed order and whether it was present.
func (b *Book) Remove(id int64) (domain.Order, bool) {
	entry, ok := b.index[id]
	if !ok {
		return domain.Order{}, false
	}
	delete(b.index, id)
	b.tree(entry.order.Side).Delete(entry)
	return entry.order, true
}

// Get looks up a resting order by ID.
func (b *Book) Get(id int64) (domain.Order, bool) {
	entry, ok := b.index[id]
	return entry.order, ok
}

// Best returns the highest-priority order on the given side: the
// highest-priced bid or the lowest-priced ask, earliest submission
// first on ties.
func (b *Book) Best(side domain.Side) (domain.Order, bool) {
	entry, ok := b.tree(side).Min()
	return entry.order, ok
}

// Walk iterates the side in priority order. The callback returns true
// to continue, false to stop.
func (b *Book) Walk(side domain.Side, fn func(domain.Order) bool) {
	b.tree(side).Ascend(func(entry bookEntry) bool {
		return fn(entry.order)
	})
}

// Orders returns the side's resting orders in priority order.
func (b *Book) Orders(side domain.Side) []domain.Order {
	orders := make([]domain.Order, 0, b.tree(side).Len())
	b.Walk(side, func(o domain.Order) bool {
		orders = append(orders, o)
		return true
	})
	return orders
}

// Len returns the number of resting orders on the given side.
func (b *Book) Len(side domain.Side) int {
	return b.tree(side).Len()
}
