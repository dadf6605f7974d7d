package engine

import (
	"sort"

	"github.com/efreitasn/matchcore/internal/domain"
)

// PriceLevel is one aggregated price level: the summed resting quantity
// at a price, across all accounts on one side.
type PriceLevel struct {
	Price    int64 `json:"price"`
	Quantity int64 `json:"quantity"`
}

// AggregatedBook maintains the per-price-level depth view for one side.
// Invariant: every stored level equals the sum of resting quantities at
// that price on that side, and a level with quantity zero never exists.
//
// AggregatedBook is a derived projection with no logic of its own — the
// Matcher drives it and serializes access.
type AggregatedBook struct {
	side   domain.Side
	levels map[int64]int64 // price → total quantity
}

// NewAggregatedBook creates an empty depth view for the given side.
func NewAggregatedBook(side domain.Side) *AggregatedBook {
	return &AggregatedBook{
		side:   side,
		levels: make(map[int64]int64),
	}
}

// Add credits a newly rested order to its price level, creating the
// level if needed. The returned update carries the new level total.
func (a *AggregatedBook) Add(o domain.Order) DepthUpdate {
	kind := DepthChange
	if _, ok := a.levels[o.Price]; !ok {
		kind = DepthNew
	}
	a.levels[o.Price] += o.Quantity

	return DepthUpdate{
		Kind:     kind,
		Price:    o.Price,
		Quantity: a.levels[o.Price],
	}
}

// Reduce debits quantity from a price level. When the level reaches
// exactly zero it is deleted and a removal update is returned.
//
// The level must exist with at least the given quantity: an underflow
// means the depth view no longer sums to the resting orders, which is
// fatal state corruption, so Reduce panics with an *InvariantViolation.
func (a *AggregatedBook) Reduce(price, quantity int64) DepthUpdate {
	total, ok := a.levels[price]
	if !ok || total < quantity {
		panic(&domain.InvariantViolation{
			Op:     "aggregated.Reduce",
			Detail: "level missing or under requested quantity",
		})
	}

	total -= quantity
	if total == 0 {
		delete(a.levels, price)
		return DepthUpdate{Kind: DepthRemoval, Price: price}
	}

	a.levels[price] = total
	return DepthUpdate{Kind: DepthChange, Price: price, Quantity: total}
}

// Level returns the total quantity at a price and whether the level exists.
func (a *AggregatedBook) Level(price int64) (int64, bool) {
	total, ok := a.levels[price]
	return total, ok
}

// Len returns the number of populated price levels.
func (a *AggregatedBook) Len() int {
	return len(a.levels)
}

// Snapshot returns all levels sorted best price first: descending for
// bids, ascending for asks.
func (a *AggregatedBook) Snapshot() []PriceLevel {
	levels := make([]PriceLevel, 0, len(a.levels))
	for price, quantity := range a.levels {
		levels = append(levels, PriceLevel{Price: price, Quantity: quantity})
	}
	sort.Slice(levels, func(i, j int) bool {
		if a.side == domain.SideBid {
			return levels[i].Price > levels[j].Price
		}
		return levels[i].Price < levels[j].Price
	})
	return levels
}
