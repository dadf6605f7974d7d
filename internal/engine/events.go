package engine

import "github.com/efreitasn/matchcore/internal/domain"

// DepthKind classifies a change to one aggregated price level.
type DepthKind string

const (
	// DepthNew — the price level did not exist before.
	DepthNew DepthKind = "new"
	// DepthChange — the level's total quantity changed.
	DepthChange DepthKind = "change"
	// DepthRemoval — the level's quantity reached zero and was deleted.
	// Quantity is meaningless for removals.
	DepthRemoval DepthKind = "removal"
)

// DepthUpdate describes a single mutation of an aggregated book level.
// For DepthNew and DepthChange, Quantity is the new total at the level.
type DepthUpdate struct {
	Kind     DepthKind
	Price    int64
	Quantity int64
}

// EventListener receives matcher events. Callbacks are invoked
// synchronously inside the same atomic step that produced them, while
// the matcher's lock is held: implementations must not block. Anything
// that may stall (network, disk, slow subscribers) belongs behind a
// bounded queue — see the feed package.
type EventListener interface {
	// OnTrade fires once per matching step that consumed any quantity.
	OnTrade(t domain.Trade)
	// OnOrderAdded fires when an unmatched remainder is placed on the book.
	OnOrderAdded(o domain.Order)
	// OnOrderRemoved fires when a resting order is fully consumed.
	OnOrderRemoved(o domain.Order)
	// OnOrderChanged fires when a resting order is partially consumed.
	// updated shares previous's identity and queue position with a
	// smaller quantity; matchedQuantity is the amount consumed.
	OnOrderChanged(updated, previous domain.Order, matchedQuantity int64)
	// OnDepthUpdate fires for every aggregated-level mutation.
	OnDepthUpdate(side domain.Side, u DepthUpdate)
}

// NopListener is the default no-op EventListener.
type NopListener struct{}

func (NopListener) OnTrade(domain.Trade) {}

func (NopListener) OnOrderAdded(domain.Order) {}

func (NopListener) OnOrderRemoved(domain.Order) {}

func (NopListener) OnOrderChanged(_, _ domain.Order, _ int64) {}

func (NopListener) OnDepthUpdate(_ domain.Side, _ DepthUpdate) {}

// MultiListener fans each event out to every listener, in order.
type MultiListener []EventListener

func (m MultiListener) OnTrade(t domain.Trade) {
	for _, l := range m {
		l.OnTrade(t)
	}
}

func (m MultiListener) OnOrderAdded(o domain.Order) {
	for _, l := range m {
		l.OnOrderAdded(o)
	}
}

func (m MultiListener) OnOrderRemoved(o domain.Order) {
	for _, l := range m {
		l.OnOrderRemoved(o)
	}
}

func (m MultiListener) OnOrderChanged(updated, previous domain.Order, matchedQuantity int64) {
	for _, l := range m {
		l.OnOrderChanged(updated, previous, matchedQuantity)
	}
}

func (m MultiListener) OnDepthUpdate(side domain.Side, u DepthUpdate) {
	for _, l := range m {
		l.OnDepthUpdate(side, u)
	}
}
