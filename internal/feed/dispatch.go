package feed

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/efreitasn/matchcore/internal/domain"
	"github.com/efreitasn/matchcore/internal/engine"
)

type eventKind int

const (
	eventTrade eventKind = iota
	eventOrderAdded
	eventOrderRemoved
	eventOrderChanged
	eventDepth
)

// event is one matcher notification, flattened for queueing.
type event struct {
	kind     eventKind
	trade    domain.Trade
	order    domain.Order
	previous domain.Order
	matched  int64
	side     domain.Side
	depth    engine.DepthUpdate
}

// Dispatcher decouples the matcher from slow consumers. It implements
// the matcher's EventListener by enqueueing onto a bounded channel —
// a non-blocking send, so the matching critical section can never stall
// on a subscriber, the journal, or the broker. A single goroutine
// drains the queue and forwards each event to the registered targets
// in order.
//
// When the queue is full the event is dropped and counted; consumers
// needing a loss-free view should read the snapshot accessors instead.
type Dispatcher struct {
	queue   chan event
	targets engine.MultiListener
	logger  *zap.Logger
	dropped atomic.Uint64
}

// NewDispatcher creates a dispatcher with the given queue capacity and
// downstream targets.
func NewDispatcher(buffer int, logger *zap.Logger, targets ...engine.EventListener) *Dispatcher {
	return &Dispatcher{
		queue:   make(chan event, buffer),
		targets: engine.MultiListener(targets),
		logger:  logger,
	}
}

// AddTarget registers another downstream listener. It must be called
// before Run starts; the target list is not synchronized.
func (d *Dispatcher) AddTarget(target engine.EventListener) {
	d.targets = append(d.targets, target)
}

// Run drains the queue until ctx is cancelled. It must be started on
// its own goroutine before the matcher begins submitting.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case ev := <-d.queue:
			d.deliver(ev)
		case <-ctx.Done():
			return
		}
	}
}

// Dropped returns the number of events discarded due to a full queue.
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

func (d *Dispatcher) enqueue(ev event) {
	select {
	case d.queue <- ev:
	default:
		n := d.dropped.Add(1)
		d.logger.Warn("feed queue full, event dropped", zap.Uint64("dropped_total", n))
	}
}

func (d *Dispatcher) deliver(ev event) {
	switch ev.kind {
	case eventTrade:
		d.targets.OnTrade(ev.trade)
	case eventOrderAdded:
		d.targets.OnOrderAdded(ev.order)
	case eventOrderRemoved:
		d.targets.OnOrderRemoved(ev.order)
	case eventOrderChanged:
		d.targets.OnOrderChanged(ev.order, ev.previous, ev.matched)
	case eventDepth:
		d.targets.OnDepthUpdate(ev.side, ev.depth)
	}
}

// OnTrade implements engine.EventListener.
func (d *Dispatcher) OnTrade(t domain.Trade) {
	d.enqueue(event{kind: eventTrade, trade: t})
}

// OnOrderAdded implements engine.EventListener.
func (d *Dispatcher) OnOrderAdded(o domain.Order) {
	d.enqueue(event{kind: eventOrderAdded, order: o})
}

// OnOrderRemoved implements engine.EventListener.
func (d *Dispatcher) OnOrderRemoved(o domain.Order) {
	d.enqueue(event{kind: eventOrderRemoved, order: o})
}

// OnOrderChanged implements engine.EventListener.
func (d *Dispatcher) OnOrderChanged(updated, previous domain.Order, matchedQuantity int64) {
	d.enqueue(event{kind: eventOrderChanged, order: updated, previous: previous, matched: matchedQuantity})
}

// OnDepthUpdate implements engine.EventListener.
func (d *Dispatcher) OnDepthUpdate(side domain.Side, u engine.DepthUpdate) {
	d.enqueue(event{kind: eventDepth, side: side, depth: u})
}
