package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/efreitasn/matchcore/internal/domain"
)

// Matcher is the continuous double-auction core. It owns the priority
// book and the two derived views (aggregated depth per side, private
// per-account books) and keeps them consistent as a single atomic unit
// per incoming order: one exclusive lock spans the whole matching loop
// plus every view update, and the listener is invoked inside that
// critical section. Snapshot accessors take the read lock, so they
// never observe a partially applied submission.
type Matcher struct {
	mu       sync.RWMutex
	book     *Book
	bidDepth *AggregatedBook
	askDepth *AggregatedBook
	private  *PrivateBooks
	listener EventListener
	seq      int64

	now func() time.Time // trade timestamps; overridable in tests
}

// NewMatcher creates a matcher with empty books. A nil listener is
// replaced by NopListener.
func NewMatcher(listener EventListener) *Matcher {
	if listener == nil {
		listener = NopListener{}
	}
	return &Matcher{
		book:     NewBook(),
		bidDepth: NewAggregatedBook(domain.SideBid),
		askDepth: NewAggregatedBook(domain.SideAsk),
		private:  NewPrivateBooks(),
		listener: listener,
		now:      time.Now,
	}
}

func (m *Matcher) depth(side domain.Side) *AggregatedBook {
	if side == domain.SideBid {
		return m.bidDepth
	}
	return m.askDepth
}

// Submit runs one incoming order through the matching loop and, if a
// remainder survives, rests it on its own side. Every effect — trades,
// book mutations, depth deltas, private-book updates — happens under
// one lock acquisition, and validation happens before it: a rejected
// order has no side effects at all.
func (m *Matcher) Submit(incoming domain.Order) error {
	if err := incoming.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	order := incoming.WithSeq(m.seq)

	remainder, rests := m.match(order)
	if rests {
		m.rest(remainder)
	}
	return nil
}

// match consumes the incoming order against the opposite side in
// priority order. It returns the unmatched remainder and true, or
// (zero, false) when the incoming order was fully consumed. Matching
// is exhaustive: the loop only stops when the order is consumed or no
// crossing candidate remains, so the two sides can never hold a
// matchable pair after Submit returns.
func (m *Matcher) match(order domain.Order) (domain.Order, bool) {
	opposite := order.Side.Opposite()

	for {
		resting, ok := m.book.Best(opposite)
		if !ok || !order.CanMatch(resting) {
			return order, true
		}

		matched := min(order.Quantity, resting.Quantity)

		// Trade price is the resting (maker) order's price, never the
		// aggressor's — price improvement goes to the resting side.
		m.listener.OnTrade(domain.Trade{
			TradeID:    uuid.New().String(),
			Price:      resting.Price,
			Quantity:   matched,
			Aggressor:  order.Side,
			ExecutedAt: m.now(),
		})

		if order.Quantity >= resting.Quantity {
			// Resting order fully consumed.
			m.book.Remove(resting.ID)
			m.private.Remove(resting)
			update := m.depth(resting.Side).Reduce(resting.Price, resting.Quantity)
			m.listener.OnOrderRemoved(resting)
			m.listener.OnDepthUpdate(resting.Side, update)

			if order.Quantity == resting.Quantity {
				return domain.Order{}, false
			}
			order = order.ReduceQuantity(resting.Quantity)
			continue
		}

		// Incoming order fully consumed; resting order shrinks in place,
		// keeping its identity and queue position.
		reduced := resting.ReduceQuantity(order.Quantity)
		m.book.Replace(reduced)
		m.private.Change(reduced, resting)
		update := m.depth(reduced.Side).Reduce(reduced.Price, matched)
		m.listener.OnOrderChanged(reduced, resting, matched)
		m.listener.OnDepthUpdate(reduced.Side, update)
		return domain.Order{}, false
	}
}

// rest places the unmatched remainder on its own side and updates the
// derived views.
func (m *Matcher) rest(order domain.Order) {
	m.book.Insert(order)
	m.private.Add(order)
	update := m.depth(order.Side).Add(order)
	m.listener.OnOrderAdded(order)
	m.listener.OnDepthUpdate(order.Side, update)
}

// Depth returns the aggregated depth snapshot for one side, best price
// first.
func (m *Matcher) Depth(side domain.Side) []PriceLevel {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.depth(side).Snapshot()
}

// AccountOrders returns the account's currently resting orders in
// insertion order.
func (m *Matcher) AccountOrders(account string) []domain.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.private.Get(account)
}

// Best returns the highest-priority resting order on the given side.
func (m *Matcher) Best(side domain.Side) (domain.Order, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.book.Best(side)
}

// RestingOrders returns the side's resting orders in priority order.
func (m *Matcher) RestingOrders(side domain.Side) []domain.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.book.Orders(side)
}

// Len returns the number of resting orders on the given side.
func (m *Matcher) Len(side domain.Side) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.book.Len(side)
}
