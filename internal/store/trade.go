package store

import (
	"sync"

	"github.com/efreitasn/matchcore/internal/domain"
	"github.com/efreitasn/matchcore/internal/engine"
)

// TradeStore is a thread-safe in-memory record of emitted trades, in
// emission order. It implements the matcher's EventListener for trade
// events; the append is a slice push, cheap enough to run inside the
// matching critical section.
type TradeStore struct {
	engine.NopListener

	mu     sync.RWMutex
	trades []domain.Trade
}

// NewTradeStore creates an empty TradeStore.
func NewTradeStore() *TradeStore {
	return &TradeStore{}
}

// OnTrade records an emitted trade.
func (s *TradeStore) OnTrade(t domain.Trade) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trades = append(s.trades, t)
}

// Recent returns up to n trades, newest first. Pass n <= 0 for all.
func (s *TradeStore) Recent(n int) []domain.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || n > len(s.trades) {
		n = len(s.trades)
	}
	out := make([]domain.Trade, 0, n)
	for i := len(s.trades) - 1; i >= len(s.trades)-n; i-- {
		out = append(out, s.trades[i])
	}
	return out
}

// All returns every recorded trade in emission order.
func (s *TradeStore) All() []domain.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Trade, len(s.trades))
	copy(out, s.trades)
	return out
}

// Len returns the number of recorded trades.
func (s *TradeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.trades)
}
