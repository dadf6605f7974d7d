package service

import (
	"time"

	"github.com/efreitasn/matchcore/internal/domain"
	"github.com/efreitasn/matchcore/internal/engine"
	"github.com/efreitasn/matchcore/internal/store"
)

// BookSnapshot is the full aggregated depth view, best price first on
// each side.
type BookSnapshot struct {
	Bids []engine.PriceLevel
	Asks []engine.PriceLevel
}

// MarketStats summarizes recent trading. VWAP and volume cover the
// configured window; LastPrice is the most recent trade regardless of
// window. Pointers are nil when no qualifying trades exist.
type MarketStats struct {
	LastPrice  *int64
	VWAP       *int64
	Volume     int64
	TradeCount int
}

// MarketDataService serves read-only views: depth snapshots, private
// order books, trade history, and windowed stats.
type MarketDataService struct {
	matcher     *engine.Matcher
	trades      *store.TradeStore
	statsWindow time.Duration

	now func() time.Time // overridable in tests
}

// NewMarketDataService creates a MarketDataService with the given
// stats window.
func NewMarketDataService(matcher *engine.Matcher, trades *store.TradeStore, statsWindow time.Duration) *MarketDataService {
	return &MarketDataService{
		matcher:     matcher,
		trades:      trades,
		statsWindow: statsWindow,
		now:         time.Now,
	}
}

// Book returns the aggregated depth snapshot for both sides.
func (s *MarketDataService) Book() BookSnapshot {
	return BookSnapshot{
		Bids: s.matcher.Depth(domain.SideBid),
		Asks: s.matcher.Depth(domain.SideAsk),
	}
}

// AccountOrders returns the account's currently resting orders in
// insertion order.
func (s *MarketDataService) AccountOrders(account string) []domain.Order {
	return s.matcher.AccountOrders(account)
}

// RecentTrades returns up to limit trades, newest first.
func (s *MarketDataService) RecentTrades(limit int) []domain.Trade {
	return s.trades.Recent(limit)
}

// Stats computes trading statistics over the stats window.
func (s *MarketDataService) Stats() MarketStats {
	all := s.trades.All()

	var stats MarketStats
	if len(all) == 0 {
		return stats
	}

	last := all[len(all)-1].Price
	stats.LastPrice = &last

	cutoff := s.now().Add(-s.statsWindow)
	var notional, volume int64
	for i := len(all) - 1; i >= 0; i-- {
		t := all[i]
		if t.ExecutedAt.Before(cutoff) {
			break
		}
		notional += t.Price * t.Quantity
		volume += t.Quantity
		stats.TradeCount++
	}
	stats.Volume = volume

	if volume > 0 {
		vwap := notional / volume
		stats.VWAP = &vwap
	}
	return stats
}
