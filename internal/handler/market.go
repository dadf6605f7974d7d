package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/efreitasn/matchcore/internal/domain"
	"github.com/efreitasn/matchcore/internal/engine"
	"github.com/efreitasn/matchcore/internal/service"
)

// defaultTradeLimit caps GET /trades when no limit parameter is given.
const defaultTradeLimit = 100

// MarketHandler handles HTTP requests for market-data endpoints.
type MarketHandler struct {
	marketSvc *service.MarketDataService
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(marketSvc *service.MarketDataService) *MarketHandler {
	return &MarketHandler{marketSvc: marketSvc}
}

// levelResponse is one aggregated price level in a book response.
type levelResponse struct {
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
}

// bookResponse is the JSON response for GET /book.
type bookResponse struct {
	Bids []levelResponse `json:"bids"`
	Asks []levelResponse `json:"asks"`
}

// tradeResponse is a single trade in GET /trades.
type tradeResponse struct {
	TradeID    string  `json:"trade_id"`
	Price      float64 `json:"price"`
	Quantity   int64   `json:"quantity"`
	Aggressor  string  `json:"aggressor"`
	ExecutedAt string  `json:"executed_at"`
}

// statsResponse is the JSON response for GET /stats.
type statsResponse struct {
	LastPrice  *float64 `json:"last_price"`
	VWAP       *float64 `json:"vwap"`
	Volume     int64    `json:"volume"`
	TradeCount int      `json:"trade_count"`
}

// accountOrdersResponse is the JSON response for account order listings.
type accountOrdersResponse struct {
	Account string          `json:"account"`
	Orders  []orderResponse `json:"orders"`
}

func buildLevels(levels []engine.PriceLevel) []levelResponse {
	out := make([]levelResponse, len(levels))
	for i, l := range levels {
		out[i] = levelResponse{
			Price:    domain.TicksToPrice(l.Price),
			Quantity: l.Quantity,
		}
	}
	return out
}

// GetBook handles GET /book.
func (h *MarketHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	snapshot := h.marketSvc.Book()
	WriteJSON(w, http.StatusOK, bookResponse{
		Bids: buildLevels(snapshot.Bids),
		Asks: buildLevels(snapshot.Asks),
	})
}

// GetTrades handles GET /trades?limit=N, newest first.
func (h *MarketHandler) GetTrades(w http.ResponseWriter, r *http.Request) {
	limit := defaultTradeLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			WriteError(w, http.StatusBadRequest, "validation_error", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	trades := h.marketSvc.RecentTrades(limit)
	out := make([]tradeResponse, len(trades))
	for i, t := range trades {
		out[i] = tradeResponse{
			TradeID:    t.TradeID,
			Price:      domain.TicksToPrice(t.Price),
			Quantity:   t.Quantity,
			Aggressor:  string(t.Aggressor),
			ExecutedAt: t.ExecutedAt.Format(time.RFC3339Nano),
		}
	}
	WriteJSON(w, http.StatusOK, out)
}

// GetAccountOrders handles GET /accounts/{account}/orders.
func (h *MarketHandler) GetAccountOrders(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")

	orders := h.marketSvc.AccountOrders(account)
	out := make([]orderResponse, len(orders))
	for i, o := range orders {
		out[i] = buildOrderResponse(o)
	}
	WriteJSON(w, http.StatusOK, accountOrdersResponse{
		Account: account,
		Orders:  out,
	})
}

// GetStats handles GET /stats.
func (h *MarketHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := h.marketSvc.Stats()

	resp := statsResponse{
		Volume:     stats.Volume,
		TradeCount: stats.TradeCount,
	}
	if stats.LastPrice != nil {
		p := domain.TicksToPrice(*stats.LastPrice)
		resp.LastPrice = &p
	}
	if stats.VWAP != nil {
		p := domain.TicksToPrice(*stats.VWAP)
		resp.VWAP = &p
	}
	WriteJSON(w, http.StatusOK, resp)
}
