package feed

import (
	"encoding/json"
	"time"

	"github.com/efreitasn/matchcore/internal/domain"
	"github.com/efreitasn/matchcore/internal/engine"
)

// feedMessage is the single outbound frame shape. Only the fields
// relevant to the channel and type are populated.
type feedMessage struct {
	Channel         string          `json:"channel"`
	Type            string          `json:"type"`
	Side            string          `json:"side,omitempty"`
	Price           *float64        `json:"price,omitempty"`
	Quantity        *int64          `json:"quantity,omitempty"`
	Order           *orderMessage   `json:"order,omitempty"`
	Previous        *orderMessage   `json:"previous,omitempty"`
	MatchedQuantity *int64          `json:"matched_quantity,omitempty"`
	Trade           *tradeMessage   `json:"trade,omitempty"`
	Trades          []tradeMessage  `json:"trades,omitempty"`
	Orders          []orderMessage  `json:"orders,omitempty"`
	Bids            []levelMessage  `json:"bids,omitempty"`
	Asks            []levelMessage  `json:"asks,omitempty"`
}

// orderMessage is the wire form of an order.
type orderMessage struct {
	ID              int64   `json:"id"`
	Price           float64 `json:"price"`
	Quantity        int64   `json:"quantity"`
	InitialQuantity int64   `json:"initial_quantity"`
	Side            string  `json:"side"`
	Account         string  `json:"account"`
}

// tradeMessage is the wire form of a trade.
type tradeMessage struct {
	TradeID    string  `json:"trade_id"`
	Price      float64 `json:"price"`
	Quantity   int64   `json:"quantity"`
	Aggressor  string  `json:"aggressor"`
	ExecutedAt string  `json:"executed_at"`
}

// levelMessage is the wire form of one aggregated price level.
type levelMessage struct {
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
}

func marshalMessage(msg feedMessage) ([]byte, error) {
	return json.Marshal(msg)
}

func priceField(ticks int64) *float64 {
	price := domain.TicksToPrice(ticks)
	return &price
}

func newOrderMessage(o domain.Order) orderMessage {
	return orderMessage{
		ID:              o.ID,
		Price:           domain.TicksToPrice(o.Price),
		Quantity:        o.Quantity,
		InitialQuantity: o.InitialQuantity,
		Side:            string(o.Side),
		Account:         o.Account,
	}
}

func newOrderMessages(orders []domain.Order) []orderMessage {
	out := make([]orderMessage, len(orders))
	for i, o := range orders {
		out[i] = newOrderMessage(o)
	}
	return out
}

func newTradeMessage(t domain.Trade) tradeMessage {
	return tradeMessage{
		TradeID:    t.TradeID,
		Price:      domain.TicksToPrice(t.Price),
		Quantity:   t.Quantity,
		Aggressor:  string(t.Aggressor),
		ExecutedAt: t.ExecutedAt.Format(time.RFC3339Nano),
	}
}

func newTradeMessages(trades []domain.Trade) []tradeMessage {
	out := make([]tradeMessage, len(trades))
	for i, t := range trades {
		out[i] = newTradeMessage(t)
	}
	return out
}

func newLevelMessages(levels []engine.PriceLevel) []levelMessage {
	out := make([]levelMessage, len(levels))
	for i, l := range levels {
		out[i] = levelMessage{
			Price:    domain.TicksToPrice(l.Price),
			Quantity: l.Quantity,
		}
	}
	return out
}
