package feed

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/efreitasn/matchcore/internal/domain"
	"github.com/efreitasn/matchcore/internal/engine"
)

// Feed channels. Clients subscribe per channel and receive an initial
// snapshot followed by deltas.
const (
	ChannelBook   = "book"
	ChannelTrades = "trades"

	accountChannelPrefix = "account:"
)

// AccountChannel returns the private feed channel name for an account.
func AccountChannel(account string) string {
	return accountChannelPrefix + account
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	clientBuffer   = 64
)

// SnapshotSource provides the initial payloads sent on subscribe. The
// matcher satisfies it.
type SnapshotSource interface {
	Depth(side domain.Side) []engine.PriceLevel
	AccountOrders(account string) []domain.Order
}

// TradeSource provides recent trade history, newest first. The trade
// store satisfies it.
type TradeSource interface {
	Recent(n int) []domain.Trade
}

// Hub maintains WebSocket subscribers and broadcasts matcher events to
// them per channel. It implements engine.EventListener; its callbacks
// run on the feed dispatcher's goroutine, and per-client delivery uses
// buffered send channels — a client that cannot keep up is dropped.
type Hub struct {
	upgrader     websocket.Upgrader
	snapshots    SnapshotSource
	trades       TradeSource
	historyLimit int
	logger       *zap.Logger

	mu      sync.RWMutex
	clients map[*client]bool
}

// NewHub creates a hub serving snapshots from the given sources.
// historyLimit caps the trade-history snapshot sent on subscribe.
func NewHub(snapshots SnapshotSource, trades TradeSource, historyLimit int, logger *zap.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		snapshots:    snapshots,
		trades:       trades,
		historyLimit: historyLimit,
		logger:       logger,
		clients:      make(map[*client]bool),
	}
}

// ServeWS upgrades the request and runs the client's read/write pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, clientBuffer),
		subs: make(map[string]bool),
	}

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	h.logger.Info("feed client connected", zap.String("remote", conn.RemoteAddr().String()))

	go c.writePump()
	go c.readPump()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// deliver queues payload for c if it is still registered. The read lock
// excludes drop, which closes c.send under the write lock, so the send
// can never hit a closed channel. Returns false when the client has
// been dropped or its buffer is full.
func (h *Hub) deliver(c *client, payload []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.clients[c] {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// broadcast sends the message to every client subscribed to channel.
// Clients whose send buffer is full are disconnected rather than
// blocking the feed.
func (h *Hub) broadcast(channel string, msg feedMessage) {
	payload, err := marshalMessage(msg)
	if err != nil {
		h.logger.Error("feed marshal failed", zap.String("channel", channel), zap.Error(err))
		return
	}

	h.mu.RLock()
	var stalled []*client
	for c := range h.clients {
		if !c.subscribed(channel) {
			continue
		}
		select {
		case c.send <- payload:
		default:
			stalled = append(stalled, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stalled {
		h.logger.Warn("feed client stalled, dropping")
		h.drop(c)
	}
}

// OnTrade implements engine.EventListener.
func (h *Hub) OnTrade(t domain.Trade) {
	trade := newTradeMessage(t)
	h.broadcast(ChannelTrades, feedMessage{
		Channel: ChannelTrades,
		Type:    "trade",
		Trade:   &trade,
	})
}

// OnOrderAdded implements engine.EventListener.
func (h *Hub) OnOrderAdded(o domain.Order) {
	h.broadcastOrder("added", o, nil, nil)
}

// OnOrderRemoved implements engine.EventListener.
func (h *Hub) OnOrderRemoved(o domain.Order) {
	h.broadcastOrder("removed", o, nil, nil)
}

// OnOrderChanged implements engine.EventListener.
func (h *Hub) OnOrderChanged(updated, previous domain.Order, matchedQuantity int64) {
	prev := newOrderMessage(previous)
	h.broadcastOrder("changed", updated, &prev, &matchedQuantity)
}

func (h *Hub) broadcastOrder(kind string, o domain.Order, previous *orderMessage, matched *int64) {
	order := newOrderMessage(o)
	channel := AccountChannel(o.Account)
	h.broadcast(channel, feedMessage{
		Channel:         channel,
		Type:            kind,
		Order:           &order,
		Previous:        previous,
		MatchedQuantity: matched,
	})
}

// OnDepthUpdate implements engine.EventListener.
func (h *Hub) OnDepthUpdate(side domain.Side, u engine.DepthUpdate) {
	msg := feedMessage{
		Channel: ChannelBook,
		Type:    string(u.Kind),
		Side:    string(side),
		Price:   priceField(u.Price),
	}
	if u.Kind != engine.DepthRemoval {
		q := u.Quantity
		msg.Quantity = &q
	}
	h.broadcast(ChannelBook, msg)
}

// initial builds the snapshot message sent when a client joins channel.
func (h *Hub) initial(channel string) (feedMessage, bool) {
	switch {
	case channel == ChannelBook:
		return feedMessage{
			Channel: ChannelBook,
			Type:    "initial",
			Bids:    newLevelMessages(h.snapshots.Depth(domain.SideBid)),
			Asks:    newLevelMessages(h.snapshots.Depth(domain.SideAsk)),
		}, true
	case channel == ChannelTrades:
		return feedMessage{
			Channel: ChannelTrades,
			Type:    "initial",
			Trades:  newTradeMessages(h.trades.Recent(h.historyLimit)),
		}, true
	case strings.HasPrefix(channel, accountChannelPrefix) && channel != accountChannelPrefix:
		account := strings.TrimPrefix(channel, accountChannelPrefix)
		return feedMessage{
			Channel: channel,
			Type:    "initial",
			Orders:  newOrderMessages(h.snapshots.AccountOrders(account)),
		}, true
	}
	return feedMessage{}, false
}

// client is one WebSocket subscriber.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	subsMu sync.RWMutex
	subs   map[string]bool
}

// clientRequest is the inbound subscribe/unsubscribe frame.
type clientRequest struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

func (c *client) subscribed(channel string) bool {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	return c.subs[channel]
}

// readPump processes subscribe/unsubscribe requests until the
// connection closes.
func (c *client) readPump() {
	defer func() {
		c.hub.drop(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var req clientRequest
		if err := c.conn.ReadJSON(&req); err != nil {
			return
		}

		switch req.Action {
		case "subscribe":
			snapshot, ok := c.hub.initial(req.Channel)
			if !ok {
				continue
			}
			c.subsMu.Lock()
			c.subs[req.Channel] = true
			c.subsMu.Unlock()

			payload, err := marshalMessage(snapshot)
			if err != nil {
				c.hub.logger.Error("feed snapshot marshal failed", zap.Error(err))
				continue
			}
			if !c.hub.deliver(c, payload) {
				return // dropped, or buffer already full on subscribe
			}
		case "unsubscribe":
			c.subsMu.Lock()
			delete(c.subs, req.Channel)
			c.subsMu.Unlock()
		}
	}
}

// writePump flushes the send buffer to the connection and keeps the
// connection alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
