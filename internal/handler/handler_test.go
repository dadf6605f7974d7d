package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/efreitasn/matchcore/internal/engine"
	"github.com/efreitasn/matchcore/internal/service"
	"github.com/efreitasn/matchcore/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	trades := store.NewTradeStore()
	matcher := engine.NewMatcher(trades)
	orderSvc := service.NewOrderService(matcher, zap.NewNop())
	marketSvc := service.NewMarketDataService(matcher, trades, 5*time.Minute)

	srv := httptest.NewServer(NewRouter(orderSvc, marketSvc, nil, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func postOrder(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/orders", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func getJSON(t *testing.T, srv *httptest.Server, path string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	var body map[string]string
	resp := getJSON(t, srv, "/healthz", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestSubmitOrder(t *testing.T) {
	srv := newTestServer(t)

	resp := postOrder(t, srv, `{"side":"bid","price":10.50,"quantity":5,"account":"acct-a"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body orderResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, int64(1), body.OrderID)
	assert.Equal(t, "bid", body.Side)
	assert.Equal(t, 10.50, body.Price)
	assert.Equal(t, int64(5), body.Quantity)
	assert.Equal(t, int64(5), body.InitialQuantity)
	assert.Equal(t, "acct-a", body.Account)
}

func TestSubmitOrder_ValidationError(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"bad side", `{"side":"hold","price":10,"quantity":5,"account":"a"}`},
		{"zero quantity", `{"side":"bid","price":10,"quantity":0,"account":"a"}`},
		{"three decimals", `{"side":"bid","price":10.555,"quantity":5,"account":"a"}`},
		{"missing account", `{"side":"bid","price":10,"quantity":5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postOrder(t, srv, tt.body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body errorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, "validation_error", body.Error)
		})
	}
}

func TestSubmitOrder_MalformedRequest(t *testing.T) {
	srv := newTestServer(t)

	t.Run("invalid json", func(t *testing.T) {
		resp := postOrder(t, srv, `{not json`)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body errorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "request body must be valid JSON", body.Message)
	})

	t.Run("unknown field", func(t *testing.T) {
		resp := postOrder(t, srv, `{"side":"bid","price":10,"quantity":5,"account":"a","bogus":1}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing content type", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/orders",
			bytes.NewBufferString(`{"side":"bid","price":10,"quantity":5,"account":"a"}`))
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body errorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Content-Type must be application/json", body.Message)
	})
}

func TestGetBook(t *testing.T) {
	srv := newTestServer(t)
	postOrder(t, srv, `{"side":"bid","price":10.00,"quantity":5,"account":"acct-a"}`)
	postOrder(t, srv, `{"side":"bid","price":9.00,"quantity":3,"account":"acct-a"}`)
	postOrder(t, srv, `{"side":"ask","price":11.00,"quantity":2,"account":"acct-b"}`)

	var body bookResponse
	resp := getJSON(t, srv, "/book", &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, body.Bids, 2)
	require.Len(t, body.Asks, 1)
	assert.Equal(t, levelResponse{Price: 10.00, Quantity: 5}, body.Bids[0])
	assert.Equal(t, levelResponse{Price: 9.00, Quantity: 3}, body.Bids[1])
	assert.Equal(t, levelResponse{Price: 11.00, Quantity: 2}, body.Asks[0])
}

func TestGetTrades(t *testing.T) {
	srv := newTestServer(t)
	postOrder(t, srv, `{"side":"bid","price":10.00,"quantity":5,"account":"acct-a"}`)
	postOrder(t, srv, `{"side":"ask","price":10.00,"quantity":3,"account":"acct-b"}`)
	postOrder(t, srv, `{"side":"ask","price":10.00,"quantity":2,"account":"acct-b"}`)

	var body []tradeResponse
	resp := getJSON(t, srv, "/trades", &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, body, 2)
	// Newest first; both executed at the resting bid's price.
	assert.Equal(t, int64(2), body[0].Quantity)
	assert.Equal(t, int64(3), body[1].Quantity)
	for _, trade := range body {
		assert.Equal(t, 10.00, trade.Price)
		assert.Equal(t, "ask", trade.Aggressor)
		assert.NotEmpty(t, trade.TradeID)
		assert.NotEmpty(t, trade.ExecutedAt)
	}
}

func TestGetTrades_Limit(t *testing.T) {
	srv := newTestServer(t)
	postOrder(t, srv, `{"side":"bid","price":10.00,"quantity":5,"account":"acct-a"}`)
	postOrder(t, srv, `{"side":"ask","price":10.00,"quantity":3,"account":"acct-b"}`)
	postOrder(t, srv, `{"side":"ask","price":10.00,"quantity":2,"account":"acct-b"}`)

	var body []tradeResponse
	getJSON(t, srv, "/trades?limit=1", &body)
	assert.Len(t, body, 1)

	resp := getJSON(t, srv, "/trades?limit=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = getJSON(t, srv, "/trades?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetAccountOrders(t *testing.T) {
	srv := newTestServer(t)
	postOrder(t, srv, `{"side":"bid","price":10.00,"quantity":5,"account":"acct-a"}`)

	var body accountOrdersResponse
	resp := getJSON(t, srv, "/accounts/acct-a/orders", &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "acct-a", body.Account)
	require.Len(t, body.Orders, 1)
	assert.Equal(t, int64(1), body.Orders[0].OrderID)

	resp = getJSON(t, srv, "/accounts/unknown/orders", &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body.Orders)
}

func TestGetStats(t *testing.T) {
	srv := newTestServer(t)

	var body statsResponse
	resp := getJSON(t, srv, "/stats", &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, body.LastPrice)
	assert.Nil(t, body.VWAP)

	postOrder(t, srv, `{"side":"bid","price":10.00,"quantity":5,"account":"acct-a"}`)
	postOrder(t, srv, `{"side":"ask","price":10.00,"quantity":5,"account":"acct-b"}`)

	resp = getJSON(t, srv, "/stats", &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, body.LastPrice)
	assert.Equal(t, 10.00, *body.LastPrice)
	require.NotNil(t, body.VWAP)
	assert.Equal(t, 10.00, *body.VWAP)
	assert.Equal(t, int64(5), body.Volume)
	assert.Equal(t, 1, body.TradeCount)
}
