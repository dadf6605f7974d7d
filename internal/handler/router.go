package handler

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/efreitasn/matchcore/internal/service"
)

// NewRouter creates a chi router with all routes registered and request
// logging. ws, when non-nil, serves the WebSocket feed endpoint.
func NewRouter(
	orderSvc *service.OrderService,
	marketSvc *service.MarketDataService,
	ws http.HandlerFunc,
	logger *zap.Logger,
) chi.Router {
	r := chi.NewRouter()

	r.Use(requestLogging(logger))

	orderH := NewOrderHandler(orderSvc)
	marketH := NewMarketHandler(marketSvc)

	// Health check.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Order submission.
	r.Post("/orders", orderH.Submit)

	// Market data.
	r.Get("/book", marketH.GetBook)
	r.Get("/trades", marketH.GetTrades)
	r.Get("/stats", marketH.GetStats)
	r.Get("/accounts/{account}/orders", marketH.GetAccountOrders)

	// WebSocket feed.
	if ws != nil {
		r.Get("/ws", ws)
	}

	return r
}

// requestLogging returns middleware that logs each request's method,
// path, status code, and duration.
func requestLogging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// Hijack forwards to the underlying writer so the WebSocket upgrade
// works through the logging middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return h.Hijack()
}
