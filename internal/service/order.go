package service

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/efreitasn/matchcore/internal/domain"
	"github.com/efreitasn/matchcore/internal/engine"
)

// SubmitOrderRequest carries one order submission from the transport
// layer. Price is in decimal units (dollars) with at most 2 decimal
// places.
type SubmitOrderRequest struct {
	Side     string
	Price    float64
	Quantity int64
	Account  string
}

// OrderService issues order IDs and feeds submissions into the matcher.
// IDs come from a process-lifetime atomic counter, so they are unique
// and strictly increasing — the matcher itself treats them as
// externally assigned.
type OrderService struct {
	matcher *engine.Matcher
	logger  *zap.Logger
	lastID  atomic.Int64
}

// NewOrderService creates an OrderService backed by the given matcher.
func NewOrderService(matcher *engine.Matcher, logger *zap.Logger) *OrderService {
	return &OrderService{
		matcher: matcher,
		logger:  logger,
	}
}

// Submit validates the request, constructs the order value, and runs it
// through the matcher. The returned order is the submission as accepted
// (its quantity is the submitted quantity; fills are reported through
// the event feed). A validation failure leaves the matcher untouched.
func (s *OrderService) Submit(req SubmitOrderRequest) (domain.Order, error) {
	ticks, err := domain.PriceToTicks(req.Price)
	if err != nil {
		return domain.Order{}, &domain.ValidationError{Field: "price", Message: err.Error()}
	}

	order, err := domain.NewOrder(s.lastID.Add(1), ticks, req.Quantity, domain.Side(req.Side), req.Account)
	if err != nil {
		return domain.Order{}, err
	}

	if err := s.matcher.Submit(order); err != nil {
		return domain.Order{}, err
	}

	s.logger.Info("order accepted",
		zap.Int64("order_id", order.ID),
		zap.String("side", string(order.Side)),
		zap.Int64("price", order.Price),
		zap.Int64("quantity", order.Quantity),
		zap.String("account", order.Account),
	)
	return order, nil
}
