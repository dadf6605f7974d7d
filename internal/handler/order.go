package handler

import (
	"errors"
	"net/http"

	"github.com/efreitasn/matchcore/internal/domain"
	"github.com/efreitasn/matchcore/internal/service"
)

// OrderHandler handles HTTP requests for order submission.
type OrderHandler struct {
	orderSvc *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc *service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// submitOrderRequest is the JSON request body for POST /orders.
type submitOrderRequest struct {
	Side     string  `json:"side"`
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
	Account  string  `json:"account"`
}

// orderResponse is the JSON shape of an order.
type orderResponse struct {
	OrderID         int64   `json:"order_id"`
	Side            string  `json:"side"`
	Price           float64 `json:"price"`
	Quantity        int64   `json:"quantity"`
	InitialQuantity int64   `json:"initial_quantity"`
	Account         string  `json:"account"`
}

func buildOrderResponse(o domain.Order) orderResponse {
	return orderResponse{
		OrderID:         o.ID,
		Side:            string(o.Side),
		Price:           domain.TicksToPrice(o.Price),
		Quantity:        o.Quantity,
		InitialQuantity: o.InitialQuantity,
		Account:         o.Account,
	}
}

// Submit handles POST /orders. Fills and book placement are reported
// through the feed; the response only acknowledges acceptance.
func (h *OrderHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	order, err := h.orderSvc.Submit(service.SubmitOrderRequest{
		Side:     req.Side,
		Price:    req.Price,
		Quantity: req.Quantity,
		Account:  req.Account,
	})
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			WriteError(w, http.StatusBadRequest, "validation_error", verr.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal_error", "failed to submit order")
		return
	}

	WriteJSON(w, http.StatusCreated, buildOrderResponse(order))
}
