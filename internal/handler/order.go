package handler

import (
	"fmt"
	"math"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/matchingengine/internal/domain"
	"github.com/efreitasn/matchingengine/internal/service"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	exec CommandSubmitter
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(exec CommandSubmitter) *OrderHandler {
	return &OrderHandler{exec: exec}
}

// submitOrderRequest is the JSON request body for POST /orders/submit.
// Price accepts a JSON number or a decimal string and is required only
// for limit orders.
type submitOrderRequest struct {
	SecurityID    string           `json:"securityId"`
	ClientID      string           `json:"clientId"`
	ClientOrderID string           `json:"clientOrderId"`
	Side          string           `json:"side"`
	Price         *decimal.Decimal `json:"price"`
	Quantity      int64            `json:"quantity"`
	OrderType     string           `json:"orderType"`
	TimeInForce   string           `json:"timeInForce"`
}

// cancelOrderRequest is the JSON request body for POST /orders/cancel.
type cancelOrderRequest struct {
	SecurityID    string `json:"securityId"`
	ClientID      string `json:"clientId"`
	ClientOrderID string `json:"clientOrderId"`
}

// Submit handles POST /orders/submit.
func (h *OrderHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if req.Quantity > math.MaxUint32 {
		writeCommandError(w, &domain.ValidationError{
			Message: fmt.Sprintf("Quantity must not exceed %d", uint32(math.MaxUint32)),
		})
		return
	}
	qty := uint32(0)
	if req.Quantity > 0 {
		qty = uint32(req.Quantity)
	}

	cmd := domain.PlaceOrder{
		SecurityID:    req.SecurityID,
		ClientID:      req.ClientID,
		ClientOrderID: req.ClientOrderID,
		Side:          domain.OrderSide(req.Side),
		Quantity:      qty,
		OrderType:     domain.OrderType(req.OrderType),
		TimeInForce:   domain.TimeInForce(req.TimeInForce),
	}
	if req.Price != nil {
		cmd.Price = *req.Price
	}

	if err := service.ValidatePlaceOrder(cmd); err != nil {
		writeCommandError(w, err)
		return
	}
	if err := h.exec.Submit(r.Context(), cmd); err != nil {
		writeCommandError(w, err)
		return
	}
	WriteAccepted(w, "Order placement submitted for client: "+cmd.ClientID)
}

// Cancel handles POST /orders/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	cmd := domain.CancelOrder{
		SecurityID:    req.SecurityID,
		ClientID:      req.ClientID,
		ClientOrderID: req.ClientOrderID,
	}
	if err := service.ValidateCancelOrder(cmd); err != nil {
		writeCommandError(w, err)
		return
	}
	if err := h.exec.Submit(r.Context(), cmd); err != nil {
		writeCommandError(w, err)
		return
	}
	WriteAccepted(w, "Order cancellation submitted for client: "+cmd.ClientID)
}
