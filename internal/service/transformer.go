package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/efreitasn/matchingengine/internal/domain"
)

// OrderTransformer builds new orders from validated PlaceOrder commands.
type OrderTransformer struct {
	scale uint8
	newID func() string
}

// NewOrderTransformer returns a transformer pricing orders at scale.
func NewOrderTransformer(scale uint8) *OrderTransformer {
	return &OrderTransformer{
		scale: scale,
		newID: func() string { return uuid.New().String() },
	}
}

// Transform returns a NEW order with a fresh system order id. A limit
// price is rounded half-up to the transformer's scale and must still be
// positive afterwards; a market order's price is ignored and left zero.
func (t *OrderTransformer) Transform(c domain.PlaceOrder) (*domain.Order, error) {
	price := domain.NewPrice(0, t.scale)
	if c.OrderType != domain.OrderTypeMarket {
		var err error
		price, err = domain.PriceFromDecimal(c.Price, t.scale)
		if err != nil {
			return nil, fmt.Errorf("order %s: %w", c.ClientOrderID, err)
		}
		if price.Value() <= 0 {
			return nil, &domain.ValidationError{Message: "Price must be greater than zero for LIMIT orders"}
		}
	}
	return &domain.Order{
		OrderID:       t.newID(),
		InstrumentID:  c.SecurityID,
		ClientID:      c.ClientID,
		ClientOrderID: c.ClientOrderID,
		Side:          c.Side,
		Type:          c.OrderType,
		Price:         price,
		Quantity:      domain.NewOrderQuantity(c.Quantity),
		Status:        domain.OrderStatusNew,
		TimeInForce:   c.TimeInForce,
	}, nil
}
