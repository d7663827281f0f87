package domain

// OrderType distinguishes limit orders from market orders.
type OrderType string

const (
	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeMarket OrderType = "MARKET"
)

// Valid reports whether t is a known order type.
func (t OrderType) Valid() bool {
	return t == OrderTypeLimit || t == OrderTypeMarket
}

// OrderSide indicates whether an order buys or sells.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// Valid reports whether s is a known side.
func (s OrderSide) Valid() bool {
	return s == OrderSideBuy || s == OrderSideSell
}

// Opposite returns the side an aggressor on s trades against.
func (s OrderSide) Opposite() OrderSide {
	if s == OrderSideBuy {
		return OrderSideSell
	}
	return OrderSideBuy
}

// TimeInForce controls how long an order stays working.
type TimeInForce string

const (
	// TimeInForceDay works until the business date rolls.
	TimeInForceDay TimeInForce = "DAY"
	// TimeInForceGoodTillCancel works until cancelled.
	TimeInForceGoodTillCancel TimeInForce = "GOOD_TILL_CANCEL"
	// TimeInForceImmediateOrCancel matches immediately and cancels the rest.
	TimeInForceImmediateOrCancel TimeInForce = "IMMEDIATE_OR_CANCEL"
	// TimeInForceFillOrKill fills completely at once or not at all.
	TimeInForceFillOrKill TimeInForce = "FILL_OR_KILL"
	// TimeInForceGoodTillDate works until a given business date.
	TimeInForceGoodTillDate TimeInForce = "GOOD_TILL_DATE"
	// TimeInForceAllOrNone rests until a single execution can fill it entirely.
	TimeInForceAllOrNone TimeInForce = "ALL_OR_NONE"
)

// Valid reports whether tif is one of the declared values.
func (tif TimeInForce) Valid() bool {
	switch tif {
	case TimeInForceDay, TimeInForceGoodTillCancel, TimeInForceImmediateOrCancel,
		TimeInForceFillOrKill, TimeInForceGoodTillDate, TimeInForceAllOrNone:
		return true
	}
	return false
}

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusNew             OrderStatus = "NEW"
	OrderStatusFilled          OrderStatus = "FILLED"
	OrderStatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	OrderStatusRejected        OrderStatus = "REJECTED"
	OrderStatusExpired         OrderStatus = "EXPIRED"
	OrderStatusSuspended       OrderStatus = "SUSPENDED"
	OrderStatusCancelled       OrderStatus = "CANCELLED"
)

// IsFinal reports whether no further transition is possible.
func (s OrderStatus) IsFinal() bool {
	switch s {
	case OrderStatusFilled, OrderStatusRejected, OrderStatusExpired, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderQuantity tracks the original size of an order and what is left.
type OrderQuantity struct {
	Original  uint32
	Remaining uint32
}

// NewOrderQuantity returns an untouched quantity of qty.
func NewOrderQuantity(qty uint32) OrderQuantity {
	return OrderQuantity{Original: qty, Remaining: qty}
}

// Cumulative is the executed quantity.
func (q OrderQuantity) Cumulative() uint32 {
	return q.Original - q.Remaining
}

// Cancelled is original - remaining - cumulative, which is zero whenever
// Remaining never exceeds Original.
func (q OrderQuantity) Cancelled() uint32 {
	return q.Original - q.Remaining - q.Cumulative()
}

func (q OrderQuantity) IsFullyFilled() bool {
	return q.Remaining == 0
}

func (q OrderQuantity) IsPartiallyFilled() bool {
	c := q.Cumulative()
	return c > 0 && c < q.Original
}

func (q OrderQuantity) IsUnfilled() bool {
	return q.Cumulative() == 0
}

// Order is a single instruction in the book. OrderID is generated by the
// system; ClientOrderID is the caller's correlation key and the book's
// lookup key.
//
// Once placed, an Order is owned by the OrderBook holding it and is only
// mutated from that book's worker.
type Order struct {
	OrderID       string
	InstrumentID  string
	ClientID      string
	ClientOrderID string
	Side          OrderSide
	Type          OrderType
	Price         Price // meaningful only for limit orders
	Quantity      OrderQuantity
	Status        OrderStatus
	TimeInForce   TimeInForce
}
