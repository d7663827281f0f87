package domain

// EventType names the kind of an Event on the wire.
type EventType string

const (
	EventTypeTrade               EventType = "TRADE"
	EventTypeOrderCancelled      EventType = "ORDER_CANCELLED"
	EventTypeOrderCancelRejected EventType = "ORDER_CANCEL_REJECTED"
	EventTypeOrderRejected       EventType = "ORDER_REJECTED"
)

// Rejection reasons produced by the matching core.
const (
	ReasonInvalidTimeInForce = "Invalid TimeInForce for OrderType"
	ReasonNotFullyFilled     = "Order could not be fully filled"
	ReasonDuplicateOrderID   = "Duplicate client order id"
	ReasonPriceScaleMismatch = "Price scale mismatch"
)

// Event is an immutable record emitted by the matching core.
type Event interface {
	Type() EventType
}

// TradeEvent records one execution between a buy and a sell order.
// Timestamp is a monotonic clock reading in nanoseconds.
type TradeEvent struct {
	BuyOrderID   string
	SellOrderID  string
	InstrumentID string
	Price        Price
	Quantity     uint32
	Timestamp    int64
}

func (TradeEvent) Type() EventType { return EventTypeTrade }

// OrderCancelledEvent confirms that an order left the book on request.
type OrderCancelledEvent struct {
	ClientOrderID string
	ClientID      string
	InstrumentID  string
}

func (OrderCancelledEvent) Type() EventType { return EventTypeOrderCancelled }

// OrderCancelRejectedEvent reports a cancel that could not be applied.
type OrderCancelRejectedEvent struct {
	ClientOrderID string
	ClientID      string
	Reason        string
}

func (OrderCancelRejectedEvent) Type() EventType { return EventTypeOrderCancelRejected }

// OrderRejectedEvent reports an order that was refused or killed.
type OrderRejectedEvent struct {
	ClientOrderID string
	ClientID      string
	Reason        string
}

func (OrderRejectedEvent) Type() EventType { return EventTypeOrderRejected }
