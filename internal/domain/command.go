package domain

import "github.com/shopspring/decimal"

// CommandType identifies a command for handler dispatch.
type CommandType string

const (
	CommandTypeCreateInstrument CommandType = "create_instrument"
	CommandTypePlaceOrder       CommandType = "place_order"
	CommandTypeCancelOrder      CommandType = "cancel_order"
)

// Command is a validated instruction for the matching core. Every command
// names the instrument it routes to.
type Command interface {
	CommandType() CommandType
	InstrumentID() string
}

// CreateInstrument registers a new instrument and its empty book.
type CreateInstrument struct {
	SecurityID string
	Symbol     string
}

func (CreateInstrument) CommandType() CommandType { return CommandTypeCreateInstrument }
func (c CreateInstrument) InstrumentID() string   { return c.SecurityID }

// PlaceOrder submits a new order. Price is ignored for market orders.
type PlaceOrder struct {
	SecurityID    string
	ClientID      string
	ClientOrderID string
	Side          OrderSide
	Price         decimal.Decimal
	Quantity      uint32
	OrderType     OrderType
	TimeInForce   TimeInForce
}

func (PlaceOrder) CommandType() CommandType { return CommandTypePlaceOrder }
func (c PlaceOrder) InstrumentID() string   { return c.SecurityID }

// CancelOrder withdraws a working order by its client order id.
type CancelOrder struct {
	ClientID      string
	ClientOrderID string
	SecurityID    string
}

func (CancelOrder) CommandType() CommandType { return CommandTypeCancelOrder }
func (c CancelOrder) InstrumentID() string   { return c.SecurityID }
