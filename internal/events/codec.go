package events

import (
	"encoding/json"
	"fmt"

	"github.com/efreitasn/matchingengine/internal/domain"
)

// envelope is the wire form of every event: {"type": ..., "data": ...}.
type envelope struct {
	Type domain.EventType `json:"type"`
	Data any              `json:"data"`
}

type tradeJSON struct {
	BuyOrderID   string       `json:"buyOrderId"`
	SellOrderID  string       `json:"sellOrderId"`
	InstrumentID string       `json:"instrumentId"`
	Price        domain.Price `json:"price"`
	Quantity     uint32       `json:"quantity"`
	Timestamp    int64        `json:"timestamp"`
}

type orderCancelledJSON struct {
	ClientOrderID string `json:"clientOrderId"`
	ClientID      string `json:"clientId"`
	InstrumentID  string `json:"instrumentId"`
}

type rejectionJSON struct {
	ClientOrderID string `json:"clientOrderId"`
	ClientID      string `json:"clientId"`
	Reason        string `json:"reason"`
}

// Encode renders ev as a JSON envelope.
func Encode(ev domain.Event) ([]byte, error) {
	var data any
	switch e := ev.(type) {
	case domain.TradeEvent:
		data = tradeJSON{
			BuyOrderID:   e.BuyOrderID,
			SellOrderID:  e.SellOrderID,
			InstrumentID: e.InstrumentID,
			Price:        e.Price,
			Quantity:     e.Quantity,
			Timestamp:    e.Timestamp,
		}
	case domain.OrderCancelledEvent:
		data = orderCancelledJSON(e)
	case domain.OrderCancelRejectedEvent:
		data = rejectionJSON(e)
	case domain.OrderRejectedEvent:
		data = rejectionJSON(e)
	default:
		return nil, fmt.Errorf("encode event: unsupported type %T", ev)
	}
	return json.Marshal(envelope{Type: ev.Type(), Data: data})
}

// PartitionKey returns the instrument id for events that carry one, so
// all of an instrument's trades land on the same partition.
func PartitionKey(ev domain.Event) string {
	switch e := ev.(type) {
	case domain.TradeEvent:
		return e.InstrumentID
	case domain.OrderCancelledEvent:
		return e.InstrumentID
	}
	return ""
}
