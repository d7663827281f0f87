package engine

import (
	"time"

	"github.com/efreitasn/matchingengine/internal/domain"
)

// clockEpoch anchors trade timestamps. time.Since reads the monotonic
// clock, so timestamps never go backwards with wall-clock adjustments.
var clockEpoch = time.Now()

func monotonicNanos() int64 {
	return time.Since(clockEpoch).Nanoseconds()
}

// PriceTimeMatcher matches an aggressor against the opposite ladder best
// price first and, within a price, in arrival order. It holds no book
// state and can be shared by every OrderBook.
type PriceTimeMatcher struct {
	now func() int64
}

// NewPriceTimeMatcher returns a matcher stamping trades with a monotonic
// nanosecond clock.
func NewPriceTimeMatcher() *PriceTimeMatcher {
	return &PriceTimeMatcher{now: monotonicNanos}
}

// admissible reports whether the (type, time-in-force) pair is one the
// engine executes. Only LIMIT+ALL_OR_NONE and MARKET+FILL_OR_KILL are.
func admissible(o *domain.Order) bool {
	switch o.Type {
	case domain.OrderTypeLimit:
		return o.TimeInForce == domain.TimeInForceAllOrNone
	case domain.OrderTypeMarket:
		return o.TimeInForce == domain.TimeInForceFillOrKill
	}
	return false
}

// Match implements Matcher.
func (m *PriceTimeMatcher) Match(book *OrderBook, aggressor *domain.Order) []domain.Event {
	if !admissible(aggressor) {
		return []domain.Event{reject(aggressor, domain.ReasonInvalidTimeInForce)}
	}

	var events []domain.Event
	opposite := aggressor.Side.Opposite()

	for aggressor.Quantity.Remaining > 0 {
		level, ok := book.bestLevel(opposite)
		if !ok {
			break
		}
		if aggressor.Type == domain.OrderTypeLimit && !crosses(aggressor, level.price) {
			break
		}

		headID, ok := level.Peek()
		if !ok {
			// Empty levels are dropped eagerly; treat one as the end of liquidity.
			break
		}
		resting := book.orders[headID]

		qty := min(aggressor.Quantity.Remaining, resting.Quantity.Remaining)
		if aggressor.TimeInForce == domain.TimeInForceAllOrNone && qty < aggressor.Quantity.Remaining {
			qty = 0
		}
		if qty == 0 {
			break
		}

		events = append(events, m.trade(aggressor, resting, level.price, qty))

		book.fill(aggressor, qty)
		book.fill(resting, qty)
		resting.Status = fillStatus(resting)
		if resting.Quantity.IsFullyFilled() {
			book.popFilledHead(opposite, level)
		}
	}

	switch {
	case aggressor.Quantity.IsFullyFilled():
		aggressor.Status = domain.OrderStatusFilled
	case aggressor.Quantity.IsPartiallyFilled():
		aggressor.Status = domain.OrderStatusPartiallyFilled
	case aggressor.Type == domain.OrderTypeMarket || aggressor.TimeInForce == domain.TimeInForceFillOrKill:
		// Only an untouched market or fill-or-kill order is rejected.
		events = append(events, reject(aggressor, domain.ReasonNotFullyFilled))
	}
	return events
}

func (m *PriceTimeMatcher) trade(aggressor, resting *domain.Order, price domain.Price, qty uint32) domain.TradeEvent {
	buy, sell := aggressor, resting
	if aggressor.Side == domain.OrderSideSell {
		buy, sell = resting, aggressor
	}
	return domain.TradeEvent{
		BuyOrderID:   buy.OrderID,
		SellOrderID:  sell.OrderID,
		InstrumentID: aggressor.InstrumentID,
		Price:        price,
		Quantity:     qty,
		Timestamp:    m.now(),
	}
}

// crosses reports whether a limit aggressor accepts the opposing price.
func crosses(aggressor *domain.Order, opposing domain.Price) bool {
	if aggressor.Side == domain.OrderSideBuy {
		return aggressor.Price.Cmp(opposing) >= 0
	}
	return aggressor.Price.Cmp(opposing) <= 0
}

func fillStatus(o *domain.Order) domain.OrderStatus {
	switch {
	case o.Quantity.IsFullyFilled():
		return domain.OrderStatusFilled
	case o.Quantity.IsPartiallyFilled():
		return domain.OrderStatusPartiallyFilled
	}
	return o.Status
}
