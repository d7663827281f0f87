package engine

import (
	"github.com/efreitasn/matchingengine/internal/domain"
	"github.com/google/btree"
)

// Matcher is an auction strategy: it matches an aggressor order against
// the opposite side of book, mutating both, and returns the events produced.
type Matcher interface {
	Match(book *OrderBook, aggressor *domain.Order) []domain.Event
}

// bidLess orders the bid ladder by price descending, so Min() is the
// best (highest) bid.
func bidLess(a, b *PriceLevel) bool {
	return a.price.Cmp(b.price) > 0
}

// askLess orders the ask ladder by price ascending, so Min() is the best
// (lowest) ask.
func askLess(a, b *PriceLevel) bool {
	return a.price.Cmp(b.price) < 0
}

// OrderBook is the per-instrument aggregate: a bid and an ask ladder of
// PriceLevels keyed by price, an index of working orders by client order
// id, and the cached top of book.
//
// OrderBook takes no locks. All mutation for one instrument must come from
// the single executor worker that owns it.
type OrderBook struct {
	instrument *domain.Instrument
	scale      uint8
	matcher    Matcher

	bids   *btree.BTreeG[*PriceLevel]
	asks   *btree.BTreeG[*PriceLevel]
	orders map[string]*domain.Order // client_order_id → order

	bestBid    domain.Price
	hasBestBid bool
	bestAsk    domain.Price
	hasBestAsk bool
}

// NewOrderBook creates an empty book for instrument whose limit prices
// carry the given scale.
func NewOrderBook(instrument *domain.Instrument, scale uint8, matcher Matcher) *OrderBook {
	const degree = 32
	return &OrderBook{
		instrument: instrument,
		scale:      scale,
		matcher:    matcher,
		bids:       btree.NewG[*PriceLevel](degree, bidLess),
		asks:       btree.NewG[*PriceLevel](degree, askLess),
		orders:     make(map[string]*domain.Order),
	}
}

// Instrument returns the instrument this book trades.
func (ob *OrderBook) Instrument() *domain.Instrument { return ob.instrument }

// Scale returns the price scale every limit order in this book must use.
func (ob *OrderBook) Scale() uint8 { return ob.scale }

// PlaceOrder indexes the order, rests it on its side's ladder if it is a
// limit order, and runs the matcher. A limit order that ends filled or
// rejected leaves its ladder before PlaceOrder returns. Every accepted
// order stays indexed until it is cancelled, so its client order id stays
// taken and a later cancel still finds it.
func (ob *OrderBook) PlaceOrder(order *domain.Order) []domain.Event {
	if _, exists := ob.orders[order.ClientOrderID]; exists {
		return []domain.Event{reject(order, domain.ReasonDuplicateOrderID)}
	}
	if order.Type == domain.OrderTypeLimit && order.Price.Scale() != ob.scale {
		return []domain.Event{reject(order, domain.ReasonPriceScaleMismatch)}
	}

	ob.orders[order.ClientOrderID] = order
	if order.Type == domain.OrderTypeLimit {
		ladder := ob.ladder(order.Side)
		level, ok := ladder.Get(&PriceLevel{price: order.Price})
		if !ok {
			level = newPriceLevel(order.Price)
			ladder.ReplaceOrInsert(level)
		}
		level.Add(order.ClientOrderID, order.Quantity.Remaining)
		ob.updateTopOfBook(order.Side, order.Price)
	}

	events := ob.matcher.Match(ob, order)

	if order.Status.IsFinal() {
		ob.dequeue(order)
	}
	ob.refreshMarketPrice()
	return events
}

// CancelOrder takes the order out of the index and, if it still rests on a
// ladder, out of its price level. Orders that already traded out or were
// market orders are cancelled too; only their status is left as it was.
// It returns false, with no side effect, when clientOrderID is not indexed.
func (ob *OrderBook) CancelOrder(clientOrderID string) (*domain.OrderCancelledEvent, bool) {
	order, ok := ob.orders[clientOrderID]
	if !ok {
		return nil, false
	}
	delete(ob.orders, clientOrderID)
	if ob.dequeue(order) {
		order.Status = domain.OrderStatusCancelled
		ob.refreshMarketPrice()
	}

	return &domain.OrderCancelledEvent{
		ClientOrderID: order.ClientOrderID,
		ClientID:      order.ClientID,
		InstrumentID:  order.InstrumentID,
	}, true
}

// MarketPrice returns the midpoint of the cached best bid and best ask at
// the bid's scale. ok is false when either side is empty.
func (ob *OrderBook) MarketPrice() (price domain.Price, ok bool, err error) {
	if !ob.hasBestBid || !ob.hasBestAsk {
		return domain.Price{}, false, nil
	}
	mid, err := ob.bestBid.Midpoint(ob.bestAsk)
	if err != nil {
		return domain.Price{}, false, err
	}
	return mid, true, nil
}

// BestBid returns the cached highest bid price.
func (ob *OrderBook) BestBid() (domain.Price, bool) {
	return ob.bestBid, ob.hasBestBid
}

// BestAsk returns the cached lowest ask price.
func (ob *OrderBook) BestAsk() (domain.Price, bool) {
	return ob.bestAsk, ob.hasBestAsk
}

// Order returns the order indexed under clientOrderID, working or not.
func (ob *OrderBook) Order(clientOrderID string) (*domain.Order, bool) {
	o, ok := ob.orders[clientOrderID]
	return o, ok
}

// OrderCount returns the number of indexed orders.
func (ob *OrderBook) OrderCount() int {
	return len(ob.orders)
}

// Level returns the price level at price on side.
func (ob *OrderBook) Level(side domain.OrderSide, price domain.Price) (*PriceLevel, bool) {
	if price.Scale() != ob.scale {
		return nil, false
	}
	return ob.ladder(side).Get(&PriceLevel{price: price})
}

// LevelCount returns the number of price levels on side.
func (ob *OrderBook) LevelCount(side domain.OrderSide) int {
	return ob.ladder(side).Len()
}

// WalkLevels visits side's levels best price first until fn returns false.
func (ob *OrderBook) WalkLevels(side domain.OrderSide, fn func(*PriceLevel) bool) {
	ob.ladder(side).Ascend(fn)
}

func (ob *OrderBook) ladder(side domain.OrderSide) *btree.BTreeG[*PriceLevel] {
	if side == domain.OrderSideBuy {
		return ob.bids
	}
	return ob.asks
}

// bestLevel returns the top level of side's ladder.
func (ob *OrderBook) bestLevel(side domain.OrderSide) (*PriceLevel, bool) {
	return ob.ladder(side).Min()
}

// fill takes qty off order and, when the order rests on a ladder, off
// its level's running total.
func (ob *OrderBook) fill(order *domain.Order, qty uint32) {
	order.Quantity.Remaining -= qty
	if order.Type != domain.OrderTypeLimit {
		return
	}
	if level, ok := ob.ladder(order.Side).Get(&PriceLevel{price: order.Price}); ok {
		level.Reduce(qty)
	}
}

// popFilledHead drops level's fully filled head order from the queue, and
// the level from side's ladder once it is empty. The order stays indexed.
func (ob *OrderBook) popFilledHead(side domain.OrderSide, level *PriceLevel) {
	level.Pop()
	if level.IsEmpty() {
		ob.removeLevel(side, level.price)
	}
}

// dequeue takes a limit order out of its price level and reports whether
// it was still queued there.
func (ob *OrderBook) dequeue(order *domain.Order) bool {
	if order.Type != domain.OrderTypeLimit {
		return false
	}
	level, ok := ob.ladder(order.Side).Get(&PriceLevel{price: order.Price})
	if !ok || !level.Remove(order.ClientOrderID, order.Quantity.Remaining) {
		return false
	}
	if level.IsEmpty() {
		ob.removeLevel(order.Side, order.Price)
	}
	return true
}

func (ob *OrderBook) removeLevel(side domain.OrderSide, price domain.Price) {
	ob.ladder(side).Delete(&PriceLevel{price: price})
	ob.checkTopOfBookAfterRemoval(side, price)
}

func (ob *OrderBook) updateTopOfBook(side domain.OrderSide, price domain.Price) {
	if side == domain.OrderSideBuy {
		if !ob.hasBestBid || price.Cmp(ob.bestBid) > 0 {
			ob.bestBid, ob.hasBestBid = price, true
		}
		return
	}
	if !ob.hasBestAsk || price.Cmp(ob.bestAsk) < 0 {
		ob.bestAsk, ob.hasBestAsk = price, true
	}
}

func (ob *OrderBook) checkTopOfBookAfterRemoval(side domain.OrderSide, removed domain.Price) {
	if side == domain.OrderSideBuy {
		if ob.hasBestBid && ob.bestBid == removed {
			ob.bestBid, ob.hasBestBid = ob.extreme(ob.bids)
		}
		return
	}
	if ob.hasBestAsk && ob.bestAsk == removed {
		ob.bestAsk, ob.hasBestAsk = ob.extreme(ob.asks)
	}
}

func (ob *OrderBook) extreme(ladder *btree.BTreeG[*PriceLevel]) (domain.Price, bool) {
	level, ok := ladder.Min()
	if !ok {
		return domain.Price{}, false
	}
	return level.price, true
}

func (ob *OrderBook) refreshMarketPrice() {
	if !ob.hasBestBid || !ob.hasBestAsk {
		return
	}
	// Scales are uniform within a book, so the error path is unreachable.
	_ = ob.instrument.UpdateMarketPrice(ob.bestBid, ob.bestAsk)
}

func reject(order *domain.Order, reason string) domain.Event {
	order.Status = domain.OrderStatusRejected
	return domain.OrderRejectedEvent{
		ClientOrderID: order.ClientOrderID,
		ClientID:      order.ClientID,
		Reason:        reason,
	}
}

// BookFactory creates order books wired to a shared matcher.
type BookFactory struct {
	matcher Matcher
	scale   uint8
}

// NewBookFactory returns a factory producing books of the given price scale.
func NewBookFactory(matcher Matcher, scale uint8) *BookFactory {
	return &BookFactory{matcher: matcher, scale: scale}
}

// Create builds an empty order book for instrument.
func (f *BookFactory) Create(instrument *domain.Instrument) *OrderBook {
	return NewOrderBook(instrument, f.scale, f.matcher)
}
