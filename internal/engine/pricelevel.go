package engine

import "github.com/efreitasn/matchingengine/internal/domain"

// PriceLevel is the FIFO queue of orders resting at one price. It holds
// client order ids rather than orders; the owning OrderBook resolves them
// through its index, so fills and cancels update a single record.
//
// TotalQuantity always equals the sum of remaining quantity of the
// queued orders, provided every fill of a queued order goes through Reduce.
type PriceLevel struct {
	price domain.Price
	queue []string
	total uint64
}

func newPriceLevel(price domain.Price) *PriceLevel {
	return &PriceLevel{price: price}
}

// Price returns the level's price.
func (l *PriceLevel) Price() domain.Price { return l.price }

// TotalQuantity returns the aggregate remaining quantity at this level.
func (l *PriceLevel) TotalQuantity() uint64 { return l.total }

// Len returns the number of queued orders.
func (l *PriceLevel) Len() int { return len(l.queue) }

// IsEmpty reports whether no order is queued.
func (l *PriceLevel) IsEmpty() bool { return len(l.queue) == 0 }

// Add appends an order to the tail of the queue.
func (l *PriceLevel) Add(clientOrderID string, remaining uint32) {
	l.queue = append(l.queue, clientOrderID)
	l.total += uint64(remaining)
}

// Remove deletes an order from anywhere in the queue and subtracts its
// remaining quantity. It returns false, changing nothing, when the order
// is not queued here.
func (l *PriceLevel) Remove(clientOrderID string, remaining uint32) bool {
	for i, id := range l.queue {
		if id != clientOrderID {
			continue
		}
		copy(l.queue[i:], l.queue[i+1:])
		l.queue[len(l.queue)-1] = ""
		l.queue = l.queue[:len(l.queue)-1]
		l.total -= uint64(remaining)
		return true
	}
	return false
}

// Peek returns the head of the queue, the next order eligible to trade.
func (l *PriceLevel) Peek() (string, bool) {
	if len(l.queue) == 0 {
		return "", false
	}
	return l.queue[0], true
}

// Pop drops the head of the queue. The head must already be fully filled
// (its quantity was taken out of the total through Reduce).
func (l *PriceLevel) Pop() {
	if len(l.queue) == 0 {
		return
	}
	l.queue[0] = ""
	l.queue = l.queue[1:]
}

// Reduce lowers the running total after a queued order traded qty.
func (l *PriceLevel) Reduce(qty uint32) {
	l.total -= uint64(qty)
}

// OrderIDs returns a copy of the queued client order ids in FIFO order.
func (l *PriceLevel) OrderIDs() []string {
	ids := make([]string, len(l.queue))
	copy(ids, l.queue)
	return ids
}
