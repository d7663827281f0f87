package engine

import (
	"testing"

	"github.com/efreitasn/matchingengine/internal/domain"
)

func trades(events []domain.Event) []domain.TradeEvent {
	var out []domain.TradeEvent
	for _, ev := range events {
		if tr, ok := ev.(domain.TradeEvent); ok {
			out = append(out, tr)
		}
	}
	return out
}

func rejections(events []domain.Event) []domain.OrderRejectedEvent {
	var out []domain.OrderRejectedEvent
	for _, ev := range events {
		if rej, ok := ev.(domain.OrderRejectedEvent); ok {
			out = append(out, rej)
		}
	}
	return out
}

func TestMatch_RestingBidFilledByMarketSell(t *testing.T) {
	ob := newTestBook()

	if events := ob.PlaceOrder(limitOrder("bid", domain.OrderSideBuy, 100, 10)); len(events) != 0 {
		t.Fatalf("expected no events on rest, got %v", events)
	}
	if best, ok := ob.BestBid(); !ok || best != px(100) {
		t.Fatalf("expected best bid 100, got %v (ok=%v)", best, ok)
	}

	mkt := marketOrder("mkt", domain.OrderSideSell, 10)
	events := ob.PlaceOrder(mkt)

	if len(events) != 1 {
		t.Fatalf("expected exactly one event, got %v", events)
	}
	tr, ok := events[0].(domain.TradeEvent)
	if !ok {
		t.Fatalf("expected TradeEvent, got %T", events[0])
	}
	if tr.Price != px(100) || tr.Quantity != 10 {
		t.Errorf("unexpected trade %+v", tr)
	}
	if tr.BuyOrderID != "sys-bid" || tr.SellOrderID != "sys-mkt" {
		t.Errorf("wrong sides: buy=%s sell=%s", tr.BuyOrderID, tr.SellOrderID)
	}
	if tr.InstrumentID != "X" {
		t.Errorf("expected instrument X, got %s", tr.InstrumentID)
	}
	if _, ok := ob.BestBid(); ok {
		t.Error("expected no best bid after fill")
	}
	if ob.LevelCount(domain.OrderSideBuy) != 0 || queuedCount(ob) != 0 {
		t.Error("expected empty ladders")
	}
	if ob.OrderCount() != 2 {
		t.Errorf("both orders stay indexed until cancelled, count=%d", ob.OrderCount())
	}
	if mkt.Status != domain.OrderStatusFilled {
		t.Errorf("expected FILLED, got %s", mkt.Status)
	}
}

func TestMatch_InvalidTimeInForceRejected(t *testing.T) {
	cases := []struct {
		name  string
		order *domain.Order
	}{
		{"limit day", func() *domain.Order {
			o := limitOrder("l", domain.OrderSideBuy, 100, 1)
			o.TimeInForce = domain.TimeInForceDay
			return o
		}()},
		{"limit fok", func() *domain.Order {
			o := limitOrder("l", domain.OrderSideSell, 100, 1)
			o.TimeInForce = domain.TimeInForceFillOrKill
			return o
		}()},
		{"market ioc", func() *domain.Order {
			o := marketOrder("m", domain.OrderSideBuy, 1)
			o.TimeInForce = domain.TimeInForceImmediateOrCancel
			return o
		}()},
		{"market aon", func() *domain.Order {
			o := marketOrder("m", domain.OrderSideSell, 1)
			o.TimeInForce = domain.TimeInForceAllOrNone
			return o
		}()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ob := newTestBook()
			ob.PlaceOrder(limitOrder("restB", domain.OrderSideBuy, 99, 5))
			ob.PlaceOrder(limitOrder("restS", domain.OrderSideSell, 101, 5))

			events := ob.PlaceOrder(tc.order)

			if len(events) != 1 {
				t.Fatalf("expected one event, got %v", events)
			}
			rej, ok := events[0].(domain.OrderRejectedEvent)
			if !ok || rej.Reason != domain.ReasonInvalidTimeInForce {
				t.Fatalf("expected invalid TIF rejection, got %#v", events[0])
			}
			if tc.order.Status != domain.OrderStatusRejected {
				t.Errorf("expected REJECTED, got %s", tc.order.Status)
			}
			if _, ok := ob.Order(tc.order.ClientOrderID); !ok {
				t.Error("rejected order must stay indexed")
			}
			if queuedCount(ob) != 2 {
				t.Errorf("rejected order queued or resting orders disturbed, queued=%d", queuedCount(ob))
			}
			if bid, _ := ob.BestBid(); bid != px(99) {
				t.Errorf("best bid moved to %v", bid)
			}
			if ask, _ := ob.BestAsk(); ask != px(101) {
				t.Errorf("best ask moved to %v", ask)
			}
		})
	}
}

func TestMatch_TradesAtRestingPrice(t *testing.T) {
	ob := newTestBook()
	ob.PlaceOrder(limitOrder("ask", domain.OrderSideSell, 100, 5))

	events := ob.PlaceOrder(limitOrder("bid", domain.OrderSideBuy, 105, 5))

	ts := trades(events)
	if len(ts) != 1 {
		t.Fatalf("expected one trade, got %v", events)
	}
	if ts[0].Price != px(100) {
		t.Errorf("expected resting price 100, got %v", ts[0].Price)
	}
	if queuedCount(ob) != 0 {
		t.Errorf("expected both orders off the ladders, queued=%d", queuedCount(ob))
	}
	if _, ok := ob.BestBid(); ok {
		t.Error("filled aggressor must leave the bid ladder")
	}
}

func TestMatch_SellAggressorAgainstBids(t *testing.T) {
	ob := newTestBook()
	ob.PlaceOrder(limitOrder("bid100", domain.OrderSideBuy, 100, 5))
	ob.PlaceOrder(limitOrder("bid99", domain.OrderSideBuy, 99, 5))

	events := ob.PlaceOrder(limitOrder("ask", domain.OrderSideSell, 99, 5))

	ts := trades(events)
	if len(ts) != 1 {
		t.Fatalf("expected one trade, got %v", events)
	}
	if ts[0].Price != px(100) {
		t.Errorf("expected best bid 100 to trade first, got %v", ts[0].Price)
	}
	if ts[0].BuyOrderID != "sys-bid100" || ts[0].SellOrderID != "sys-ask" {
		t.Errorf("wrong sides: %+v", ts[0])
	}
	if best, _ := ob.BestBid(); best != px(99) {
		t.Errorf("expected best bid 99, got %v", best)
	}
}

func TestMatch_LimitPriceStopsWalk(t *testing.T) {
	ob := newTestBook()
	ob.PlaceOrder(limitOrder("bid", domain.OrderSideBuy, 100, 5))

	ask := limitOrder("ask", domain.OrderSideSell, 101, 5)
	events := ob.PlaceOrder(ask)

	if len(events) != 0 {
		t.Fatalf("expected no events, got %v", events)
	}
	if ask.Status != domain.OrderStatusNew {
		t.Errorf("expected NEW, got %s", ask.Status)
	}
	if best, _ := ob.BestAsk(); best != px(101) {
		t.Errorf("expected resting ask at 101, got %v", best)
	}
	mid, ok := ob.Instrument().MarketPrice()
	if !ok || mid != px(100) {
		t.Errorf("expected market price 100, got %v (ok=%v)", mid, ok)
	}
}

func TestMatch_AllOrNoneSkipsSmallerResting(t *testing.T) {
	ob := newTestBook()
	ob.PlaceOrder(limitOrder("small", domain.OrderSideSell, 100, 3))

	bid := limitOrder("big", domain.OrderSideBuy, 100, 10)
	events := ob.PlaceOrder(bid)

	if len(events) != 0 {
		t.Fatalf("expected no events, got %v", events)
	}
	if bid.Status != domain.OrderStatusNew || bid.Quantity.Remaining != 10 {
		t.Errorf("aggressor changed: status=%s remaining=%d", bid.Status, bid.Quantity.Remaining)
	}
	level, ok := ob.Level(domain.OrderSideBuy, px(100))
	if !ok || level.TotalQuantity() != 10 {
		t.Fatal("unfilled all-or-none order must keep resting")
	}
	small, _ := ob.Order("small")
	if small.Quantity.Remaining != 3 {
		t.Errorf("resting order traded: remaining=%d", small.Quantity.Remaining)
	}
}

func TestMatch_AllOrNoneAgainstLargerResting(t *testing.T) {
	ob := newTestBook()
	resting := limitOrder("large", domain.OrderSideSell, 100, 10)
	ob.PlaceOrder(resting)

	bid := limitOrder("bid", domain.OrderSideBuy, 100, 4)
	events := ob.PlaceOrder(bid)

	ts := trades(events)
	if len(ts) != 1 || ts[0].Quantity != 4 {
		t.Fatalf("expected one trade of 4, got %v", events)
	}
	if bid.Status != domain.OrderStatusFilled {
		t.Errorf("expected aggressor FILLED, got %s", bid.Status)
	}
	if resting.Status != domain.OrderStatusPartiallyFilled || resting.Quantity.Remaining != 6 {
		t.Errorf("resting: status=%s remaining=%d", resting.Status, resting.Quantity.Remaining)
	}
	level, _ := ob.Level(domain.OrderSideSell, px(100))
	if level.TotalQuantity() != 6 {
		t.Errorf("expected level total 6, got %d", level.TotalQuantity())
	}
	if _, ok := ob.BestBid(); ok {
		t.Error("filled bid must not linger on the ladder")
	}
}

func TestMatch_PriceTimePriorityWithinLevel(t *testing.T) {
	ob := newTestBook()
	ob.PlaceOrder(limitOrder("first", domain.OrderSideSell, 100, 3))
	ob.PlaceOrder(limitOrder("second", domain.OrderSideSell, 100, 3))

	events := ob.PlaceOrder(limitOrder("bid", domain.OrderSideBuy, 100, 3))

	ts := trades(events)
	if len(ts) != 1 || ts[0].SellOrderID != "sys-first" {
		t.Fatalf("expected earliest order to trade, got %v", events)
	}
	level, _ := ob.Level(domain.OrderSideSell, px(100))
	if ids := level.OrderIDs(); len(ids) != 1 || ids[0] != "second" {
		t.Errorf("expected only second queued, got %v", ids)
	}
	first, _ := ob.Order("first")
	if first.Status != domain.OrderStatusFilled {
		t.Errorf("expected first FILLED, got %s", first.Status)
	}
}

func TestMatch_MarketWalksLevels(t *testing.T) {
	ob := newTestBook()
	ob.PlaceOrder(limitOrder("a100", domain.OrderSideSell, 100, 3))
	ob.PlaceOrder(limitOrder("a101", domain.OrderSideSell, 101, 4))
	ob.PlaceOrder(limitOrder("a102", domain.OrderSideSell, 102, 4))

	mkt := marketOrder("mkt", domain.OrderSideBuy, 7)
	events := ob.PlaceOrder(mkt)

	ts := trades(events)
	if len(ts) != 2 || len(rejections(events)) != 0 {
		t.Fatalf("expected two trades and no rejection, got %v", events)
	}
	if ts[0].Price != px(100) || ts[0].Quantity != 3 || ts[1].Price != px(101) || ts[1].Quantity != 4 {
		t.Errorf("unexpected trades %+v", ts)
	}
	if mkt.Status != domain.OrderStatusFilled {
		t.Errorf("expected FILLED, got %s", mkt.Status)
	}
	if best, _ := ob.BestAsk(); best != px(102) {
		t.Errorf("expected best ask 102, got %v", best)
	}
}

func TestMatch_MarketPartialFillStaysPartiallyFilled(t *testing.T) {
	ob := newTestBook()
	ob.PlaceOrder(limitOrder("a100", domain.OrderSideSell, 100, 3))
	ob.PlaceOrder(limitOrder("a101", domain.OrderSideSell, 101, 4))

	mkt := marketOrder("mkt", domain.OrderSideBuy, 10)
	events := ob.PlaceOrder(mkt)

	if len(events) != 2 || len(trades(events)) != 2 {
		t.Fatalf("expected two trades and nothing else, got %v", events)
	}
	if mkt.Status != domain.OrderStatusPartiallyFilled || mkt.Quantity.Remaining != 3 {
		t.Errorf("market: status=%s remaining=%d", mkt.Status, mkt.Quantity.Remaining)
	}
	if mkt.Quantity.Cumulative() != 7 {
		t.Errorf("expected cumulative 7, got %d", mkt.Quantity.Cumulative())
	}
	if ob.LevelCount(domain.OrderSideSell) != 0 || ob.LevelCount(domain.OrderSideBuy) != 0 {
		t.Error("market remainder must not rest and the asks must be consumed")
	}
}

func TestMatch_MarketPartialFillSingleLevel(t *testing.T) {
	ob := newTestBook()
	ob.PlaceOrder(limitOrder("a", domain.OrderSideSell, 100, 3))

	mkt := marketOrder("m", domain.OrderSideBuy, 10)
	events := ob.PlaceOrder(mkt)

	if len(rejections(events)) != 0 {
		t.Fatalf("partly filled market order must not be rejected, got %v", events)
	}
	if ts := trades(events); len(ts) != 1 || ts[0].Quantity != 3 {
		t.Fatalf("expected one trade of 3, got %v", events)
	}
	if mkt.Status != domain.OrderStatusPartiallyFilled || mkt.Quantity.Cumulative() != 3 {
		t.Errorf("market: status=%s cumulative=%d", mkt.Status, mkt.Quantity.Cumulative())
	}
}

func TestMatch_MarketNoLiquidityRejected(t *testing.T) {
	ob := newTestBook()
	mkt := marketOrder("mkt", domain.OrderSideSell, 1)

	events := ob.PlaceOrder(mkt)

	if len(events) != 1 {
		t.Fatalf("expected one event, got %v", events)
	}
	if rej := rejections(events); len(rej) != 1 || rej[0].Reason != domain.ReasonNotFullyFilled {
		t.Fatalf("expected not-fully-filled rejection, got %v", events)
	}
	if mkt.Status != domain.OrderStatusRejected {
		t.Errorf("expected REJECTED, got %s", mkt.Status)
	}
	if ob.LevelCount(domain.OrderSideSell) != 0 {
		t.Error("market order must never rest")
	}
}

func TestMatch_TimestampsFromClock(t *testing.T) {
	var tick int64
	m := &PriceTimeMatcher{now: func() int64 { tick += 10; return tick }}
	ob := NewOrderBook(domain.NewInstrument("X", "XSYM"), testScale, m)
	ob.PlaceOrder(limitOrder("a", domain.OrderSideSell, 100, 1))
	ob.PlaceOrder(limitOrder("b", domain.OrderSideSell, 101, 1))

	ts := trades(ob.PlaceOrder(marketOrder("m", domain.OrderSideBuy, 2)))

	if len(ts) != 2 || ts[0].Timestamp != 10 || ts[1].Timestamp != 20 {
		t.Errorf("unexpected timestamps %+v", ts)
	}
}

func TestMonotonicNanos_NonDecreasing(t *testing.T) {
	prev := monotonicNanos()
	for n := 0; n < 1000; n++ {
		cur := monotonicNanos()
		if cur < prev {
			t.Fatalf("clock went backwards: %d < %d", cur, prev)
		}
		prev = cur
	}
}
