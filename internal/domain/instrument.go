package domain

import "sync/atomic"

// Instrument is a tradable security. SecurityID and Symbol are fixed at
// creation; the market price is an advisory midpoint refreshed by the
// owning order book and safe to read from any goroutine.
type Instrument struct {
	SecurityID string
	Symbol     string

	marketPrice atomic.Pointer[Price]
}

// NewInstrument creates an instrument without a market price.
func NewInstrument(securityID, symbol string) *Instrument {
	return &Instrument{SecurityID: securityID, Symbol: symbol}
}

// MarketPrice returns the last recorded midpoint, if any.
func (i *Instrument) MarketPrice() (Price, bool) {
	p := i.marketPrice.Load()
	if p == nil {
		return Price{}, false
	}
	return *p, true
}

// UpdateMarketPrice records the midpoint of bestBid and bestAsk. A
// mismatched scale leaves the previous value in place and is returned.
func (i *Instrument) UpdateMarketPrice(bestBid, bestAsk Price) error {
	mid, err := bestBid.Midpoint(bestAsk)
	if err != nil {
		return err
	}
	i.marketPrice.Store(&mid)
	return nil
}
