package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxPriceScale is the largest decimal scale a Price can carry without
// overflowing the int64 magnitude for ordinary instrument prices.
const MaxPriceScale = 18

// Price is an immutable fixed-point decimal: value × 10^-scale.
//
// Binary operations require both operands to share a scale. Add, Sub,
// Compare and Midpoint report a mismatch as a *ScaleMismatchError; Cmp
// treats it as a programming error and panics.
type Price struct {
	value int64
	scale uint8
}

// NewPrice builds a Price from an already-scaled integer magnitude.
func NewPrice(value int64, scale uint8) Price {
	return Price{value: value, scale: scale}
}

// PriceFromDecimal rounds d half-up (away from zero on a tie) to scale
// decimal places and returns the scaled Price. It returns ErrPriceOverflow
// when the scaled magnitude does not fit in an int64.
func PriceFromDecimal(d decimal.Decimal, scale uint8) (Price, error) {
	if scale > MaxPriceScale {
		return Price{}, fmt.Errorf("scale %d exceeds %d: %w", scale, MaxPriceScale, ErrPriceOverflow)
	}
	scaled := d.Round(int32(scale)).Shift(int32(scale))
	bi := scaled.BigInt()
	if !bi.IsInt64() {
		return Price{}, fmt.Errorf("price %s at scale %d: %w", d.String(), scale, ErrPriceOverflow)
	}
	return Price{value: bi.Int64(), scale: scale}, nil
}

// ParsePrice parses a decimal string and converts it with PriceFromDecimal.
func ParsePrice(s string, scale uint8) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, fmt.Errorf("parse price %q: %w", s, err)
	}
	return PriceFromDecimal(d, scale)
}

// Value returns the scaled integer magnitude.
func (p Price) Value() int64 { return p.value }

// Scale returns the number of decimal places.
func (p Price) Scale() uint8 { return p.scale }

// IsZero reports whether the magnitude is zero.
func (p Price) IsZero() bool { return p.value == 0 }

// Add returns p + o.
func (p Price) Add(o Price) (Price, error) {
	if err := p.checkScale(o); err != nil {
		return Price{}, err
	}
	return Price{value: p.value + o.value, scale: p.scale}, nil
}

// Sub returns p - o.
func (p Price) Sub(o Price) (Price, error) {
	if err := p.checkScale(o); err != nil {
		return Price{}, err
	}
	return Price{value: p.value - o.value, scale: p.scale}, nil
}

// Mul multiplies the magnitude by an integer factor, keeping the scale.
func (p Price) Mul(n int64) Price {
	return Price{value: p.value * n, scale: p.scale}
}

// Compare returns -1, 0 or +1 as p is less than, equal to, or greater than o.
func (p Price) Compare(o Price) (int, error) {
	if err := p.checkScale(o); err != nil {
		return 0, err
	}
	return cmpInt64(p.value, o.value), nil
}

// Cmp is Compare for callers that guarantee equal scales, such as the
// ladders of a single order book. A scale mismatch panics.
func (p Price) Cmp(o Price) int {
	c, err := p.Compare(o)
	if err != nil {
		panic(err)
	}
	return c
}

// Midpoint returns (p + o) / 2 truncated toward zero at p's scale.
func (p Price) Midpoint(o Price) (Price, error) {
	if err := p.checkScale(o); err != nil {
		return Price{}, err
	}
	// Halve before adding so two large magnitudes cannot overflow.
	mid := p.value/2 + o.value/2 + (p.value%2+o.value%2)/2
	return Price{value: mid, scale: p.scale}, nil
}

// Decimal converts the price to an arbitrary-precision decimal.
func (p Price) Decimal() decimal.Decimal {
	return decimal.New(p.value, -int32(p.scale))
}

// String renders the price with exactly Scale() fractional digits.
func (p Price) String() string {
	return p.Decimal().StringFixed(int32(p.scale))
}

// MarshalJSON encodes the price as a decimal string to avoid float rounding.
func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p Price) checkScale(o Price) error {
	if p.scale != o.scale {
		return &ScaleMismatchError{Left: p.scale, Right: o.scale}
	}
	return nil
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
