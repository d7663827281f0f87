package service

import (
	"strings"

	"github.com/efreitasn/matchingengine/internal/domain"
)

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidateCreateInstrument checks the fields a CreateInstrument command
// cannot be processed without.
func ValidateCreateInstrument(c domain.CreateInstrument) error {
	if blank(c.SecurityID) {
		return &domain.ValidationError{Message: "Security ID must not be null or blank"}
	}
	if blank(c.Symbol) {
		return &domain.ValidationError{Message: "Symbol must not be null or blank"}
	}
	return nil
}

// ValidatePlaceOrder checks ids, enums, price and quantity. Whether the
// order type and time in force may be combined is decided by the matcher.
func ValidatePlaceOrder(c domain.PlaceOrder) error {
	if blank(c.SecurityID) {
		return &domain.ValidationError{Message: "Security ID must not be null or blank"}
	}
	if blank(c.ClientID) {
		return &domain.ValidationError{Message: "Client ID must not be null or blank"}
	}
	if blank(c.ClientOrderID) {
		return &domain.ValidationError{Message: "Client Order ID must not be null or blank"}
	}
	if !c.OrderType.Valid() {
		return &domain.ValidationError{Message: "Order Type must be one of: LIMIT, MARKET"}
	}
	if !c.Side.Valid() {
		return &domain.ValidationError{Message: "Side must be one of: BUY, SELL"}
	}
	if !c.TimeInForce.Valid() {
		return &domain.ValidationError{Message: "Time In Force is not a known value"}
	}
	if c.OrderType == domain.OrderTypeLimit && !c.Price.IsPositive() {
		return &domain.ValidationError{Message: "Price must be greater than zero for LIMIT orders"}
	}
	if c.Quantity == 0 {
		return &domain.ValidationError{Message: "Quantity must be greater than zero"}
	}
	return nil
}

// ValidateCancelOrder checks the ids a cancel needs.
func ValidateCancelOrder(c domain.CancelOrder) error {
	if blank(c.ClientID) {
		return &domain.ValidationError{Message: "Client ID must not be null or blank"}
	}
	if blank(c.ClientOrderID) {
		return &domain.ValidationError{Message: "Client Order ID must not be null or blank"}
	}
	if blank(c.SecurityID) {
		return &domain.ValidationError{Message: "Security ID must not be null or blank"}
	}
	return nil
}
