package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes; the command
// handlers convert book lookups into rejection events.
var (
	ErrScaleMismatch      = errors.New("price_scale_mismatch")
	ErrPriceOverflow      = errors.New("price_overflow")
	ErrBookNotFound       = errors.New("order_book_not_found")
	ErrBookAlreadyExists  = errors.New("order_book_already_exists")
	ErrExecutorClosed     = errors.New("executor_closed")
	ErrBrokerClosed       = errors.New("event_broker_closed")
	ErrPublishInterrupted = errors.New("event_publish_interrupted")
)

// ValidationError represents a command validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ScaleMismatchError reports a binary Price operation on operands with
// different scales. It matches ErrScaleMismatch under errors.Is.
type ScaleMismatchError struct {
	Left  uint8
	Right uint8
}

func (e *ScaleMismatchError) Error() string {
	return fmt.Sprintf("price scales do not match: %d != %d", e.Left, e.Right)
}

func (e *ScaleMismatchError) Is(target error) bool {
	return target == ErrScaleMismatch
}
