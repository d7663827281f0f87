package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/efreitasn/matchingengine/internal/domain"
	"github.com/efreitasn/matchingengine/internal/engine"
	"github.com/efreitasn/matchingengine/internal/store"
)

// Publisher accepts events for distribution. *events.Broker implements it.
type Publisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

func bookNotFoundReason(securityID string) string {
	return "Order book not found for security: " + securityID
}

func unexpectedCommand(want domain.CommandType, got domain.Command) error {
	return fmt.Errorf("handler for %s received %T", want, got)
}

// InstrumentHandler creates an empty order book for a new instrument.
type InstrumentHandler struct {
	books   *store.BookStore
	factory *engine.BookFactory
	logger  *slog.Logger
}

func NewInstrumentHandler(books *store.BookStore, factory *engine.BookFactory, logger *slog.Logger) *InstrumentHandler {
	return &InstrumentHandler{books: books, factory: factory, logger: logger}
}

// Handle implements Handler. Creating an instrument that already has a
// book is logged and otherwise ignored.
func (h *InstrumentHandler) Handle(ctx context.Context, cmd domain.Command) error {
	c, ok := cmd.(domain.CreateInstrument)
	if !ok {
		return unexpectedCommand(domain.CommandTypeCreateInstrument, cmd)
	}

	book := h.factory.Create(domain.NewInstrument(c.SecurityID, c.Symbol))
	if !h.books.Add(book) {
		h.logger.WarnContext(ctx, "order book already exists",
			slog.String("security_id", c.SecurityID),
			slog.String("error", domain.ErrBookAlreadyExists.Error()),
		)
		return nil
	}

	h.logger.InfoContext(ctx, "order book created",
		slog.String("security_id", c.SecurityID),
		slog.String("symbol", c.Symbol),
	)
	return nil
}

// PlaceOrderHandler turns a PlaceOrder command into an order, runs it
// through the instrument's book and publishes the resulting events.
type PlaceOrderHandler struct {
	books       *store.BookStore
	transformer *OrderTransformer
	publisher   Publisher
	logger      *slog.Logger
}

func NewPlaceOrderHandler(books *store.BookStore, transformer *OrderTransformer, publisher Publisher, logger *slog.Logger) *PlaceOrderHandler {
	return &PlaceOrderHandler{books: books, transformer: transformer, publisher: publisher, logger: logger}
}

// Handle implements Handler.
func (h *PlaceOrderHandler) Handle(ctx context.Context, cmd domain.Command) error {
	c, ok := cmd.(domain.PlaceOrder)
	if !ok {
		return unexpectedCommand(domain.CommandTypePlaceOrder, cmd)
	}

	book, ok := h.books.Find(c.SecurityID)
	if !ok {
		reason := bookNotFoundReason(c.SecurityID)
		h.logger.ErrorContext(ctx, reason,
			slog.String("client_order_id", c.ClientOrderID),
			slog.String("error", domain.ErrBookNotFound.Error()),
		)
		return h.publisher.Publish(ctx, domain.OrderRejectedEvent{
			ClientOrderID: c.ClientOrderID,
			ClientID:      c.ClientID,
			Reason:        reason,
		})
	}

	order, err := h.transformer.Transform(c)
	if err != nil {
		h.logger.WarnContext(ctx, "order price not representable",
			slog.String("client_order_id", c.ClientOrderID),
			slog.String("error", err.Error()),
		)
		return h.publisher.Publish(ctx, domain.OrderRejectedEvent{
			ClientOrderID: c.ClientOrderID,
			ClientID:      c.ClientID,
			Reason:        err.Error(),
		})
	}

	events := book.PlaceOrder(order)
	h.logger.DebugContext(ctx, "order placed",
		slog.String("security_id", c.SecurityID),
		slog.String("client_order_id", c.ClientOrderID),
		slog.String("status", string(order.Status)),
		slog.Int("events", len(events)),
	)
	return publishAll(ctx, h.publisher, events)
}

// CancelOrderHandler withdraws a working order from its book.
type CancelOrderHandler struct {
	books     *store.BookStore
	publisher Publisher
	logger    *slog.Logger
}

func NewCancelOrderHandler(books *store.BookStore, publisher Publisher, logger *slog.Logger) *CancelOrderHandler {
	return &CancelOrderHandler{books: books, publisher: publisher, logger: logger}
}

// Handle implements Handler. Cancelling an order the book does not know
// publishes nothing.
func (h *CancelOrderHandler) Handle(ctx context.Context, cmd domain.Command) error {
	c, ok := cmd.(domain.CancelOrder)
	if !ok {
		return unexpectedCommand(domain.CommandTypeCancelOrder, cmd)
	}

	book, ok := h.books.Find(c.SecurityID)
	if !ok {
		reason := bookNotFoundReason(c.SecurityID)
		h.logger.ErrorContext(ctx, reason,
			slog.String("client_order_id", c.ClientOrderID),
			slog.String("error", domain.ErrBookNotFound.Error()),
		)
		return h.publisher.Publish(ctx, domain.OrderCancelRejectedEvent{
			ClientOrderID: c.ClientOrderID,
			ClientID:      c.ClientID,
			Reason:        reason,
		})
	}

	ev, ok := book.CancelOrder(c.ClientOrderID)
	if !ok {
		h.logger.DebugContext(ctx, "cancel for unknown order ignored",
			slog.String("security_id", c.SecurityID),
			slog.String("client_order_id", c.ClientOrderID),
		)
		return nil
	}
	h.logger.InfoContext(ctx, "order cancelled",
		slog.String("security_id", c.SecurityID),
		slog.String("client_order_id", c.ClientOrderID),
	)
	return h.publisher.Publish(ctx, *ev)
}

// publishAll publishes events in order and reports every failure.
func publishAll(ctx context.Context, p Publisher, events []domain.Event) error {
	var errs []error
	for _, ev := range events {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
