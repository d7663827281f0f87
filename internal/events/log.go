package events

import (
	"context"
	"log/slog"

	"github.com/efreitasn/matchingengine/internal/domain"
)

// LogConsumer writes every event to a structured logger. It is the
// default consumer when no message bus is configured.
type LogConsumer struct {
	logger *slog.Logger
}

func NewLogConsumer(logger *slog.Logger) *LogConsumer {
	return &LogConsumer{logger: logger}
}

// Consume implements Consumer.
func (l *LogConsumer) Consume(ctx context.Context, ev domain.Event) error {
	switch e := ev.(type) {
	case domain.TradeEvent:
		l.logger.InfoContext(ctx, "trade",
			slog.String("instrument_id", e.InstrumentID),
			slog.String("buy_order_id", e.BuyOrderID),
			slog.String("sell_order_id", e.SellOrderID),
			slog.String("price", e.Price.String()),
			slog.Any("quantity", e.Quantity),
			slog.Int64("timestamp", e.Timestamp),
		)
	case domain.OrderCancelledEvent:
		l.logger.InfoContext(ctx, "order cancelled",
			slog.String("instrument_id", e.InstrumentID),
			slog.String("client_id", e.ClientID),
			slog.String("client_order_id", e.ClientOrderID),
		)
	case domain.OrderCancelRejectedEvent:
		l.logger.InfoContext(ctx, "order cancel rejected",
			slog.String("client_id", e.ClientID),
			slog.String("client_order_id", e.ClientOrderID),
			slog.String("reason", e.Reason),
		)
	case domain.OrderRejectedEvent:
		l.logger.InfoContext(ctx, "order rejected",
			slog.String("client_id", e.ClientID),
			slog.String("client_order_id", e.ClientOrderID),
			slog.String("reason", e.Reason),
		)
	default:
		l.logger.InfoContext(ctx, "event", slog.String("type", string(ev.Type())))
	}
	return nil
}
