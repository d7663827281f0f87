package events

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/efreitasn/matchingengine/internal/domain"
)

// MessageWriter is the subset of *kafka.Writer the consumer needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter returns a synchronous writer that waits for all in-sync
// replicas to acknowledge each event.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		BatchTimeout: 10 * time.Millisecond,
	}
}

// KafkaConsumer forwards dispatched events to a Kafka topic.
type KafkaConsumer struct {
	writer MessageWriter
}

func NewKafkaConsumer(w MessageWriter) *KafkaConsumer {
	return &KafkaConsumer{writer: w}
}

// Consume implements Consumer.
func (k *KafkaConsumer) Consume(ctx context.Context, ev domain.Event) error {
	value, err := Encode(ev)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(ev.Type())},
		},
	}
	if key := PartitionKey(ev); key != "" {
		msg.Key = []byte(key)
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s to kafka: %w", ev.Type(), err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (k *KafkaConsumer) Close() error {
	return k.writer.Close()
}
