// Package events distributes domain events from the executor workers to a
// single subscribed consumer.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"

	"github.com/efreitasn/matchingengine/internal/domain"
	"github.com/efreitasn/matchingengine/internal/metrics"
)

// Consumer receives dispatched events one at a time, in publish order.
type Consumer interface {
	Consume(ctx context.Context, ev domain.Event) error
}

// ConsumerFunc adapts a function to Consumer.
type ConsumerFunc func(ctx context.Context, ev domain.Event) error

func (f ConsumerFunc) Consume(ctx context.Context, ev domain.Event) error {
	return f(ctx, ev)
}

// Broker is an unbounded FIFO of events drained by one dispatch goroutine
// into the currently subscribed consumer.
//
// Subscribe may race with an in-flight dispatch: the event being handed
// out goes to whichever consumer is registered when it is dequeued.
type Broker struct {
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	cond    *sync.Cond
	queue   *queue.Queue
	closed  bool
	stopped bool

	consumer atomic.Pointer[Consumer]

	startOnce sync.Once
	started   atomic.Bool
	done      chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

// NewBroker creates a broker with no consumer. Dispatch starts on the
// first Subscribe.
func NewBroker(logger *slog.Logger, m *metrics.Metrics) *Broker {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Broker{
		logger:  logger,
		metrics: m,
		queue:   queue.New(),
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Publish enqueues ev. It fails with domain.ErrPublishInterrupted when ctx
// is already done and with domain.ErrBrokerClosed after Shutdown.
func (b *Broker) Publish(ctx context.Context, ev domain.Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("publish %s: %w: %w", ev.Type(), domain.ErrPublishInterrupted, err)
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("publish %s: %w", ev.Type(), domain.ErrBrokerClosed)
	}
	b.queue.Add(ev)
	b.cond.Signal()
	b.mu.Unlock()

	b.metrics.EventPublished(string(ev.Type()))
	return nil
}

// Subscribe makes c the active consumer, replacing any previous one, and
// starts the dispatch goroutine if it is not running yet. A nil c detaches
// the current consumer; events then wait in the queue.
func (b *Broker) Subscribe(c Consumer) {
	b.mu.Lock()
	if c == nil {
		b.consumer.Store(nil)
	} else {
		b.consumer.Store(&c)
	}
	b.cond.Broadcast()
	b.mu.Unlock()

	b.startOnce.Do(func() {
		b.started.Store(true)
		go b.dispatch()
	})
}

// Clear drops every queued event and detaches the consumer.
func (b *Broker) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.queue = queue.New()
	b.consumer.Store(nil)
}

// Len returns the number of events waiting for dispatch.
func (b *Broker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.queue.Length()
}

// Shutdown stops accepting events and lets the dispatch goroutine drain
// the queue. If ctx ends first, the remaining events are dropped and the
// context handed to the consumer is cancelled.
func (b *Broker) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	b.closed = true
	b.cond.Broadcast()
	b.mu.Unlock()

	if !b.started.Load() {
		b.cancel()
		return nil
	}

	select {
	case <-b.done:
		b.cancel()
		b.logger.Info("event broker drained")
		return nil
	case <-ctx.Done():
	}

	b.mu.Lock()
	b.stopped = true
	dropped := b.queue.Length()
	b.queue = queue.New()
	b.cond.Broadcast()
	b.mu.Unlock()
	b.cancel()

	b.logger.Warn("event broker shutdown grace period elapsed",
		slog.Int("dropped_events", dropped),
	)
	return fmt.Errorf("event broker shutdown: %w", ctx.Err())
}

func (b *Broker) dispatch() {
	defer close(b.done)
	for {
		ev, ok := b.next()
		if !ok {
			return
		}
		b.deliver(ev)
	}
}

// next blocks until an event and a consumer are both available. It
// returns false once the broker is stopped, or closed with nothing left.
func (b *Broker) next() (domain.Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for !b.stopped && (b.queue.Length() == 0 || b.consumer.Load() == nil) {
		if b.closed && (b.queue.Length() == 0 || b.consumer.Load() == nil) {
			return nil, false
		}
		b.cond.Wait()
	}
	if b.stopped {
		return nil, false
	}
	return b.queue.Remove().(domain.Event), true
}

func (b *Broker) deliver(ev domain.Event) {
	c := b.consumer.Load()
	if c == nil {
		b.logger.Warn("event dropped, no consumer subscribed",
			slog.String("event", string(ev.Type())),
		)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			b.metrics.ConsumerFailed()
			b.logger.Error("event consumer panicked",
				slog.String("event", string(ev.Type())),
				slog.Any("panic", r),
			)
		}
	}()

	if err := (*c).Consume(b.ctx, ev); err != nil {
		b.metrics.ConsumerFailed()
		b.logger.Error("event consumer failed",
			slog.String("event", string(ev.Type())),
			slog.String("error", err.Error()),
		)
		return
	}
	b.metrics.EventDispatched(string(ev.Type()))
}
