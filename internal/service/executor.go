package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/efreitasn/matchingengine/internal/domain"
	"github.com/efreitasn/matchingengine/internal/metrics"
)

// Handler applies one command. Errors are logged by the executor and do
// not stop the worker.
type Handler interface {
	Handle(ctx context.Context, cmd domain.Command) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, cmd domain.Command) error

func (f HandlerFunc) Handle(ctx context.Context, cmd domain.Command) error {
	return f(ctx, cmd)
}

// ExecutorConfig sizes the worker pool.
type ExecutorConfig struct {
	Workers   int
	QueueSize int
}

type task struct {
	cmd     domain.Command
	handler Handler
}

// Executor runs commands on a fixed pool of sequential workers. Every
// instrument is pinned, on its first command, to the next worker in
// round-robin order, so one instrument's commands run one at a time in
// submission order while different instruments run in parallel.
type Executor struct {
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu       sync.RWMutex
	handlers map[domain.CommandType]Handler
	closed   bool

	queues  []chan task
	closing chan struct{}
	once    sync.Once

	assignments sync.Map // instrument id → worker index
	assignMu    sync.Mutex
	next        atomic.Uint64

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewExecutor starts cfg.Workers workers, each with a queue of
// cfg.QueueSize pending commands.
func NewExecutor(cfg ExecutorConfig, logger *slog.Logger, m *metrics.Metrics) *Executor {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Executor{
		logger:   logger,
		metrics:  m,
		handlers: make(map[domain.CommandType]Handler),
		queues:   make([]chan task, cfg.Workers),
		closing:  make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range e.queues {
		i := i
		q := make(chan task, cfg.QueueSize)
		e.queues[i] = q
		g.Go(func() error {
			e.work(gctx, i, q)
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(e.done)
	}()
	return e
}

// Register binds h to commands of type t, replacing any previous handler.
func (e *Executor) Register(t domain.CommandType, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.handlers[t] = h
}

// Submit queues cmd on the worker owning its instrument. It blocks only
// while that worker's queue is full. Submitting a command type with no
// registered handler is a wiring defect and panics.
func (e *Executor) Submit(ctx context.Context, cmd domain.Command) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return domain.ErrExecutorClosed
	}
	h, ok := e.handlers[cmd.CommandType()]
	if !ok {
		panic(fmt.Sprintf("executor: no handler registered for command type %q", cmd.CommandType()))
	}

	q := e.queues[e.assign(cmd.InstrumentID())]
	select {
	case q <- task{cmd: cmd, handler: h}:
		return nil
	case <-e.closing:
		return domain.ErrExecutorClosed
	case <-ctx.Done():
		return fmt.Errorf("submit %s: %w", cmd.CommandType(), ctx.Err())
	}
}

// WorkerFor reports the worker an instrument is pinned to, if any.
func (e *Executor) WorkerFor(instrumentID string) (int, bool) {
	v, ok := e.assignments.Load(instrumentID)
	if !ok {
		return 0, false
	}
	return v.(int), true
}

// Shutdown stops accepting commands and waits for the workers to drain
// their queues. If ctx ends first, the workers' context is cancelled and
// whatever is still queued is dropped.
func (e *Executor) Shutdown(ctx context.Context) error {
	e.once.Do(func() {
		close(e.closing)

		e.mu.Lock()
		e.closed = true
		for _, q := range e.queues {
			close(q)
		}
		e.mu.Unlock()
	})

	select {
	case <-e.done:
		e.cancel()
		e.logger.Info("executor drained")
		return nil
	case <-ctx.Done():
	}

	e.cancel()
	e.logger.Warn("executor shutdown grace period elapsed, cancelling workers")
	return fmt.Errorf("executor shutdown: %w", ctx.Err())
}

// assign returns the worker pinned to instrumentID, pinning it to the
// next worker in round-robin order on first sight.
func (e *Executor) assign(instrumentID string) int {
	if v, ok := e.assignments.Load(instrumentID); ok {
		return v.(int)
	}

	e.assignMu.Lock()
	defer e.assignMu.Unlock()

	if v, ok := e.assignments.Load(instrumentID); ok {
		return v.(int)
	}
	w := int((e.next.Add(1) - 1) % uint64(len(e.queues)))
	e.assignments.Store(instrumentID, w)
	e.metrics.InstrumentAssigned()
	e.logger.Debug("instrument assigned to worker",
		slog.String("instrument_id", instrumentID),
		slog.Int("worker", w),
	)
	return w
}

func (e *Executor) work(ctx context.Context, id int, q <-chan task) {
	for {
		select {
		case <-ctx.Done():
			if n := len(q); n > 0 {
				e.logger.Warn("worker stopped with queued commands",
					slog.Int("worker", id),
					slog.Int("dropped", n),
				)
			}
			return
		case t, ok := <-q:
			if !ok {
				return
			}
			e.run(ctx, id, t)
		}
	}
}

// run invokes the handler, confining errors and panics to this command.
func (e *Executor) run(ctx context.Context, worker int, t task) {
	cmdType := string(t.cmd.CommandType())
	e.metrics.CommandExecuted(cmdType)

	defer func() {
		if r := recover(); r != nil {
			e.metrics.CommandFailed(cmdType)
			e.logger.Error("command handler panicked",
				slog.String("command", cmdType),
				slog.String("instrument_id", t.cmd.InstrumentID()),
				slog.Int("worker", worker),
				slog.Any("panic", r),
			)
		}
	}()

	if err := t.handler.Handle(ctx, t.cmd); err != nil {
		e.metrics.CommandFailed(cmdType)
		e.logger.Error("command handler failed",
			slog.String("command", cmdType),
			slog.String("instrument_id", t.cmd.InstrumentID()),
			slog.Int("worker", worker),
			slog.String("error", err.Error()),
		)
	}
}
