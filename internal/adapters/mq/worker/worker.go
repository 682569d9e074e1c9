// Package worker drains durable write requests into the store.
//
// Writes are fire-and-forget from the caller's point of view: each request is
// executed once, its outcome handed to a Completer, and never retried. With more
// than one worker, two writes to the same collection may finish out of order.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Showrav193/Sportsworld/internal/adapters/mq/queue"
	"github.com/Showrav193/Sportsworld/internal/domain/model"
	"github.com/Showrav193/Sportsworld/pkg/logger"
	"github.com/Showrav193/Sportsworld/pkg/metrics"
)

const (
	defaultWorkerCount  = 4
	poolShutdownTimeout = 30 * time.Second
)

// Store is the durable side a worker writes to.
type Store interface {
	Replace(ctx context.Context, c model.Collection, records any) error
	AppendOrder(ctx context.Context, o model.Order) error
	RegisterUser(ctx context.Context, u model.User) error
	SetUserBlocked(ctx context.Context, userID string, blocked bool) error
}

// Completer receives the outcome of every executed request.
type Completer interface {
	Complete(ctx context.Context, r queue.Request, err error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, r queue.Request, err error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, r queue.Request, err error) { //nolint:gocritic // hugeParam
	f(ctx, r, err)
}

// Queue defines how workers receive requests.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Request
}

// InMemoryWorker executes write requests one at a time.
type InMemoryWorker struct {
	queue     Queue
	store     Store
	completer Completer
	name      string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, store Store, completer Completer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		store:     store,
		completer: completer,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run executes requests until the queue is drained and closed, ctx is done or
// Shutdown is called.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	reqs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case r, ok := <-reqs:
			if !ok {
				return
			}
			w.process(ctx, r)
		}
	}
}

// Shutdown stops the worker without waiting for the queue to drain.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, r queue.Request) { //nolint:gocritic // hugeParam
	// in-flight writes are never cancelled
	wctx := context.WithoutCancel(ctx)

	err := w.execute(wctx, r)
	if err != nil {
		w.logger.Error(ctx, "durable write failed",
			logger.String("request", r.ID),
			logger.String("collection", r.Collection.String()),
			logger.String("op", string(r.Op)),
			logger.Duration("queued", time.Since(r.EnqueuedAt)),
			logger.Error(err),
		)
	} else {
		w.logger.Debug(ctx, "durable write done",
			logger.String("request", r.ID),
			logger.String("collection", r.Collection.String()),
			logger.String("op", string(r.Op)),
		)
	}
	if w.completer != nil {
		w.completer.Complete(wctx, r, err)
	}
}

func (w *InMemoryWorker) execute(ctx context.Context, r queue.Request) error { //nolint:gocritic // hugeParam
	switch r.Op {
	case queue.OpReplace:
		return w.store.Replace(ctx, r.Collection, r.Records)
	case queue.OpAppendOrder:
		return w.store.AppendOrder(ctx, r.Order)
	case queue.OpRegisterUser:
		return w.store.RegisterUser(ctx, r.User)
	case queue.OpSetUserBlocked:
		return w.store.SetUserBlocked(ctx, r.Block.UserID, r.Block.IsBlocked)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, r.Op)
	}
}

// Pool manages multiple workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	logger logger.Logger
}

// NewPool creates a new worker pool. A count below one selects the default.
func NewPool(workerCount int, q Queue, store Store, completer Completer, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(pool)
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(q, store, completer,
			WithName("writer-"+strconv.Itoa(i)),
			WithLogger(pool.logger),
		)
	}
	metrics.UpdateWriterCount(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "writer pool started", logger.Int("workers", len(p.workers)))
}

// Shutdown closes the queue and waits for the workers to drain it, bounded by
// ctx and the pool timeout.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut int
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut++
			p.logger.Warn(ctx, "writer drain timed out", logger.Int("worker_id", i))
		}
	}
	if timedOut > 0 {
		return fmt.Errorf("%d writers did not drain: %w", timedOut, shutdownCtx.Err())
	}
	return nil
}
