// Package service assembles the storefront: the durable store, the write-behind
// queue and writer pool, the optimistic synchronizer, the live score feed and
// the text generation client.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Showrav193/Sportsworld/internal/adapters/http/client"
	"github.com/Showrav193/Sportsworld/internal/adapters/mq/queue"
	"github.com/Showrav193/Sportsworld/internal/adapters/mq/worker"
	"github.com/Showrav193/Sportsworld/internal/adapters/repository"
	"github.com/Showrav193/Sportsworld/internal/adapters/textgen"
	"github.com/Showrav193/Sportsworld/internal/config"
	"github.com/Showrav193/Sportsworld/internal/domain/live"
	"github.com/Showrav193/Sportsworld/internal/domain/model"
	"github.com/Showrav193/Sportsworld/internal/state"
	"github.com/Showrav193/Sportsworld/pkg/logger"
	"github.com/Showrav193/Sportsworld/pkg/metrics"
)

// ErrNotStarted is returned by accessors used before Start.
var ErrNotStarted = errors.New("service not started")

// Service owns the storefront components and their lifecycle.
type Service struct {
	mu sync.RWMutex

	cfg      *config.Config
	liveOpts []live.Option

	// Core components
	store        repository.Store
	queue        *queue.InMemoryQueue
	synchronizer *state.Synchronizer
	pool         *worker.Pool
	feed         *live.Publisher
	writer       *textgen.Client

	// Live wiring
	feedSub    *live.Subscription
	unwatch    func()
	stopFeed   context.CancelFunc
	feedDone   chan struct{}
	stopWrites context.CancelFunc

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the process configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithStore uses an already opened store instead of the configured backend.
// The service closes it on Stop.
func WithStore(st repository.Store) Option {
	return func(s *Service) { s.store = st }
}

// WithLiveOptions appends publisher options after the configured ones.
func WithLiveOptions(opts ...live.Option) Option {
	return func(s *Service) { s.liveOpts = append(s.liveOpts, opts...) }
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Nothing is opened until Start.
func New(opts ...Option) *Service {
	s := &Service{cfg: config.New()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store, starts the writers, loads every snapshot and then
// starts the live feed.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	cfg := s.cfg
	s.logger.Info(ctx, "starting storefront service...")

	if s.store == nil {
		st, err := openStore(ctx, cfg, s.logger.Named("store"))
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		s.store = st
	}

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(cfg.WriteQueueSize))
	s.synchronizer = state.New(s.store, s.queue,
		state.WithDefaultLiveMinute(cfg.DefaultLiveMinute),
		state.WithLogger(s.logger.Named("state")),
	)
	s.pool = worker.NewPool(cfg.WriterCount, s.queue, s.store, s.synchronizer,
		worker.WithPoolLogger(s.logger.Named("writer")),
	)

	// Writers outlive the caller's context so Stop can drain them.
	writeCtx, stopWrites := context.WithCancel(context.WithoutCancel(ctx))
	s.stopWrites = stopWrites
	s.pool.Start(writeCtx)

	if err := s.synchronizer.Load(ctx); err != nil {
		_ = s.pool.Shutdown(ctx)
		stopWrites()
		_ = s.store.Close()
		return fmt.Errorf("load snapshots: %w", err)
	}

	s.writer = textgen.New(
		textgen.WithAPIKey(cfg.GeminiAPIKey),
		textgen.WithModel(cfg.GeminiModel),
		textgen.WithLogger(s.logger.Named("textgen")),
	)

	liveOpts := append([]live.Option{
		live.WithInterval(cfg.TickInterval()),
		live.WithPool(cfg.LivePool...),
		live.WithLogger(s.logger.Named("live")),
	}, s.liveOpts...)
	s.feed = live.NewPublisher(liveOpts...)
	s.feedSub = s.feed.Subscribe(s.applyDelta)
	s.unwatch = s.synchronizer.Watch(poolTracker(s.feed))

	feedCtx, stopFeed := context.WithCancel(writeCtx)
	s.stopFeed = stopFeed
	s.feedDone = make(chan struct{})
	go func() {
		defer close(s.feedDone)
		s.feed.Run(feedCtx)
	}()

	s.started = true
	s.logger.Info(ctx, "storefront service started",
		logger.Int("writers", s.pool.Size()),
		logger.Int("queueCapacity", s.queue.Capacity()),
		logger.Any("livePool", s.feed.Pool()),
	)
	return nil
}

// Stop stops the live feed, drains pending writes and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping storefront service...")

	s.feedSub.Cancel()
	s.unwatch()
	s.stopFeed()
	<-s.feedDone

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "writer pool did not drain", logger.Error(err))
	}
	s.stopWrites()

	if err := s.store.Close(); err != nil {
		s.logger.Error(ctx, "closing store failed", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "storefront service stopped")
}

// applyDelta merges one feed delta into the scores snapshot.
func (s *Service) applyDelta(d model.Delta) {
	outcome, err := s.synchronizer.ApplyDelta(d)
	if err != nil {
		s.logger.Warn(context.Background(), "live delta rejected", logger.String("id", d.ID), logger.Error(err))
		return
	}
	s.logger.Debug(context.Background(), "live delta merged", logger.String("id", d.ID), logger.String("outcome", string(outcome)))
}

// poolTracker keeps the feed pointed at Live matches. The board the watch
// starts with is skipped so the configured pool applies until the scores are
// next replaced. A match that finishes leaves the pool.
func poolTracker(feed *live.Publisher) func(state.ScoresEvent) {
	initial := true
	return func(ev state.ScoresEvent) {
		switch ev.Kind {
		case state.EventSnapshot:
			if initial {
				initial = false
				return
			}
			feed.SetPool(liveIDs(ev.Scores))
		case state.EventDelta:
			if ev.Match != nil && ev.Match.Status == model.StatusFinished {
				feed.SetPool(slices.DeleteFunc(feed.Pool(), func(id string) bool { return id == ev.Match.ID }))
			}
		}
	}
}

func liveIDs(scores []model.Match) []string {
	var ids []string
	for _, m := range scores {
		if m.Status == model.StatusLive {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// openStore picks the backend named by cfg. A remote URL wins over the
// local backends.
func openStore(ctx context.Context, cfg *config.Config, l logger.Logger) (repository.Store, error) {
	if cfg.RemoteURL != "" {
		c, err := client.New(cfg.RemoteURL, client.WithLogger(l))
		if err != nil {
			return nil, err
		}
		l.Info(ctx, "using remote store", logger.String("url", cfg.RemoteURL))
		return c, nil
	}

	opts := []repository.Option{
		repository.WithSeedDemo(cfg.SeedDemo),
		repository.WithLogger(l),
	}
	l.Info(ctx, "using store backend", logger.String("backend", cfg.StoreBackend))
	switch cfg.StoreBackend {
	case config.BackendFile:
		return repository.OpenFile(ctx, cfg.DataPath, opts...)
	case config.BackendSQLite:
		return repository.OpenSQL(ctx, repository.DriverSQLite, cfg.DataPath, opts...)
	case config.BackendPostgres:
		return repository.OpenSQL(ctx, repository.DriverPostgres, cfg.DatabaseURL, opts...)
	case config.BackendS3:
		return repository.OpenS3(ctx, repository.S3Config{
			Bucket:          cfg.S3Bucket,
			Key:             cfg.S3Key,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		}, opts...)
	default:
		return nil, fmt.Errorf("%w: unknown store_backend %q", config.ErrInvalidConfig, cfg.StoreBackend)
	}
}

// Store returns the durable store.
func (s *Service) Store() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// Synchronizer returns the optimistic state.
func (s *Service) Synchronizer() (*state.Synchronizer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.synchronizer, nil
}

// Writer returns the text generation client.
func (s *Service) Writer() (*textgen.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.writer, nil
}

// Feed returns the live score publisher.
func (s *Service) Feed() (*live.Publisher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.feed, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":      s.started,
		"writerCount":  s.cfg.WriterCount,
		"queueSize":    s.cfg.WriteQueueSize,
		"storeBackend": s.cfg.StoreBackend,
		"remoteStore":  s.cfg.RemoteURL != "",
		"textgen":      s.cfg.GeminiAPIKey != "",
	}

	if s.started {
		queueLen := s.queue.Len(context.Background())
		status := s.synchronizer.Status()

		pending := make(map[string]int, len(status.Collections))
		for name, cs := range status.Collections {
			pending[name] = cs.Pending
		}
		stats["queueLength"] = queueLen
		stats["phase"] = status.Phase
		stats["syncing"] = status.Syncing
		stats["pendingWrites"] = pending
		stats["livePool"] = s.feed.Pool()
		stats["liveSubscribers"] = s.feed.Subscribers()

		metrics.UpdateQueueSize(queueLen)
	}

	return stats
}
