// Package state keeps the in-memory snapshots of the storefront and keeps them
// in step with the durable store.
//
// Every mutation is applied to memory first and becomes visible to readers
// immediately. The matching durable write is queued and executed later by the
// writer pool; its failure is logged and recorded per collection but never
// rolled back or retried, so memory and store may diverge until the next
// successful whole-collection replace. Live-score deltas are merged into memory
// only and are never written.
package state

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Showrav193/Sportsworld/internal/adapters/mq/queue"
	"github.com/Showrav193/Sportsworld/internal/domain/merge"
	"github.com/Showrav193/Sportsworld/internal/domain/model"
	"github.com/Showrav193/Sportsworld/pkg/logger"
	"github.com/Showrav193/Sportsworld/pkg/metrics"
)

// Phase is the lifecycle state of a Synchronizer.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseLoading
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Loader reads whole collections from the durable store.
type Loader interface {
	Load(ctx context.Context, c model.Collection, dst any) error
}

// Enqueuer accepts durable write requests without blocking.
type Enqueuer interface {
	Enqueue(ctx context.Context, r queue.Request) error
}

// WriteFailure describes the most recent failed durable write of a collection.
type WriteFailure struct {
	RequestID string    `json:"requestId"`
	Op        queue.Op  `json:"op"`
	Message   string    `json:"error"`
	At        time.Time `json:"at"`

	err error
}

func (f *WriteFailure) Error() string { return f.Message }

// Unwrap returns the underlying write error.
func (f *WriteFailure) Unwrap() error { return f.err }

// Synchronizer owns the five collection snapshots.
type Synchronizer struct {
	loader Loader
	writes Enqueuer

	mu       sync.RWMutex
	phase    Phase
	news     []model.Article
	scores   []model.Match
	products []model.Product
	orders   []model.Order
	users    []model.User
	pending  map[model.Collection]int
	failures map[model.Collection]*WriteFailure

	watchMu  sync.Mutex // serializes watcher notification
	watchers []*watcher
	watchSeq uint64

	defaultLiveMinute int
	now               func() time.Time
	logger            logger.Logger
}

// New creates an uninitialized Synchronizer.
func New(loader Loader, writes Enqueuer, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		loader:            loader,
		writes:            writes,
		pending:           make(map[model.Collection]int),
		failures:          make(map[model.Collection]*WriteFailure),
		defaultLiveMinute: defaultLiveMinute,
		now:               time.Now,
		logger:            logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches all five collections in parallel. On failure the synchronizer
// returns to uninitialized and nothing is replaced.
func (s *Synchronizer) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.phase == PhaseLoading {
		s.mu.Unlock()
		return ErrLoading
	}
	prev := s.phase
	s.phase = PhaseLoading
	s.mu.Unlock()

	var (
		news     []model.Article
		scores   []model.Match
		products []model.Product
		orders   []model.Order
		users    []model.User
	)
	g, gctx := errgroup.WithContext(ctx)
	load := func(c model.Collection, dst any) {
		g.Go(func() error {
			if err := s.loader.Load(gctx, c, dst); err != nil {
				return fmt.Errorf("load %s: %w", c, err)
			}
			return nil
		})
	}
	load(model.CollectionNews, &news)
	load(model.CollectionScores, &scores)
	load(model.CollectionProducts, &products)
	load(model.CollectionOrders, &orders)
	load(model.CollectionUsers, &users)

	if err := g.Wait(); err != nil {
		s.mu.Lock()
		if prev == PhaseReady {
			s.phase = PhaseReady
		} else {
			s.phase = PhaseUninitialized
		}
		s.mu.Unlock()
		s.logger.Error(ctx, "initial load failed", logger.Error(err))
		return err
	}

	scores = s.normalizeScores(scores)

	s.mu.Lock()
	s.news, s.scores, s.products, s.orders, s.users = news, scores, products, orders, users
	s.phase = PhaseReady
	s.updateSizes()
	s.unlockAndNotify(ScoresEvent{Kind: EventSnapshot, Scores: model.CloneAll(scores)})

	s.logger.Info(ctx, "snapshots loaded",
		logger.Int("news", len(news)),
		logger.Int("scores", len(scores)),
		logger.Int("products", len(products)),
		logger.Int("orders", len(orders)),
		logger.Int("users", len(users)),
	)
	return nil
}

// normalizeScores gives Live matches without a minute the default minute.
func (s *Synchronizer) normalizeScores(in []model.Match) []model.Match {
	out := slices.Clone(in)
	for i := range out {
		if out[i].Status == model.StatusLive && out[i].CurrentMinute == nil {
			m := s.defaultLiveMinute
			out[i].CurrentMinute = &m
		}
	}
	return out
}

// Phase returns the current lifecycle phase.
func (s *Synchronizer) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// News returns a copy of the articles, newest first.
func (s *Synchronizer) News() []model.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneAll(s.news)
}

// Scores returns a copy of the live-score board.
func (s *Synchronizer) Scores() []model.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneAll(s.scores)
}

// Products returns a copy of the catalog.
func (s *Synchronizer) Products() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneAll(s.products)
}

// Orders returns a copy of the placed orders, newest first.
func (s *Synchronizer) Orders() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneAll(s.orders)
}

// Users returns a copy of the accounts in registration order.
func (s *Synchronizer) Users() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneAll(s.users)
}

// Snapshot returns the current records of c.
func (s *Synchronizer) Snapshot(c model.Collection) (any, error) {
	switch c {
	case model.CollectionNews:
		return s.News(), nil
	case model.CollectionScores:
		return s.Scores(), nil
	case model.CollectionProducts:
		return s.Products(), nil
	case model.CollectionOrders:
		return s.Orders(), nil
	case model.CollectionUsers:
		return s.Users(), nil
	default:
		return nil, fmt.Errorf("%w: unknown collection %q", model.ErrValidation, c)
	}
}

// Replace swaps a whole replaceable collection. records must be the slice type
// of c: []model.Article, []model.Match or []model.Product. Validation failures
// leave memory untouched.
func (s *Synchronizer) Replace(ctx context.Context, c model.Collection, records any) error {
	if !c.Replaceable() {
		return fmt.Errorf("%w: %s", ErrNotReplaceable, c)
	}

	s.mu.Lock()
	if s.phase != PhaseReady {
		s.mu.Unlock()
		return ErrNotReady
	}

	var (
		err  error
		req  queue.Request
		size int
		ev   *ScoresEvent
	)
	switch c {
	case model.CollectionNews:
		var news []model.Article
		if news, err = typed[model.Article](c, records); err == nil {
			err = validateNews(news)
		}
		if err == nil {
			s.news, size = news, len(news)
			req = queue.NewReplace(c, news)
		}
	case model.CollectionScores:
		var scores []model.Match
		if scores, err = typed[model.Match](c, records); err == nil {
			err = validateScores(s.scores, scores)
		}
		if err == nil {
			s.scores, size = scores, len(scores)
			req = queue.NewReplace(c, scores)
			ev = &ScoresEvent{Kind: EventSnapshot, Scores: model.CloneAll(scores)}
		}
	case model.CollectionProducts:
		var products []model.Product
		if products, err = typed[model.Product](c, records); err == nil {
			err = validateProducts(products)
		}
		if err == nil {
			s.products, size = products, len(products)
			req = queue.NewReplace(c, products)
		}
	}
	if err != nil {
		s.mu.Unlock()
		metrics.RecordValidationRejection(c.String())
		return err
	}
	s.pending[c]++
	if ev != nil {
		s.unlockAndNotify(*ev)
	} else {
		s.mu.Unlock()
	}

	metrics.RecordOptimisticUpdate(c.String(), "replace")
	metrics.UpdateSnapshotSize(c.String(), size)
	s.dispatch(ctx, req)
	return nil
}

// typed deep-copies records into a fresh slice of T so later caller edits
// cannot leak into the snapshot.
func typed[T model.Cloner[T]](c model.Collection, records any) ([]T, error) {
	in, ok := records.([]T)
	if !ok {
		var zero []T
		return nil, fmt.Errorf("%w: %s expects %T, got %T", model.ErrValidation, c, zero, records)
	}
	out := model.CloneAll(in)
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func validateNews(news []model.Article) error {
	if err := model.ValidateIDs(news, func(a model.Article) string { return a.ID }); err != nil {
		return err
	}
	for _, a := range news {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func validateProducts(products []model.Product) error {
	if err := model.ValidateIDs(products, func(p model.Product) string { return p.ID }); err != nil {
		return err
	}
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// validateScores checks each match and refuses to move a known match's status
// backwards.
func validateScores(current, next []model.Match) error {
	if err := model.ValidateIDs(next, func(m model.Match) string { return m.ID }); err != nil {
		return err
	}
	known := make(map[string]model.Status, len(current))
	for _, m := range current {
		known[m.ID] = m.Status
	}
	for _, m := range next {
		if err := m.Validate(); err != nil {
			return err
		}
		if prev, ok := known[m.ID]; ok && prev.Regresses(m.Status) {
			return fmt.Errorf("%w: match %s cannot move from %s back to %s", model.ErrValidation, m.ID, prev, m.Status)
		}
	}
	return nil
}

// ApplyDelta merges a live delta into the scores snapshot. It never writes to
// the store.
func (s *Synchronizer) ApplyDelta(d model.Delta) (merge.Outcome, error) {
	if err := d.Validate(); err != nil {
		return merge.OutcomeNoop, err
	}

	s.mu.Lock()
	if s.phase != PhaseReady {
		s.mu.Unlock()
		return merge.OutcomeNoop, ErrNotReady
	}
	next, outcome := merge.Apply(s.scores, d)
	metrics.RecordDeltaMerged(string(outcome))
	if outcome != merge.OutcomeApplied {
		s.mu.Unlock()
		return outcome, nil
	}
	s.scores = next

	var match model.Match
	for _, m := range next {
		if m.ID == d.ID {
			match = m.Clone()
			break
		}
	}
	metrics.RecordOptimisticUpdate(model.CollectionScores.String(), "delta")
	s.unlockAndNotify(ScoresEvent{Kind: EventDelta, Delta: &d, Match: &match})
	return outcome, nil
}

// dispatch queues a durable write. A request the queue refuses is completed
// immediately as failed.
func (s *Synchronizer) dispatch(ctx context.Context, r queue.Request) { //nolint:gocritic // hugeParam
	s.mu.RLock()
	pending := s.pending[r.Collection]
	s.mu.RUnlock()
	metrics.UpdatePendingWrites(r.Collection.String(), pending)

	if err := s.writes.Enqueue(ctx, r); err != nil {
		s.Complete(ctx, r, fmt.Errorf("%w: %w", ErrWriteDropped, err))
	}
}

// Complete records the outcome of a durable write. It satisfies the writer
// pool's completion contract.
func (s *Synchronizer) Complete(ctx context.Context, r queue.Request, err error) { //nolint:gocritic // hugeParam
	s.mu.Lock()
	if s.pending[r.Collection] > 0 {
		s.pending[r.Collection]--
	}
	pending := s.pending[r.Collection]
	switch {
	case err != nil:
		s.failures[r.Collection] = &WriteFailure{RequestID: r.ID, Op: r.Op, Message: err.Error(), At: s.now().UTC(), err: err}
	case r.Op == queue.OpReplace:
		// a successful full replace brings the store back in line
		delete(s.failures, r.Collection)
	}
	s.mu.Unlock()

	metrics.UpdatePendingWrites(r.Collection.String(), pending)
	if err != nil {
		s.logger.Error(ctx, "durable write failed; memory and store may diverge",
			logger.String("collection", r.Collection.String()),
			logger.String("op", string(r.Op)),
			logger.String("request", r.ID),
			logger.Error(err),
		)
	}
}

// Syncing reports whether any durable write is still outstanding.
func (s *Synchronizer) Syncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.pending {
		if n > 0 {
			return true
		}
	}
	return false
}

// Pending returns the outstanding durable writes of c.
func (s *Synchronizer) Pending(c model.Collection) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending[c]
}

// LastWriteError returns the most recent failed durable write of c, or nil.
func (s *Synchronizer) LastWriteError(c model.Collection) *WriteFailure {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if f, ok := s.failures[c]; ok {
		cp := *f
		return &cp
	}
	return nil
}

// CollectionStatus summarizes one collection for status reporting.
type CollectionStatus struct {
	Records   int           `json:"records"`
	Pending   int           `json:"pending"`
	LastError *WriteFailure `json:"lastError,omitempty"`
}

// Status is a point-in-time view of the synchronizer.
type Status struct {
	Phase       string                      `json:"phase"`
	Syncing     bool                        `json:"syncing"`
	Collections map[string]CollectionStatus `json:"collections"`
}

// Status reports lifecycle, pending writes and last failures per collection.
func (s *Synchronizer) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{Phase: s.phase.String(), Collections: make(map[string]CollectionStatus)}
	sizes := s.sizes()
	for _, c := range model.Collections() {
		cs := CollectionStatus{Records: sizes[c], Pending: s.pending[c]}
		if f, ok := s.failures[c]; ok {
			cp := *f
			cs.LastError = &cp
		}
		if cs.Pending > 0 {
			st.Syncing = true
		}
		st.Collections[c.String()] = cs
	}
	return st
}

func (s *Synchronizer) sizes() map[model.Collection]int {
	return map[model.Collection]int{
		model.CollectionNews:     len(s.news),
		model.CollectionScores:   len(s.scores),
		model.CollectionProducts: len(s.products),
		model.CollectionOrders:   len(s.orders),
		model.CollectionUsers:    len(s.users),
	}
}

func (s *Synchronizer) updateSizes() {
	for c, n := range s.sizes() {
		metrics.UpdateSnapshotSize(c.String(), n)
	}
}
