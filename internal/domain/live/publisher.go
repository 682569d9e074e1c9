// Package live simulates the out-of-band live score feed.
//
// A Publisher owns its own subscription registry. On each tick it picks one id
// from its pool and may emit a single delta combining a minute increment (every
// Nth tick) and a goal for one side (small fixed probability). Listeners are
// called synchronously, in registration order, once per emitted delta.
package live

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Showrav193/Sportsworld/internal/domain/model"
	"github.com/Showrav193/Sportsworld/pkg/logger"
	"github.com/Showrav193/Sportsworld/pkg/metrics"
)

const (
	defaultInterval        = 5 * time.Second
	defaultMinuteEvery     = 6
	defaultGoalProbability = 0.05
)

// DefaultPool lists the ids tracked by the simulation out of the box.
var DefaultPool = []string{"s1", "s10", "s11"}

// Rand is the subset of *rand.Rand the publisher draws from.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Ticker abstracts time.Ticker so tests can drive Run with virtual time.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type wallTicker struct{ t *time.Ticker }

func (w wallTicker) C() <-chan time.Time { return w.t.C }
func (w wallTicker) Stop()               { w.t.Stop() }

// Listener receives emitted deltas.
type Listener func(model.Delta)

type registration struct {
	id     uint64
	fn     Listener
	active atomic.Bool
}

// Subscription is the capability returned by Subscribe; Cancel deregisters it.
type Subscription struct {
	p    *Publisher
	reg  *registration
	once sync.Once
}

// Cancel stops delivery to the listener. Safe to call more than once and from
// inside the listener itself.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.reg.active.Store(false)
		s.p.remove(s.reg.id)
	})
}

// Publisher emits simulated deltas to its subscribers.
type Publisher struct {
	mu        sync.Mutex // guards listeners, pool, tick, rng
	listeners []*registration
	nextID    uint64
	pool      []string
	tick      uint64
	rng       Rand

	emitMu sync.Mutex // serializes emissions

	interval        time.Duration
	minuteEvery     int
	goalProbability float64
	newTicker       func(time.Duration) Ticker

	logger logger.Logger
}

// NewPublisher creates a publisher with the storefront defaults.
func NewPublisher(opts ...Option) *Publisher {
	p := &Publisher{
		pool:            append([]string(nil), DefaultPool...),
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // simulation only
		interval:        defaultInterval,
		minuteEvery:     defaultMinuteEvery,
		goalProbability: defaultGoalProbability,
		newTicker:       func(d time.Duration) Ticker { return wallTicker{t: time.NewTicker(d)} },
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Nop()
	}
	return p
}

// Subscribe registers fn for every future delta.
func (p *Publisher) Subscribe(fn Listener) *Subscription {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextID++
	reg := &registration{id: p.nextID, fn: fn}
	reg.active.Store(true)
	p.listeners = append(p.listeners, reg)
	metrics.UpdateLiveSubscribers(len(p.listeners))
	return &Subscription{p: p, reg: reg}
}

func (p *Publisher) remove(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, reg := range p.listeners {
		if reg.id == id {
			p.listeners = append(p.listeners[:i:i], p.listeners[i+1:]...)
			break
		}
	}
	metrics.UpdateLiveSubscribers(len(p.listeners))
}

// SetPool replaces the ids eligible for updates. An empty pool silences the feed.
func (p *Publisher) SetPool(ids []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pool = append([]string(nil), ids...)
}

// Pool returns a copy of the current pool.
func (p *Publisher) Pool() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.pool...)
}

// Subscribers returns the number of registered listeners.
func (p *Publisher) Subscribers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.listeners)
}

// Tick advances the feed by one step and delivers the resulting delta, if any.
// It reports whether a delta was emitted.
func (p *Publisher) Tick(ctx context.Context) (model.Delta, bool) {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()

	delta, ok, listeners := p.next()
	if !ok {
		return model.Delta{}, false
	}

	metrics.RecordDeltaPublished()
	p.logger.Debug(ctx, "live delta",
		logger.String("id", delta.ID),
		logger.Int("minuteIncrement", delta.MinuteIncrement),
		logger.Int("scoreAIncrement", delta.ScoreAIncrement),
		logger.Int("scoreBIncrement", delta.ScoreBIncrement),
	)
	for _, reg := range listeners {
		if reg.active.Load() {
			reg.fn(delta)
		}
	}
	return delta, true
}

func (p *Publisher) next() (model.Delta, bool, []*registration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tick++
	if len(p.pool) == 0 {
		return model.Delta{}, false, nil
	}

	id := p.pool[p.rng.Intn(len(p.pool))]
	goal := p.rng.Float64() > 1-p.goalProbability
	minute := p.tick%uint64(p.minuteEvery) == 0 //nolint:gosec // minuteEvery > 0
	if !goal && !minute {
		return model.Delta{}, false, nil
	}

	d := model.Delta{ID: id}
	if minute {
		d.MinuteIncrement = 1
	}
	if goal {
		side := "B"
		if p.rng.Float64() > 0.5 {
			side = "A"
		}
		if side == "A" {
			d.ScoreAIncrement = 1
		} else {
			d.ScoreBIncrement = 1
		}
		d.LastEvent = fmt.Sprintf("GOAL! Team %s Scores", side)
	}
	return d, true, append([]*registration(nil), p.listeners...)
}

// Run ticks at the configured interval until ctx is done.
func (p *Publisher) Run(ctx context.Context) {
	t := p.newTicker(p.interval)
	defer t.Stop()

	p.logger.Info(ctx, "live feed started",
		logger.Duration("interval", p.interval),
		logger.Any("pool", p.Pool()),
	)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info(ctx, "live feed stopped")
			return
		case <-t.C():
			p.Tick(ctx)
		}
	}
}
