package live

import (
	"time"

	"github.com/Showrav193/Sportsworld/pkg/logger"
)

// Option applies a configuration option to the Publisher.
type Option func(*Publisher)

// WithInterval sets the wall-clock cadence used by Run.
func WithInterval(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithPool sets the ids eligible for simulated updates.
func WithPool(ids ...string) Option {
	return func(p *Publisher) {
		if len(ids) > 0 {
			p.pool = append([]string(nil), ids...)
		}
	}
}

// WithRand injects the randomness source, mainly for deterministic tests.
func WithRand(r Rand) Option {
	return func(p *Publisher) {
		if r != nil {
			p.rng = r
		}
	}
}

// WithTickerFactory replaces the wall-clock ticker used by Run.
func WithTickerFactory(f func(time.Duration) Ticker) Option {
	return func(p *Publisher) {
		if f != nil {
			p.newTicker = f
		}
	}
}

// WithMinuteEvery sets how many ticks pass between minute increments.
func WithMinuteEvery(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.minuteEvery = n
		}
	}
}

// WithGoalProbability sets the per-tick chance of a goal, in [0,1].
func WithGoalProbability(prob float64) Option {
	return func(p *Publisher) {
		if prob >= 0 && prob <= 1 {
			p.goalProbability = prob
		}
	}
}

// WithLogger sets a custom logger for the publisher.
func WithLogger(l logger.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}
