package repository

import (
	"time"

	"github.com/Showrav193/Sportsworld/pkg/logger"
)

// Option applies a configuration option to a store.
type Option func(*options)

type options struct {
	seedDemo bool
	now      func() time.Time
	logger   logger.Logger
}

func defaultOptions() options {
	return options{now: time.Now, logger: logger.Nop()}
}

// WithSeedDemo writes the demo catalog (news, matches, products) when the
// store is first initialized. The admin account is always seeded.
func WithSeedDemo(enabled bool) Option {
	return func(o *options) { o.seedDemo = enabled }
}

// WithClock overrides the time source used for seeded timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
