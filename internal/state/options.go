package state

import (
	"time"

	"github.com/Showrav193/Sportsworld/pkg/logger"
)

const defaultLiveMinute = 72

// Option applies a configuration option to the Synchronizer.
type Option func(*Synchronizer)

// WithDefaultLiveMinute sets the minute given to Live matches loaded without one.
func WithDefaultLiveMinute(minute int) Option {
	return func(s *Synchronizer) {
		if minute >= 0 {
			s.defaultLiveMinute = minute
		}
	}
}

// WithClock overrides the time source for created records.
func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the synchronizer.
func WithLogger(l logger.Logger) Option {
	return func(s *Synchronizer) {
		if l != nil {
			s.logger = l
		}
	}
}
