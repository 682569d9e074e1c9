package api

import "github.com/Showrav193/Sportsworld/pkg/logger"

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithPersistence mounts the persistence API under /api.
func WithPersistence(p Persistence) Option {
	return func(s *Server) { s.store = p }
}

// WithStorefront mounts the storefront API under /app and the live channel.
func WithStorefront(sf Storefront) Option {
	return func(s *Server) { s.storefront = sf }
}

// WithWriter enables article generation.
func WithWriter(w Writer) Option {
	return func(s *Server) { s.writer = w }
}

// WithStats mounts /stats.
func WithStats(p StatsProvider) Option {
	return func(s *Server) { s.stats = p }
}

// WithCORSOrigins restricts the allowed origins. Empty keeps "*".
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
