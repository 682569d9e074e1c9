package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/Showrav193/Sportsworld/internal/adapters/http/api"
	app "github.com/Showrav193/Sportsworld/internal/app"
	"github.com/Showrav193/Sportsworld/internal/config"
	"github.com/Showrav193/Sportsworld/pkg/logger"
	"github.com/Showrav193/Sportsworld/pkg/metrics"
)

// HTTP server timeout constants. Writes carry no timeout so score sockets
// are not cut off; handlers themselves are short.
const (
	readTimeout            = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	systemMetricsInterval  = 10 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (.env -> defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr since the logger isn't configured yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, loggerInstance); err != nil {
		loggerInstance.Error(ctx, "storefront exited", logger.Error(err))
		os.Exit(1)
	}
}

// run starts the service and serves HTTP until ctx is done.
func run(ctx context.Context, cfg *config.Config, l logger.Logger) error {
	svc := app.New(
		app.WithConfig(cfg),
		app.WithLogger(l),
	)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	apiServer, err := newAPIServer(svc, cfg, l)
	if err != nil {
		return err
	}
	defer apiServer.Hub().Close()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := newHTTPServer(cfg.Addr, apiServer.Handler(ctx))

	errCh := make(chan error, 1)
	go func() {
		l.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}
	l.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	l.Info(ctx, "server stopped")
	return nil
}

// newAPIServer mounts every surface over a started service.
func newAPIServer(svc *app.Service, cfg *config.Config, l logger.Logger) (*api.Server, error) {
	store, err := svc.Store()
	if err != nil {
		return nil, err
	}
	sync, err := svc.Synchronizer()
	if err != nil {
		return nil, err
	}
	writer, err := svc.Writer()
	if err != nil {
		return nil, err
	}
	return api.NewServer(
		api.WithPersistence(store),
		api.WithStorefront(sync),
		api.WithWriter(writer),
		api.WithStats(svc),
		api.WithCORSOrigins(cfg.CORSOrigins...),
		api.WithLogger(l.Named("http")),
	), nil
}

func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that refreshes service gauges.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}

// updateServiceMetrics updates service-level metrics. GetStats refreshes the
// queue gauge itself.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if pending, ok := stats["pendingWrites"].(map[string]int); ok {
		for collection, n := range pending {
			metrics.UpdatePendingWrites(collection, n)
		}
	}
	if n, ok := stats["writerCount"].(int); ok {
		metrics.UpdateWriterCount(n)
	}
}
