package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	app "github.com/Showrav193/Sportsworld/internal/app"
	"github.com/Showrav193/Sportsworld/internal/config"
	"github.com/Showrav193/Sportsworld/pkg/logger"
	"github.com/Showrav193/Sportsworld/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.New()
	cfg.DataPath = filepath.Join(t.TempDir(), "db.json")
	cfg.WriterCount = 2
	cfg.TickIntervalMS = int(time.Hour / time.Millisecond)
	return cfg
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("SPORTSWORLD_ADDR", ":8080")
			_ = os.Setenv("SPORTSWORLD_WRITER_COUNT", "3")
			defer func() {
				_ = os.Unsetenv("SPORTSWORLD_ADDR")
				_ = os.Unsetenv("SPORTSWORLD_WRITER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.WriterCount, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When building the API over a service that is not started", func() {
			_, err := newAPIServer(app.New(), config.New(), logger.Nop())

			convey.Convey("Then it should refuse", func() {
				convey.So(err, convey.ShouldEqual, app.ErrNotStarted)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			srv := newHTTPServer(":0", http.NotFoundHandler())

			convey.Convey("Then timeouts should be set", func() {
				convey.So(srv.ReadHeaderTimeout, convey.ShouldEqual, readHeaderTimeout)
				convey.So(srv.ReadTimeout, convey.ShouldEqual, readTimeout)
				convey.So(srv.WriteTimeout, convey.ShouldEqual, time.Duration(0))
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given a started service", t, func() {
		ctx := context.Background()
		cfg := testConfig(t)
		svc := app.New(app.WithConfig(cfg), app.WithLogger(logger.Nop()))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		apiServer, err := newAPIServer(svc, cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		defer apiServer.Hub().Close()

		ts := httptest.NewServer(apiServer.Handler(ctx))
		defer ts.Close()

		convey.Convey("Then every surface should be mounted", func() {
			for _, path := range []string{"/healthz", "/stats", "/api/news", "/app/news", "/app/status", "/openapi.yaml"} {
				resp, err := http.Get(ts.URL + path)
				convey.So(err, convey.ShouldBeNil)
				_ = resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("And service metrics should update without panicking", func() {
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
			convey.So(func() { updateSystemMetrics() }, convey.ShouldNotPanic)
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When the metrics updaters are cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{}, 2)
			go func() { startSystemMetricsUpdater(ctx); done <- struct{}{} }()
			go func() { startServiceMetricsUpdater(ctx, app.New()); done <- struct{}{} }()
			cancel()

			convey.Convey("Then they should return", func() {
				for range 2 {
					select {
					case <-done:
					case <-time.After(time.Second):
						t.Fatal("metrics updater did not stop")
					}
				}
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.So(metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry())), convey.ShouldNotBeNil)
		})
	})
}
