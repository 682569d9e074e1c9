package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/Showrav193/Sportsworld/internal/app"
	"github.com/Showrav193/Sportsworld/internal/config"
	"github.com/Showrav193/Sportsworld/internal/domain/live"
	"github.com/Showrav193/Sportsworld/internal/domain/model"
	"github.com/Showrav193/Sportsworld/pkg/logger"
)

// steadyRand never scores and always picks the first pool id.
type steadyRand struct{}

func (steadyRand) Float64() float64 { return 0 }
func (steadyRand) Intn(int) int     { return 0 }

func testConfig(t *testing.T) *config.Config {
	cfg := config.New()
	cfg.DataPath = filepath.Join(t.TempDir(), "db.json")
	cfg.WriterCount = 2
	cfg.TickIntervalMS = int(time.Hour / time.Millisecond)
	return cfg
}

func newService(cfg *config.Config) *service.Service {
	return service.New(
		service.WithConfig(cfg),
		service.WithLogger(logger.Nop()),
		service.WithLiveOptions(live.WithRand(steadyRand{}), live.WithMinuteEvery(1)),
	)
}

func findMatch(scores []model.Match, id string) model.Match {
	for _, m := range scores {
		if m.ID == id {
			return m
		}
	}
	return model.Match{}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then nothing should be running yet", func() {
			So(svc, ShouldNotBeNil)
			So(svc.GetStats()["started"], ShouldBeFalse)

			_, err := svc.Synchronizer()
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.Store()
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})

		Convey("And Stop should be a no-op", func() {
			So(func() { svc.Stop() }, ShouldNotPanic)
		})
	})
}

func TestService_Start(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service over a fresh file store", t, func() {
		cfg := testConfig(t)
		svc := newService(cfg)
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		sync, err := svc.Synchronizer()
		So(err, ShouldBeNil)

		Convey("Then the seeded snapshots should be loaded", func() {
			So(len(sync.Scores()), ShouldEqual, 3)
			So(findMatch(sync.Scores(), "s1").Minute(), ShouldEqual, 72)

			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats["phase"], ShouldEqual, "ready")
			So(stats["livePool"], ShouldResemble, []string{"s1", "s10", "s11"})
		})

		Convey("And starting twice should be harmless", func() {
			So(svc.Start(ctx), ShouldBeNil)
		})

		Convey("When the feed ticks", func() {
			feed, err := svc.Feed()
			So(err, ShouldBeNil)
			d, ok := feed.Tick(ctx)
			So(ok, ShouldBeTrue)
			So(d, ShouldResemble, model.Delta{ID: "s1", MinuteIncrement: 1})

			Convey("Then the delta should be merged into memory only", func() {
				So(findMatch(sync.Scores(), "s1").Minute(), ShouldEqual, 73)
				So(sync.Syncing(), ShouldBeFalse)
			})
		})

		Convey("When an admin finishes a live match", func() {
			scores := sync.Scores()
			for i := range scores {
				if scores[i].ID == "s1" {
					scores[i].Status = model.StatusFinished
				}
			}
			So(sync.Replace(ctx, model.CollectionScores, scores), ShouldBeNil)

			Convey("Then the feed should stop picking it", func() {
				feed, _ := svc.Feed()
				So(feed.Pool(), ShouldResemble, []string{"s10", "s11"})
			})
		})
	})

	Convey("Given an order placed before shutdown", t, func() {
		cfg := testConfig(t)
		svc := newService(cfg)
		So(svc.Start(ctx), ShouldBeNil)

		sync, _ := svc.Synchronizer()
		So(sync.PlaceOrder(ctx, model.Order{ID: "ORD-DRAIN0001", UserID: "1", Status: model.OrderPending, Items: []model.CartItem{{Product: model.Product{ID: "p1"}, Quantity: 1}}}), ShouldBeNil)
		svc.Stop()

		Convey("Then the write should be durable after a restart", func() {
			again := newService(cfg)
			So(again.Start(ctx), ShouldBeNil)
			defer again.Stop()

			next, _ := again.Synchronizer()
			So(next.Orders()[0].ID, ShouldEqual, "ORD-DRAIN0001")
		})
	})

	Convey("Given an unknown store backend", t, func() {
		cfg := testConfig(t)
		cfg.StoreBackend = "tape"
		svc := newService(cfg)

		Convey("Then Start should fail with a config error", func() {
			err := svc.Start(ctx)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldBeFalse)
		})
	})

	Convey("Given the sqlite backend", t, func() {
		cfg := testConfig(t)
		cfg.StoreBackend = config.BackendSQLite
		cfg.DataPath = filepath.Join(t.TempDir(), "db.sqlite3")
		svc := newService(cfg)
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		Convey("Then the seeded catalog should be served", func() {
			sync, _ := svc.Synchronizer()
			So(len(sync.Products()), ShouldBeGreaterThan, 0)
		})
	})
}
