package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/Showrav193/Sportsworld/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":3001")
			convey.So(cfg.StoreBackend, convey.ShouldEqual, config.BackendFile)
			convey.So(cfg.DataPath, convey.ShouldEqual, "db.json")
			convey.So(cfg.WriteQueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.WriterCount, convey.ShouldEqual, 4)
			convey.So(cfg.TickInterval(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.LivePool, convey.ShouldResemble, []string{"s1", "s10", "s11"})
			convey.So(cfg.DefaultLiveMinute, convey.ShouldEqual, 72)
			convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"*"})
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with missing backend settings", t, func() {
		cases := []struct {
			name   string
			mutate func(c *config.Config)
		}{
			{"unknown backend", func(c *config.Config) { c.StoreBackend = "tape" }},
			{"postgres without url", func(c *config.Config) { c.StoreBackend = config.BackendPostgres }},
			{"s3 without bucket", func(c *config.Config) { c.StoreBackend = config.BackendS3 }},
			{"sqlite without path", func(c *config.Config) { c.StoreBackend = config.BackendSQLite; c.DataPath = "" }},
			{"zero writers", func(c *config.Config) { c.WriterCount = 0 }},
			{"bad log format", func(c *config.Config) { c.LogFormat = "xml" }},
		}

		for _, tc := range cases {
			convey.Convey("Then "+tc.name+" should be rejected", func() {
				cfg := config.New()
				tc.mutate(cfg)
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})

	convey.Convey("Given a remote store url", t, func() {
		cfg := config.New()
		cfg.StoreBackend = "ignored"
		cfg.RemoteURL = "http://upstream:3001"

		convey.Convey("Then the local backend is not checked", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
