package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/Showrav193/Sportsworld/internal/adapters/http/api"
	"github.com/Showrav193/Sportsworld/internal/adapters/repository"
	"github.com/Showrav193/Sportsworld/internal/domain/model"
)

func TestServiceIntegration(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service persisting through a remote storefront server", t, func() {
		upstream, err := repository.OpenFile(ctx, filepath.Join(t.TempDir(), "db.json"), repository.WithSeedDemo(true))
		So(err, ShouldBeNil)
		remote := httptest.NewServer(api.NewServer(api.WithPersistence(upstream)).Handler(ctx))
		Reset(func() {
			remote.Close()
			_ = upstream.Close()
		})

		cfg := testConfig(t)
		cfg.RemoteURL = remote.URL
		svc := newService(cfg)
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		sync, err := svc.Synchronizer()
		So(err, ShouldBeNil)
		front := httptest.NewServer(api.NewServer(
			api.WithStorefront(sync),
			api.WithStats(svc),
		).Handler(ctx))
		Reset(front.Close)

		Convey("Then the snapshots should come from the remote store", func() {
			So(len(sync.Scores()), ShouldEqual, 3)
			So(svc.GetStats()["remoteStore"], ShouldBeTrue)
		})

		Convey("When the catalog is replaced through the storefront API", func() {
			req, _ := http.NewRequest(http.MethodPut, front.URL+"/app/products",
				strings.NewReader(`[{"id":"p9","name":"Gloves","price":40,"stock":3}]`))
			req.Header.Set("Content-Type", "application/json")
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			_ = resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusAccepted)

			svc.Stop()

			Convey("Then the write should land upstream once the writers drain", func() {
				var products []model.Product
				So(upstream.Load(ctx, model.CollectionProducts, &products), ShouldBeNil)
				So(len(products), ShouldEqual, 1)
				So(products[0].ID, ShouldEqual, "p9")
			})
		})

		Convey("When stats are requested", func() {
			resp, err := http.Get(front.URL + "/stats")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			var stats map[string]any
			So(json.NewDecoder(resp.Body).Decode(&stats), ShouldBeNil)

			Convey("Then they should describe the running service", func() {
				So(stats["started"], ShouldEqual, true)
				So(stats["phase"], ShouldEqual, "ready")
				So(stats["syncing"], ShouldEqual, false)
			})
		})
	})
}
