package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/Showrav193/Sportsworld/internal/adapters/http/api"
	"github.com/Showrav193/Sportsworld/internal/adapters/http/client"
	"github.com/Showrav193/Sportsworld/internal/adapters/repository"
	"github.com/Showrav193/Sportsworld/internal/domain/model"
)

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()

	Convey("Given a client talking to a persistence server", t, func() {
		store, err := repository.OpenFile(ctx, filepath.Join(t.TempDir(), "db.json"), repository.WithSeedDemo(true))
		So(err, ShouldBeNil)
		ts := httptest.NewServer(api.NewServer(api.WithPersistence(store)).Handler(ctx))
		Reset(func() {
			ts.Close()
			_ = store.Close()
		})

		c, err := client.New(ts.URL + "/")
		So(err, ShouldBeNil)
		defer c.Close()

		Convey("Load should decode the remote collection", func() {
			var products []model.Product
			So(c.Load(ctx, model.CollectionProducts, &products), ShouldBeNil)
			So(len(products), ShouldEqual, 4)
		})

		Convey("Writes should land in the remote store", func() {
			So(c.Replace(ctx, model.CollectionScores, []model.Match{{ID: "s1", TeamA: "A", TeamB: "B", Status: model.StatusLive, Venue: "V"}}), ShouldBeNil)
			So(c.AppendOrder(ctx, model.Order{ID: "ORD-1", UserID: "1", Status: model.OrderPending}), ShouldBeNil)
			So(c.RegisterUser(ctx, model.User{ID: "2", Username: "fan", Email: "fan@x.io", Role: model.RoleUser}), ShouldBeNil)
			So(c.SetUserBlocked(ctx, "2", true), ShouldBeNil)

			var scores []model.Match
			So(store.Load(ctx, model.CollectionScores, &scores), ShouldBeNil)
			So(len(scores), ShouldEqual, 1)

			var orders []model.Order
			So(store.Load(ctx, model.CollectionOrders, &orders), ShouldBeNil)
			So(orders[0].ID, ShouldEqual, "ORD-1")

			var users []model.User
			So(c.Load(ctx, model.CollectionUsers, &users), ShouldBeNil)
			So(users[1].IsBlocked, ShouldBeTrue)
		})

		Convey("Server-side rejections should keep their kind", func() {
			var out []model.Article
			So(errors.Is(c.Load(ctx, model.Collection("tickets"), &out), repository.ErrUnknownCollection), ShouldBeTrue)
			So(errors.Is(c.Replace(ctx, model.CollectionNews, map[string]int{"a": 1}), model.ErrValidation), ShouldBeTrue)
		})
	})

	Convey("Given a server that fails", t, func() {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"code":"io_error","message":"disk full"}`, http.StatusInternalServerError)
		}))
		Reset(ts.Close)
		c, err := client.New(ts.URL)
		So(err, ShouldBeNil)

		Convey("Errors should surface as IO failures", func() {
			err := c.AppendOrder(ctx, model.Order{ID: "ORD-1"})
			So(errors.Is(err, repository.ErrIO), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "disk full")
		})
	})

	Convey("Given an unreachable server", t, func() {
		ts := httptest.NewServer(http.NotFoundHandler())
		url := ts.URL
		ts.Close()
		c, err := client.New(url)
		So(err, ShouldBeNil)

		var out []model.User
		So(errors.Is(c.Load(ctx, model.CollectionUsers, &out), repository.ErrIO), ShouldBeTrue)
	})

	Convey("A malformed base URL should be rejected", t, func() {
		_, err := client.New("localhost")
		So(errors.Is(err, client.ErrBaseURL), ShouldBeTrue)
	})
}
