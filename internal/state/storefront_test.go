package state_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/Showrav193/Sportsworld/internal/adapters/mq/queue"
	"github.com/Showrav193/Sportsworld/internal/domain/cart"
	"github.com/Showrav193/Sportsworld/internal/domain/model"
	"github.com/Showrav193/Sportsworld/internal/state"
)

func TestAccounts(t *testing.T) {
	ctx := context.Background()

	Convey("Given a ready synchronizer", t, func() {
		rec := &recorder{}
		s := ready(newMemLoader(), rec)

		Convey("Login should accept the demo password for known users", func() {
			u, err := s.Login("FAN@x.io", state.DemoPassword)
			So(err, ShouldBeNil)
			So(u.ID, ShouldEqual, "2")
		})

		Convey("Login should reject a wrong password or unknown email", func() {
			_, err := s.Login("fan@x.io", "hunter2")
			So(errors.Is(err, state.ErrInvalidCredentials), ShouldBeTrue)
			_, err = s.Login("ghost@x.io", state.DemoPassword)
			So(errors.Is(err, state.ErrInvalidCredentials), ShouldBeTrue)
		})

		Convey("Login should refuse blocked accounts", func() {
			_, err := s.Login("troll@x.io", state.DemoPassword)
			So(errors.Is(err, state.ErrBlocked), ShouldBeTrue)
		})

		Convey("When a new user registers", func() {
			u, err := s.RegisterUser(ctx, "rookie", "rookie@x.io")
			So(err, ShouldBeNil)

			Convey("Then the account should be a regular, unblocked user appended last", func() {
				So(u.Role, ShouldEqual, model.RoleUser)
				So(u.IsBlocked, ShouldBeFalse)
				So(u.CreatedAt, ShouldEqual, fixedNow())
				users := s.Users()
				So(users[len(users)-1].ID, ShouldEqual, u.ID)
				So(rec.requests()[0].Op, ShouldEqual, queue.OpRegisterUser)
			})

			Convey("And it should be able to sign in right away", func() {
				_, err := s.Login("rookie@x.io", state.DemoPassword)
				So(err, ShouldBeNil)
			})
		})

		Convey("Registering an existing email should fail", func() {
			_, err := s.RegisterUser(ctx, "copy", "Fan@X.io")
			So(errors.Is(err, state.ErrUserExists), ShouldBeTrue)
			So(rec.requests(), ShouldBeEmpty)
		})

		Convey("Blocking a user should take effect immediately", func() {
			So(s.SetUserBlocked(ctx, "2", true), ShouldBeNil)
			_, err := s.Login("fan@x.io", state.DemoPassword)
			So(errors.Is(err, state.ErrBlocked), ShouldBeTrue)
			req := rec.requests()[0]
			So(req.Op, ShouldEqual, queue.OpSetUserBlocked)
			So(req.Block, ShouldResemble, model.BlockRequest{UserID: "2", IsBlocked: true})

			Convey("And unblocking should restore access", func() {
				So(s.SetUserBlocked(ctx, "2", false), ShouldBeNil)
				_, err := s.Login("fan@x.io", state.DemoPassword)
				So(err, ShouldBeNil)
			})
		})

		Convey("Blocking an unknown user should fail", func() {
			So(errors.Is(s.SetUserBlocked(ctx, "404", true), model.ErrValidation), ShouldBeTrue)
		})
	})
}

func TestOrders(t *testing.T) {
	ctx := context.Background()

	Convey("Given a ready synchronizer", t, func() {
		rec := &recorder{}
		s := ready(newMemLoader(), rec)

		Convey("When two orders are placed", func() {
			first := model.Order{ID: "ORD-A", UserID: "2", Status: model.OrderPending, Items: []model.CartItem{{Product: model.Product{ID: "p1"}, Quantity: 1}}}
			second := first
			second.ID = "ORD-B"
			So(s.PlaceOrder(ctx, first), ShouldBeNil)
			So(s.PlaceOrder(ctx, second), ShouldBeNil)

			Convey("Then the newest should be first and each queued as an append", func() {
				orders := s.Orders()
				So(orders[0].ID, ShouldEqual, "ORD-B")
				So(orders[1].ID, ShouldEqual, "ORD-A")
				So(len(rec.requests()), ShouldEqual, 2)
				So(rec.requests()[1].Order.ID, ShouldEqual, "ORD-B")
				So(s.Pending(model.CollectionOrders), ShouldEqual, 2)
			})
		})

		Convey("An order without items should be rejected", func() {
			err := s.PlaceOrder(ctx, model.Order{ID: "ORD-X", UserID: "2", Status: model.OrderPending})
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
			So(s.Orders(), ShouldBeEmpty)
		})

		Convey("Checkout should price lines from the catalog", func() {
			items := []model.CartItem{
				{Product: model.Product{ID: "p1", Price: 1}, Quantity: 1},
				{Product: model.Product{ID: "p2", Price: 1}, Quantity: 2},
			}
			o, err := s.Checkout(ctx, "2", items)
			So(err, ShouldBeNil)
			So(o.Total, ShouldEqual, 245+2*85)
			So(o.Status, ShouldEqual, model.OrderPending)
			So(o.Date, ShouldEqual, fixedNow())
			So(s.Orders()[0].ID, ShouldEqual, o.ID)
		})

		Convey("Checkout should refuse unknown users, blocked users and empty carts", func() {
			_, err := s.Checkout(ctx, "99", []model.CartItem{{Product: model.Product{ID: "p1"}, Quantity: 1}})
			So(errors.Is(err, cart.ErrNoUser), ShouldBeTrue)
			_, err = s.Checkout(ctx, "3", []model.CartItem{{Product: model.Product{ID: "p1"}, Quantity: 1}})
			So(errors.Is(err, state.ErrBlocked), ShouldBeTrue)
			_, err = s.Checkout(ctx, "2", nil)
			So(errors.Is(err, cart.ErrEmptyCart), ShouldBeTrue)
			_, err = s.Checkout(ctx, "2", []model.CartItem{{Product: model.Product{ID: "p404"}, Quantity: 1}})
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
			So(rec.requests(), ShouldBeEmpty)
		})

		Convey("Checkout should reject non-positive quantities without placing an order", func() {
			for _, q := range []int{0, -3} {
				_, err := s.Checkout(ctx, "2", []model.CartItem{
					{Product: model.Product{ID: "p1"}, Quantity: 1},
					{Product: model.Product{ID: "p2"}, Quantity: q},
				})
				So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
			}
			So(s.Orders(), ShouldBeEmpty)
			So(rec.requests(), ShouldBeEmpty)
		})

		Convey("Checkout should refuse more units than are in stock and answer at once", func() {
			start := time.Now()
			_, err := s.Checkout(ctx, "2", []model.CartItem{{Product: model.Product{ID: "p1"}, Quantity: 300000000}})
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
			So(time.Since(start), ShouldBeLessThan, 100*time.Millisecond)
			So(s.Orders(), ShouldBeEmpty)

			o, err := s.Checkout(ctx, "2", []model.CartItem{{Product: model.Product{ID: "p1"}, Quantity: 12}})
			So(err, ShouldBeNil)
			So(o.Items[0].Quantity, ShouldEqual, 12)
			So(o.Total, ShouldEqual, 12*245)
		})

		Convey("The returned order should not share lines with the snapshot", func() {
			o, err := s.Checkout(ctx, "2", []model.CartItem{{Product: model.Product{ID: "p2"}, Quantity: 2}})
			So(err, ShouldBeNil)
			o.Items[0].Quantity = 40
			So(s.Orders()[0].Items[0].Quantity, ShouldEqual, 2)
		})
	})
}

func TestNews(t *testing.T) {
	ctx := context.Background()

	Convey("Given a ready synchronizer", t, func() {
		rec := &recorder{}
		s := ready(newMemLoader(), rec)

		Convey("When two comments are posted", func() {
			_, err := s.AddComment(ctx, "1", "fan", "What a match")
			So(err, ShouldBeNil)
			c2, err := s.AddComment(ctx, "1", "admin", "  Agreed  ")
			So(err, ShouldBeNil)

			Convey("Then the newest should be first and news be queued for replace", func() {
				comments := s.News()[0].Comments
				So(len(comments), ShouldEqual, 2)
				So(comments[0].ID, ShouldEqual, c2.ID)
				So(comments[0].Text, ShouldEqual, "Agreed")
				reqs := rec.requests()
				So(reqs[1].Op, ShouldEqual, queue.OpReplace)
				So(reqs[1].Collection, ShouldEqual, model.CollectionNews)
			})
		})

		Convey("Empty comments or unknown articles should be rejected", func() {
			_, err := s.AddComment(ctx, "1", "fan", "   ")
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
			_, err = s.AddComment(ctx, "404", "fan", "hi")
			So(errors.Is(err, state.ErrArticleNotFound), ShouldBeTrue)
		})

		Convey("Publishing an article should prepend it with an id and date", func() {
			a, err := s.PublishArticle(ctx, model.Article{Title: "Breaking", Content: "News"})
			So(err, ShouldBeNil)
			So(a.ID, ShouldNotBeEmpty)
			So(a.Date, ShouldEqual, fixedNow())
			So(s.News()[0].ID, ShouldEqual, a.ID)
			So(len(s.News()), ShouldEqual, 2)
		})

		Convey("A published article should not follow later edits to the caller's tags", func() {
			tags := []string{"final"}
			_, err := s.PublishArticle(ctx, model.Article{Title: "Breaking", Content: "News", Tags: tags})
			So(err, ShouldBeNil)
			tags[0] = "changed"
			So(s.News()[0].Tags, ShouldResemble, []string{"final"})

			s.News()[0].Tags[0] = "leaked"
			So(s.News()[0].Tags[0], ShouldEqual, "final")
		})
	})
}
