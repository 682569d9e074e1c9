package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/Showrav193/Sportsworld/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStatus(t *testing.T) {
	Convey("Given match statuses", t, func() {
		Convey("Known statuses should be valid", func() {
			So(model.StatusUpcoming.Valid(), ShouldBeTrue)
			So(model.StatusLive.Valid(), ShouldBeTrue)
			So(model.StatusFinished.Valid(), ShouldBeTrue)
			So(model.Status("Paused").Valid(), ShouldBeFalse)
		})

		Convey("Moving backwards should be reported as a regression", func() {
			So(model.StatusFinished.Regresses(model.StatusLive), ShouldBeTrue)
			So(model.StatusLive.Regresses(model.StatusUpcoming), ShouldBeTrue)
			So(model.StatusUpcoming.Regresses(model.StatusFinished), ShouldBeFalse)
			So(model.StatusLive.Regresses(model.StatusLive), ShouldBeFalse)
		})
	})
}

func TestMatchValidate(t *testing.T) {
	Convey("Given an administrative match record", t, func() {
		m := model.Match{ID: "s1", TeamA: "Madrid Kings", TeamB: "Barcelona FC", Status: model.StatusLive, Venue: "Bernabeu"}

		Convey("A complete record should pass", func() {
			So(m.Validate(), ShouldBeNil)
		})

		Convey("A missing venue should be a validation error", func() {
			m.Venue = ""
			err := m.Validate()
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
		})

		Convey("An unknown status should be rejected", func() {
			m.Status = "Halftime"
			So(errors.Is(m.Validate(), model.ErrValidation), ShouldBeTrue)
		})

		Convey("A negative score should be rejected", func() {
			m.ScoreB = -1
			So(m.Validate(), ShouldNotBeNil)
		})
	})
}

func TestDeltaValidate(t *testing.T) {
	Convey("Given delta events", t, func() {
		So(model.Delta{ID: "s1"}.Empty(), ShouldBeTrue)
		So(model.Delta{ID: "s1", LastEvent: "x"}.Empty(), ShouldBeFalse)
		So(model.Delta{ID: "s1", ScoreAIncrement: 1}.Validate(), ShouldBeNil)
		So(model.Delta{ID: "s1", ScoreAIncrement: 1, ScoreBIncrement: 1}.Validate(), ShouldNotBeNil)
		So(model.Delta{ID: "s1", MinuteIncrement: -1}.Validate(), ShouldNotBeNil)
		So(model.Delta{}.Validate(), ShouldNotBeNil)
	})
}

func TestWireFormat(t *testing.T) {
	Convey("Given a stored match document", t, func() {
		raw := `{"id":"s1","teamA":"A","teamB":"B","scoreA":3,"scoreB":2,"status":"Live","venue":"V","startTime":"2026-10-14T18:00:00Z","stats":{"possessionA":52,"possessionB":48,"shotsA":14,"shotsB":11}}`

		var m model.Match
		So(json.Unmarshal([]byte(raw), &m), ShouldBeNil)

		Convey("Then unset minutes should stay unset", func() {
			So(m.CurrentMinute, ShouldBeNil)
			So(m.Minute(), ShouldEqual, 0)
			So(m.Stats.ShotsA, ShouldEqual, 14)
		})

		Convey("And re-encoding should omit the absent optional fields", func() {
			out, err := json.Marshal(m)
			So(err, ShouldBeNil)
			So(string(out), ShouldNotContainSubstring, "currentMinute")
			So(string(out), ShouldNotContainSubstring, "lastEvent")
		})
	})

	Convey("Given a cart item", t, func() {
		item := model.CartItem{Product: model.Product{ID: "p1", Name: "Cleats", Price: 245}, Quantity: 2}
		out, err := json.Marshal(item)
		So(err, ShouldBeNil)

		Convey("Then it should flatten the product fields", func() {
			var flat map[string]any
			So(json.Unmarshal(out, &flat), ShouldBeNil)
			So(flat["id"], ShouldEqual, "p1")
			So(flat["quantity"], ShouldEqual, float64(2))
		})
	})
}

func TestCollections(t *testing.T) {
	Convey("Given collection keys", t, func() {
		c, err := model.ParseCollection("scores")
		So(err, ShouldBeNil)
		So(c, ShouldEqual, model.CollectionScores)

		_, err = model.ParseCollection("tickets")
		So(errors.Is(err, model.ErrValidation), ShouldBeTrue)

		So(model.CollectionNews.Replaceable(), ShouldBeTrue)
		So(model.CollectionOrders.Replaceable(), ShouldBeFalse)
		So(model.CollectionUsers.Replaceable(), ShouldBeFalse)
		So(len(model.Collections()), ShouldEqual, 5)
	})

	Convey("Given records with ids", t, func() {
		id := func(p model.Product) string { return p.ID }
		So(model.ValidateIDs([]model.Product{{ID: "p1"}, {ID: "p2"}}, id), ShouldBeNil)
		So(model.ValidateIDs([]model.Product{{ID: "p1"}, {ID: "p1"}}, id), ShouldNotBeNil)
		So(model.ValidateIDs([]model.Product{{ID: ""}}, id), ShouldNotBeNil)
	})
}

func TestRecordValidate(t *testing.T) {
	Convey("Given other records", t, func() {
		So(model.Article{ID: "1", Title: "t", Content: "c"}.Validate(), ShouldBeNil)
		So(model.Article{ID: "1", Title: " ", Content: "c"}.Validate(), ShouldNotBeNil)
		So(model.Product{ID: "p1", Name: "Ball", Price: -1}.Validate(), ShouldNotBeNil)
		So(model.User{ID: "1", Username: "u", Email: "nope", Role: model.RoleUser}.Validate(), ShouldNotBeNil)
		So(model.User{ID: "1", Username: "u", Email: "u@x.io", Role: model.RoleUser}.Validate(), ShouldBeNil)

		order := model.Order{ID: "ORD-1", UserID: "1", Status: model.OrderPending,
			Items: []model.CartItem{{Product: model.Product{ID: "p1"}, Quantity: 1}}}
		So(order.Validate(), ShouldBeNil)
		order.Items[0].Quantity = 0
		So(order.Validate(), ShouldNotBeNil)
	})
}

func TestClone(t *testing.T) {
	Convey("Given records holding pointers and slices", t, func() {
		minute := 72
		m := model.Match{ID: "s1", CurrentMinute: &minute, Stats: &model.MatchStats{ShotsA: 3}}
		a := model.Article{ID: "1", Tags: []string{"derby"}, Comments: []model.Comment{{ID: "c1", Text: "hi"}}}
		o := model.Order{ID: "ORD-1", Items: []model.CartItem{{Product: model.Product{ID: "p1"}, Quantity: 1}}}

		Convey("A cloned match should not follow edits to the original", func() {
			cp := m.Clone()
			minute = 5
			m.Stats.ShotsA = 9
			So(cp.Minute(), ShouldEqual, 72)
			So(cp.Stats.ShotsA, ShouldEqual, 3)
		})

		Convey("A cloned article should own its tags and comments", func() {
			cp := a.Clone()
			a.Tags[0] = "changed"
			a.Comments[0].Text = "changed"
			So(cp.Tags[0], ShouldEqual, "derby")
			So(cp.Comments[0].Text, ShouldEqual, "hi")
		})

		Convey("A cloned order should own its lines", func() {
			cp := o.Clone()
			o.Items[0].Quantity = 7
			So(cp.Items[0].Quantity, ShouldEqual, 1)
		})

		Convey("CloneAll should copy every record and keep nil as nil", func() {
			all := model.CloneAll([]model.Match{m})
			*m.CurrentMinute = 90
			So(all[0].Minute(), ShouldEqual, 72)
			So(model.CloneAll[model.Match](nil), ShouldBeNil)
		})
	})
}
