package live_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Showrav193/Sportsworld/internal/domain/live"
	"github.com/Showrav193/Sportsworld/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// scriptedRand replays fixed draws. Float64 falls back to 0 once exhausted.
type scriptedRand struct {
	mu     sync.Mutex
	floats []float64
	idx    int
}

func (r *scriptedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.floats) == 0 {
		return 0
	}
	f := r.floats[0]
	r.floats = r.floats[1:]
	return f
}

func (r *scriptedRand) Intn(n int) int { return r.idx % n }

type fakeTicker struct{ c chan time.Time }

func (f *fakeTicker) C() <-chan time.Time { return f.c }
func (f *fakeTicker) Stop()               {}

func TestPublisherTick(t *testing.T) {
	ctx := context.Background()

	Convey("Given a publisher with no goals scripted", t, func() {
		rng := &scriptedRand{}
		p := live.NewPublisher(live.WithRand(rng))

		var got []model.Delta
		p.Subscribe(func(d model.Delta) { got = append(got, d) })

		Convey("Only every sixth tick should emit a minute increment", func() {
			for i := 0; i < 12; i++ {
				p.Tick(ctx)
			}
			So(len(got), ShouldEqual, 2)
			So(got[0], ShouldResemble, model.Delta{ID: "s1", MinuteIncrement: 1})
			So(got[1].MinuteIncrement, ShouldEqual, 1)
		})

		Convey("An empty pool should emit nothing", func() {
			p.SetPool(nil)
			for i := 0; i < 12; i++ {
				_, ok := p.Tick(ctx)
				So(ok, ShouldBeFalse)
			}
			So(got, ShouldBeEmpty)
		})
	})

	Convey("Given a scripted goal for team A on the first tick", t, func() {
		rng := &scriptedRand{floats: []float64{0.99, 0.7}, idx: 2}
		p := live.NewPublisher(live.WithRand(rng))

		d, ok := p.Tick(ctx)
		So(ok, ShouldBeTrue)
		So(d, ShouldResemble, model.Delta{ID: "s11", ScoreAIncrement: 1, LastEvent: "GOAL! Team A Scores"})
	})

	Convey("Given a goal that coincides with the minute tick", t, func() {
		rng := &scriptedRand{floats: []float64{0, 0, 0, 0, 0, 0.96, 0.1}}
		p := live.NewPublisher(live.WithRand(rng))

		var last model.Delta
		for i := 0; i < 6; i++ {
			if d, ok := p.Tick(ctx); ok {
				last = d
			}
		}

		Convey("Then a single combined delta should be emitted", func() {
			So(last.MinuteIncrement, ShouldEqual, 1)
			So(last.ScoreBIncrement, ShouldEqual, 1)
			So(last.ScoreAIncrement, ShouldEqual, 0)
			So(last.LastEvent, ShouldEqual, "GOAL! Team B Scores")
		})
	})
}

func TestPublisherSubscriptions(t *testing.T) {
	ctx := context.Background()

	Convey("Given three subscribers", t, func() {
		p := live.NewPublisher(live.WithRand(&scriptedRand{}), live.WithMinuteEvery(1))

		var order []string
		a := p.Subscribe(func(model.Delta) { order = append(order, "a") })
		p.Subscribe(func(model.Delta) { order = append(order, "b") })
		p.Subscribe(func(model.Delta) { order = append(order, "c") })
		So(p.Subscribers(), ShouldEqual, 3)

		Convey("Deliveries should follow registration order", func() {
			p.Tick(ctx)
			So(order, ShouldResemble, []string{"a", "b", "c"})
		})

		Convey("A cancelled subscriber should receive nothing further", func() {
			a.Cancel()
			a.Cancel()
			p.Tick(ctx)
			So(order, ShouldResemble, []string{"b", "c"})
			So(p.Subscribers(), ShouldEqual, 2)
		})

		Convey("A subscriber may cancel another from inside a delivery", func() {
			var c *live.Subscription
			p2 := live.NewPublisher(live.WithRand(&scriptedRand{}), live.WithMinuteEvery(1))
			var seen []string
			p2.Subscribe(func(model.Delta) { seen = append(seen, "first"); c.Cancel() })
			c = p2.Subscribe(func(model.Delta) { seen = append(seen, "second") })
			p2.Tick(ctx)
			p2.Tick(ctx)
			So(seen, ShouldResemble, []string{"first", "first"})
		})
	})
}

func TestPublisherRun(t *testing.T) {
	Convey("Given a publisher driven by a fake ticker", t, func() {
		ft := &fakeTicker{c: make(chan time.Time)}
		p := live.NewPublisher(
			live.WithRand(&scriptedRand{}),
			live.WithMinuteEvery(1),
			live.WithTickerFactory(func(time.Duration) live.Ticker { return ft }),
		)

		deltas := make(chan model.Delta, 4)
		p.Subscribe(func(d model.Delta) { deltas <- d })

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			p.Run(ctx)
			close(done)
		}()

		ft.c <- time.Now()
		d := <-deltas
		So(d.MinuteIncrement, ShouldEqual, 1)

		cancel()
		<-done
	})
}
