package service_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/lolhub/internal/adapters/market"
	"github.com/okian/lolhub/internal/adapters/schedule"
	service "github.com/okian/lolhub/internal/app"
	"github.com/okian/lolhub/internal/domain/model"
	"github.com/okian/lolhub/internal/domain/profile"
	"github.com/okian/lolhub/internal/domain/projection"
	"github.com/okian/lolhub/internal/domain/rating"
	"github.com/okian/lolhub/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type memSource struct {
	mu    sync.Mutex
	table model.Table
	err   error
	loads int
}

func (m *memSource) Load(context.Context) (model.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if m.err != nil {
		return nil, m.err
	}
	return m.table, nil
}

func (m *memSource) Freshness(context.Context) (time.Time, error) {
	return m.table.Latest(), nil
}

func (m *memSource) set(t model.Table, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.table, m.err = t, err
}

func game(id string, day int, league, blue, red string, blueWins bool) model.Table {
	date := time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC)
	b, r := 0, 1
	if blueWins {
		b, r = 1, 0
	}
	return model.Table{
		{GameID: id, Date: date, League: league, Team: blue, Side: model.SideBlue, Result: b,
			TotalGold: 60000, GameLength: 1800, Stats: map[string]float64{model.StatGoldDiffAt15: float64(1000 * (2*b - 1))}},
		{GameID: id, Date: date, League: league, Team: red, Side: model.SideRed, Result: r,
			TotalGold: 55000, GameLength: 1800, Stats: map[string]float64{model.StatGoldDiffAt15: float64(1000 * (2*r - 1))}},
	}
}

func fixtureTable() model.Table {
	var t model.Table
	t = append(t, game("g1", 1, "LCK", "T1", "Gen.G", true)...)
	t = append(t, game("g2", 2, "LCK", "Gen.G", "DRX", true)...)
	t = append(t, game("g3", 3, "LCK", "T1", "DRX", true)...)
	t = append(t, game("g4", 4, "LEC", "G2", "FNC", false)...)
	return t
}

type fakeSchedule struct {
	matches []schedule.Match
	played  []schedule.Match
}

func (f fakeSchedule) Upcoming(context.Context, string) []schedule.Match  { return f.matches }
func (f fakeSchedule) Completed(context.Context, string) []schedule.Match { return f.played }
func (f fakeSchedule) Leagues() []string                                  { return []string{"LCK"} }

type fakeMarket struct {
	odds map[string]market.Odds
}

func (f fakeMarket) TeamOdds(_ context.Context, a, b string) (market.Pair, bool) {
	var p market.Pair
	if o, ok := f.odds[a]; ok {
		p.TeamA = &o
	}
	if o, ok := f.odds[b]; ok {
		p.TeamB = &o
	}
	return p, p.TeamA != nil || p.TeamB != nil
}

func TestService_Lifecycle(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service without a snapshot", t, func() {
		svc := service.New(service.WithSource(&memSource{table: fixtureTable()}))

		Convey("Queries report not ready", func() {
			_, err := svc.Leaderboard(ctx, 10, "")
			So(errors.Is(err, service.ErrNotReady), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})

		Convey("Start builds the first snapshot", func() {
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			snap, err := svc.Snapshot()
			So(err, ShouldBeNil)
			So(snap.GamesProcessed, ShouldEqual, 4)
			So(snap.Ratings.Len(), ShouldEqual, 5)

			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["teams"], ShouldEqual, 5)
			So(stats["leagues"], ShouldEqual, 2)

			Convey("Start is idempotent", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})
	})

	Convey("Given no source", t, func() {
		svc := service.New()
		So(errors.Is(svc.Start(ctx), service.ErrNoSource), ShouldBeTrue)
	})

	Convey("Given invalid weights", t, func() {
		svc := service.New(
			service.WithSource(&memSource{table: fixtureTable()}),
			service.WithWeights(projection.Weights{Elo: 0.9, Factors: map[string]float64{"early_game": 0.9}}),
		)
		So(errors.Is(svc.Start(ctx), projection.ErrInvalidWeights), ShouldBeTrue)
	})

	Convey("Given weights keyed by factors the profiler does not compute", t, func() {
		svc := service.New(
			service.WithSource(&memSource{table: fixtureTable()}),
			service.WithWeights(projection.Weights{Elo: 0.3, Factors: map[string]float64{
				"earlygame": 0.2, "objective": 0.2, "fighting": 0.15, "vision": 0.15,
			}}),
		)
		So(errors.Is(svc.Start(ctx), projection.ErrUnknownFactor), ShouldBeTrue)
		_, err := svc.Snapshot()
		So(errors.Is(err, service.ErrNotReady), ShouldBeTrue)
	})

	Convey("Given an engine with a custom starting rating", t, func() {
		svc := service.New(
			service.WithSource(&memSource{table: fixtureTable()}),
			service.WithEngineOptions(rating.WithStartingRating(1200)),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		snap, err := svc.Snapshot()
		So(err, ShouldBeNil)

		So(snap.Ratings.Get("Nobody"), ShouldEqual, 1200)
		So(snap.Ranker.Composite(profile.Profile{}, 1200), ShouldEqual, 0)
		So(snap.Ranker.Composite(profile.Profile{}, 1400), ShouldAlmostEqual, 0.3, 1e-12)
	})

	Convey("Given a bad refresh schedule", t, func() {
		svc := service.New(service.WithSource(&memSource{table: fixtureTable()}), service.WithRefreshCron("not a cron"))
		So(errors.Is(svc.Start(ctx), service.ErrInvalidArgument), ShouldBeTrue)
	})

	Convey("Given a valid refresh schedule", t, func() {
		svc := service.New(service.WithSource(&memSource{table: fixtureTable()}), service.WithRefreshCron("@every 1h"))
		So(svc.Start(ctx), ShouldBeNil)
		So(func() { svc.Stop(); svc.Stop() }, ShouldNotPanic)
	})
}

func TestService_Reload(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		src := &memSource{table: fixtureTable()}
		svc := service.New(service.WithSource(src))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		first, _ := svc.Snapshot()

		Convey("A failed reload keeps the previous snapshot", func() {
			src.set(nil, errors.New("disk gone"))
			So(svc.Reload(ctx), ShouldNotBeNil)
			snap, err := svc.Snapshot()
			So(err, ShouldBeNil)
			So(snap, ShouldEqual, first)
		})

		Convey("A successful reload swaps in new data", func() {
			more := append(fixtureTable(), game("g5", 5, "LCS", "C9", "TL", true)...)
			src.set(more, nil)
			So(svc.Reload(ctx), ShouldBeNil)
			leagues, err := svc.Leagues(ctx)
			So(err, ShouldBeNil)
			So(leagues, ShouldResemble, []string{"LCK", "LCS", "LEC"})
		})

		Convey("Reload recomputes from scratch", func() {
			So(svc.Reload(ctx), ShouldBeNil)
			a, _ := svc.Snapshot()
			So(a.Ratings.Snapshot(), ShouldResemble, first.Ratings.Snapshot())
		})

		Convey("Freshness comes from the source", func() {
			ts, err := svc.Freshness(ctx)
			So(err, ShouldBeNil)
			So(ts, ShouldEqual, time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC))
		})
	})
}

func TestService_Queries(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc := service.New(
			service.WithSource(&memSource{table: fixtureTable()}),
			service.WithMaxLeaderboardLimit(3),
			service.WithRecentGames(5),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Leaderboard is clamped and filterable", func() {
			all, err := svc.Leaderboard(ctx, 0, "")
			So(err, ShouldBeNil)
			So(len(all), ShouldEqual, 3)
			So(all[0].Team, ShouldEqual, "T1")
			So(all[0].Rank, ShouldEqual, 1)

			lec, err := svc.Leaderboard(ctx, 10, "LEC")
			So(err, ShouldBeNil)
			So(len(lec), ShouldEqual, 2)
			So(lec[0].Team, ShouldEqual, "FNC")
		})

		Convey("TeamRank finds known teams only", func() {
			e, err := svc.TeamRank(ctx, "T1")
			So(err, ShouldBeNil)
			So(e.Record, ShouldEqual, "2-0")
			_, err = svc.TeamRank(ctx, "Nobody")
			So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
		})

		Convey("Profile uses the default window", func() {
			p, err := svc.Profile(ctx, "T1", service.DefaultWindow)
			So(err, ShouldBeNil)
			So(p.Window, ShouldEqual, 5)
			So(p.League, ShouldEqual, "LCK")
			So(p.Summary.Wins, ShouldEqual, 2)
			So(p.Rating, ShouldBeGreaterThan, rating.StartingRating)
			So(p.Labels, ShouldNotBeEmpty)
			_, err = svc.Profile(ctx, "Nobody", 0)
			So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)

			full, err := svc.Profile(ctx, "T1", service.FullHistory)
			So(err, ShouldBeNil)
			So(full.Window, ShouldEqual, 0)
			So(full.Summary.Games, ShouldEqual, 2)
		})

		Convey("History lists one entry per game", func() {
			h, err := svc.History(ctx, "T1")
			So(err, ShouldBeNil)
			So(len(h), ShouldEqual, 2)
			So(h[0].GameID, ShouldEqual, "g1")
			So(h[1].Rating, ShouldBeGreaterThan, h[0].Rating)
		})

		Convey("Project validates its arguments", func() {
			r, err := svc.Project(ctx, "T1", "DRX", 0)
			So(err, ShouldBeNil)
			So(r.WinProbA, ShouldBeGreaterThan, 0.5)
			So(math.Abs(r.WinProbA+r.WinProbB-1), ShouldBeLessThan, 1e-12)
			So(r.EloEdge, ShouldEqual, "T1")

			_, err = svc.Project(ctx, "T1", "T1", 0)
			So(errors.Is(err, service.ErrInvalidArgument), ShouldBeTrue)
			_, err = svc.Project(ctx, "", "T1", 0)
			So(errors.Is(err, service.ErrInvalidArgument), ShouldBeTrue)
		})

		Convey("Unknown teams still project", func() {
			r, err := svc.Project(ctx, "Ghost A", "Ghost B", 0)
			So(err, ShouldBeNil)
			So(r.WinProbA, ShouldEqual, 0.5)
		})

		Convey("HeadToHead and Results pivot games", func() {
			h2h, err := svc.HeadToHead(ctx, "T1", "Gen.G")
			So(err, ShouldBeNil)
			So(len(h2h), ShouldEqual, 1)
			So(h2h[0].Winner, ShouldEqual, "T1")

			res, err := svc.Results(ctx, "LCK")
			So(err, ShouldBeNil)
			So(len(res), ShouldEqual, 3)
			_, err = svc.Results(ctx, "LPL")
			So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
		})

		Convey("Teams lists a league by rating", func() {
			teams, err := svc.Teams(ctx, "LCK")
			So(err, ShouldBeNil)
			So(len(teams), ShouldEqual, 3)
			So(teams[0].Team, ShouldEqual, "T1")
			So(teams[2].Team, ShouldEqual, "DRX")
		})

		Convey("Without providers upcoming, completed and odds are empty", func() {
			up, err := svc.Upcoming(ctx, "LCK")
			So(err, ShouldBeNil)
			So(up, ShouldBeEmpty)
			done, err := svc.Completed(ctx, "LCK")
			So(err, ShouldBeNil)
			So(done, ShouldBeEmpty)
			_, ok, err := svc.Odds(ctx, "T1", "Gen.G")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestService_External(t *testing.T) {
	ctx := context.Background()

	Convey("Given schedule and market providers", t, func() {
		sched := fakeSchedule{
			matches: []schedule.Match{
				{ID: "m1", TeamA: "T1 Esports", TeamB: "Gen.G", State: schedule.StateUnstarted},
				{ID: "m2", TeamA: "TBD", TeamB: "DRX", State: schedule.StateUnstarted},
			},
			played: []schedule.Match{
				{ID: "m0", TeamA: "T1 Esports", TeamB: "DRX", State: schedule.StateCompleted, TeamAWins: 2},
			},
		}
		mkt := fakeMarket{odds: map[string]market.Odds{"T1": {Team: "T1", League: "LCK", Odds: 0.3}}}
		svc := service.New(
			service.WithSource(&memSource{table: fixtureTable()}),
			service.WithSchedule(sched),
			service.WithMarket(mkt),
			service.WithNormalizer(schedule.NewNormalizer(map[string]string{"T1 Esports": "T1"})),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Fixtures are normalized and projected when both teams are known", func() {
			up, err := svc.Upcoming(ctx, "LCK")
			So(err, ShouldBeNil)
			So(len(up), ShouldEqual, 2)
			So(up[0].TeamA, ShouldEqual, "T1")
			So(up[0].Projection, ShouldNotBeNil)
			So(up[0].Projection.TeamB, ShouldEqual, "Gen.G")
			So(up[1].Projection, ShouldBeNil)
		})

		Convey("Fixtures are projected over the full history", func() {
			up, err := svc.Upcoming(ctx, "LCK")
			So(err, ShouldBeNil)
			snap, err := svc.Snapshot()
			So(err, ShouldBeNil)
			want := snap.Projector.Project("T1", "Gen.G", 0)
			So(up[0].Projection.RecentWindow, ShouldEqual, 0)
			So(up[0].Projection.WinProbA, ShouldEqual, want.WinProbA)
		})

		Convey("Completed series are normalized", func() {
			done, err := svc.Completed(ctx, "LCK")
			So(err, ShouldBeNil)
			So(done, ShouldHaveLength, 1)
			So(done[0].TeamA, ShouldEqual, "T1")
			So(done[0].TeamAWins, ShouldEqual, 2)
		})

		Convey("Leagues without a schedule are not found", func() {
			_, err := svc.Upcoming(ctx, "LEC")
			So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
			_, err = svc.Completed(ctx, "LEC")
			So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
		})

		Convey("Odds carry the model edge for quoted teams", func() {
			o, ok, err := svc.Odds(ctx, "T1", "Gen.G")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(o.Market.TeamA.Odds, ShouldEqual, 0.3)
			So(o.EdgeA, ShouldNotBeNil)
			So(*o.EdgeA, ShouldAlmostEqual, o.ModelProbA-0.3)
			So(o.EdgeB, ShouldBeNil)

			_, ok, err = svc.Odds(ctx, "DRX", "Gen.G")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})
	})
}

func rivalryTable() model.Table {
	var t model.Table
	for day := 1; day <= 15; day++ {
		t = append(t, game(fmt.Sprintf("r%02d", day), day, "LCK", "T1", "Gen.G", day <= 12)...)
	}
	return t
}

func TestService_Window(t *testing.T) {
	ctx := context.Background()

	Convey("Given fifteen games where T1 wins the first twelve and loses the last three", t, func() {
		svc := service.New(
			service.WithSource(&memSource{table: rivalryTable()}),
			service.WithRecentGames(5),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		snap, err := svc.Snapshot()
		So(err, ShouldBeNil)

		Convey("A zero window projects over every game", func() {
			got, err := svc.Project(ctx, "T1", "Gen.G", service.FullHistory)
			So(err, ShouldBeNil)
			want := snap.Projector.Project("T1", "Gen.G", 0)
			So(got.RecentWindow, ShouldEqual, 0)
			So(got.WinProbA, ShouldEqual, want.WinProbA)
			So(got.CompositeA, ShouldEqual, want.CompositeA)
			So(got.CompositeB, ShouldEqual, want.CompositeB)
		})

		Convey("The default window projects over the recent games only", func() {
			got, err := svc.Project(ctx, "T1", "Gen.G", service.DefaultWindow)
			So(err, ShouldBeNil)
			want := snap.Projector.Project("T1", "Gen.G", 5)
			So(got.RecentWindow, ShouldEqual, 5)
			So(got.WinProbA, ShouldEqual, want.WinProbA)

			full, err := svc.Project(ctx, "T1", "Gen.G", service.FullHistory)
			So(err, ShouldBeNil)
			So(got.WinProbA, ShouldNotEqual, full.WinProbA)
		})

		Convey("Profiles follow the same window rules", func() {
			full, err := svc.Profile(ctx, "T1", service.FullHistory)
			So(err, ShouldBeNil)
			So(full.Summary.Games, ShouldEqual, 15)
			So(full.Summary.Wins, ShouldEqual, 12)

			recent, err := svc.Profile(ctx, "T1", service.DefaultWindow)
			So(err, ShouldBeNil)
			So(recent.Summary.Games, ShouldEqual, 5)
			So(recent.Summary.Wins, ShouldEqual, 2)
		})
	})
}
