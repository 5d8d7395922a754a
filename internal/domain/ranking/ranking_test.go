package ranking_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/lolhub/internal/domain/model"
	"github.com/okian/lolhub/internal/domain/profile"
	"github.com/okian/lolhub/internal/domain/projection"
	"github.com/okian/lolhub/internal/domain/ranking"
	"github.com/okian/lolhub/internal/domain/rating"
	. "github.com/smartystreets/goconvey/convey"
)

func game(id string, day int, league, blue, red string, blueWins bool, blueKills, redKills float64) model.Table {
	date := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day)
	br, rr := 0, 1
	if blueWins {
		br, rr = 1, 0
	}
	return model.Table{
		{GameID: id, Date: date, League: league, Team: blue, Side: model.SideBlue, Result: br, TotalGold: 55000, GameLength: 1800,
			Stats: map[string]float64{model.StatKills: blueKills, model.StatDeaths: redKills}},
		{GameID: id, Date: date, League: league, Team: red, Side: model.SideRed, Result: rr, TotalGold: 50000, GameLength: 1800,
			Stats: map[string]float64{model.StatKills: redKills, model.StatDeaths: blueKills}},
	}
}

func fixture() model.Table {
	var t model.Table
	t = append(t, game("1", 0, "LCK", "T1", "DRX", true, 20, 8)...)
	t = append(t, game("2", 1, "LCK", "Gen.G", "DRX", true, 15, 10)...)
	t = append(t, game("3", 2, "LCK", "T1", "Gen.G", true, 18, 12)...)
	t = append(t, game("4", 3, "LEC", "G2", "Fnatic", true, 22, 9)...)
	t = append(t, game("5", 4, "LEC", "Fnatic", "MKOI", false, 11, 14)...)
	return t
}

func newRanker(t model.Table) *ranking.Ranker {
	res, err := rating.NewEngine().Compute(context.Background(), t)
	So(err, ShouldBeNil)
	return ranking.New(t, res.Ratings, profile.New(t, profile.DefaultConfig()), projection.DefaultWeights())
}

func TestRanker_TopN(t *testing.T) {
	Convey("Given a ranker over two leagues", t, func() {
		table := fixture()
		r := newRanker(table)
		ctx := context.Background()

		Convey("When asking for more rows than teams", func() {
			entries, err := r.TopN(ctx, 100, ranking.Filter{})
			So(err, ShouldBeNil)

			Convey("Then every team appears exactly once", func() {
				So(entries, ShouldHaveLength, len(table.Teams()))
				seen := map[string]int{}
				for _, e := range entries {
					seen[e.Team]++
				}
				for _, team := range table.Teams() {
					So(seen[team], ShouldEqual, 1)
				}
			})

			Convey("And composites never increase down the table", func() {
				for i := 1; i < len(entries); i++ {
					So(entries[i].Composite, ShouldBeLessThanOrEqualTo, entries[i-1].Composite)
					So(entries[i].Rank, ShouldEqual, i+1)
				}
				So(entries[0].Rank, ShouldEqual, 1)
			})

			Convey("And records and win rates come from the team's games", func() {
				for _, e := range entries {
					if e.Team == "T1" {
						So(e.Record, ShouldEqual, "2-0")
						So(e.WinRate, ShouldEqual, 1.0)
						So(e.League, ShouldEqual, "LCK")
					}
					if e.Team == "DRX" {
						So(e.Wins, ShouldEqual, 0)
						So(e.Losses, ShouldEqual, 2)
					}
				}
			})
		})

		Convey("When truncating", func() {
			entries, err := r.TopN(ctx, 2, ranking.Filter{})
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 2)
		})

		Convey("When filtering by league", func() {
			entries, err := r.TopN(ctx, 0, ranking.Filter{League: "LEC"})
			So(err, ShouldBeNil)

			Convey("Then only that league's teams are ranked from 1", func() {
				So(entries, ShouldHaveLength, 3)
				So(entries[0].Rank, ShouldEqual, 1)
				for _, e := range entries {
					So(e.League, ShouldEqual, "LEC")
				}
			})
		})

		Convey("When looking up a single team", func() {
			e, err := r.Rank(ctx, "G2")
			So(err, ShouldBeNil)
			So(e.Team, ShouldEqual, "G2")
			So(e.Rank, ShouldBeGreaterThan, 0)

			_, err = r.Rank(ctx, "Nobody")
			So(errors.Is(err, ranking.ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("Given teams with equal composites", t, func() {
		stats := map[string]float64{model.StatKills: 10}
		date := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		table := model.Table{
			{GameID: "z", Date: date, League: "L", Team: "Zeta", Side: model.SideBlue, Stats: stats},
			{GameID: "a", Date: date, League: "L", Team: "Alpha", Side: model.SideBlue, Stats: stats},
			{GameID: "m", Date: date, League: "L", Team: "Mid", Side: model.SideBlue, Stats: stats},
		}
		r := newRanker(table)

		Convey("Then ties are broken by team name", func() {
			entries, err := r.TopN(context.Background(), 0, ranking.Filter{})
			So(err, ShouldBeNil)
			So(entries[0].Team, ShouldEqual, "Alpha")
			So(entries[1].Team, ShouldEqual, "Mid")
			So(entries[2].Team, ShouldEqual, "Zeta")
			So(entries[0].Composite, ShouldEqual, entries[2].Composite)
		})
	})
}

func TestRanker_Composite(t *testing.T) {
	Convey("Given a flat profile", t, func() {
		r := ranking.New(nil, rating.NewState(rating.StartingRating), profile.New(nil, profile.DefaultConfig()), projection.DefaultWeights())

		Convey("Then a 200 point rating lead adds the rating weight", func() {
			So(r.Composite(profile.Profile{}, 1700), ShouldAlmostEqual, 0.3, 1e-12)
			So(r.Composite(profile.Profile{}, 1500), ShouldEqual, 0)
		})
	})

	Convey("Given a ranker measuring from a custom starting rating", t, func() {
		r := ranking.New(nil, rating.NewState(1200), profile.New(nil, profile.DefaultConfig()), projection.DefaultWeights(),
			ranking.WithStartingRating(1200))

		Convey("Then the rating term is measured from that baseline", func() {
			So(r.Composite(profile.Profile{}, 1200), ShouldEqual, 0)
			So(r.Composite(profile.Profile{}, 1400), ShouldAlmostEqual, 0.3, 1e-12)
		})
	})
}
