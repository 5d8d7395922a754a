package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/lolhub/internal/config"
	"github.com/okian/lolhub/internal/domain/types"
	"github.com/okian/lolhub/pkg/logger"
)

const matchesCSV = `game_id,date,league,team_name,side,result,total_gold,game_length_seconds,gold_diff_at_15
g1,2024-01-10 10:00:00,LCK,T1,Blue,1,62000,1800,1500
g1,2024-01-10 10:00:00,LCK,Gen.G,Red,0,55000,1800,-1500
g2,2024-01-11 10:00:00,LCK,Gen.G,Blue,1,60000,1900,800
g2,2024-01-11 10:00:00,LCK,DRX,Red,0,54000,1900,-800
g3,2024-01-12 10:00:00,LEC,G2,Blue,0,50000,2000,-300
g3,2024-01-12 10:00:00,LEC,FNC,Red,1,56000,2000,300
`

func testConfig(t *testing.T) *config.Config {
	path := filepath.Join(t.TempDir(), "matches.csv")
	if err := os.WriteFile(path, []byte(matchesCSV), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := config.New()
	cfg.DataPath = path
	cfg.RefreshCron = ""
	return cfg
}

func TestBuild(t *testing.T) {
	convey.Convey("Given a config pointing at a CSV file", t, func() {
		ctx := context.Background()
		cfg := testConfig(t)

		app, err := build(ctx, cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		defer app.Close()

		convey.Convey("When the service starts", func() {
			convey.So(app.service.Start(ctx), convey.ShouldBeNil)
			defer app.service.Stop()

			convey.Convey("Then the leaderboard is served over HTTP", func() {
				req := httptest.NewRequest(http.MethodGet, "/leaderboard?limit=3", http.NoBody)
				w := httptest.NewRecorder()
				app.router.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				var entries []types.Entry
				convey.So(json.Unmarshal(w.Body.Bytes(), &entries), convey.ShouldBeNil)
				convey.So(entries, convey.ShouldHaveLength, 3)
				convey.So(entries[0].Rank, convey.ShouldEqual, 1)
			})

			convey.Convey("Then the API docs are mounted", func() {
				req := httptest.NewRequest(http.MethodGet, "/api-docs", http.NoBody)
				w := httptest.NewRecorder()
				app.router.ServeHTTP(w, req)
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			})

			convey.Convey("Then leagues are listed from the data", func() {
				req := httptest.NewRequest(http.MethodGet, "/leagues", http.NoBody)
				w := httptest.NewRecorder()
				app.router.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				var leagues []string
				convey.So(json.Unmarshal(w.Body.Bytes(), &leagues), convey.ShouldBeNil)
				convey.So(leagues, convey.ShouldResemble, []string{"LCK", "LEC"})
			})
		})

		convey.Convey("Then queries before start report not ready", func() {
			req := httptest.NewRequest(http.MethodGet, "/leaderboard", http.NoBody)
			w := httptest.NewRecorder()
			app.router.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestBuildFailures(t *testing.T) {
	convey.Convey("Given an unreachable redis url", t, func() {
		cfg := testConfig(t)
		cfg.RedisURL = "not-a-url"

		_, err := build(context.Background(), cfg, logger.Nop())
		convey.So(err, convey.ShouldNotBeNil)
	})

	convey.Convey("Given a missing CSV file", t, func() {
		cfg := config.New()
		cfg.DataPath = filepath.Join(t.TempDir(), "missing.csv")
		cfg.RefreshCron = ""

		app, err := build(context.Background(), cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		defer app.Close()

		convey.So(app.service.Start(context.Background()), convey.ShouldNotBeNil)
	})
}
