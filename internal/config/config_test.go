package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/lolhub/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.ByLeague, convey.ShouldBeTrue)
			convey.So(cfg.RecentGames, convey.ShouldEqual, 10)
			convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
			convey.So(cfg.FactorWeights.Elo, convey.ShouldEqual, 0.30)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then durations are derived from the numeric fields", func() {
			convey.So(cfg.HTTPTimeout(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.ScheduleCacheTTL(), convey.ShouldEqual, 30*time.Minute)
			convey.So(cfg.OddsCacheTTL(), convey.ShouldEqual, 5*time.Minute)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one invalid field", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "" }},
			{"no source", func(c *config.Config) { c.DataPath = ""; c.PostgresURL = "" }},
			{"zero window", func(c *config.Config) { c.RecentGames = 0 }},
			{"zero limit", func(c *config.Config) { c.MaxLeaderboardLimit = 0 }},
			{"zero timeout", func(c *config.Config) { c.HTTPTimeoutMS = 0 }},
			{"negative ttl", func(c *config.Config) { c.OddsCacheTTLS = -1 }},
			{"bad log format", func(c *config.Config) { c.LogFormat = "xml" }},
			{"unbalanced blend", func(c *config.Config) { c.FactorWeights.Elo = 0.9 }},
			{"misspelled factor keys", func(c *config.Config) {
				c.FactorWeights.Factors = map[string]float64{"earlygame": 0.2, "objective": 0.2, "fighting": 0.15, "vision": 0.15}
			}},
		}
		for _, tc := range cases {
			convey.Convey("Then "+tc.name+" is rejected", func() {
				cfg := config.New()
				tc.mutate(cfg)
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})

	convey.Convey("Given a postgres url without a data path", t, func() {
		cfg := config.New()
		cfg.DataPath = ""
		cfg.PostgresURL = "postgres://localhost/lolhub"
		convey.So(cfg.Validate(), convey.ShouldBeNil)
	})
}
