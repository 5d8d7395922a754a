// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and LOLHUB_ env vars.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/lolhub/internal/domain/profile"
	"github.com/okian/lolhub/internal/domain/projection"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataPath is the match CSV read when PostgresURL is empty.
	DataPath string `koanf:"data_path"`

	// PostgresURL selects the Postgres match source when set.
	PostgresURL string `koanf:"postgres_url"`

	// RedisURL enables the shared response cache when set.
	RedisURL string `koanf:"redis_url"`

	// ByLeague computes ratings per league instead of one global pool.
	ByLeague bool `koanf:"by_league"`

	// RecentGames is the default profile window.
	RecentGames int `koanf:"recent_games"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// RefreshCron schedules snapshot reloads. Empty disables them.
	RefreshCron string `koanf:"refresh_cron"`

	ScheduleURL    string `koanf:"schedule_url"`
	ScheduleAPIKey string `koanf:"schedule_api_key"`
	MarketURL      string `koanf:"market_url"`

	// HTTPTimeoutMS bounds every upstream HTTP call.
	HTTPTimeoutMS int `koanf:"http_timeout_ms"`

	ScheduleCacheTTLS int `koanf:"schedule_cache_ttl_s"`
	OddsCacheTTLS     int `koanf:"odds_cache_ttl_s"`

	// FactorWeights blends rating and factor scores in projections.
	FactorWeights projection.Weights `koanf:"factor_weights"`

	// TeamAliases maps upstream team names onto match data names.
	TeamAliases map[string]string `koanf:"team_aliases"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		DataPath:            "data/matches.csv",
		ByLeague:            true,
		RecentGames:         10,
		MaxLeaderboardLimit: 100,
		RefreshCron:         "@every 1h",
		ScheduleURL:         "https://esports-api.lolesports.com/persisted/gw",
		MarketURL:           "https://gamma-api.polymarket.com",
		HTTPTimeoutMS:       10_000,
		ScheduleCacheTTLS:   1800,
		OddsCacheTTLS:       300,
		FactorWeights:       projection.DefaultWeights(),
		TeamAliases:         map[string]string{},
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DataPath == "" && c.PostgresURL == "":
		return fmt.Errorf("%w: one of data_path or postgres_url is required", ErrInvalidConfig)
	case c.RecentGames <= 0:
		return fmt.Errorf("%w: recent_games must be positive", ErrInvalidConfig)
	case c.MaxLeaderboardLimit <= 0:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	case c.HTTPTimeoutMS <= 0:
		return fmt.Errorf("%w: http_timeout_ms must be positive", ErrInvalidConfig)
	case c.ScheduleCacheTTLS < 0 || c.OddsCacheTTLS < 0:
		return fmt.Errorf("%w: cache ttls must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if err := c.FactorWeights.ValidateFor(profile.DefaultConfig().Names()); err != nil {
		return fmt.Errorf("%w: factor_weights: %v", ErrInvalidConfig, err)
	}
	return nil
}

// HTTPTimeout returns the upstream HTTP timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMS) * time.Millisecond
}

// ScheduleCacheTTL returns how long schedule responses are cached.
func (c *Config) ScheduleCacheTTL() time.Duration {
	return time.Duration(c.ScheduleCacheTTLS) * time.Second
}

// OddsCacheTTL returns how long market responses are cached.
func (c *Config) OddsCacheTTL() time.Duration {
	return time.Duration(c.OddsCacheTTLS) * time.Second
}
