package service

import (
	"context"
	"time"

	"github.com/okian/lolhub/internal/adapters/market"
	"github.com/okian/lolhub/internal/adapters/repository"
	"github.com/okian/lolhub/internal/adapters/schedule"
	"github.com/okian/lolhub/internal/domain/profile"
	"github.com/okian/lolhub/internal/domain/projection"
	"github.com/okian/lolhub/internal/domain/rating"
	"github.com/okian/lolhub/pkg/logger"
)

// ScheduleProvider returns league fixtures for the leagues it supports.
type ScheduleProvider interface {
	Upcoming(ctx context.Context, league string) []schedule.Match
	Completed(ctx context.Context, league string) []schedule.Match
	Leagues() []string
}

// MarketProvider prices a pair of teams.
type MarketProvider interface {
	TeamOdds(ctx context.Context, a, b string) (market.Pair, bool)
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSource sets where match rows are loaded from.
func WithSource(src repository.Source) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithSchedule sets the fixture provider.
func WithSchedule(p ScheduleProvider) Option {
	return func(s *Service) {
		s.schedule = p
	}
}

// WithMarket sets the market odds provider.
func WithMarket(p MarketProvider) Option {
	return func(s *Service) {
		s.market = p
	}
}

// WithNormalizer sets how external team names map onto match-data names.
func WithNormalizer(n *schedule.Normalizer) Option {
	return func(s *Service) {
		if n != nil {
			s.normalizer = n
		}
	}
}

// WithEngineOptions passes options to the rating engine.
func WithEngineOptions(opts ...rating.Option) Option {
	return func(s *Service) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

// WithProfileConfig sets the factor definitions.
func WithProfileConfig(cfg profile.Config) Option {
	return func(s *Service) {
		if len(cfg.Factors) > 0 {
			s.profileCfg = cfg
		}
	}
}

// WithWeights sets the composite weights.
func WithWeights(w projection.Weights) Option {
	return func(s *Service) {
		s.weights = w
	}
}

// WithRecentGames sets the default profile window.
func WithRecentGames(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recentGames = n
		}
	}
}

// WithMaxLeaderboardLimit caps leaderboard sizes.
func WithMaxLeaderboardLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithRefreshCron schedules periodic reloads. Empty disables them.
func WithRefreshCron(spec string) Option {
	return func(s *Service) {
		s.refreshSpec = spec
	}
}

// WithReloadTimeout bounds scheduled reloads.
func WithReloadTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.reloadTimeout = d
		}
	}
}
