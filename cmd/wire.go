package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/lolhub/internal/adapters/cache"
	"github.com/okian/lolhub/internal/adapters/http/api"
	"github.com/okian/lolhub/internal/adapters/http/swagger"
	"github.com/okian/lolhub/internal/adapters/market"
	"github.com/okian/lolhub/internal/adapters/repository"
	"github.com/okian/lolhub/internal/adapters/schedule"
	service "github.com/okian/lolhub/internal/app"
	"github.com/okian/lolhub/internal/config"
	"github.com/okian/lolhub/internal/domain/rating"
	"github.com/okian/lolhub/pkg/logger"
)

// application bundles the wired components and the resources they own.
type application struct {
	service *service.Service
	router  http.Handler
	closers []func()
}

// Close releases pools and connections in reverse order of creation.
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// build turns a validated config into a ready-to-start application.
func build(ctx context.Context, cfg *config.Config, log logger.Logger) (*application, error) {
	app := &application{}

	src, err := openSource(ctx, cfg, app)
	if err != nil {
		return nil, err
	}

	cc, err := openCache(ctx, cfg, log, app)
	if err != nil {
		app.Close()
		return nil, err
	}

	hc := &http.Client{Timeout: cfg.HTTPTimeout()}
	sched := schedule.New(
		schedule.WithBaseURL(cfg.ScheduleURL),
		schedule.WithAPIKey(cfg.ScheduleAPIKey),
		schedule.WithHTTPClient(hc),
		schedule.WithCache(cc, cfg.ScheduleCacheTTL()),
		schedule.WithLogger(log.Named("schedule")),
	)
	odds := market.New(
		market.WithBaseURL(cfg.MarketURL),
		market.WithHTTPClient(hc),
		market.WithCache(cc, cfg.OddsCacheTTL()),
		market.WithLogger(log.Named("market")),
		market.WithTeamNames(cfg.TeamAliases),
	)

	app.service = service.New(
		service.WithLogger(log.Named("service")),
		service.WithSource(src),
		service.WithSchedule(sched),
		service.WithMarket(odds),
		service.WithNormalizer(schedule.NewNormalizer(cfg.TeamAliases)),
		service.WithEngineOptions(rating.WithByLeague(cfg.ByLeague)),
		service.WithWeights(cfg.FactorWeights),
		service.WithRecentGames(cfg.RecentGames),
		service.WithMaxLeaderboardLimit(cfg.MaxLeaderboardLimit),
		service.WithRefreshCron(cfg.RefreshCron),
	)
	app.router = newRouter(app.service, cfg, log)
	return app, nil
}

func openSource(ctx context.Context, cfg *config.Config, app *application) (repository.Source, error) {
	if cfg.PostgresURL == "" {
		return repository.NewCSVSource(cfg.DataPath), nil
	}
	pg, err := repository.OpenPostgres(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres source: %w", err)
	}
	app.closers = append(app.closers, pg.Close)
	return pg, nil
}

func openCache(ctx context.Context, cfg *config.Config, log logger.Logger, app *application) (cache.Cache, error) {
	if cfg.RedisURL == "" {
		log.Info(ctx, "redis_url not set; using in-process cache")
		return cache.NewMemory(), nil
	}
	rc, rdb, err := cache.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("open redis cache: %w", err)
	}
	app.closers = append(app.closers, func() { _ = rdb.Close() })
	return rc, nil
}

// newRouter mounts the docs and the business API on one chi router.
func newRouter(deps api.Dependencies, cfg *config.Config, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	swagger.Register(r)
	r.Group(func(r chi.Router) {
		api.NewServer(deps,
			api.WithMaxLimit(cfg.MaxLeaderboardLimit),
			api.WithLogger(log.Named("http")),
		).Register(r)
	})
	return r
}
