// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okian/lolhub/internal/adapters/repository"
	"github.com/okian/lolhub/internal/adapters/schedule"
	"github.com/okian/lolhub/internal/domain/model"
	"github.com/okian/lolhub/internal/domain/profile"
	"github.com/okian/lolhub/internal/domain/projection"
	"github.com/okian/lolhub/internal/domain/ranking"
	"github.com/okian/lolhub/internal/domain/rating"
	"github.com/okian/lolhub/pkg/logger"
	"github.com/okian/lolhub/pkg/metrics"
)

const (
	defaultRecentGames   = 10
	defaultMaxLimit      = 100
	defaultReloadTimeout = 5 * time.Minute
)

// Snapshot is an immutable view of the ratings built from one load of the
// match table.
type Snapshot struct {
	Table          model.Table
	Ratings        *rating.State
	History        []model.HistoryEntry
	Profiler       *profile.Profiler
	Projector      *projection.Projector
	Ranker         *ranking.Ranker
	GamesProcessed int
	GamesSkipped   int
	BuiltAt        time.Time
	LatestGame     time.Time
}

// Service owns the current snapshot and answers queries against it.
type Service struct {
	mu       sync.RWMutex
	snapshot *Snapshot

	// lifecycle
	lifeMu   sync.Mutex
	reloadMu sync.Mutex
	started  bool
	cron     *cron.Cron

	// collaborators
	source     repository.Source
	schedule   ScheduleProvider
	market     MarketProvider
	normalizer *schedule.Normalizer

	// configuration
	engineOpts    []rating.Option
	profileCfg    profile.Config
	weights       projection.Weights
	recentGames   int
	maxLimit      int
	refreshSpec   string
	reloadTimeout time.Duration

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		normalizer:    schedule.NewNormalizer(nil),
		profileCfg:    profile.DefaultConfig(),
		weights:       projection.DefaultWeights(),
		recentGames:   defaultRecentGames,
		maxLimit:      defaultMaxLimit,
		reloadTimeout: defaultReloadTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the first snapshot and schedules periodic reloads.
func (s *Service) Start(ctx context.Context) error {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if err := s.weights.ValidateFor(s.profileCfg.Names()); err != nil {
		return err
	}

	s.logger.Info(ctx, "starting rating service...")
	if err := s.Reload(ctx); err != nil {
		return err
	}

	if s.refreshSpec != "" {
		c := cron.New()
		if _, err := c.AddFunc(s.refreshSpec, s.scheduledReload); err != nil {
			return fmt.Errorf("%w: refresh cron %q: %v", ErrInvalidArgument, s.refreshSpec, err)
		}
		c.Start()
		s.cron = c
	}

	s.started = true
	s.logger.Info(ctx, "rating service started",
		logger.Int("recentGames", s.recentGames),
		logger.Int("maxLeaderboardLimit", s.maxLimit),
		logger.String("refreshCron", s.refreshSpec),
	)
	return nil
}

// Stop halts scheduled reloads and waits for a running one to finish.
func (s *Service) Stop() {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(context.Background(), "stopping rating service...")
	if s.cron != nil {
		<-s.cron.Stop().Done()
		s.cron = nil
	}
	s.started = false
	s.logger.Info(context.Background(), "rating service stopped")
}

func (s *Service) scheduledReload() {
	ctx, cancel := context.WithTimeout(context.Background(), s.reloadTimeout)
	defer cancel()
	if err := s.Reload(ctx); err != nil {
		s.logger.Error(ctx, "scheduled reload failed", logger.Error(err))
	}
}

// Reload rebuilds the snapshot from the source. On failure the previous
// snapshot stays in place.
func (s *Service) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.source == nil {
		return ErrNoSource
	}

	start := time.Now()
	snap, err := s.build(ctx)
	elapsed := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.RecordReload(false, elapsed)
		metrics.RecordErrorByComponent("reload", "build")
		s.logger.Error(ctx, "snapshot rebuild failed", logger.Error(err))
		return err
	}
	metrics.RecordReload(true, elapsed)

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	metrics.RecordGamesProcessed(snap.GamesProcessed)
	metrics.RecordGamesSkipped(snap.GamesSkipped)
	metrics.UpdateTeamsRated(snap.Ratings.Len())
	metrics.UpdateLeagues(len(snap.Table.Leagues()))
	metrics.RecordSnapshotPublished(snap.BuiltAt, snap.LatestGame)

	s.logger.Info(ctx, "snapshot published",
		logger.Int("rows", len(snap.Table)),
		logger.Int("teams", snap.Ratings.Len()),
		logger.Int("gamesProcessed", snap.GamesProcessed),
		logger.Int("gamesSkipped", snap.GamesSkipped),
		logger.Float64("tookMs", elapsed),
	)
	return nil
}

func (s *Service) build(ctx context.Context) (*Snapshot, error) {
	table, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}

	engine := rating.NewEngine(s.engineOpts...)
	res, err := engine.Compute(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("compute ratings: %w", err)
	}

	profiler := profile.New(table, s.profileCfg)
	return &Snapshot{
		Table:          table,
		Ratings:        res.Ratings,
		History:        res.History,
		Profiler:       profiler,
		Projector:      projection.New(profiler, res.Ratings, projection.WithWeights(s.weights)),
		Ranker:         ranking.New(table, res.Ratings, profiler, s.weights, ranking.WithStartingRating(engine.StartingRating())),
		GamesProcessed: res.GamesProcessed,
		GamesSkipped:   res.GamesSkipped,
		BuiltAt:        time.Now().UTC(),
		LatestGame:     table.Latest(),
	}, nil
}

// Snapshot returns the current snapshot.
func (s *Service) Snapshot() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, ErrNotReady
	}
	return s.snapshot, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.lifeMu.Lock()
	started := s.started
	s.lifeMu.Unlock()

	stats := map[string]interface{}{
		"started":             started,
		"recentGames":         s.recentGames,
		"maxLeaderboardLimit": s.maxLimit,
		"refreshCron":         s.refreshSpec,
	}

	snap, err := s.Snapshot()
	if err != nil {
		return stats
	}
	stats["rows"] = len(snap.Table)
	stats["teams"] = snap.Ratings.Len()
	stats["leagues"] = len(snap.Table.Leagues())
	stats["gamesProcessed"] = snap.GamesProcessed
	stats["gamesSkipped"] = snap.GamesSkipped
	stats["builtAt"] = snap.BuiltAt
	stats["latestGame"] = snap.LatestGame
	return stats
}

// Freshness reports when the underlying match data last changed.
func (s *Service) Freshness(ctx context.Context) (time.Time, error) {
	if s.source == nil {
		return time.Time{}, ErrNoSource
	}
	return s.source.Freshness(ctx)
}
