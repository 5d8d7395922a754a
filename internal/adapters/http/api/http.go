// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/okian/lolhub/internal/adapters/schedule"
	service "github.com/okian/lolhub/internal/app"
	"github.com/okian/lolhub/internal/domain/model"
	"github.com/okian/lolhub/internal/domain/projection"
	"github.com/okian/lolhub/internal/domain/rating"
	"github.com/okian/lolhub/internal/domain/teamstats"
	"github.com/okian/lolhub/internal/domain/types"
	"github.com/okian/lolhub/pkg/logger"
)

const defaultMaxLimit = 100

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	StatsProvider
	LeaderboardDependencies
	TeamDependencies
	LeagueDependencies
	MatchupDependencies
}

// LeaderboardDependencies defines the interface for leaderboard operations.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, limit int, league string) ([]Entry, error)
}

// TeamDependencies defines the per-team read operations.
type TeamDependencies interface {
	TeamRank(ctx context.Context, team string) (Entry, error)
	History(ctx context.Context, team string) ([]model.HistoryEntry, error)
	Profile(ctx context.Context, team string, lastN int) (service.TeamProfile, error)
}

// LeagueDependencies defines the per-league read operations.
type LeagueDependencies interface {
	Leagues(ctx context.Context) ([]string, error)
	Teams(ctx context.Context, league string) ([]rating.Standing, error)
	Results(ctx context.Context, league string) ([]teamstats.Game, error)
	Upcoming(ctx context.Context, league string) ([]service.Fixture, error)
	Completed(ctx context.Context, league string) ([]schedule.Match, error)
}

// MatchupDependencies defines the two-team operations.
type MatchupDependencies interface {
	Project(ctx context.Context, teamA, teamB string, lastN int) (projection.Result, error)
	HeadToHead(ctx context.Context, teamA, teamB string) ([]teamstats.Game, error)
	Odds(ctx context.Context, teamA, teamB string) (service.MatchupOdds, bool, error)
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxLimit caps the leaderboard limit parameter.
func WithMaxLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithAllowedOrigins sets the CORS allow list.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.origins = origins
		}
	}
}

// WithLogger sets the access logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	maxLimit int
	origins  []string
	log      logger.Logger

	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	leaderboardHandler *LeaderboardHandler
	teamHandler        *TeamHandler
	leagueHandler      *LeagueHandler
	matchupHandler     *MatchupHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{maxLimit: defaultMaxLimit, origins: []string{"*"}, log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps)
	s.leaderboardHandler = NewLeaderboardHandler(deps, s.maxLimit)
	s.teamHandler = NewTeamHandler(deps)
	s.leagueHandler = NewLeagueHandler(deps)
	s.matchupHandler = NewMatchupHandler(deps)
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(r chi.Router) {
	r.Use(RequestID)
	r.Use(AccessLog(s.log))
	r.Use(MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         int((12 * time.Hour).Seconds()),
	}))

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/stats", s.statsHandler.HandleStats)
	r.Get("/leaderboard", s.leaderboardHandler.HandleGetLeaderboard)

	r.Route("/leagues", func(r chi.Router) {
		r.Get("/", s.leagueHandler.HandleLeagues)
		r.Get("/{league}/teams", s.leagueHandler.HandleTeams)
		r.Get("/{league}/results", s.leagueHandler.HandleResults)
		r.Get("/{league}/upcoming", s.leagueHandler.HandleUpcoming)
		r.Get("/{league}/completed", s.leagueHandler.HandleCompleted)
	})

	r.Route("/teams/{team}", func(r chi.Router) {
		r.Get("/", s.teamHandler.HandleTeam)
		r.Get("/history", s.teamHandler.HandleHistory)
		r.Get("/profile", s.teamHandler.HandleProfile)
	})

	r.Get("/matchup", s.matchupHandler.HandleMatchup)
	r.Get("/head-to-head", s.matchupHandler.HandleHeadToHead)
	r.Get("/odds", s.matchupHandler.HandleOdds)
}

// Router returns a chi router with every route registered.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service and API error kinds onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrLimitExceeded):
		writeError(w, http.StatusBadRequest, "limit_exceeded", err)
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, ErrNotFound), errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, ErrUnavailable), errors.Is(err, service.ErrNotReady):
		writeError(w, http.StatusServiceUnavailable, "not_ready", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// intParam parses an optional non-negative integer query parameter.
// Missing values yield 0.
func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New("invalid " + name)
	}
	return n, nil
}

// windowParam parses the optional last_n parameter. A missing value selects
// the service's default window and 0 selects the full history.
func windowParam(r *http.Request) (int, error) {
	if r.URL.Query().Get("last_n") == "" {
		return service.DefaultWindow, nil
	}
	return intParam(r, "last_n")
}
