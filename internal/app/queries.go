package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/lolhub/internal/adapters/market"
	"github.com/okian/lolhub/internal/adapters/schedule"
	"github.com/okian/lolhub/internal/domain/model"
	"github.com/okian/lolhub/internal/domain/profile"
	"github.com/okian/lolhub/internal/domain/projection"
	"github.com/okian/lolhub/internal/domain/ranking"
	"github.com/okian/lolhub/internal/domain/rating"
	"github.com/okian/lolhub/internal/domain/teamstats"
	"github.com/okian/lolhub/internal/domain/types"
	"github.com/okian/lolhub/pkg/metrics"
)

// Window selectors accepted by Profile and Project.
const (
	// DefaultWindow selects the configured recent-games window.
	DefaultWindow = -1
	// FullHistory selects every game a team has played.
	FullHistory = 0
)

// TeamProfile is a team's factor profile with its record and style labels.
type TeamProfile struct {
	Team       string            `json:"team"`
	League     string            `json:"league"`
	Rating     float64           `json:"rating"`
	Window     int               `json:"window"`
	Factors    profile.Profile   `json:"factors"`
	Playstyle  string            `json:"playstyle"`
	Strengths  []string          `json:"strengths"`
	Weaknesses []string          `json:"weaknesses"`
	Summary    teamstats.Summary `json:"summary"`
	Labels     map[string]string `json:"labels"`
}

// Fixture is a scheduled match with names mapped onto match data and a
// projection when both teams have played.
type Fixture struct {
	schedule.Match
	Projection *projection.Result `json:"projection,omitempty"`
}

// MatchupOdds pairs the model projection with market prices.
type MatchupOdds struct {
	TeamA      string      `json:"team_a"`
	TeamB      string      `json:"team_b"`
	ModelProbA float64     `json:"model_prob_a"`
	ModelProbB float64     `json:"model_prob_b"`
	Market     market.Pair `json:"market"`
	EdgeA      *float64    `json:"edge_a,omitempty"`
	EdgeB      *float64    `json:"edge_b,omitempty"`
}

// Leaderboard ranks teams by composite score. limit <= 0 or above the
// configured maximum is clamped to the maximum.
func (s *Service) Leaderboard(ctx context.Context, limit int, league string) ([]types.Entry, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > s.maxLimit {
		limit = s.maxLimit
	}
	return snap.Ranker.TopN(ctx, limit, ranking.Filter{League: league})
}

// TeamRank returns one team's leaderboard row.
func (s *Service) TeamRank(ctx context.Context, team string) (types.Entry, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return types.Entry{}, err
	}
	e, err := snap.Ranker.Rank(ctx, team)
	if errors.Is(err, ranking.ErrNotFound) {
		return types.Entry{}, fmt.Errorf("team %q: %w", team, ErrNotFound)
	}
	return e, err
}

// Profile returns a team's factor profile over its last lastN games.
// A negative lastN uses the configured default window and zero uses every game.
func (s *Service) Profile(_ context.Context, team string, lastN int) (TeamProfile, error) {
	snap, err := s.requireTeam(team)
	if err != nil {
		return TeamProfile{}, err
	}
	lastN = s.window(lastN)
	cfg := snap.Profiler.Config()
	p := snap.Profiler.Profile(team, lastN)
	strengths, weaknesses := profile.StrengthsWeaknesses(p, cfg)

	labels := make(map[string]string, len(cfg.Factors))
	for _, f := range cfg.Factors {
		labels[f.Name] = f.Label
	}
	return TeamProfile{
		Team:       team,
		League:     snap.Table.TeamLeague(team),
		Rating:     snap.Ratings.Get(team),
		Window:     lastN,
		Factors:    p,
		Playstyle:  profile.Classify(p, profile.DefaultRules()),
		Strengths:  strengths,
		Weaknesses: weaknesses,
		Summary:    teamstats.Summarize(snap.Table, team, lastN),
		Labels:     labels,
	}, nil
}

// History returns a team's rating after each game, oldest first.
func (s *Service) History(_ context.Context, team string) ([]model.HistoryEntry, error) {
	snap, err := s.requireTeam(team)
	if err != nil {
		return nil, err
	}
	return rating.HistoryFor(snap.History, team), nil
}

// Summary returns a team's record and per-game averages.
func (s *Service) Summary(_ context.Context, team string, lastN int) (teamstats.Summary, error) {
	snap, err := s.requireTeam(team)
	if err != nil {
		return teamstats.Summary{}, err
	}
	return teamstats.Summarize(snap.Table, team, lastN), nil
}

// Project forecasts teamA against teamB over the same window semantics as
// Profile. Unknown teams are projected with the starting rating and a
// neutral profile.
func (s *Service) Project(_ context.Context, teamA, teamB string, lastN int) (projection.Result, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return projection.Result{}, err
	}
	teamA, teamB = strings.TrimSpace(teamA), strings.TrimSpace(teamB)
	if teamA == "" || teamB == "" {
		return projection.Result{}, fmt.Errorf("%w: both teams are required", ErrInvalidArgument)
	}
	if teamA == teamB {
		return projection.Result{}, fmt.Errorf("%w: a team cannot play itself", ErrInvalidArgument)
	}
	metrics.RecordProjection()
	return snap.Projector.Project(teamA, teamB, s.window(lastN)), nil
}

// window maps a negative lastN to the configured default. Zero keeps the
// full history.
func (s *Service) window(lastN int) int {
	if lastN < 0 {
		return s.recentGames
	}
	return lastN
}

// HeadToHead lists the games two teams played against each other.
func (s *Service) HeadToHead(_ context.Context, teamA, teamB string) ([]teamstats.Game, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	if teamA == "" || teamB == "" || teamA == teamB {
		return nil, fmt.Errorf("%w: two distinct teams are required", ErrInvalidArgument)
	}
	return teamstats.HeadToHead(snap.Table, teamA, teamB), nil
}

// Results lists a league's played games.
func (s *Service) Results(_ context.Context, league string) ([]teamstats.Game, error) {
	snap, err := s.requireLeague(league)
	if err != nil {
		return nil, err
	}
	return teamstats.Results(snap.Table, league), nil
}

// Leagues returns the leagues present in the match data.
func (s *Service) Leagues(_ context.Context) ([]string, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Table.Leagues(), nil
}

// Teams returns a league's rating table.
func (s *Service) Teams(_ context.Context, league string) ([]rating.Standing, error) {
	snap, err := s.requireLeague(league)
	if err != nil {
		return nil, err
	}
	return rating.LeagueRankings(snap.Ratings, snap.Table.TeamsInLeague(league)), nil
}

// Upcoming returns the league's unplayed fixtures, each projected over the
// full history when both teams are known. Without a schedule provider the
// list is empty.
func (s *Service) Upcoming(ctx context.Context, league string) ([]Fixture, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	out := make([]Fixture, 0)
	if s.schedule == nil {
		return out, nil
	}
	if err := s.requireScheduled(league); err != nil {
		return nil, err
	}
	for _, m := range s.schedule.Upcoming(ctx, league) {
		m = s.normalize(m)
		f := Fixture{Match: m}
		if m.TeamA != m.TeamB && snap.Table.HasTeam(m.TeamA) && snap.Table.HasTeam(m.TeamB) {
			p := snap.Projector.Project(m.TeamA, m.TeamB, FullHistory)
			f.Projection = &p
		}
		out = append(out, f)
	}
	return out, nil
}

// Completed returns the league's finished series with normalized names.
// Without a schedule provider the list is empty.
func (s *Service) Completed(ctx context.Context, league string) ([]schedule.Match, error) {
	if _, err := s.Snapshot(); err != nil {
		return nil, err
	}
	out := make([]schedule.Match, 0)
	if s.schedule == nil {
		return out, nil
	}
	if err := s.requireScheduled(league); err != nil {
		return nil, err
	}
	for _, m := range s.schedule.Completed(ctx, league) {
		out = append(out, s.normalize(m))
	}
	return out, nil
}

func (s *Service) normalize(m schedule.Match) schedule.Match {
	m.TeamA = s.normalizer.Normalize(m.TeamA)
	m.TeamB = s.normalizer.Normalize(m.TeamB)
	return m
}

// Odds returns market prices for both teams next to the model's projection.
// ok is false when neither team is quoted or no market provider is set.
func (s *Service) Odds(ctx context.Context, teamA, teamB string) (MatchupOdds, bool, error) {
	proj, err := s.Project(ctx, teamA, teamB, FullHistory)
	if err != nil {
		return MatchupOdds{}, false, err
	}
	if s.market == nil {
		return MatchupOdds{}, false, nil
	}
	pair, ok := s.market.TeamOdds(ctx, proj.TeamA, proj.TeamB)
	if !ok {
		return MatchupOdds{}, false, nil
	}
	out := MatchupOdds{
		TeamA:      proj.TeamA,
		TeamB:      proj.TeamB,
		ModelProbA: proj.WinProbA,
		ModelProbB: proj.WinProbB,
		Market:     pair,
	}
	if pair.TeamA != nil {
		e := projection.ImpliedEdge(proj.WinProbA, pair.TeamA.Odds)
		out.EdgeA = &e
	}
	if pair.TeamB != nil {
		e := projection.ImpliedEdge(proj.WinProbB, pair.TeamB.Odds)
		out.EdgeB = &e
	}
	return out, true, nil
}

func (s *Service) requireTeam(team string) (*Snapshot, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	if !snap.Table.HasTeam(team) {
		return nil, fmt.Errorf("team %q: %w", team, ErrNotFound)
	}
	return snap, nil
}

func (s *Service) requireLeague(league string) (*Snapshot, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	for _, l := range snap.Table.Leagues() {
		if l == league {
			return snap, nil
		}
	}
	return nil, fmt.Errorf("league %q: %w", league, ErrNotFound)
}

// requireScheduled rejects leagues the schedule provider has no fixtures for.
func (s *Service) requireScheduled(league string) error {
	for _, l := range s.schedule.Leagues() {
		if l == league {
			return nil
		}
	}
	return fmt.Errorf("league %q has no schedule: %w", league, ErrNotFound)
}
