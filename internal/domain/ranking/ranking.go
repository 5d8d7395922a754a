// Package ranking builds the composite-score power rankings.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/okian/lolhub/internal/domain/model"
	"github.com/okian/lolhub/internal/domain/profile"
	"github.com/okian/lolhub/internal/domain/projection"
	"github.com/okian/lolhub/internal/domain/rating"
	"github.com/okian/lolhub/internal/domain/types"
)

// Sentinel kinds for ranking errors.
var (
	ErrNotFound = errors.New("team not found")
)

// Filter narrows the leaderboard.
type Filter struct {
	// League keeps only teams whose league matches; empty keeps all.
	League string
}

// Ranker produces leaderboards from a table, its ratings and profiles.
type Ranker struct {
	table    model.Table
	ratings  projection.RatingProvider
	profiler *profile.Profiler
	weights  projection.Weights
	rules    []profile.Rule
	start    float64
}

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithStartingRating sets the baseline the rating term is measured from. It
// should match the engine that produced the ratings.
func WithStartingRating(r float64) Option {
	return func(rk *Ranker) {
		if r > 0 {
			rk.start = r
		}
	}
}

// New creates a Ranker.
func New(table model.Table, ratings projection.RatingProvider, profiler *profile.Profiler, weights projection.Weights, opts ...Option) *Ranker {
	r := &Ranker{
		table:    table,
		ratings:  ratings,
		profiler: profiler,
		weights:  weights,
		rules:    profile.DefaultRules(),
		start:    rating.StartingRating,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Composite scores a team: weighted factors plus the rating distance from
// the starting rating in standard deviations.
func (r *Ranker) Composite(p profile.Profile, teamRating float64) float64 {
	return r.weights.FactorComposite(p) + r.weights.Elo*((teamRating-r.start)/projection.EloScale)
}

// All ranks every team. Equal composites are ordered by team name.
func (r *Ranker) All(ctx context.Context, f Filter) ([]types.Entry, error) {
	teams := r.table.Teams()
	if f.League != "" {
		kept := teams[:0:0]
		for _, t := range teams {
			if r.table.TeamLeague(t) == f.League {
				kept = append(kept, t)
			}
		}
		teams = kept
	}

	profiles, err := r.profiler.Profiles(ctx, teams, 0)
	if err != nil {
		return nil, fmt.Errorf("rank teams: %w", err)
	}

	entries := make([]types.Entry, 0, len(teams))
	for _, team := range teams {
		entries = append(entries, r.entry(team, profiles[team]))
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Composite != entries[j].Composite {
			return entries[i].Composite > entries[j].Composite
		}
		return entries[i].Team < entries[j].Team
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// TopN returns the first n ranked teams. n <= 0 returns every team.
func (r *Ranker) TopN(ctx context.Context, n int, f Filter) ([]types.Entry, error) {
	entries, err := r.All(ctx, f)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

// Rank returns one team's leaderboard row.
func (r *Ranker) Rank(ctx context.Context, team string) (types.Entry, error) {
	entries, err := r.All(ctx, Filter{})
	if err != nil {
		return types.Entry{}, err
	}
	for _, e := range entries {
		if e.Team == team {
			return e, nil
		}
	}
	return types.Entry{}, fmt.Errorf("rank %q: %w", team, ErrNotFound)
}

func (r *Ranker) entry(team string, p profile.Profile) types.Entry {
	games := r.profiler.Games(team, 0)
	wins := 0
	for _, g := range games {
		if g.Won() {
			wins++
		}
	}
	losses := len(games) - wins
	winRate := 0.0
	if len(games) > 0 {
		winRate = float64(wins) / float64(len(games))
	}
	teamRating := r.ratings.Get(team)
	return types.Entry{
		Team:      team,
		League:    r.table.TeamLeague(team),
		Rating:    teamRating,
		Composite: r.Composite(p, teamRating),
		Playstyle: profile.Classify(p, r.rules),
		Wins:      wins,
		Losses:    losses,
		Record:    fmt.Sprintf("%d-%d", wins, losses),
		WinRate:   winRate,
	}
}
