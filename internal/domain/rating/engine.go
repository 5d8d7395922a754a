package rating

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/okian/lolhub/internal/domain/model"
	"golang.org/x/sync/errgroup"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithBaseK sets the base step size before margin scaling.
func WithBaseK(k float64) Option {
	return func(e *Engine) {
		if k > 0 {
			e.baseK = k
		}
	}
}

// WithStartingRating sets the rating given to unseen teams.
func WithStartingRating(r float64) Option {
	return func(e *Engine) {
		if r > 0 {
			e.start = r
		}
	}
}

// WithByLeague toggles per-league isolation. Enabled by default.
func WithByLeague(byLeague bool) Option {
	return func(e *Engine) {
		e.byLeague = byLeague
	}
}

// WithParallelism bounds how many league partitions are rated concurrently.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

// Engine walks games chronologically and updates ratings.
type Engine struct {
	baseK       float64
	start       float64
	byLeague    bool
	parallelism int
}

// NewEngine creates an engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		baseK:       BaseK,
		start:       StartingRating,
		byLeague:    true,
		parallelism: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the output of a full rating computation.
type Result struct {
	Ratings        *State
	History        []model.HistoryEntry
	GamesProcessed int
	GamesSkipped   int
}

// game is a validated pair of rows sharing a game id.
type game struct {
	id   string
	blue model.MatchRow
	red  model.MatchRow
}

// pairGames groups rows by game id and keeps well-formed games: exactly two
// rows, one per side. Games come back ordered by date, then game id.
func pairGames(rows []model.MatchRow) (games []game, skipped int) {
	groups := make(map[string][]model.MatchRow)
	order := make([]string, 0)
	for _, r := range rows {
		if _, ok := groups[r.GameID]; !ok {
			order = append(order, r.GameID)
		}
		groups[r.GameID] = append(groups[r.GameID], r)
	}

	games = make([]game, 0, len(order))
	for _, id := range order {
		g := groups[id]
		if len(g) != 2 {
			skipped++
			continue
		}
		a, b := g[0], g[1]
		if a.Side == model.SideRed && b.Side == model.SideBlue {
			a, b = b, a
		}
		if a.Side != model.SideBlue || b.Side != model.SideRed {
			skipped++
			continue
		}
		games = append(games, game{id: id, blue: a, red: b})
	}

	sort.Slice(games, func(i, j int) bool {
		di, dj := games[i].blue.Date, games[j].blue.Date
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return games[i].id < games[j].id
	})
	return games, skipped
}

// Process rates one partition of rows, labelling history with league.
// Malformed games are skipped without touching the state.
func (e *Engine) Process(rows []model.MatchRow, league string) Result {
	state := NewState(e.start)
	games, skipped := pairGames(rows)
	history := make([]model.HistoryEntry, 0, len(games)*2)

	for _, g := range games {
		blueTeam, redTeam := g.blue.Team, g.red.Team
		eloBlue, eloRed := state.Get(blueTeam), state.Get(redTeam)

		expBlue := ExpectedWinProb(eloBlue, eloRed)
		expRed := 1 - expBlue

		actualBlue := 0.0
		if g.blue.Won() {
			actualBlue = 1.0
		}
		actualRed := 1 - actualBlue

		winner, loser := g.blue, g.red
		if !g.blue.Won() {
			winner, loser = g.red, g.blue
		}
		k := e.baseK * MarginMultiplier(winner.TotalGold, loser.TotalGold, winner.GameLength)

		state.Set(blueTeam, eloBlue+k*(actualBlue-expBlue))
		state.Set(redTeam, eloRed+k*(actualRed-expRed))

		history = append(history,
			model.HistoryEntry{Team: blueTeam, Rating: state.Get(blueTeam), Date: g.blue.Date, GameID: g.id, League: league},
			model.HistoryEntry{Team: redTeam, Rating: state.Get(redTeam), Date: g.blue.Date, GameID: g.id, League: league},
		)
	}

	return Result{
		Ratings:        state,
		History:        history,
		GamesProcessed: len(games),
		GamesSkipped:   skipped,
	}
}

// Compute rates the whole table. In per-league mode each league is an
// independent partition; partitions run concurrently and are merged in
// league name order.
func (e *Engine) Compute(ctx context.Context, table model.Table) (Result, error) {
	if !e.byLeague {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("compute ratings: %w", err)
		}
		return e.Process(table, GlobalLeague), nil
	}

	leagues := table.Leagues()
	parts := make([]Result, len(leagues))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for i, league := range leagues {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			parts[i] = e.Process(table.ForLeague(league), league)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("compute ratings: %w", err)
	}

	merged := Result{Ratings: NewState(e.start)}
	for _, p := range parts {
		merged.Ratings.Merge(p.Ratings)
		merged.History = append(merged.History, p.History...)
		merged.GamesProcessed += p.GamesProcessed
		merged.GamesSkipped += p.GamesSkipped
	}
	sort.SliceStable(merged.History, func(i, j int) bool {
		return merged.History[i].Date.Before(merged.History[j].Date)
	})
	return merged, nil
}

// StartingRating returns the rating unseen teams receive.
func (e *Engine) StartingRating() float64 { return e.start }
