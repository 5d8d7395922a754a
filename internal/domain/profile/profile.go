package profile

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/okian/lolhub/internal/domain/model"
	"golang.org/x/sync/errgroup"
)

// Profile maps factor keys to weighted z-score averages.
type Profile map[string]float64

// Get returns a factor score, zero when missing.
func (p Profile) Get(name string) float64 { return p[name] }

// Profiler computes team profiles against a fixed table. It holds no mutable
// state after construction and is safe for concurrent use.
type Profiler struct {
	cfg        Config
	population Population
	teamRows   map[string]model.Table
}

// New builds a Profiler and precomputes the population moments of table.
func New(table model.Table, cfg Config) *Profiler {
	teamRows := make(map[string]model.Table)
	for _, r := range table {
		teamRows[r.Team] = append(teamRows[r.Team], r)
	}
	for team, rows := range teamRows {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
		teamRows[team] = rows
	}
	return &Profiler{
		cfg:        cfg,
		population: ComputePopulation(table, cfg.columns()),
		teamRows:   teamRows,
	}
}

// Config returns the factor configuration.
func (p *Profiler) Config() Config { return p.cfg }

// Population returns the precomputed column moments.
func (p *Profiler) Population() Population { return p.population }

// Games returns a team's games, restricted to the most recent lastN when
// lastN > 0.
func (p *Profiler) Games(team string, lastN int) model.Table {
	rows := p.teamRows[team]
	if lastN > 0 && len(rows) > lastN {
		rows = rows[len(rows)-lastN:]
	}
	return rows
}

// Profile computes a team's factor scores. A team without games gets zero
// for every factor. Columns the team or the population lack are skipped from
// both the weighted sum and the weight total.
func (p *Profiler) Profile(team string, lastN int) Profile {
	out := make(Profile, len(p.cfg.Factors))
	rows := p.Games(team, lastN)
	if len(rows) == 0 {
		for _, f := range p.cfg.Factors {
			out[f.Name] = 0
		}
		return out
	}

	for _, f := range p.cfg.Factors {
		weighted, total := 0.0, 0.0
		for _, col := range f.Columns {
			m, ok := p.population[col.Name]
			if !ok {
				continue
			}
			v, ok := columnMean(rows, col.Name)
			if !ok {
				continue
			}
			weighted += (v - m.Mean) / m.Std * col.Weight
			total += abs(col.Weight)
		}
		if total == 0 {
			out[f.Name] = 0
			continue
		}
		out[f.Name] = weighted / total
	}
	return out
}

// Profiles computes profiles for many teams concurrently.
func (p *Profiler) Profiles(ctx context.Context, teams []string, lastN int) (map[string]Profile, error) {
	var mu sync.Mutex
	out := make(map[string]Profile, len(teams))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, team := range teams {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			prof := p.Profile(team, lastN)
			mu.Lock()
			out[team] = prof
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compute profiles: %w", err)
	}
	return out, nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
