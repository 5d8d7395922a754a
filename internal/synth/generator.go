package synth

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/lolhub/internal/domain/model"
)

// Spread of hidden strengths and game outcomes.
const (
	strengthStdDev  = 1.0
	outcomeScale    = 1.2
	noiseStdDev     = 0.35
	baseGold        = 55_000.0
	goldPerStrength = 2_500.0
	baseLengthSec   = 1_860.0
	lengthStdDevSec = 240.0
	gameSpacing     = 2 * time.Hour
)

var teamSuffixes = []string{
	"Dragons", "Wolves", "Titans", "Phoenix", "Ravens", "Storm", "Vipers",
	"Knights", "Comets", "Falcons", "Golems", "Sentinels", "Hydras", "Spectres",
}

type team struct {
	name     string
	strength float64
}

// Generate builds a season for every configured league. Leagues are
// generated in parallel, each from its own seeded stream, so output is
// reproducible for a given seed.
func Generate(ctx context.Context, cfg *Config) (model.Table, *Season, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	tables := make([]model.Table, len(cfg.Leagues))
	strengths := make([]map[string]float64, len(cfg.Leagues))

	g, gctx := errgroup.WithContext(ctx)
	for i, league := range cfg.Leagues {
		g.Go(func() error {
			src := newSource(cfg.Seed, uint64(i))
			t, s, err := generateLeague(gctx, cfg, league, src)
			if err != nil {
				return fmt.Errorf("league %s: %w", league, err)
			}
			tables[i], strengths[i] = t, s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	season := &Season{Strengths: make(map[string]float64)}
	var table model.Table
	for i := range tables {
		table = append(table, tables[i]...)
		for k, v := range strengths[i] {
			season.Strengths[k] = v
		}
	}
	sort.SliceStable(table, func(i, j int) bool {
		if !table[i].Date.Equal(table[j].Date) {
			return table[i].Date.Before(table[j].Date)
		}
		return table[i].GameID < table[j].GameID
	})
	season.Rows = len(table)
	season.Games = len(table) / 2
	return table, season, nil
}

// newSource derives an independent stream per league from the seed.
func newSource(seed, stream uint64) *rand.ChaCha8 {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[0:], seed)
	binary.LittleEndian.PutUint64(key[8:], stream)
	return rand.NewChaCha8(key)
}

func generateLeague(ctx context.Context, cfg *Config, league string, src *rand.ChaCha8) (model.Table, map[string]float64, error) {
	rng := rand.New(src)
	teams := make([]team, cfg.TeamsPerLeague)
	strengths := make(map[string]float64, len(teams))
	for i := range teams {
		name := fmt.Sprintf("%s %s", league, teamSuffixes[i%len(teamSuffixes)])
		if i >= len(teamSuffixes) {
			name = fmt.Sprintf("%s %d", name, i/len(teamSuffixes)+1)
		}
		teams[i] = team{name: name, strength: rng.NormFloat64() * strengthStdDev}
		strengths[name] = teams[i].strength
	}

	pairs := roundRobin(len(teams))
	table := make(model.Table, 0, 2*len(pairs)*cfg.Rounds)
	n := 0
	for round := 0; round < cfg.Rounds; round++ {
		for _, p := range pairs {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			blue, red := teams[p[0]], teams[p[1]]
			if round%2 == 1 {
				blue, red = red, blue
			}
			day := n / cfg.GamesPerDay
			slot := n % cfg.GamesPerDay
			date := cfg.Start.AddDate(0, 0, day).Add(time.Duration(slot) * gameSpacing)
			id, err := uuid.NewRandomFromReader(src)
			if err != nil {
				return nil, nil, err
			}
			table = append(table, playGame(rng, id.String(), league, date, blue, red)...)
			n++
		}
	}
	return table, strengths, nil
}

// roundRobin returns every unordered pairing of n teams using the circle
// method, so each team plays at most once per matchday.
func roundRobin(n int) [][2]int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if n%2 == 1 {
		idx = append(idx, -1)
	}
	m := len(idx)
	var out [][2]int
	for day := 0; day < m-1; day++ {
		for i := 0; i < m/2; i++ {
			a, b := idx[i], idx[m-1-i]
			if a >= 0 && b >= 0 {
				out = append(out, [2]int{a, b})
			}
		}
		// rotate everything but the first slot
		last := idx[m-1]
		copy(idx[2:], idx[1:m-1])
		idx[1] = last
	}
	return out
}

// playGame samples one game's outcome and both team rows.
func playGame(rng *rand.Rand, id, league string, date time.Time, blue, red team) []model.MatchRow {
	edge := blue.strength - red.strength + rng.NormFloat64()*noiseStdDev
	pBlue := 1 / (1 + math.Exp(-outcomeScale*edge))
	blueWins := rng.Float64() < pBlue

	length := math.Max(1_200, baseLengthSec+rng.NormFloat64()*lengthStdDevSec)
	minutes := length / 60
	gd10 := edge*600 + rng.NormFloat64()*700
	gd15 := gd10*1.6 + rng.NormFloat64()*900

	winnerGold := baseGold + goldPerStrength*math.Abs(edge) + rng.Float64()*4_000
	loserGold := winnerGold - 3_000 - rng.Float64()*8_000

	firstBloodBlue := rng.Float64() < 0.5+0.15*math.Tanh(edge)
	firstDragonBlue := rng.Float64() < 0.5+0.2*math.Tanh(edge)
	firstTowerBlue := rng.Float64() < 0.5+0.25*math.Tanh(edge)

	row := func(t team, side model.Side, won, fb, fd, ft bool, sign float64) model.MatchRow {
		gold := loserGold
		if won {
			gold = winnerGold
		}
		kills := math.Max(0, 12+4*t.strength+rng.NormFloat64()*4+boolTo(won)*6)
		deaths := math.Max(0, 12-4*t.strength+rng.NormFloat64()*4+boolTo(!won)*6)
		return model.MatchRow{
			GameID:     id,
			Date:       date,
			League:     league,
			Team:       t.name,
			Side:       side,
			Result:     int(boolTo(won)),
			TotalGold:  math.Round(gold),
			GameLength: math.Round(length),
			Stats: map[string]float64{
				model.StatGoldDiffAt10:       math.Round(sign * gd10),
				model.StatGoldDiffAt15:       math.Round(sign * gd15),
				model.StatXPDiffAt10:         math.Round(sign * gd10 * 0.8),
				model.StatCSDiffAt10:         math.Round(sign * gd10 / 40),
				model.StatFirstBlood:         boolTo(fb),
				model.StatFirstDragon:        boolTo(fd),
				model.StatFirstTower:         boolTo(ft),
				model.StatFirstBaron:         boolTo(won && rng.Float64() < 0.8),
				model.StatDragons:            math.Round(math.Max(0, 2+t.strength+rng.NormFloat64())),
				model.StatBarons:             math.Round(math.Max(0, boolTo(won)+rng.Float64())),
				model.StatHeralds:            math.Round(rng.Float64() * 2),
				model.StatVoidGrubs:          math.Round(rng.Float64() * 6),
				model.StatTowers:             math.Round(math.Max(0, 5+boolTo(won)*4+rng.NormFloat64()*2)),
				model.StatKills:              math.Round(kills),
				model.StatDeaths:             math.Round(deaths),
				model.StatAssists:            math.Round(kills * 2.2),
				model.StatTeamKillsPerMin:    round2(kills / minutes),
				model.StatDamagePerMin:       math.Round(2_300 + 250*t.strength + rng.NormFloat64()*200),
				model.StatVisionScorePerMin:  round2(7 + 0.6*t.strength + rng.NormFloat64()*0.5),
				model.StatWardsPerMin:        round2(3.3 + 0.2*t.strength + rng.NormFloat64()*0.3),
				model.StatWardsClearedPerMin: round2(1.3 + 0.2*t.strength + rng.NormFloat64()*0.2),
				model.StatEarnedGoldPerMin:   math.Round((gold - 5_000) / minutes),
			},
		}
	}

	return []model.MatchRow{
		row(blue, model.SideBlue, blueWins, firstBloodBlue, firstDragonBlue, firstTowerBlue, 1),
		row(red, model.SideRed, !blueWins, !firstBloodBlue, !firstDragonBlue, !firstTowerBlue, -1),
	}
}

func boolTo(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
