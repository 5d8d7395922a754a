package synth

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/okian/lolhub/internal/domain/rating"
	"github.com/okian/lolhub/pkg/logger"
)

const filePermission = 0o644

// Report summarizes one generated season.
type Report struct {
	File            string
	Rows            int
	Games           int
	Teams           int
	RankCorrelation float64 // Spearman correlation of ratings against hidden strengths
	Duration        time.Duration
}

// Run generates a season, writes it to cfg.OutputFile and checks how well
// the rating engine recovers the hidden strengths.
func Run(ctx context.Context, cfg *Config) (*Report, error) {
	start := time.Now()
	log := logger.Get().Named("synth")

	table, season, err := Generate(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("generate season: %w", err)
	}

	path := cfg.OutputFile
	if path == "" {
		path = "synthetic_matches_" + time.Now().Format("20060102_150405") + ".csv"
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	if err := WriteCSV(f, table); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close output file: %w", err)
	}

	res, err := rating.NewEngine(rating.WithByLeague(true)).Compute(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("rate season: %w", err)
	}
	ratings := res.Ratings.Snapshot()

	report := &Report{
		File:            path,
		Rows:            season.Rows,
		Games:           season.Games,
		Teams:           len(season.Strengths),
		RankCorrelation: spearman(season.Strengths, ratings),
		Duration:        time.Since(start),
	}

	if cfg.Verbose {
		for _, team := range sortedKeys(season.Strengths) {
			log.Debug(ctx, "team",
				logger.String("team", team),
				logger.Float64("strength", season.Strengths[team]),
				logger.Float64("rating", ratings[team]),
			)
		}
	}
	log.Info(ctx, "synthetic season written",
		logger.String("file", report.File),
		logger.Int("rows", report.Rows),
		logger.Int("games", report.Games),
		logger.Int("teams", report.Teams),
		logger.Float64("rankCorrelation", report.RankCorrelation),
		logger.Duration("took", report.Duration),
	)
	return report, nil
}

// spearman returns the rank correlation between two scores over the keys
// of a. Teams missing from b rank last.
func spearman(a, b map[string]float64) float64 {
	teams := sortedKeys(a)
	n := len(teams)
	if n < 2 {
		return 0
	}
	ra := ranks(teams, a)
	rb := ranks(teams, b)
	var d2 float64
	for _, t := range teams {
		d := ra[t] - rb[t]
		d2 += d * d
	}
	nf := float64(n)
	return 1 - 6*d2/(nf*(nf*nf-1))
}

func ranks(teams []string, score map[string]float64) map[string]float64 {
	order := append([]string(nil), teams...)
	sort.SliceStable(order, func(i, j int) bool { return score[order[i]] > score[order[j]] })
	out := make(map[string]float64, len(order))
	for i, t := range order {
		out[t] = float64(i + 1)
	}
	return out
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
