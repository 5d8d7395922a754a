package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/okian/lolhub/internal/synth"
	"github.com/okian/lolhub/pkg/logger"
)

const defaultTimeout = 5 * time.Minute

func main() {
	var (
		leagues = flag.String("leagues", "LCK,LEC", "Comma-separated league codes")
		teams   = flag.Int("teams", synth.DefaultTeamsPerLeague, "Teams per league")
		rounds  = flag.Int("rounds", synth.DefaultRounds, "Round-robin repetitions")
		perDay  = flag.Int("per-day", synth.DefaultGamesPerDay, "Games per league per day")
		start   = flag.String("start", "2025-01-15", "First game day (YYYY-MM-DD)")
		seed    = flag.Uint64("seed", 1, "Seed for reproducible output")
		output  = flag.String("output", "", "Output CSV (default: synthetic_matches_TIMESTAMP.csv)")
		verbose = flag.Bool("verbose", false, "Log hidden strength and rating per team")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		synth.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	day, err := time.Parse("2006-01-02", *start)
	if err != nil {
		os.Stderr.WriteString("invalid -start: " + err.Error() + "\n")
		os.Exit(2)
	}

	cfg := synth.New(splitLeagues(*leagues)...)
	cfg.TeamsPerLeague = *teams
	cfg.Rounds = *rounds
	cfg.GamesPerDay = *perDay
	cfg.Start = day.Add(9 * time.Hour)
	cfg.Seed = *seed
	cfg.OutputFile = *output
	cfg.Verbose = *verbose

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if _, err := synth.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("synth failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func splitLeagues(s string) []string {
	var out []string
	for _, l := range strings.Split(s, ",") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
