package synth

import "os"

// ShowHelp prints usage information for the synth-matches tool.
func ShowHelp() {
	os.Stdout.WriteString(`LoLHub Synthetic Match Generator
================================

Generates round-robin seasons with hidden team strengths and writes them as
a match CSV that the service can load via LOLHUB_DATA_PATH.

Usage:
  go run ./cmd/synth-matches [options]

Options:
  -leagues string
        Comma-separated league codes (default "LCK,LEC")
  -teams int
        Teams per league (default 10)
  -rounds int
        Round-robin repetitions (default 2)
  -per-day int
        Games per league per day (default 5)
  -start string
        First game day, YYYY-MM-DD (default "2025-01-15")
  -seed uint
        Seed for reproducible output (default 1)
  -output string
        Output CSV (default: synthetic_matches_TIMESTAMP.csv)
  -verbose
        Log hidden strength and rating per team
  -help
        Show this help message

Examples:
  # Two leagues, ten teams each
  go run ./cmd/synth-matches -output data/matches.csv

  # A larger, different season
  go run ./cmd/synth-matches -leagues LCK,LPL,LEC,LCS -teams 12 -rounds 3 -seed 42
`)
}
