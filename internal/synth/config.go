// Package synth generates synthetic league seasons in the match CSV format
// so the service can be demoed without a real data export.
package synth

import (
	"errors"
	"fmt"
	"time"
)

// Defaults applied by New.
const (
	DefaultTeamsPerLeague = 10
	DefaultRounds         = 2
	DefaultGamesPerDay    = 5
)

// ErrInvalidConfig reports a configuration that cannot produce a season.
var ErrInvalidConfig = errors.New("invalid synth config")

// Config controls the generated season.
type Config struct {
	Leagues        []string  // League codes, one season each
	TeamsPerLeague int       // Teams in every league
	Rounds         int       // Round-robin repetitions; each pairing plays once per round
	GamesPerDay    int       // Games scheduled per league per day
	Start          time.Time // Date of the first game day
	Seed           uint64    // Seed for reproducible output
	OutputFile     string    // Destination CSV; empty means a timestamped file
	Verbose        bool      // Log every league's hidden strengths
}

// New returns a Config with defaults for the given leagues.
func New(leagues ...string) *Config {
	if len(leagues) == 0 {
		leagues = []string{"LCK", "LEC"}
	}
	return &Config{
		Leagues:        leagues,
		TeamsPerLeague: DefaultTeamsPerLeague,
		Rounds:         DefaultRounds,
		GamesPerDay:    DefaultGamesPerDay,
		Start:          time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC),
		Seed:           1,
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case len(c.Leagues) == 0:
		return fmt.Errorf("%w: at least one league is required", ErrInvalidConfig)
	case c.TeamsPerLeague < 2:
		return fmt.Errorf("%w: teams per league must be at least 2", ErrInvalidConfig)
	case c.Rounds < 1:
		return fmt.Errorf("%w: rounds must be positive", ErrInvalidConfig)
	case c.GamesPerDay < 1:
		return fmt.Errorf("%w: games per day must be positive", ErrInvalidConfig)
	}
	seen := make(map[string]struct{}, len(c.Leagues))
	for _, l := range c.Leagues {
		if l == "" {
			return fmt.Errorf("%w: empty league code", ErrInvalidConfig)
		}
		if _, dup := seen[l]; dup {
			return fmt.Errorf("%w: duplicate league %q", ErrInvalidConfig, l)
		}
		seen[l] = struct{}{}
	}
	return nil
}

// Season is the generated table plus the hidden team strengths behind it.
type Season struct {
	Rows      int
	Games     int
	Strengths map[string]float64
}
