// Package rating computes chronological ELO ratings with margin-of-victory
// scaling. Ratings are recomputed from the full match table on every call.
package rating

import (
	"math"
	"sort"

	"github.com/okian/lolhub/internal/domain/model"
)

// Rating constants.
const (
	StartingRating = 1500.0
	BaseK          = 32.0
	GlobalLeague   = "Global"

	referenceLength = 1800.0 // 30 minutes
	minLength       = 600.0
	minLengthFactor = 0.8
	maxLengthFactor = 1.3
	minMultiplier   = 1.0
	maxMultiplier   = 2.5
	goldFracScale   = 3.0
)

// ExpectedWinProb is the logistic expected score of a against b.
func ExpectedWinProb(a, b float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (b-a)/400))
}

// MarginMultiplier scales K by how dominant a win was: the gold lead relative
// to average gold, boosted for short games. Result is within [1.0, 2.5].
func MarginMultiplier(winnerGold, loserGold, gameLength float64) float64 {
	if math.IsNaN(winnerGold) || math.IsNaN(loserGold) || winnerGold+loserGold == 0 {
		return minMultiplier
	}
	avg := (winnerGold + loserGold) / 2
	frac := math.Abs(winnerGold-loserGold) / avg

	lengthFactor := 1.0
	if !math.IsNaN(gameLength) && gameLength > 0 {
		lengthFactor = clamp(referenceLength/math.Max(gameLength, minLength), minLengthFactor, maxLengthFactor)
	}
	m := (1 + math.Log(1+frac*goldFracScale)) * lengthFactor
	if math.IsNaN(m) {
		return minMultiplier
	}
	return clamp(m, minMultiplier, maxMultiplier)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// State maps team names to ratings. Unseen teams read as the starting rating.
type State struct {
	start   float64
	ratings map[string]float64
}

// NewState returns an empty state whose default rating is start.
func NewState(start float64) *State {
	return &State{start: start, ratings: make(map[string]float64)}
}

// Get returns the team's rating or the starting rating when unseen.
func (s *State) Get(team string) float64 {
	if r, ok := s.ratings[team]; ok {
		return r
	}
	return s.start
}

// Has reports whether the team has been rated.
func (s *State) Has(team string) bool {
	_, ok := s.ratings[team]
	return ok
}

// Set stores a rating.
func (s *State) Set(team string, r float64) { s.ratings[team] = r }

// Len returns the number of rated teams.
func (s *State) Len() int { return len(s.ratings) }

// Teams returns rated teams sorted by name.
func (s *State) Teams() []string {
	out := make([]string, 0, len(s.ratings))
	for t := range s.ratings {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Snapshot copies the ratings into a plain map.
func (s *State) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(s.ratings))
	for t, r := range s.ratings {
		out[t] = r
	}
	return out
}

// Merge copies other's ratings into s; other wins on conflicts.
func (s *State) Merge(other *State) {
	for t, r := range other.ratings {
		s.ratings[t] = r
	}
}

// Standing is one row of a league rating table.
type Standing struct {
	Team   string  `json:"team"`
	Rating float64 `json:"rating"`
}

// LeagueRankings returns teams sorted by rating descending, ties by name.
func LeagueRankings(s *State, teams []string) []Standing {
	out := make([]Standing, 0, len(teams))
	for _, t := range teams {
		out = append(out, Standing{Team: t, Rating: s.Get(t)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].Team < out[j].Team
	})
	return out
}

// HistoryFor filters history entries for one team, keeping order.
func HistoryFor(history []model.HistoryEntry, team string) []model.HistoryEntry {
	out := make([]model.HistoryEntry, 0)
	for _, h := range history {
		if h.Team == team {
			out = append(out, h)
		}
	}
	return out
}
