// Package teamstats aggregates per-team records and pivots games for display.
package teamstats

import (
	"math"
	"sort"
	"time"

	"github.com/okian/lolhub/internal/domain/model"
)

// Summary is a team's record and per-game averages.
type Summary struct {
	Team       string             `json:"team"`
	League     string             `json:"league"`
	Games      int                `json:"games"`
	Wins       int                `json:"wins"`
	Losses     int                `json:"losses"`
	WinRate    float64            `json:"win_rate"`
	AvgGold    float64            `json:"avg_gold"`
	AvgMinutes float64            `json:"avg_minutes"`
	Averages   map[string]float64 `json:"averages"`
}

// Summarize aggregates a team's last lastN games (all when lastN <= 0).
// Averages only include statistics the team recorded.
func Summarize(table model.Table, team string, lastN int) Summary {
	rows := table.Recent(team, lastN)
	s := Summary{Team: team, League: table.TeamLeague(team), Games: len(rows), Averages: map[string]float64{}}
	if len(rows) == 0 {
		return s
	}

	gold, goldN, length, lengthN := 0.0, 0, 0.0, 0
	for _, r := range rows {
		if r.Won() {
			s.Wins++
		}
		if !math.IsNaN(r.TotalGold) {
			gold += r.TotalGold
			goldN++
		}
		if !math.IsNaN(r.GameLength) {
			length += r.GameLength
			lengthN++
		}
	}
	s.Losses = s.Games - s.Wins
	s.WinRate = float64(s.Wins) / float64(s.Games)
	if goldN > 0 {
		s.AvgGold = gold / float64(goldN)
	}
	if lengthN > 0 {
		s.AvgMinutes = length / float64(lengthN) / 60
	}

	for _, col := range model.StatColumns {
		sum, n := 0.0, 0
		for _, r := range rows {
			if v, ok := r.Stat(col); ok {
				sum += v
				n++
			}
		}
		if n > 0 {
			s.Averages[col] = sum / float64(n)
		}
	}
	return s
}

// Game is one played game with both sides on a single row.
type Game struct {
	GameID     string    `json:"game_id"`
	Date       time.Time `json:"date"`
	League     string    `json:"league"`
	BlueTeam   string    `json:"blue_team"`
	RedTeam    string    `json:"red_team"`
	Winner     string    `json:"winner"`
	BlueGold   float64   `json:"blue_gold"`
	RedGold    float64   `json:"red_gold"`
	GoldDiff   float64   `json:"gold_diff"`
	LengthMins float64   `json:"length_minutes"`
	BlueKills  float64   `json:"blue_kills"`
	RedKills   float64   `json:"red_kills"`
}

// Results pivots a league's games (all leagues when league is empty). Game
// ids without both a Blue and a Red row are dropped.
func Results(table model.Table, league string) []Game {
	rows := table
	if league != "" {
		rows = table.ForLeague(league)
	}
	return pivot(rows)
}

// HeadToHead returns the games in which a and b met.
func HeadToHead(table model.Table, a, b string) []Game {
	ids := map[string]int{}
	for _, r := range table {
		if r.Team == a {
			ids[r.GameID] |= 1
		}
		if r.Team == b {
			ids[r.GameID] |= 2
		}
	}
	rows := make(model.Table, 0)
	for _, r := range table {
		if ids[r.GameID] == 3 {
			rows = append(rows, r)
		}
	}
	return pivot(rows)
}

func pivot(rows model.Table) []Game {
	blue := map[string]model.MatchRow{}
	red := map[string]model.MatchRow{}
	for _, r := range rows {
		switch r.Side {
		case model.SideBlue:
			blue[r.GameID] = r
		case model.SideRed:
			red[r.GameID] = r
		}
	}

	out := make([]Game, 0, len(blue))
	for id, b := range blue {
		r, ok := red[id]
		if !ok {
			continue
		}
		winner := r.Team
		if b.Won() {
			winner = b.Team
		}
		bk, _ := b.Stat(model.StatKills)
		rk, _ := r.Stat(model.StatKills)
		out = append(out, Game{
			GameID:     id,
			Date:       b.Date,
			League:     b.League,
			BlueTeam:   b.Team,
			RedTeam:    r.Team,
			Winner:     winner,
			BlueGold:   orZero(b.TotalGold),
			RedGold:    orZero(r.TotalGold),
			GoldDiff:   orZero(b.TotalGold - r.TotalGold),
			LengthMins: orZero(b.GameLength / 60),
			BlueKills:  bk,
			RedKills:   rk,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].GameID < out[j].GameID
	})
	return out
}

// orZero keeps NaN out of JSON responses.
func orZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
