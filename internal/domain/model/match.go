// Package model contains domain models passed between layers.
package model

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Side is the map side a team played on.
type Side string

// Known sides.
const (
	SideBlue Side = "Blue"
	SideRed  Side = "Red"
)

// ParseSide maps "blue"/"red" (any case) to a Side. ok is false otherwise.
func ParseSide(s string) (Side, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "blue":
		return SideBlue, true
	case "red":
		return SideRed, true
	}
	return "", false
}

// Optional per-game statistic columns consumed by factor weights.
const (
	StatGoldDiffAt10         = "gold_diff_at_10"
	StatGoldDiffAt15         = "gold_diff_at_15"
	StatXPDiffAt10           = "xp_diff_at_10"
	StatCSDiffAt10           = "cs_diff_at_10"
	StatFirstBlood           = "first_blood"
	StatFirstDragon          = "first_dragon"
	StatFirstBaron           = "first_baron"
	StatFirstTower           = "first_tower"
	StatDragons              = "dragons"
	StatBarons               = "barons"
	StatHeralds              = "heralds"
	StatVoidGrubs            = "void_grubs"
	StatTowers               = "towers"
	StatTeamKillsPerMin      = "team_kills_per_min"
	StatKills                = "kills"
	StatDeaths               = "deaths"
	StatAssists              = "assists"
	StatDamagePerMin         = "damage_per_min"
	StatVisionScorePerMin    = "vision_score_per_min"
	StatWardsPerMin          = "wards_per_min"
	StatWardsClearedPerMin   = "wards_cleared_per_min"
	StatEarnedGoldPerMin     = "earned_gold_per_min"
	StatGoldSharePercentDiff = "gold_share_percent_delta"
)

// StatColumns lists every recognized optional statistic in a stable order.
var StatColumns = []string{
	StatGoldDiffAt10, StatGoldDiffAt15, StatXPDiffAt10, StatCSDiffAt10, StatFirstBlood,
	StatFirstDragon, StatFirstBaron, StatFirstTower, StatDragons, StatBarons, StatHeralds,
	StatVoidGrubs, StatTowers, StatTeamKillsPerMin, StatKills, StatDeaths, StatAssists,
	StatDamagePerMin, StatVisionScorePerMin, StatWardsPerMin, StatWardsClearedPerMin,
	StatEarnedGoldPerMin, StatGoldSharePercentDiff,
}

// MatchRow is one team's participation in one game. Rows are never mutated
// after loading.
type MatchRow struct {
	GameID     string
	Date       time.Time
	League     string
	Team       string
	Side       Side
	Result     int     // 1 for the winning side, 0 otherwise
	TotalGold  float64 // NaN when unknown
	GameLength float64 // seconds, NaN when unknown
	Stats      map[string]float64
}

// Won reports whether the row's team won the game.
func (r MatchRow) Won() bool { return r.Result == 1 }

// Stat returns an optional statistic. NaN values count as absent.
func (r MatchRow) Stat(col string) (float64, bool) {
	v, ok := r.Stats[col]
	if !ok || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Table is the immutable match-record table.
type Table []MatchRow

// Teams returns the sorted unique team names.
func (t Table) Teams() []string {
	return t.unique(func(r MatchRow) string { return r.Team })
}

// Leagues returns the sorted unique league names.
func (t Table) Leagues() []string {
	return t.unique(func(r MatchRow) string { return r.League })
}

func (t Table) unique(key func(MatchRow) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range t {
		k := key(r)
		if _, ok := seen[k]; ok || k == "" {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ForLeague returns the rows of one league in table order.
func (t Table) ForLeague(league string) Table {
	out := make(Table, 0)
	for _, r := range t {
		if r.League == league {
			out = append(out, r)
		}
	}
	return out
}

// TeamsInLeague returns the sorted unique teams of one league.
func (t Table) TeamsInLeague(league string) []string {
	return t.ForLeague(league).Teams()
}

// ForTeam returns a team's rows in chronological order. Rows sharing a date
// keep their table order.
func (t Table) ForTeam(team string) Table {
	out := make(Table, 0)
	for _, r := range t {
		if r.Team == team {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Recent returns a team's last n games chronologically. n <= 0 returns all.
func (t Table) Recent(team string, n int) Table {
	rows := t.ForTeam(team)
	if n > 0 && len(rows) > n {
		rows = rows[len(rows)-n:]
	}
	return rows
}

// TeamLeague returns the league of the team's first row in table order.
func (t Table) TeamLeague(team string) string {
	for _, r := range t {
		if r.Team == team {
			return r.League
		}
	}
	return ""
}

// HasTeam reports whether the team appears in the table.
func (t Table) HasTeam(team string) bool {
	for _, r := range t {
		if r.Team == team {
			return true
		}
	}
	return false
}

// Latest returns the most recent game date, or the zero time for an empty table.
func (t Table) Latest() time.Time {
	var latest time.Time
	for _, r := range t {
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	return latest
}
