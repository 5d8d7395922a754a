// Package profile turns raw per-game statistics into normalized factor
// scores per team and classifies playstyles from them.
package profile

import "github.com/okian/lolhub/internal/domain/model"

// Factor keys of the default configuration.
const (
	EarlyGame        = "early_game"
	ObjectiveControl = "objective_control"
	TeamFighting     = "team_fighting"
	VisionMacro      = "vision_macro"
)

// Column weights one raw statistic inside a factor. Negative weights mark
// statistics where lower is better.
type Column struct {
	Name   string
	Weight float64
}

// Factor is a named weighted combination of statistic columns.
type Factor struct {
	Name    string
	Label   string
	Columns []Column
}

// Config is the immutable factor definition set. Factor order is the order
// used for breakdowns and strength lists.
type Config struct {
	Factors []Factor
}

// DefaultConfig returns the canonical four factors.
func DefaultConfig() Config {
	return Config{Factors: []Factor{
		{Name: EarlyGame, Label: "Early Game", Columns: []Column{
			{model.StatGoldDiffAt10, 1.0},
			{model.StatGoldDiffAt15, 1.0},
			{model.StatXPDiffAt10, 0.8},
			{model.StatCSDiffAt10, 0.6},
			{model.StatFirstBlood, 0.5},
		}},
		{Name: ObjectiveControl, Label: "Objective Control", Columns: []Column{
			{model.StatFirstDragon, 0.8},
			{model.StatFirstBaron, 0.8},
			{model.StatFirstTower, 0.7},
			{model.StatDragons, 1.0},
			{model.StatBarons, 1.0},
			{model.StatHeralds, 0.6},
			{model.StatVoidGrubs, 0.5},
			{model.StatTowers, 0.8},
		}},
		{Name: TeamFighting, Label: "Team Fighting", Columns: []Column{
			{model.StatTeamKillsPerMin, 1.0},
			{model.StatKills, 0.8},
			{model.StatDeaths, -1.0},
			{model.StatAssists, 0.5},
			{model.StatDamagePerMin, 0.7},
		}},
		{Name: VisionMacro, Label: "Vision & Macro", Columns: []Column{
			{model.StatVisionScorePerMin, 1.0},
			{model.StatWardsPerMin, 0.8},
			{model.StatWardsClearedPerMin, 0.7},
			{model.StatEarnedGoldPerMin, 1.0},
			{model.StatGoldSharePercentDiff, 0.8},
		}},
	}}
}

// Names returns factor keys in configuration order.
func (c Config) Names() []string {
	out := make([]string, len(c.Factors))
	for i, f := range c.Factors {
		out[i] = f.Name
	}
	return out
}

// Label returns the display label of a factor key, or the key itself.
func (c Config) Label(name string) string {
	for _, f := range c.Factors {
		if f.Name == name {
			return f.Label
		}
	}
	return name
}

// columns returns every distinct column referenced by the config.
func (c Config) columns() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, f := range c.Factors {
		for _, col := range f.Columns {
			if _, ok := seen[col.Name]; ok {
				continue
			}
			seen[col.Name] = struct{}{}
			out = append(out, col.Name)
		}
	}
	return out
}
