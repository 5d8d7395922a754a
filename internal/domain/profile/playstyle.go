package profile

// Placeholders returned when no factor crosses a threshold.
const (
	Balanced     = "Balanced"
	NoWeaknesses = "None"

	strengthThreshold = 0.3
)

// Rule is one labelled playstyle predicate.
type Rule struct {
	Label string
	Match func(Profile) bool
}

// DefaultRules returns the playstyle rules in priority order. The last rule
// always matches.
func DefaultRules() []Rule {
	return []Rule{
		{"Early Aggressor", func(p Profile) bool { return p.Get(EarlyGame) > 0.7 }},
		{"Lane Kingdom", func(p Profile) bool { return p.Get(EarlyGame) > 0.5 && p.Get(VisionMacro) > 0.5 }},
		{"Objective Focused", func(p Profile) bool { return p.Get(ObjectiveControl) > 0.7 }},
		{"Team Fight Monsters", func(p Profile) bool { return p.Get(TeamFighting) > 0.7 }},
		{"Vision Control", func(p Profile) bool { return p.Get(VisionMacro) > 0.7 }},
		{"Late-Game Scaling", func(p Profile) bool { return p.Get(EarlyGame) < -0.3 && p.Get(TeamFighting) > 0.3 }},
		{Balanced, func(Profile) bool { return true }},
	}
}

// Classify returns the label of the first matching rule, or Balanced.
func Classify(p Profile, rules []Rule) string {
	for _, r := range rules {
		if r.Match(p) {
			return r.Label
		}
	}
	return Balanced
}

// StrengthsWeaknesses lists factor labels above +0.3 and below -0.3 in config
// order. Neither list is ever empty.
func StrengthsWeaknesses(p Profile, cfg Config) (strengths, weaknesses []string) {
	for _, f := range cfg.Factors {
		v := p.Get(f.Name)
		switch {
		case v > strengthThreshold:
			strengths = append(strengths, f.Label)
		case v < -strengthThreshold:
			weaknesses = append(weaknesses, f.Label)
		}
	}
	if len(strengths) == 0 {
		strengths = []string{Balanced}
	}
	if len(weaknesses) == 0 {
		weaknesses = []string{NoWeaknesses}
	}
	return strengths, weaknesses
}
