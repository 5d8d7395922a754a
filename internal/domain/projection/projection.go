// Package projection combines ratings and factor profiles of two teams into
// a head-to-head win probability.
package projection

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/okian/lolhub/internal/domain/profile"
	"github.com/okian/lolhub/internal/domain/rating"
)

// Projection constants.
const (
	// EloScale is the rating difference treated as one standard deviation.
	EloScale = 200.0
	// DefaultScale sharpens composite differences into probabilities.
	DefaultScale = 3.0

	weightSumTolerance = 0.01
)

// Weight validation errors.
var (
	// ErrInvalidWeights reports a weight set that does not sum to one.
	ErrInvalidWeights = errors.New("projection weights must sum to 1")
	// ErrUnknownFactor reports a weight keyed by a factor the profiler does not compute.
	ErrUnknownFactor = errors.New("unknown factor weight")
)

// Weights holds the rating weight and the per-factor weights.
type Weights struct {
	Elo     float64            `json:"elo" koanf:"elo"`
	Factors map[string]float64 `json:"factors" koanf:"factors"`
}

// DefaultWeights returns 30% rating and 70% split across the four factors.
func DefaultWeights() Weights {
	return Weights{
		Elo: 0.30,
		Factors: map[string]float64{
			profile.EarlyGame:        0.20,
			profile.ObjectiveControl: 0.20,
			profile.TeamFighting:     0.15,
			profile.VisionMacro:      0.15,
		},
	}
}

// Validate checks that the weights sum to one within tolerance.
func (w Weights) Validate() error {
	sum := w.Elo
	for _, v := range w.Factors {
		sum += v
	}
	if math.Abs(sum-1) > weightSumTolerance {
		return ErrInvalidWeights
	}
	return nil
}

// ValidateFor checks that every weighted factor is one of names and that the
// weights sum to one.
func (w Weights) ValidateFor(names []string) error {
	known := make(map[string]struct{}, len(names))
	for _, n := range names {
		known[n] = struct{}{}
	}
	keys := make([]string, 0, len(w.Factors))
	for k := range w.Factors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := known[k]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownFactor, k)
		}
	}
	return w.Validate()
}

// FactorComposite is the weighted sum of a profile's factor scores. Factors
// are summed in name order so equal profiles give bit-identical composites.
func (w Weights) FactorComposite(p profile.Profile) float64 {
	names := make([]string, 0, len(w.Factors))
	for name := range w.Factors {
		names = append(names, name)
	}
	sort.Strings(names)

	sum := 0.0
	for _, name := range names {
		sum += w.Factors[name] * p.Get(name)
	}
	return sum
}

// RatingProvider looks up current team ratings.
type RatingProvider interface {
	Get(team string) float64
}

// FactorScore is one row of the factor breakdown.
type FactorScore struct {
	Factor string  `json:"factor"`
	Label  string  `json:"label"`
	TeamA  float64 `json:"team_a"`
	TeamB  float64 `json:"team_b"`
}

// Result is a head-to-head projection.
type Result struct {
	TeamA        string          `json:"team_a"`
	TeamB        string          `json:"team_b"`
	WinProbA     float64         `json:"win_prob_a"`
	WinProbB     float64         `json:"win_prob_b"`
	EloA         float64         `json:"elo_a"`
	EloB         float64         `json:"elo_b"`
	EloEdge      string          `json:"elo_edge"`
	CompositeA   float64         `json:"composite_a"`
	CompositeB   float64         `json:"composite_b"`
	Breakdown    []FactorScore   `json:"factor_breakdown"`
	ProfileA     profile.Profile `json:"profile_a"`
	ProfileB     profile.Profile `json:"profile_b"`
	PlaystyleA   string          `json:"playstyle_a"`
	PlaystyleB   string          `json:"playstyle_b"`
	StrengthsA   []string        `json:"strengths_a"`
	WeaknessesA  []string        `json:"weaknesses_a"`
	StrengthsB   []string        `json:"strengths_b"`
	WeaknessesB  []string        `json:"weaknesses_b"`
	RecentWindow int             `json:"recent_window,omitempty"`
}

// Option applies a configuration option to the Projector.
type Option func(*Projector)

// WithWeights replaces the default weights.
func WithWeights(w Weights) Option {
	return func(p *Projector) {
		if w.Factors != nil {
			p.weights = w
		}
	}
}

// WithScale sets the logistic sharpness constant.
func WithScale(scale float64) Option {
	return func(p *Projector) {
		if scale > 0 {
			p.scale = scale
		}
	}
}

// WithRules replaces the playstyle rules.
func WithRules(rules []profile.Rule) Option {
	return func(p *Projector) {
		if len(rules) > 0 {
			p.rules = rules
		}
	}
}

// Projector projects matchups from a profiler and a rating lookup.
type Projector struct {
	profiler *profile.Profiler
	ratings  RatingProvider
	weights  Weights
	scale    float64
	rules    []profile.Rule
}

// New creates a Projector.
func New(profiler *profile.Profiler, ratings RatingProvider, opts ...Option) *Projector {
	p := &Projector{
		profiler: profiler,
		ratings:  ratings,
		weights:  DefaultWeights(),
		scale:    DefaultScale,
		rules:    profile.DefaultRules(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Weights returns the active weights.
func (p *Projector) Weights() Weights { return p.weights }

// Project computes the matchup of teamA against teamB. Both profiles use the
// same recent-games window; lastN <= 0 uses every game. Unknown teams fall
// back to the starting rating and a zero profile.
func (p *Projector) Project(teamA, teamB string, lastN int) Result {
	cfg := p.profiler.Config()
	profA := p.profiler.Profile(teamA, lastN)
	profB := p.profiler.Profile(teamB, lastN)

	eloA, eloB := p.ratings.Get(teamA), p.ratings.Get(teamB)
	eloTerm := (eloA - eloB) / EloScale

	compA := p.weights.Elo*eloTerm + p.weights.FactorComposite(profA)
	compB := -p.weights.Elo*eloTerm + p.weights.FactorComposite(profB)

	breakdown := make([]FactorScore, 0, len(cfg.Factors))
	for _, f := range cfg.Factors {
		breakdown = append(breakdown, FactorScore{
			Factor: f.Name,
			Label:  f.Label,
			TeamA:  profA.Get(f.Name),
			TeamB:  profB.Get(f.Name),
		})
	}

	probA := Logistic(p.scale * (compA - compB))

	edge := teamB
	if eloA > eloB {
		edge = teamA
	}

	strA, weakA := profile.StrengthsWeaknesses(profA, cfg)
	strB, weakB := profile.StrengthsWeaknesses(profB, cfg)

	res := Result{
		TeamA:       teamA,
		TeamB:       teamB,
		WinProbA:    probA,
		WinProbB:    1 - probA,
		EloA:        eloA,
		EloB:        eloB,
		EloEdge:     edge,
		CompositeA:  compA,
		CompositeB:  compB,
		Breakdown:   breakdown,
		ProfileA:    profA,
		ProfileB:    profB,
		PlaystyleA:  profile.Classify(profA, p.rules),
		PlaystyleB:  profile.Classify(profB, p.rules),
		StrengthsA:  strA,
		WeaknessesA: weakA,
		StrengthsB:  strB,
		WeaknessesB: weakB,
	}
	if lastN > 0 {
		res.RecentWindow = lastN
	}
	return res
}

// Logistic is the standard sigmoid.
func Logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// ImpliedEdge is the model probability minus the market-implied probability.
// It is informational only and never feeds back into the model.
func ImpliedEdge(modelProb, marketProb float64) float64 {
	return modelProb - marketProb
}

var _ RatingProvider = (*rating.State)(nil)
