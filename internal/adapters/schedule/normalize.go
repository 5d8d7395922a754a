package schedule

import "strings"

// DefaultTeamNames maps API display names onto match-data names.
var DefaultTeamNames = map[string]string{
	"Cloud9 Kia": "Cloud9",
}

// Normalizer maps external team names onto the names used in match data.
// Unknown names pass through unchanged.
type Normalizer struct {
	names map[string]string
}

// NewNormalizer builds a normalizer from DefaultTeamNames overlaid with extra.
func NewNormalizer(extra map[string]string) *Normalizer {
	names := make(map[string]string, len(DefaultTeamNames)+len(extra))
	for k, v := range DefaultTeamNames {
		names[k] = v
	}
	for k, v := range extra {
		names[k] = v
	}
	return &Normalizer{names: names}
}

// Normalize returns the match-data name for name.
func (n *Normalizer) Normalize(name string) string {
	name = strings.TrimSpace(name)
	if n == nil {
		return name
	}
	if v, ok := n.names[name]; ok {
		return v
	}
	return name
}
