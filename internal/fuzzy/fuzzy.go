// Package fuzzy supplies "did you mean" suggestions for undefined MIB
// symbol references, populating errors.SemanticError.Suggestion.
package fuzzy

import "github.com/hbollon/go-edlib"

// DefaultThreshold is the minimum Jaro-Winkler similarity a candidate
// must clear to be suggested at all, avoiding noisy suggestions for
// genuinely unrelated names.
const DefaultThreshold = 0.70

// Matcher finds the closest known name to an unresolved reference.
type Matcher struct {
	Threshold float64
}

// New returns a Matcher using DefaultThreshold.
func New() *Matcher {
	return &Matcher{Threshold: DefaultThreshold}
}

// Suggest returns the candidate most similar to name by Jaro-Winkler
// similarity, provided it clears m.Threshold. It returns ("", false) when
// candidates is empty or nothing clears the threshold.
func (m *Matcher) Suggest(name string, candidates []string) (string, bool) {
	best := ""
	bestScore := 0.0
	for _, c := range candidates {
		if c == name {
			continue
		}
		score, err := edlib.StringsSimilarity(name, c, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if float64(score) > bestScore {
			bestScore = float64(score)
			best = c
		}
	}
	if bestScore < m.Threshold {
		return "", false
	}
	return best, true
}
