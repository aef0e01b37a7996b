package rank

import (
	"sort"
	"strings"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
)

// DefaultBoostFactor is the multiplier applied on an exact term match.
const DefaultBoostFactor = 1.2

// ApplyTermBoost multiplies the scores of candidates containing an
// exact whole-word, case-insensitive match of any query term by factor,
// capping at 1.0, then re-sorts descending by boosted score. Substring
// matches ("testing" for query "test") never boost. Candidates are
// modified in place and the same slice is returned.
//
// Boost runs after any cache retrieval so a factor change never needs
// cache invalidation.
func ApplyTermBoost(query string, candidates []domain.RetrievalCandidate, factor float64) []domain.RetrievalCandidate {
	if factor <= 1 {
		factor = DefaultBoostFactor
	}

	terms := QueryTerms(query)
	if len(terms) == 0 {
		return candidates
	}

	for i := range candidates {
		if !containsWholeWord(candidates[i].Content, terms) {
			continue
		}
		candidates[i].RerankedScore = capScore(candidates[i].RerankedScore * factor)
		candidates[i].Score = capScore(candidates[i].Score * factor)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].RerankedScore > candidates[j].RerankedScore
	})

	return candidates
}

// containsWholeWord reports whether content contains any of the terms
// as a complete word.
func containsWholeWord(content string, terms []string) bool {
	words := make(map[string]bool)
	cleaned := strings.Map(func(r rune) rune {
		if isWordRune(r) {
			return r
		}
		return ' '
	}, strings.ToLower(content))
	for _, w := range strings.Fields(cleaned) {
		words[w] = true
	}

	for _, term := range terms {
		if words[term] {
			return true
		}
	}
	return false
}

// capScore clamps a score to the [0,1] range.
func capScore(s float64) float64 {
	if s > 1 {
		return 1
	}
	if s < 0 {
		return 0
	}
	return s
}
