package rank

import (
	"math"
	"strings"
)

// minTokenLength is the shortest token considered meaningful for
// set-based similarity.
const minTokenLength = 3

// CosineSimilarity computes dot(a,b) / (||a|| * ||b||) between two
// equal-length vectors. It returns 0 when the vectors differ in length
// or either norm is zero, so it never divides by zero or returns NaN.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// JaccardSimilarity computes |intersection| / |union| over the token
// sets of two texts. Tokens are lowercased, split on whitespace, and
// kept only when longer than two characters. An empty union yields 0.
// The function is pure, deterministic and symmetric.
func JaccardSimilarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}

// tokenSet builds the set of meaningful tokens in text.
func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		if len(tok) >= minTokenLength {
			set[tok] = true
		}
	}
	return set
}
