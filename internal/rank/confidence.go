package rank

import (
	"math"
	"sort"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
)

// Confidence blend weights and limits.
const (
	weightTopScore  = 0.4
	weightAvgTop3   = 0.3
	weightDensity   = 0.2
	weightDiversity = 0.1

	// maxConfidence caps the reported value; absolute certainty is
	// never reported.
	maxConfidence = 99

	// fallbackCount is how many raw candidates the low-signal fallback
	// returns.
	fallbackCount = 3
)

// EstimateConfidence combines the top score, the average of the top
// three scores, the density of candidates above the threshold and the
// source document diversity into a bounded 0-99 value. A single very
// strong match raises the result to a floor (75/65/55 for top scores
// above 0.8/0.7/0.6) so it is never reported as low confidence.
func EstimateConfidence(candidates []domain.RetrievalCandidate, threshold float64) int {
	if len(candidates) == 0 {
		return 0
	}

	scores := make([]float64, len(candidates))
	for i := range candidates {
		scores[i] = bestScore(candidates[i])
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(scores)))

	topScore := scores[0]

	topN := 3
	if len(scores) < topN {
		topN = len(scores)
	}
	var sum float64
	for _, s := range scores[:topN] {
		sum += s
	}
	avgTop := sum / float64(topN)

	aboveThreshold := 0
	for _, s := range scores {
		if s >= threshold {
			aboveThreshold++
		}
	}
	density := math.Min(float64(aboveThreshold)/3, 1)

	docs := make(map[string]bool)
	for i := range candidates {
		docs[candidates[i].DocumentID] = true
	}
	diversity := math.Min(float64(len(docs))/3, 1)

	confidence := int(math.Round(100 * (weightTopScore*topScore +
		weightAvgTop3*avgTop +
		weightDensity*density +
		weightDiversity*diversity)))

	confidence = applyFloor(confidence, topScore)

	if confidence > maxConfidence {
		confidence = maxConfidence
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}

// applyFloor raises confidence when the top score alone is strong.
func applyFloor(confidence int, topScore float64) int {
	switch {
	case topScore > 0.8 && confidence < 75:
		return 75
	case topScore > 0.7 && confidence < 65:
		return 65
	case topScore > 0.6 && confidence < 55:
		return 55
	default:
		return confidence
	}
}

// bestScore prefers the reranked score when set.
func bestScore(cand domain.RetrievalCandidate) float64 {
	if cand.RerankedScore > 0 {
		return cand.RerankedScore
	}
	return cand.Score
}

// ApplyFallback implements the low-signal policy: when no candidate
// clears the threshold but candidates exist, return the top three by
// original score flagged low-confidence. Partial, flagged information
// is preferred over silence. The second return reports whether the
// fallback engaged.
func ApplyFallback(candidates []domain.RetrievalCandidate, threshold float64) ([]domain.RetrievalCandidate, bool) {
	if len(candidates) == 0 {
		return nil, false
	}

	for i := range candidates {
		if candidates[i].Score >= threshold {
			return candidates, false
		}
	}

	best := make([]domain.RetrievalCandidate, len(candidates))
	copy(best, candidates)
	sort.SliceStable(best, func(i, j int) bool {
		return best[i].Score > best[j].Score
	})

	n := fallbackCount
	if len(best) < n {
		n = len(best)
	}
	best = best[:n]
	for i := range best {
		best[i].LowConfidence = true
	}
	return best, true
}
