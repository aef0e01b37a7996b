package rank

import (
	"strings"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
)

// Dedup thresholds.
const (
	// DefaultPerDocumentCap limits candidates retained per document.
	DefaultPerDocumentCap = 4

	// nearDuplicateThreshold is the Jaccard similarity above which two
	// same-document candidates are considered duplicates.
	nearDuplicateThreshold = 0.5

	// fingerprintEdge is the number of normalized characters taken from
	// each end of the content for the cheap duplicate fingerprint.
	fingerprintEdge = 100
)

// Deduplicate filters a candidate list already sorted by descending
// score, preserving relative order. A candidate is dropped when its
// document has reached perDocumentCap, when its content fingerprint
// exactly matches an accepted one, or when its Jaccard similarity
// against an accepted candidate from the same document exceeds 0.5.
// Because the input is score-sorted, a dropped candidate never outranks
// the accepted candidate that displaced it.
//
// All bookkeeping is local to the call, so concurrent queries cannot
// interfere with each other.
func Deduplicate(candidates []domain.RetrievalCandidate, perDocumentCap int) []domain.RetrievalCandidate {
	if perDocumentCap <= 0 {
		perDocumentCap = DefaultPerDocumentCap
	}

	accepted := make([]domain.RetrievalCandidate, 0, len(candidates))
	perDocument := make(map[string]int)
	fingerprints := make(map[string]bool)

	for _, cand := range candidates {
		if perDocument[cand.DocumentID] >= perDocumentCap {
			continue
		}

		fp := Fingerprint(cand.Content)
		if fingerprints[fp] {
			continue
		}

		if hasNearDuplicate(accepted, cand) {
			continue
		}

		accepted = append(accepted, cand)
		perDocument[cand.DocumentID]++
		fingerprints[fp] = true
	}

	return accepted
}

// hasNearDuplicate reports whether cand is too similar to an accepted
// candidate from the same document.
func hasNearDuplicate(accepted []domain.RetrievalCandidate, cand domain.RetrievalCandidate) bool {
	for i := range accepted {
		if accepted[i].DocumentID != cand.DocumentID {
			continue
		}
		if JaccardSimilarity(accepted[i].Content, cand.Content) > nearDuplicateThreshold {
			return true
		}
	}
	return false
}

// Fingerprint builds a cheap prefix+suffix key for exact duplicate
// detection: the first and last 100 characters of the normalized
// content (lowercased, whitespace collapsed).
func Fingerprint(content string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(content)), " ")
	if len(normalized) <= 2*fingerprintEdge {
		return normalized
	}
	return normalized[:fingerprintEdge] + normalized[len(normalized)-fingerprintEdge:]
}
