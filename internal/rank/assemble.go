package rank

import (
	"sort"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
)

// Assemble groups candidates by source document in the order each
// document first appeared, optionally orders within each group by
// original segment index to preserve document narrative flow, and
// hard-truncates the concatenation to maxChunks entries.
func Assemble(candidates []domain.RetrievalCandidate, maxChunks int, orderByPosition bool) domain.AssembledContext {
	if maxChunks <= 0 {
		maxChunks = domain.DefaultMaxSources
	}

	var docOrder []string
	groups := make(map[string][]domain.RetrievalCandidate)
	for _, cand := range candidates {
		if _, ok := groups[cand.DocumentID]; !ok {
			docOrder = append(docOrder, cand.DocumentID)
		}
		groups[cand.DocumentID] = append(groups[cand.DocumentID], cand)
	}

	ordered := make([]domain.RetrievalCandidate, 0, len(candidates))
	for _, docID := range docOrder {
		group := groups[docID]
		if orderByPosition {
			sort.SliceStable(group, func(i, j int) bool {
				return group[i].SegmentIndex < group[j].SegmentIndex
			})
		}
		ordered = append(ordered, group...)
	}

	if len(ordered) > maxChunks {
		ordered = ordered[:maxChunks]
	}

	return domain.AssembledContext{
		Candidates: ordered,
		TotalCount: len(ordered),
	}
}
