package rank

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
)

func cand(id, docID, content string, score float64) domain.RetrievalCandidate {
	return domain.RetrievalCandidate{
		SegmentID:  id,
		DocumentID: docID,
		Content:    content,
		Score:      score,
	}
}

func TestDeduplicate_PerDocumentCap(t *testing.T) {
	var candidates []domain.RetrievalCandidate
	for i := 0; i < 6; i++ {
		candidates = append(candidates, cand(
			fmt.Sprintf("s%d", i), "doc-1",
			fmt.Sprintf("completely distinct content number %d about topic%d only", i, i),
			1.0-float64(i)*0.1,
		))
	}

	kept := Deduplicate(candidates, 4)
	assert.Len(t, kept, 4)
	// Highest-scoring candidates survive in order.
	assert.Equal(t, "s0", kept[0].SegmentID)
	assert.Equal(t, "s3", kept[3].SegmentID)
}

func TestDeduplicate_FingerprintExactMatch(t *testing.T) {
	content := "identical normalized content about retrieval systems"
	candidates := []domain.RetrievalCandidate{
		cand("s1", "doc-1", content, 0.9),
		cand("s2", "doc-2", content, 0.8), // same fingerprint, different doc
	}

	kept := Deduplicate(candidates, 4)
	assert.Len(t, kept, 1)
	assert.Equal(t, "s1", kept[0].SegmentID)
}

func TestDeduplicate_JaccardSameDocumentOnly(t *testing.T) {
	// Near-identical content but in different documents: both kept,
	// provided the fingerprints differ.
	candidates := []domain.RetrievalCandidate{
		cand("s1", "doc-1", "the indexing pipeline processes documents nightly always", 0.9),
		cand("s2", "doc-2", "the indexing pipeline processes documents nightly sometimes", 0.8),
	}

	kept := Deduplicate(candidates, 4)
	assert.Len(t, kept, 2)
}

func TestDeduplicate_NearDuplicateSameDocument(t *testing.T) {
	// Spec scenario: 6 candidates from one document, 4 pairwise similar,
	// 2 dissimilar, cap 4 -> 3 retained.
	similarBase := "database connection pooling configuration tuning guide chapter"
	candidates := []domain.RetrievalCandidate{
		cand("sim1", "doc-1", similarBase+" alpha", 0.95),
		cand("dis1", "doc-1", "kubernetes ingress routing rules explained thoroughly", 0.90),
		cand("sim2", "doc-1", similarBase+" beta", 0.85),
		cand("sim3", "doc-1", similarBase+" gamma", 0.80),
		cand("dis2", "doc-1", "observability metrics dashboards alerting runbooks overview", 0.75),
		cand("sim4", "doc-1", similarBase+" delta", 0.70),
	}

	kept := Deduplicate(candidates, 4)

	assert.Len(t, kept, 3)
	assert.Equal(t, "sim1", kept[0].SegmentID)
	assert.Equal(t, "dis1", kept[1].SegmentID)
	assert.Equal(t, "dis2", kept[2].SegmentID)

	// Dedup invariant: retained same-document pairs stay at or below 0.5.
	for i := range kept {
		for j := i + 1; j < len(kept); j++ {
			if kept[i].DocumentID == kept[j].DocumentID {
				assert.LessOrEqual(t, JaccardSimilarity(kept[i].Content, kept[j].Content), 0.5)
			}
		}
	}
}

func TestDeduplicate_PreservesOrder(t *testing.T) {
	candidates := []domain.RetrievalCandidate{
		cand("s1", "doc-1", "first candidate content entirely unique alpha", 0.9),
		cand("s2", "doc-2", "second candidate content entirely unique beta", 0.8),
		cand("s3", "doc-3", "third candidate content entirely unique gamma", 0.7),
	}

	kept := Deduplicate(candidates, 4)
	assert.Equal(t, []string{"s1", "s2", "s3"}, []string{kept[0].SegmentID, kept[1].SegmentID, kept[2].SegmentID})
}

func TestDeduplicate_ZeroCapUsesDefault(t *testing.T) {
	var candidates []domain.RetrievalCandidate
	for i := 0; i < 8; i++ {
		candidates = append(candidates, cand(
			fmt.Sprintf("s%d", i), "doc-1",
			fmt.Sprintf("unique filler content block %d about subject%d entirely", i, i),
			1.0-float64(i)*0.05,
		))
	}

	kept := Deduplicate(candidates, 0)
	assert.Len(t, kept, DefaultPerDocumentCap)
}

func TestFingerprint(t *testing.T) {
	t.Run("normalizes whitespace and case", func(t *testing.T) {
		assert.Equal(t, Fingerprint("Hello   World"), Fingerprint("hello world"))
	})

	t.Run("long content keeps both edges", func(t *testing.T) {
		long := ""
		for i := 0; i < 60; i++ {
			long += fmt.Sprintf("word%d ", i)
		}
		fp := Fingerprint(long)
		assert.Len(t, fp, 2*fingerprintEdge)
	})
}
