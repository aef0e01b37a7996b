package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
)

func positioned(id, docID string, index int, score float64) domain.RetrievalCandidate {
	return domain.RetrievalCandidate{
		SegmentID:    id,
		DocumentID:   docID,
		SegmentIndex: index,
		Score:        score,
	}
}

func TestAssemble_GroupsByFirstAppearance(t *testing.T) {
	candidates := []domain.RetrievalCandidate{
		positioned("a2", "doc-a", 2, 0.9),
		positioned("b1", "doc-b", 1, 0.8),
		positioned("a0", "doc-a", 0, 0.7),
	}

	ctx := Assemble(candidates, 10, false)

	require.Equal(t, 3, ctx.TotalCount)
	// doc-a appeared first, so its candidates lead.
	assert.Equal(t, "a2", ctx.Candidates[0].SegmentID)
	assert.Equal(t, "a0", ctx.Candidates[1].SegmentID)
	assert.Equal(t, "b1", ctx.Candidates[2].SegmentID)
}

func TestAssemble_OrderByPositionWithinGroup(t *testing.T) {
	candidates := []domain.RetrievalCandidate{
		positioned("a5", "doc-a", 5, 0.9),
		positioned("a1", "doc-a", 1, 0.6),
		positioned("a3", "doc-a", 3, 0.8),
	}

	ctx := Assemble(candidates, 10, true)

	require.Equal(t, 3, ctx.TotalCount)
	assert.Equal(t, "a1", ctx.Candidates[0].SegmentID)
	assert.Equal(t, "a3", ctx.Candidates[1].SegmentID)
	assert.Equal(t, "a5", ctx.Candidates[2].SegmentID)
}

func TestAssemble_TruncatesToMaxChunks(t *testing.T) {
	candidates := []domain.RetrievalCandidate{
		positioned("a0", "doc-a", 0, 0.9),
		positioned("b0", "doc-b", 0, 0.8),
		positioned("c0", "doc-c", 0, 0.7),
	}

	ctx := Assemble(candidates, 2, true)

	assert.Equal(t, 2, ctx.TotalCount)
	assert.Len(t, ctx.Candidates, 2)
}

func TestAssemble_Empty(t *testing.T) {
	ctx := Assemble(nil, 5, true)
	assert.Zero(t, ctx.TotalCount)
	assert.Empty(t, ctx.Candidates)
}

func TestAssemble_ZeroMaxUsesDefault(t *testing.T) {
	var candidates []domain.RetrievalCandidate
	for i := 0; i < domain.DefaultMaxSources+5; i++ {
		candidates = append(candidates, positioned("s", "doc", i, 0.5))
	}

	ctx := Assemble(candidates, 0, true)
	assert.Equal(t, domain.DefaultMaxSources, ctx.TotalCount)
}
