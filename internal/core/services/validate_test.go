package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
)

func contextWithCandidates(n int) domain.AssembledContext {
	candidates := make([]domain.RetrievalCandidate, n)
	for i := range candidates {
		candidates[i] = domain.RetrievalCandidate{
			SegmentID:  string(rune('a' + i)),
			DocumentID: "doc-1",
			Score:      0.8,
		}
	}
	return domain.AssembledContext{Candidates: candidates, TotalCount: n}
}

func TestValidate_ValidCitations(t *testing.T) {
	svc := NewValidationService()

	result := svc.Validate("See [1] and [2] for details.", contextWithCandidates(3))

	assert.True(t, result.CitationsValid)
	assert.Empty(t, result.InvalidCitations)
	assert.Greater(t, result.Confidence, 0)
}

func TestValidate_InvalidCitations(t *testing.T) {
	svc := NewValidationService()

	result := svc.Validate("See [1], [5] and [9].", contextWithCandidates(2))

	assert.False(t, result.CitationsValid)
	assert.Equal(t, []int{5, 9}, result.InvalidCitations)
	require.NotEmpty(t, result.Issues)

	valid := svc.Validate("See [1].", contextWithCandidates(2))
	assert.Less(t, result.Confidence, valid.Confidence, "invalid citations lower confidence")
}

func TestValidate_NoCitations(t *testing.T) {
	svc := NewValidationService()

	result := svc.Validate("No references here.", contextWithCandidates(2))

	assert.True(t, result.CitationsValid)
	assert.Contains(t, result.Issues, "answer contains no citations")
}

func TestValidate_EmptyContext(t *testing.T) {
	svc := NewValidationService()

	result := svc.Validate("See [1].", domain.AssembledContext{})

	assert.False(t, result.CitationsValid)
	assert.Equal(t, []int{1}, result.InvalidCitations)
	assert.Zero(t, result.Confidence)
}

func TestValidate_RepeatedCitationsCountedOnce(t *testing.T) {
	svc := NewValidationService()

	result := svc.Validate("See [7], again [7], and [7].", contextWithCandidates(2))

	assert.Equal(t, []int{7}, result.InvalidCitations)
}

func TestValidate_ZeroCitationNumber(t *testing.T) {
	svc := NewValidationService()

	result := svc.Validate("Bad marker [0].", contextWithCandidates(2))

	assert.False(t, result.CitationsValid)
	assert.Equal(t, []int{0}, result.InvalidCitations)
}
