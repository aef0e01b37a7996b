package services

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
	"github.com/custodia-labs/retriva-cli/internal/core/ports/driving"
	"github.com/custodia-labs/retriva-cli/internal/rank"
)

// Ensure ValidationService implements the interface.
var _ driving.ValidationService = (*ValidationService)(nil)

// citationRe matches bracketed citation markers like [1] or [12].
var citationRe = regexp.MustCompile(`\[(\d{1,3})\]`)

// invalidCitationPenalty is subtracted from the confidence per invalid
// citation number.
const invalidCitationPenalty = 10

// ValidationService checks an answer's citations against the context
// it was generated from. Results are derived purely from the inputs
// and never persisted.
type ValidationService struct{}

// NewValidationService creates a validation service.
func NewValidationService() *ValidationService {
	return &ValidationService{}
}

// Validate checks answer citations against the context and reports a
// confidence value with any issues found.
func (s *ValidationService) Validate(answer string, context domain.AssembledContext) domain.ValidationResult {
	result := domain.ValidationResult{
		Confidence:     rank.EstimateConfidence(context.Candidates, domain.DefaultMinScore),
		CitationsValid: true,
	}

	cited := citationNumbers(answer)
	if len(cited) == 0 {
		result.Issues = append(result.Issues, "answer contains no citations")
		return result
	}

	for _, n := range cited {
		if n < 1 || n > context.TotalCount {
			result.InvalidCitations = append(result.InvalidCitations, n)
		}
	}

	if len(result.InvalidCitations) > 0 {
		result.CitationsValid = false
		result.Issues = append(result.Issues,
			fmt.Sprintf("%d citations reference sources outside the context", len(result.InvalidCitations)))
		result.Confidence -= invalidCitationPenalty * len(result.InvalidCitations)
		if result.Confidence < 0 {
			result.Confidence = 0
		}
	}

	return result
}

// citationNumbers extracts the distinct citation numbers in the answer,
// sorted ascending.
func citationNumbers(answer string) []int {
	seen := make(map[int]bool)
	for _, m := range citationRe.FindAllStringSubmatch(answer, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		seen[n] = true
	}

	numbers := make([]int, 0, len(seen))
	for n := range seen {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}
