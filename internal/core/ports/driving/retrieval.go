package driving

import (
	"context"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
)

// RetrievalService assembles bounded, ordered context for a query.
type RetrievalService interface {
	// Retrieve runs the full retrieval pipeline: similarity scan,
	// deduplication, reranking, assembly, confidence estimation and the
	// low-signal fallback. The caller always receives either a valid
	// (possibly low-confidence, possibly empty) result or a typed
	// unavailability error.
	Retrieve(ctx context.Context, query string, opts domain.RetrievalOptions) (*domain.RetrievalResult, error)
}

// ValidationService validates an answer against an assembled context.
type ValidationService interface {
	// Validate checks answer citations against the context and reports
	// a confidence value with any issues found.
	Validate(answer string, context domain.AssembledContext) domain.ValidationResult
}
