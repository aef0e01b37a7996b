package driven

import (
	"context"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
)

// GenerationService consumes an assembled context and a query and
// returns answer text. The generation call and its prompt templates are
// external collaborators; the retrieval pipeline only guarantees that
// the context it hands over is ordered and bounded.
type GenerationService interface {
	// Generate produces an answer for the query from the context.
	Generate(ctx context.Context, query string, context domain.AssembledContext) (string, error)
}
