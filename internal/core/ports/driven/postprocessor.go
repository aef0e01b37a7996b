package driven

import (
	"context"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
)

// PostProcessor processes document content to produce segments.
// PostProcessors are chained in a pipeline (e.g., segmentation,
// enrichment).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document and returns segments.
	// A processor that creates segments (the segmenter) receives nil
	// and returns new segments; a processor that modifies segments
	// receives and returns them.
	Process(ctx context.Context, doc *domain.Document, segments []domain.Segment) ([]domain.Segment, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document through all processors in order.
	// Returns the final segments after all processing.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Segment, error)
}
