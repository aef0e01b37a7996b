package driven

import "context"

// RerankService scores documents against a query with a secondary
// relevance model (typically a cross-encoder behind an HTTP API).
// This is an optional service: when nil or failing, the reranker falls
// back to its local scoring tier.
type RerankService interface {
	// Rerank scores the given documents against the query and returns
	// the topN most relevant as (index, score) pairs, ordered by
	// descending relevance. Indices refer to the documents slice.
	Rerank(ctx context.Context, query string, documents []string, topN int) ([]RerankHit, error)

	// ModelName returns the model identifier for logging.
	ModelName() string
}

// RerankHit is a single reranked document reference.
type RerankHit struct {
	// Index is the position of the document in the input slice.
	Index int

	// Score is the relevance score in [0,1].
	Score float64
}
