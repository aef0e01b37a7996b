package domain

// RetrievalCandidate is a segment paired with query-relevance scores
// during a single retrieval request. Candidates are created fresh per
// query; only the score fields change as the candidate moves through
// the pipeline (Score, then RerankedScore, then boosted RerankedScore).
type RetrievalCandidate struct {
	// SegmentID is the matched segment.
	SegmentID string

	// DocumentID is the segment's source document.
	DocumentID string

	// DocumentName is the display name of the source document.
	DocumentName string

	// Content is the segment text.
	Content string

	// SegmentIndex is the segment's original position in its document.
	SegmentIndex int

	// Score is the similarity score in [0,1] from the initial scan.
	Score float64

	// RerankedScore is the score after reranking and term boost.
	RerankedScore float64

	// LowConfidence marks candidates returned by the fallback policy
	// when nothing cleared the similarity threshold.
	LowConfidence bool

	// Metadata carries segment metadata through the pipeline.
	Metadata map[string]any
}

// AssembledContext is the bounded, ordered candidate set handed to the
// generation step. Built once per query and discarded after use.
type AssembledContext struct {
	// Candidates is the final ordered candidate list.
	Candidates []RetrievalCandidate

	// TotalCount is len(Candidates), at most the configured maximum.
	TotalCount int
}

// RetrievalOptions configures a single retrieval request.
type RetrievalOptions struct {
	// MaxSources is the maximum number of candidates in the assembled
	// context (default 10).
	MaxSources int

	// MinScore is the minimum similarity for a candidate to count as
	// relevant (default 0.3). Candidates below it trigger the fallback
	// policy rather than an empty result.
	MinScore float64

	// EnableReranking toggles the rerank stage.
	EnableReranking bool

	// EnableDeduplication toggles the dedup stage.
	EnableDeduplication bool

	// MaxChunksPerDocument caps candidates retained per document
	// (default 4).
	MaxChunksPerDocument int

	// QueryVariants are optional reformulations of the query, each
	// searched concurrently and merged by best score per segment.
	QueryVariants []string

	// OrderByPosition orders candidates within a document group by
	// their original segment index instead of score.
	OrderByPosition bool
}

// RetrievalResult is the produced interface to the caller and the
// generation layer.
type RetrievalResult struct {
	// Context is the assembled, bounded candidate set.
	Context AssembledContext

	// Confidence is the bounded confidence value (0-99).
	Confidence int

	// Issues lists non-fatal problems encountered (skipped segments,
	// degraded rerank tiers, fallback engagement).
	Issues []string
}
