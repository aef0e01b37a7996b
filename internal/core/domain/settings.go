package domain

// Default segmentation limits, in characters.
const (
	DefaultTargetSize  = 500
	DefaultMinSize     = 400
	DefaultMaxSize     = 600
	DefaultOverlapSize = 125
)

// Default retrieval limits.
const (
	DefaultMaxSources           = 10
	DefaultMinScore             = 0.3
	DefaultMaxChunksPerDocument = 4
	DefaultBoostFactor          = 1.2
)

// SegmenterConfig controls how documents are split into segments.
type SegmenterConfig struct {
	// TargetSize is the preferred segment length in characters.
	TargetSize int

	// MinSize is the smallest acceptable segment length. Only the final
	// segment of a document may be shorter.
	MinSize int

	// MaxSize is the largest acceptable segment length.
	MaxSize int

	// OverlapSize is the number of characters shared between
	// consecutive segments.
	OverlapSize int

	// PreserveSentences prefers sentence boundaries when splitting.
	PreserveSentences bool

	// PreserveParagraphs prefers paragraph breaks when splitting.
	PreserveParagraphs bool
}

// DefaultSegmenterConfig returns the standard segmentation settings.
func DefaultSegmenterConfig() SegmenterConfig {
	return SegmenterConfig{
		TargetSize:         DefaultTargetSize,
		MinSize:            DefaultMinSize,
		MaxSize:            DefaultMaxSize,
		OverlapSize:        DefaultOverlapSize,
		PreserveSentences:  true,
		PreserveParagraphs: true,
	}
}

// Validate checks cross-field invariants.
func (c SegmenterConfig) Validate() error {
	if c.TargetSize <= 0 || c.MinSize <= 0 || c.MaxSize <= 0 {
		return ErrInvalidInput
	}
	if c.MinSize > c.TargetSize || c.TargetSize > c.MaxSize {
		return ErrInvalidInput
	}
	if c.OverlapSize < 0 || c.OverlapSize >= c.MinSize {
		return ErrInvalidInput
	}
	return nil
}

// RetrievalConfig holds the persistent retrieval settings exposed to
// callers via the settings surface.
type RetrievalConfig struct {
	// MaxSources is the maximum number of candidates returned.
	MaxSources int

	// MinConfidence is the lowest confidence value considered usable
	// by callers. Informational; retrieval never withholds results.
	MinConfidence int

	// MinScore is the similarity threshold for relevance.
	MinScore float64

	// EnableReranking toggles the rerank stage.
	EnableReranking bool

	// EnableDeduplication toggles the dedup stage.
	EnableDeduplication bool

	// MaxChunksPerDocument caps candidates per document.
	MaxChunksPerDocument int

	// BoostFactor is the multiplier applied on exact term matches.
	BoostFactor float64

	// Segmenter holds the segmentation settings used at ingestion.
	Segmenter SegmenterConfig
}

// DefaultRetrievalConfig returns the standard retrieval settings.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		MaxSources:           DefaultMaxSources,
		MinScore:             DefaultMinScore,
		EnableReranking:      true,
		EnableDeduplication:  true,
		MaxChunksPerDocument: DefaultMaxChunksPerDocument,
		BoostFactor:          DefaultBoostFactor,
		Segmenter:            DefaultSegmenterConfig(),
	}
}

// Options converts the persistent config into per-request options.
func (c RetrievalConfig) Options() RetrievalOptions {
	return RetrievalOptions{
		MaxSources:           c.MaxSources,
		MinScore:             c.MinScore,
		EnableReranking:      c.EnableReranking,
		EnableDeduplication:  c.EnableDeduplication,
		MaxChunksPerDocument: c.MaxChunksPerDocument,
		OrderByPosition:      true,
	}
}

// Validate checks cross-field invariants.
func (c RetrievalConfig) Validate() error {
	if c.MaxSources <= 0 || c.MaxChunksPerDocument <= 0 {
		return ErrInvalidInput
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		return ErrInvalidInput
	}
	if c.BoostFactor < 1 {
		return ErrInvalidInput
	}
	return c.Segmenter.Validate()
}
