package domain

import "time"

// Document represents an ingested document with metadata.
// It is the canonical representation after normalisation.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// URI is the original location (file path, URL, etc).
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the full text content after normalisation.
	// This is the complete document text before segmentation.
	Content string

	// PageCount is the number of pages reported by the extractor, if any.
	PageCount int

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last re-ingested.
	UpdatedAt time.Time
}

// Segment represents a bounded span of a document's text, the atomic
// unit of retrieval. Documents are split into segments at ingestion time
// and the full set for a document is replaced atomically on re-ingestion.
type Segment struct {
	// ID is the unique identifier for the segment.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the trimmed text content of this segment.
	Content string

	// Index is the 0-based position among segments of the same document.
	// Contiguous and gap-free after final assembly.
	Index int

	// TotalSegments is the number of segments produced for the document.
	TotalSegments int

	// StartOffset is the inclusive byte offset into the source text.
	StartOffset int

	// EndOffset is the exclusive byte offset into the source text.
	EndOffset int

	// WordCount is the number of whitespace-separated words in Content.
	WordCount int

	// SectionTitle is the detected section heading, if any.
	SectionTitle string

	// HasHeader reports whether a section title was found.
	HasHeader bool

	// OverlapWithPrevious is a suffix of the previous segment's content,
	// at most the configured overlap size.
	OverlapWithPrevious string

	// OverlapWithNext is a prefix of the next segment's content,
	// at most the configured overlap size.
	OverlapWithNext string

	// Embedding is the vector representation for similarity search.
	Embedding []float32

	// Metadata contains segment-specific key-value pairs.
	Metadata map[string]any
}
