package driven

import (
	"context"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
)

// SegmentStore persists documents and their segments.
// Implementations: in-memory, SQLite, Postgres/pgvector.
type SegmentStore interface {
	// SaveDocument stores or updates a document's metadata.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// ReplaceSegments atomically replaces the full segment set for a
	// document. Readers never observe a partial overwrite.
	ReplaceSegments(ctx context.Context, documentID string, segments []domain.Segment) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetSegments retrieves all segments for a document, ordered by index.
	GetSegments(ctx context.Context, documentID string) ([]domain.Segment, error)

	// GetSegment retrieves a specific segment by ID.
	GetSegment(ctx context.Context, id string) (*domain.Segment, error)

	// ScanSegments streams every stored segment to fn. Iteration stops
	// on the first error returned by fn.
	ScanSegments(ctx context.Context, fn func(domain.Segment) error) error

	// DeleteDocument removes a document and cascades to its segments.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns all stored documents.
	ListDocuments(ctx context.Context) ([]domain.Document, error)
}

// SimilaritySearcher is an optional capability of a SegmentStore that
// can rank segments against a query vector server-side (e.g. pgvector).
// The retrieval service type-asserts for it and falls back to a scored
// scan when absent.
type SimilaritySearcher interface {
	// SearchSimilar returns the k segments nearest to the query vector
	// with cosine similarity scores in [0,1], ordered by descending score.
	SearchSimilar(ctx context.Context, embedding []float32, k int) ([]ScoredSegment, error)
}

// ScoredSegment pairs a segment with a similarity score.
type ScoredSegment struct {
	// Segment is the matched segment.
	Segment domain.Segment

	// Score is the cosine similarity in [0,1].
	Score float64
}
