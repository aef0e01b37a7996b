package driving

import (
	"context"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
)

// IngestService turns raw files into stored, embedded segments.
type IngestService interface {
	// IngestFile normalises, segments, embeds and stores the file at
	// path. Re-ingesting a known URI replaces its segments atomically.
	IngestFile(ctx context.Context, path string) (*domain.Document, error)

	// IngestText ingests already-extracted text under the given URI
	// and title.
	IngestText(ctx context.Context, uri, title, content string) (*domain.Document, error)
}

// DocumentService manages ingested documents.
type DocumentService interface {
	// List returns all ingested documents.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// GetContent returns the reconstructed content of a document from
	// its segments.
	GetContent(ctx context.Context, documentID string) (string, error)

	// Segments returns a document's segments ordered by index.
	Segments(ctx context.Context, documentID string) ([]domain.Segment, error)

	// Delete removes a document and cascades to its segments.
	Delete(ctx context.Context, documentID string) error
}
