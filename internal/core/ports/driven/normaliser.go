package driven

import (
	"context"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
)

// Normaliser transforms raw file content into a document with plain
// text content. Each normaliser handles specific MIME types.
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Generic MIME normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise transforms raw content into a document.
	Normalise(ctx context.Context, raw *RawContent) (*NormaliseResult, error)
}

// RawContent is opaque file content before normalisation.
type RawContent struct {
	// URI is the original location (file path, URL, etc).
	URI string

	// MIMEType is the content type (e.g., "text/markdown").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}

// NormaliseResult contains the output of normalisation.
// Normalisation only produces a Document with Content; segmentation is
// handled by the PostProcessor pipeline.
type NormaliseResult struct {
	// Document is the normalised document with Content populated.
	Document domain.Document
}
