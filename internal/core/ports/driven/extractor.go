package driven

import "context"

// TextExtractor yields plain text for a file. File-format handling
// (PDF, DOCX) lives behind this interface; the pipeline only sees the
// extracted content. Unsupported or corrupt files yield
// domain.ErrUnsupportedType.
type TextExtractor interface {
	// Extract reads the file at path and returns its text content.
	Extract(ctx context.Context, path string) (*ExtractResult, error)

	// SupportedExtensions returns the file extensions this extractor
	// handles (lowercase, with leading dot).
	SupportedExtensions() []string
}

// ExtractResult is the output of text extraction.
type ExtractResult struct {
	// Content is the extracted plain text.
	Content string

	// PageCount is the number of pages, when the format has pages.
	PageCount int
}
