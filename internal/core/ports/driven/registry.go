package driven

import "context"

// NormaliserRegistry selects the appropriate normaliser for raw
// content. It maintains a priority-ordered list of normalisers and
// dispatches based on MIME type.
type NormaliserRegistry interface {
	// Normalise transforms raw content using the best matching
	// normaliser. Selection priority: MIME-specific > fallback.
	Normalise(ctx context.Context, raw *RawContent) (*NormaliseResult, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedMIMETypes returns all MIME types that can be normalised.
	SupportedMIMETypes() []string
}
