package domain

// LandmarkKind classifies a structural feature found in raw text.
type LandmarkKind string

// Landmark kinds, in order of precedence when landmarks collide.
const (
	// LandmarkHeader is a heading (markdown, numbered section, all-caps line).
	LandmarkHeader LandmarkKind = "header"

	// LandmarkParagraphBreak is two or more consecutive newlines.
	LandmarkParagraphBreak LandmarkKind = "paragraph_break"

	// LandmarkListItem is a bullet or numbered list marker.
	LandmarkListItem LandmarkKind = "list_item"
)

// Landmark is a structural feature detected in raw document text.
// Landmarks bias segmentation split points; they are derived transiently
// during segmentation and never persisted.
type Landmark struct {
	// Position is the byte offset where the feature begins.
	Position int

	// Text is the matched text of the feature (e.g. the heading line).
	Text string

	// Level is the heading depth (1-6 for markdown, 0 otherwise).
	Level int

	// Kind classifies the feature.
	Kind LandmarkKind
}
