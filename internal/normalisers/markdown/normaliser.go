package markdown

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
	"github.com/custodia-labs/retriva-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Markdown documents. Content is kept as raw
// markdown so heading and paragraph structure stays available to
// downstream segmentation; the parsed AST is used for metadata only.
type Normaliser struct {
	md goldmark.Markdown
}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{md: goldmark.New()}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise converts a markdown document to a normalised document.
// Segmentation is handled by the PostProcessor pipeline.
func (n *Normaliser) Normalise(_ context.Context, raw *driven.RawContent) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	title, headings := n.inspect(raw.Content)
	if title == "" {
		title = titleFromURI(raw.URI)
	}

	doc := domain.Document{
		ID:      uuid.New().String(),
		URI:     raw.URI,
		Title:   title,
		Content: string(raw.Content),
		Metadata: map[string]any{
			"mime_type":     raw.MIMEType,
			"format":        "markdown",
			"heading_count": headings,
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	return &driven.NormaliseResult{
		Document: doc,
	}, nil
}

// inspect parses the markdown AST and returns the first level-1 heading
// (falling back to the first heading of any level) and the total number
// of headings in the document.
func (n *Normaliser) inspect(src []byte) (string, int) {
	reader := gmtext.NewReader(src)
	doc := n.md.Parser().Parse(reader)

	var title, firstHeading string
	var count int

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		heading, ok := node.(*ast.Heading)
		if !ok {
			continue
		}
		count++
		text := strings.TrimSpace(string(heading.Text(src)))
		if text == "" {
			continue
		}
		if firstHeading == "" {
			firstHeading = text
		}
		if title == "" && heading.Level == 1 {
			title = text
		}
	}

	if title == "" {
		title = firstHeading
	}
	return title, count
}

// titleFromURI derives a title from the filename when the document has
// no usable heading.
func titleFromURI(uri string) string {
	filename := filepath.Base(uri)
	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
