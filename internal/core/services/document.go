package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
	"github.com/custodia-labs/retriva-cli/internal/core/ports/driven"
	"github.com/custodia-labs/retriva-cli/internal/core/ports/driving"
	"github.com/custodia-labs/retriva-cli/internal/rank"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages ingested documents.
type DocumentService struct {
	store driven.SegmentStore
	cache driven.ContextCache
}

// NewDocumentService creates a new document service. The cache is
// optional; when set it is invalidated on deletes.
func NewDocumentService(store driven.SegmentStore, cache driven.ContextCache) *DocumentService {
	return &DocumentService{
		store: store,
		cache: cache,
	}
}

// List returns all ingested documents.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.store.ListDocuments(ctx)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.store.GetDocument(ctx, documentID)
}

// Segments returns a document's segments ordered by index.
func (s *DocumentService) Segments(ctx context.Context, documentID string) ([]domain.Segment, error) {
	if _, err := s.store.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return s.store.GetSegments(ctx, documentID)
}

// GetContent reconstructs a document's content from its segments,
// stripping the stored overlap between consecutive segments.
func (s *DocumentService) GetContent(ctx context.Context, documentID string) (string, error) {
	segments, err := s.Segments(ctx, documentID)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for i := range segments {
		content := segments[i].Content
		if i > 0 {
			content = stripOverlap(builder.String(), content, segments[i].OverlapWithPrevious)
			builder.WriteString("\n")
		}
		builder.WriteString(content)
	}
	return builder.String(), nil
}

// Delete removes a document, cascades to its segments and drops any
// cached results that might reference them.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	if err := s.store.DeleteDocument(ctx, documentID); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(responseCacheNamespace)
		s.cache.Invalidate(rank.CacheNamespace)
	}
	return nil
}

// stripOverlap removes the leading part of content that repeats the
// tail of the accumulated text, bounded by the recorded overlap.
func stripOverlap(accumulated, content, overlap string) string {
	if overlap == "" {
		return content
	}
	for n := len(overlap); n > 0; n-- {
		if strings.HasSuffix(accumulated, content[:min(n, len(content))]) {
			return content[min(n, len(content)):]
		}
	}
	return content
}
