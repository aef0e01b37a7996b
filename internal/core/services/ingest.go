package services

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
	"github.com/custodia-labs/retriva-cli/internal/core/ports/driven"
	"github.com/custodia-labs/retriva-cli/internal/core/ports/driving"
	"github.com/custodia-labs/retriva-cli/internal/logger"
	"github.com/custodia-labs/retriva-cli/internal/rank"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService turns raw files into stored, embedded segments.
type IngestService struct {
	store      driven.SegmentStore
	registry   driven.NormaliserRegistry
	pipeline   driven.PostProcessorPipeline
	embedder   driven.EmbeddingService
	extractors []driven.TextExtractor
	cache      driven.ContextCache
}

// IngestOption configures an IngestService.
type IngestOption func(*IngestService)

// WithExtractors registers text extractors for binary formats.
func WithExtractors(extractors ...driven.TextExtractor) IngestOption {
	return func(s *IngestService) {
		s.extractors = append(s.extractors, extractors...)
	}
}

// WithIngestCache sets the cache invalidated on corpus changes.
func WithIngestCache(cache driven.ContextCache) IngestOption {
	return func(s *IngestService) {
		s.cache = cache
	}
}

// NewIngestService creates an ingest service. The embedder is optional
// (can be nil); segments are then stored without embeddings and never
// match a query.
func NewIngestService(
	store driven.SegmentStore,
	registry driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		store:    store,
		registry: registry,
		pipeline: pipeline,
		embedder: embedder,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IngestFile normalises, segments, embeds and stores the file at path.
func (s *IngestService) IngestFile(ctx context.Context, path string) (*domain.Document, error) {
	logger.Section("Ingest File")
	logger.Debug("Path: %s", path)

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	uri := "file://" + abs

	// Binary formats go through an extractor first.
	if extractor := s.extractorFor(abs); extractor != nil {
		logger.Debug("Extracting text from %s", filepath.Ext(abs))
		extracted, err := extractor.Extract(ctx, abs)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", path, err)
		}
		doc := &domain.Document{
			URI:       uri,
			Title:     strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs)),
			Content:   extracted.Content,
			PageCount: extracted.PageCount,
		}
		return s.ingest(ctx, doc)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	raw := &driven.RawContent{
		URI:      uri,
		MIMEType: mimeTypeFor(abs),
		Content:  data,
	}

	result, err := s.registry.Normalise(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("normalise %s: %w", path, err)
	}

	doc := result.Document
	if doc.Title == "" {
		doc.Title = strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	}
	doc.URI = uri
	return s.ingest(ctx, &doc)
}

// IngestText ingests already-extracted text under the given URI.
func (s *IngestService) IngestText(ctx context.Context, uri, title, content string) (*domain.Document, error) {
	logger.Section("Ingest Text")
	logger.Debug("URI: %s", uri)

	if strings.TrimSpace(uri) == "" {
		return nil, fmt.Errorf("ingest text: %w: uri is required", domain.ErrInvalidInput)
	}

	doc := &domain.Document{
		URI:     uri,
		Title:   title,
		Content: content,
	}
	return s.ingest(ctx, doc)
}

// ingest runs the shared pipeline: segment the document, persist it,
// embed the segments and atomically replace the stored set.
func (s *IngestService) ingest(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	if strings.TrimSpace(doc.Content) == "" {
		return nil, fmt.Errorf("ingest %s: %w", doc.URI, domain.ErrEmptyDocument)
	}

	now := time.Now()

	// Re-ingesting a known URI keeps the document ID stable so its
	// segments are replaced rather than duplicated.
	if existing, err := s.findByURI(ctx, doc.URI); err != nil {
		return nil, err
	} else if existing != nil {
		doc.ID = existing.ID
		doc.CreatedAt = existing.CreatedAt
		logger.Debug("Re-ingesting known URI, keeping document %s", doc.ID)
	} else {
		doc.ID = uuid.New().String()
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	segments, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("segment document: %w", err)
	}
	logger.Info("Segmented %q into %d segments", doc.Title, len(segments))

	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata["segment_count"] = len(segments)

	if err := s.store.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	segments = s.embedSegments(ctx, segments)

	if err := s.store.ReplaceSegments(ctx, doc.ID, segments); err != nil {
		return nil, fmt.Errorf("replace segments: %w", err)
	}

	s.invalidateCaches()
	return doc, nil
}

// embedSegments attaches embeddings in batch. A vector whose length
// does not match the model dimensionality is logged and dropped; the
// segment is kept and simply never matches a query.
func (s *IngestService) embedSegments(ctx context.Context, segments []domain.Segment) []domain.Segment {
	if s.embedder == nil || len(segments) == 0 {
		if s.embedder == nil {
			logger.Warn("No embedding service configured, segments stored without embeddings")
		}
		return segments
	}

	texts := make([]string, len(segments))
	for i := range segments {
		texts[i] = segments[i].Content
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		logger.Warn("Embedding batch failed: %v (segments stored without embeddings)", err)
		return segments
	}
	if len(vectors) != len(segments) {
		logger.Warn("Embedding batch returned %d vectors for %d segments, skipping", len(vectors), len(segments))
		return segments
	}

	dims := s.embedder.Dimensions()
	skipped := 0
	for i := range segments {
		if dims > 0 && len(vectors[i]) != dims {
			logger.Warn("Segment %s: %v (got %d, want %d)", segments[i].ID, domain.ErrDimensionMismatch, len(vectors[i]), dims)
			skipped++
			continue
		}
		segments[i].Embedding = vectors[i]
	}
	if skipped > 0 {
		logger.Warn("Skipped embeddings for %d segments", skipped)
	}

	return segments
}

// findByURI returns the stored document with the given URI, if any.
func (s *IngestService) findByURI(ctx context.Context, uri string) (*domain.Document, error) {
	docs, err := s.store.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	for i := range docs {
		if docs[i].URI == uri {
			return &docs[i], nil
		}
	}
	return nil, nil
}

// extractorFor returns the first extractor supporting the file's
// extension, if any.
func (s *IngestService) extractorFor(path string) driven.TextExtractor {
	ext := strings.ToLower(filepath.Ext(path))
	for _, extractor := range s.extractors {
		for _, supported := range extractor.SupportedExtensions() {
			if supported == ext {
				return extractor
			}
		}
	}
	return nil
}

// invalidateCaches drops cached rankings and responses after a corpus
// change.
func (s *IngestService) invalidateCaches() {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(responseCacheNamespace)
	s.cache.Invalidate(rank.CacheNamespace)
}

// mimeTypeFor guesses the MIME type from the file extension.
func mimeTypeFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".md", ".markdown":
		return "text/markdown"
	case ".txt", ".text", "":
		return "text/plain"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if i := strings.IndexByte(t, ';'); i >= 0 {
			t = t[:i]
		}
		return t
	}
	return "text/plain"
}
