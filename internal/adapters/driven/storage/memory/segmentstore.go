// Package memory provides in-memory implementations of the storage
// ports, used in tests and as the default for ephemeral runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
	"github.com/custodia-labs/retriva-cli/internal/core/ports/driven"
)

// Ensure SegmentStore implements the interface.
var _ driven.SegmentStore = (*SegmentStore)(nil)

// SegmentStore is an in-memory implementation of driven.SegmentStore.
type SegmentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	segments  map[string][]domain.Segment
}

// NewSegmentStore creates a new in-memory segment store.
func NewSegmentStore() *SegmentStore {
	return &SegmentStore{
		documents: make(map[string]domain.Document),
		segments:  make(map[string][]domain.Segment),
	}
}

// SaveDocument stores or updates a document.
func (s *SegmentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// ReplaceSegments atomically replaces the full segment set for a
// document. The map swap happens under the write lock, so readers
// never observe a partial overwrite.
func (s *SegmentStore) ReplaceSegments(_ context.Context, documentID string, segments []domain.Segment) error {
	replacement := make([]domain.Segment, len(segments))
	copy(replacement, segments)
	sort.SliceStable(replacement, func(i, j int) bool {
		return replacement[i].Index < replacement[j].Index
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[documentID]; !ok {
		return domain.ErrNotFound
	}
	s.segments[documentID] = replacement
	return nil
}

// GetDocument retrieves a document by ID.
func (s *SegmentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetSegments retrieves all segments for a document, ordered by index.
func (s *SegmentStore) GetSegments(_ context.Context, documentID string) ([]domain.Segment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	segments, ok := s.segments[documentID]
	if !ok {
		return nil, nil
	}
	result := make([]domain.Segment, len(segments))
	copy(result, segments)
	return result, nil
}

// GetSegment retrieves a specific segment by ID.
func (s *SegmentStore) GetSegment(_ context.Context, id string) (*domain.Segment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, segments := range s.segments {
		for _, segment := range segments {
			if segment.ID == id {
				return &segment, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

// ScanSegments streams every stored segment to fn.
func (s *SegmentStore) ScanSegments(_ context.Context, fn func(domain.Segment) error) error {
	s.mu.RLock()
	snapshot := make([]domain.Segment, 0)
	for _, segments := range s.segments {
		snapshot = append(snapshot, segments...)
	}
	s.mu.RUnlock()

	for _, segment := range snapshot {
		if err := fn(segment); err != nil {
			return err
		}
	}
	return nil
}

// DeleteDocument removes a document and its segments.
func (s *SegmentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.documents, id)
	delete(s.segments, id)
	return nil
}

// ListDocuments returns all stored documents.
func (s *SegmentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Document, 0, len(s.documents))
	for id := range s.documents {
		result = append(result, s.documents[id])
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
