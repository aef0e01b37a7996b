package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/retriva-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/retriva-cli/internal/core/domain"
	"github.com/custodia-labs/retriva-cli/internal/core/ports/driven"
)

// mockRegistry implements driven.NormaliserRegistry, passing raw bytes
// through as plain text.
type mockRegistry struct {
	err      error
	lastMIME string
}

func (m *mockRegistry) Normalise(_ context.Context, raw *driven.RawContent) (*driven.NormaliseResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastMIME = raw.MIMEType
	return &driven.NormaliseResult{
		Document: domain.Document{
			URI:     raw.URI,
			Content: string(raw.Content),
		},
	}, nil
}

func (m *mockRegistry) Register(_ driven.Normaliser) {}

func (m *mockRegistry) SupportedMIMETypes() []string { return []string{"text/plain"} }

// mockPipeline implements driven.PostProcessorPipeline with a fixed
// single-segment split.
type mockPipeline struct {
	err error
}

func (m *mockPipeline) Process(_ context.Context, doc *domain.Document) ([]domain.Segment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []domain.Segment{
		{ID: "seg-" + doc.ID, DocumentID: doc.ID, Index: 0, TotalSegments: 1, Content: doc.Content},
	}, nil
}

// batchEmbedder returns per-call vectors for EmbedBatch.
type batchEmbedder struct {
	mockEmbeddingService
	batch [][]float32
}

func (b *batchEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if b.embedErr != nil {
		return nil, b.embedErr
	}
	if b.batch != nil {
		return b.batch, nil
	}
	return b.mockEmbeddingService.EmbedBatch(ctx, texts)
}

func TestIngestText_StoresDocumentAndSegments(t *testing.T) {
	store := memory.NewSegmentStore()
	embedder := &mockEmbeddingService{fallback: []float32{1, 0, 0}}
	svc := NewIngestService(store, &mockRegistry{}, &mockPipeline{}, embedder)

	doc, err := svc.IngestText(context.Background(), "note://1", "Note", "hello world content")
	require.NoError(t, err)
	require.NotEmpty(t, doc.ID)
	assert.False(t, doc.CreatedAt.IsZero())
	assert.Equal(t, 1, doc.Metadata["segment_count"])

	segments, err := store.GetSegments(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "hello world content", segments[0].Content)
	assert.Equal(t, []float32{1, 0, 0}, segments[0].Embedding)
}

func TestIngestText_EmptyContent(t *testing.T) {
	svc := NewIngestService(memory.NewSegmentStore(), &mockRegistry{}, &mockPipeline{}, nil)

	_, err := svc.IngestText(context.Background(), "note://1", "Note", "   \n ")
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
}

func TestIngestText_MissingURI(t *testing.T) {
	svc := NewIngestService(memory.NewSegmentStore(), &mockRegistry{}, &mockPipeline{}, nil)

	_, err := svc.IngestText(context.Background(), "", "Note", "content")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngestText_ReingestKeepsDocumentID(t *testing.T) {
	store := memory.NewSegmentStore()
	svc := NewIngestService(store, &mockRegistry{}, &mockPipeline{}, nil)
	ctx := context.Background()

	first, err := svc.IngestText(ctx, "note://1", "Note", "original content")
	require.NoError(t, err)

	second, err := svc.IngestText(ctx, "note://1", "Note", "updated content")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	segments, err := store.GetSegments(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "updated content", segments[0].Content)

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestIngest_NoEmbedder_SegmentsStoredWithoutVectors(t *testing.T) {
	store := memory.NewSegmentStore()
	svc := NewIngestService(store, &mockRegistry{}, &mockPipeline{}, nil)

	doc, err := svc.IngestText(context.Background(), "note://1", "Note", "content")
	require.NoError(t, err)

	segments, err := store.GetSegments(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Nil(t, segments[0].Embedding)
}

func TestIngest_EmbedBatchFailure_SegmentsKept(t *testing.T) {
	store := memory.NewSegmentStore()
	embedder := &batchEmbedder{mockEmbeddingService: mockEmbeddingService{embedErr: errors.New("down")}}
	svc := NewIngestService(store, &mockRegistry{}, &mockPipeline{}, embedder)

	doc, err := svc.IngestText(context.Background(), "note://1", "Note", "content")
	require.NoError(t, err, "embedding failure degrades, it does not abort ingestion")

	segments, err := store.GetSegments(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Nil(t, segments[0].Embedding)
}

func TestIngest_DimensionMismatch_VectorDropped(t *testing.T) {
	store := memory.NewSegmentStore()
	embedder := &batchEmbedder{
		mockEmbeddingService: mockEmbeddingService{dims: 3},
		batch:                [][]float32{{1, 0}},
	}
	svc := NewIngestService(store, &mockRegistry{}, &mockPipeline{}, embedder)

	doc, err := svc.IngestText(context.Background(), "note://1", "Note", "content")
	require.NoError(t, err)

	segments, err := store.GetSegments(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Len(t, segments, 1, "the segment survives without its vector")
	assert.Nil(t, segments[0].Embedding)
}

func TestIngest_PipelineFailure(t *testing.T) {
	svc := NewIngestService(memory.NewSegmentStore(), &mockRegistry{}, &mockPipeline{err: errors.New("split failed")}, nil)

	_, err := svc.IngestText(context.Background(), "note://1", "Note", "content")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "segment document")
}

func TestIngestFile_NormalisesAndTitles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guide.md")
	require.NoError(t, os.WriteFile(path, []byte("# Guide\n\nBody text."), 0o600))

	store := memory.NewSegmentStore()
	registry := &mockRegistry{}
	svc := NewIngestService(store, registry, &mockPipeline{}, nil)

	doc, err := svc.IngestFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "text/markdown", registry.lastMIME)
	assert.Equal(t, "guide", doc.Title, "falls back to the file name without extension")
	assert.True(t, strings.HasPrefix(doc.URI, "file://"))
	assert.True(t, strings.HasSuffix(doc.URI, "guide.md"))
}

func TestIngestFile_MissingFile(t *testing.T) {
	svc := NewIngestService(memory.NewSegmentStore(), &mockRegistry{}, &mockPipeline{}, nil)

	_, err := svc.IngestFile(context.Background(), filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
}

func TestIngestFile_NormaliserFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o600))

	svc := NewIngestService(memory.NewSegmentStore(), &mockRegistry{err: domain.ErrUnsupportedType}, &mockPipeline{}, nil)

	_, err := svc.IngestFile(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestMimeTypeFor(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"doc.md", "text/markdown"},
		{"doc.markdown", "text/markdown"},
		{"doc.txt", "text/plain"},
		{"doc", "text/plain"},
		{"doc.html", "text/html"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, mimeTypeFor(tt.path))
		})
	}
}
