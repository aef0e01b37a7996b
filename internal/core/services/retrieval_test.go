package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/retriva-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/retriva-cli/internal/cache"
	"github.com/custodia-labs/retriva-cli/internal/core/domain"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Vectors maps input text to its embedding; unknown inputs get the
// fallback vector.
type mockEmbeddingService struct {
	vectors  map[string][]float32
	fallback []float32
	embedErr error
	dims     int
	calls    int
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return m.fallback, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		result[i] = v
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return 3
}

func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }

func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }

func (m *mockEmbeddingService) Close() error { return nil }

// --- Helpers ---

// seedStore saves a document with embedded segments.
func seedStore(t *testing.T, store *memory.SegmentStore, docID, title string, segments []domain.Segment) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: docID, Title: title, URI: "file:///" + docID}))
	require.NoError(t, store.ReplaceSegments(ctx, docID, segments))
}

func TestRetrieve_EmptyQuery(t *testing.T) {
	svc := NewRetrievalService(memory.NewSegmentStore(), &mockEmbeddingService{}, nil)

	_, err := svc.Retrieve(context.Background(), "   ", domain.RetrievalOptions{})
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
}

func TestRetrieve_NilEmbedder(t *testing.T) {
	svc := NewRetrievalService(memory.NewSegmentStore(), nil, nil)

	_, err := svc.Retrieve(context.Background(), "query", domain.RetrievalOptions{})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestRetrieve_EmbedFailure(t *testing.T) {
	embedder := &mockEmbeddingService{embedErr: errors.New("connection refused")}
	svc := NewRetrievalService(memory.NewSegmentStore(), embedder, nil)

	_, err := svc.Retrieve(context.Background(), "query", domain.RetrievalOptions{})
	assert.ErrorIs(t, err, domain.ErrRetrievalUnavailable)
}

func TestRetrieve_RanksAndHydrates(t *testing.T) {
	store := memory.NewSegmentStore()
	seedStore(t, store, "doc-1", "Install Guide", []domain.Segment{
		{ID: "seg-1", DocumentID: "doc-1", Index: 0, Content: "alpha install steps", Embedding: []float32{1, 0, 0}},
		{ID: "seg-2", DocumentID: "doc-1", Index: 1, Content: "beta appendix", Embedding: []float32{0.5, 0.5, 0}},
		{ID: "seg-3", DocumentID: "doc-1", Index: 2, Content: "unrelated", Embedding: []float32{0, 1, 0}},
	})

	embedder := &mockEmbeddingService{
		vectors: map[string][]float32{"alpha": {1, 0, 0}},
	}
	svc := NewRetrievalService(store, embedder, nil)

	result, err := svc.Retrieve(context.Background(), "alpha", domain.RetrievalOptions{
		EnableReranking: true,
	})
	require.NoError(t, err)

	require.Equal(t, 2, result.Context.TotalCount, "orthogonal segment is never a candidate")
	assert.Equal(t, "seg-1", result.Context.Candidates[0].SegmentID)
	assert.Equal(t, "Install Guide", result.Context.Candidates[0].DocumentName)
	assert.Greater(t, result.Confidence, 50, "a perfect match raises the confidence floor")
	for _, cand := range result.Context.Candidates {
		assert.False(t, cand.LowConfidence)
		assert.GreaterOrEqual(t, cand.Score, domain.DefaultMinScore)
	}
}

func TestRetrieve_NoMatches(t *testing.T) {
	store := memory.NewSegmentStore()
	embedder := &mockEmbeddingService{fallback: []float32{1, 0, 0}}
	svc := NewRetrievalService(store, embedder, nil)

	result, err := svc.Retrieve(context.Background(), "anything", domain.RetrievalOptions{})
	require.NoError(t, err)

	assert.Zero(t, result.Context.TotalCount)
	assert.Zero(t, result.Confidence)
	assert.Contains(t, result.Issues, "no matching segments")
}

func TestRetrieve_FallbackOnWeakSignal(t *testing.T) {
	store := memory.NewSegmentStore()
	segments := make([]domain.Segment, 5)
	for i := range segments {
		segments[i] = domain.Segment{
			ID:         string(rune('a' + i)),
			DocumentID: "doc-1",
			Index:      i,
			Content:    "weak match",
			// Small x component keeps cosine similarity under the
			// default threshold.
			Embedding: []float32{0.2, 1, 0},
		}
	}
	seedStore(t, store, "doc-1", "Weak Doc", segments)

	embedder := &mockEmbeddingService{fallback: []float32{1, 0, 0}}
	svc := NewRetrievalService(store, embedder, nil)

	result, err := svc.Retrieve(context.Background(), "query", domain.RetrievalOptions{
		EnableDeduplication: false,
	})
	require.NoError(t, err)

	require.NotZero(t, result.Context.TotalCount)
	assert.LessOrEqual(t, result.Context.TotalCount, 3, "fallback returns at most three candidates")
	for _, cand := range result.Context.Candidates {
		assert.True(t, cand.LowConfidence)
	}
	assert.NotEmpty(t, result.Issues)
}

func TestRetrieve_QueryVariantsMergedByBestScore(t *testing.T) {
	store := memory.NewSegmentStore()
	seedStore(t, store, "doc-1", "Doc", []domain.Segment{
		{ID: "seg-1", DocumentID: "doc-1", Index: 0, Content: "first topic", Embedding: []float32{1, 0, 0}},
		{ID: "seg-2", DocumentID: "doc-1", Index: 1, Content: "second topic", Embedding: []float32{0, 1, 0}},
	})

	embedder := &mockEmbeddingService{
		vectors: map[string][]float32{
			"original": {1, 0, 0},
			"variant":  {0, 1, 0},
		},
	}
	svc := NewRetrievalService(store, embedder, nil)

	result, err := svc.Retrieve(context.Background(), "original", domain.RetrievalOptions{
		QueryVariants: []string{"variant"},
	})
	require.NoError(t, err)

	// Each variant surfaces its own segment at full similarity.
	require.Equal(t, 2, result.Context.TotalCount)
	ids := map[string]bool{}
	for _, cand := range result.Context.Candidates {
		ids[cand.SegmentID] = true
		assert.InDelta(t, 1.0, cand.Score, 1e-6)
	}
	assert.True(t, ids["seg-1"])
	assert.True(t, ids["seg-2"])
}

func TestRetrieve_SkipsInconsistentEmbeddings(t *testing.T) {
	store := memory.NewSegmentStore()
	seedStore(t, store, "doc-1", "Doc", []domain.Segment{
		{ID: "seg-1", DocumentID: "doc-1", Index: 0, Content: "good", Embedding: []float32{1, 0, 0}},
		{ID: "seg-2", DocumentID: "doc-1", Index: 1, Content: "short vector", Embedding: []float32{1, 0}},
		{ID: "seg-3", DocumentID: "doc-1", Index: 2, Content: "no vector"},
	})

	embedder := &mockEmbeddingService{fallback: []float32{1, 0, 0}}
	svc := NewRetrievalService(store, embedder, nil)

	result, err := svc.Retrieve(context.Background(), "query", domain.RetrievalOptions{})
	require.NoError(t, err)

	require.Equal(t, 1, result.Context.TotalCount)
	assert.Equal(t, "seg-1", result.Context.Candidates[0].SegmentID)
	assert.Contains(t, result.Issues, "skipped 2 segments with inconsistent embeddings")
}

func TestRetrieve_QueryDimensionMismatch(t *testing.T) {
	embedder := &mockEmbeddingService{fallback: []float32{1, 0}, dims: 3}
	svc := NewRetrievalService(memory.NewSegmentStore(), embedder, nil)

	_, err := svc.Retrieve(context.Background(), "query", domain.RetrievalOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestRetrieve_ResponseCache(t *testing.T) {
	store := memory.NewSegmentStore()
	seedStore(t, store, "doc-1", "Doc", []domain.Segment{
		{ID: "seg-1", DocumentID: "doc-1", Index: 0, Content: "cached", Embedding: []float32{1, 0, 0}},
	})

	embedder := &mockEmbeddingService{fallback: []float32{1, 0, 0}}
	svc := NewRetrievalService(store, embedder, nil, WithRetrievalCache(cache.New()))

	first, err := svc.Retrieve(context.Background(), "query", domain.RetrievalOptions{})
	require.NoError(t, err)
	callsAfterFirst := embedder.calls

	second, err := svc.Retrieve(context.Background(), "  Query ", domain.RetrievalOptions{})
	require.NoError(t, err)

	assert.Equal(t, callsAfterFirst, embedder.calls, "cached response skips embedding")
	assert.Equal(t, first.Confidence, second.Confidence)
	assert.Equal(t, first.Context.TotalCount, second.Context.TotalCount)
}

func TestRetrieve_CachedResultIsolatedFromCallerMutation(t *testing.T) {
	store := memory.NewSegmentStore()
	seedStore(t, store, "doc-1", "Doc", []domain.Segment{
		{ID: "seg-1", DocumentID: "doc-1", Index: 0, Content: "cached", Embedding: []float32{1, 0, 0}},
	})

	embedder := &mockEmbeddingService{fallback: []float32{1, 0, 0}}
	svc := NewRetrievalService(store, embedder, nil, WithRetrievalCache(cache.New()))

	first, err := svc.Retrieve(context.Background(), "query", domain.RetrievalOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, first.Context.Candidates)

	first.Context.Candidates[0].Content = "scribbled over"
	first.Issues = append(first.Issues, "caller-added issue")

	second, err := svc.Retrieve(context.Background(), "query", domain.RetrievalOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, second.Context.Candidates)

	assert.Equal(t, "cached", second.Context.Candidates[0].Content)
	assert.NotContains(t, second.Issues, "caller-added issue")
}

func TestRetrieve_MaxSourcesBound(t *testing.T) {
	store := memory.NewSegmentStore()
	segments := make([]domain.Segment, 8)
	for i := range segments {
		segments[i] = domain.Segment{
			ID:         string(rune('a' + i)),
			DocumentID: "doc-1",
			Index:      i,
			Content:    "segment content number " + string(rune('a'+i)),
			Embedding:  []float32{1, float32(i) * 0.01, 0},
		}
	}
	seedStore(t, store, "doc-1", "Doc", segments)

	embedder := &mockEmbeddingService{fallback: []float32{1, 0, 0}}
	svc := NewRetrievalService(store, embedder, nil)

	result, err := svc.Retrieve(context.Background(), "query", domain.RetrievalOptions{
		MaxSources:           2,
		MaxChunksPerDocument: 8,
		EnableDeduplication:  false,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Context.TotalCount)
}
