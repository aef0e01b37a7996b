package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
	"github.com/custodia-labs/retriva-cli/internal/core/ports/driven"
	"github.com/custodia-labs/retriva-cli/internal/core/ports/driving"
	"github.com/custodia-labs/retriva-cli/internal/logger"
	"github.com/custodia-labs/retriva-cli/internal/rank"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// responseCacheNamespace holds fully assembled retrieval results.
const responseCacheNamespace = "response"

// responseCacheTTL bounds how long an assembled result stays valid.
const responseCacheTTL = 5 * time.Minute

// scanMultiplier oversizes the initial scan so dedup and reranking
// have enough candidates to work with.
const scanMultiplier = 3

// RetrievalService runs the retrieval pipeline: similarity scan,
// deduplication, reranking, assembly, confidence estimation and the
// low-signal fallback.
type RetrievalService struct {
	store       driven.SegmentStore
	embedder    driven.EmbeddingService
	reranker    *rank.Reranker
	cache       driven.ContextCache
	boostFactor float64
}

// RetrievalOption configures a RetrievalService.
type RetrievalOption func(*RetrievalService)

// WithRetrievalCache enables the response and rerank caches.
func WithRetrievalCache(cache driven.ContextCache) RetrievalOption {
	return func(s *RetrievalService) {
		s.cache = cache
	}
}

// WithBoostFactor sets the exact-term boost multiplier.
func WithBoostFactor(factor float64) RetrievalOption {
	return func(s *RetrievalService) {
		s.boostFactor = factor
	}
}

// NewRetrievalService creates a retrieval service. The remote rerank
// provider is optional (can be nil); the rerank chain then starts at
// the local lexical tier.
func NewRetrievalService(
	store driven.SegmentStore,
	embedder driven.EmbeddingService,
	remote driven.RerankService,
	opts ...RetrievalOption,
) *RetrievalService {
	s := &RetrievalService{
		store:    store,
		embedder: embedder,
	}
	for _, opt := range opts {
		opt(s)
	}

	rerankOpts := []rank.RerankerOption{}
	if s.cache != nil {
		rerankOpts = append(rerankOpts, rank.WithCache(s.cache))
	}
	if s.boostFactor > 1 {
		rerankOpts = append(rerankOpts, rank.WithBoostFactor(s.boostFactor))
	}
	s.reranker = rank.NewReranker(rank.DefaultChain(remote), rerankOpts...)

	return s
}

// Retrieve runs the full pipeline for a query.
func (s *RetrievalService) Retrieve(
	ctx context.Context, query string, opts domain.RetrievalOptions,
) (*domain.RetrievalResult, error) {
	logger.Section("Retrieval Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, rejecting")
		return nil, domain.ErrEmptyQuery
	}

	opts = applyRetrievalDefaults(opts)
	logger.Debug("MaxSources: %d, MinScore: %.2f, rerank=%t, dedup=%t",
		opts.MaxSources, opts.MinScore, opts.EnableReranking, opts.EnableDeduplication)

	if cached, ok := s.cachedResult(query, opts); ok {
		logger.Info("Response cache hit")
		return cached, nil
	}

	if s.embedder == nil {
		logger.Warn("Retrieval unavailable: embedding service is nil")
		return nil, fmt.Errorf("retrieve: %w", domain.ErrEmbeddingUnavailable)
	}

	var issues []string

	// Scan each query variant concurrently and merge by best score.
	candidates, scanIssues, err := s.scanVariants(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	issues = append(issues, scanIssues...)

	logger.Debug("Raw candidates: %d", len(candidates))

	if len(candidates) == 0 {
		result := &domain.RetrievalResult{
			Context:    domain.AssembledContext{},
			Confidence: 0,
			Issues:     append(issues, "no matching segments"),
		}
		s.storeResult(query, opts, result)
		return result, nil
	}

	// Hydrate document names, dropping candidates whose document was
	// deleted mid-flight.
	candidates = s.hydrateDocumentNames(ctx, candidates)

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if opts.EnableDeduplication {
		before := len(candidates)
		candidates = rank.Deduplicate(candidates, opts.MaxChunksPerDocument)
		logger.Debug("Dedup: %d -> %d candidates", before, len(candidates))
	}

	if opts.EnableReranking {
		var rerankIssues []string
		candidates, rerankIssues = s.reranker.Rerank(ctx, query, candidates, opts.MaxSources, opts.MinScore)
		issues = append(issues, rerankIssues...)
	}

	// Low-signal fallback: when nothing clears the threshold, surface
	// the best raw matches flagged low-confidence instead of nothing.
	fallback, engaged := rank.ApplyFallback(candidates, opts.MinScore)
	if engaged {
		logger.Info("Fallback engaged: no candidate cleared %.2f", opts.MinScore)
		issues = append(issues, "no candidate cleared the similarity threshold; returning best matches flagged low-confidence")
		candidates = fallback
	} else {
		candidates = filterByScore(candidates, opts.MinScore)
	}

	assembled := rank.Assemble(candidates, opts.MaxSources, opts.OrderByPosition)
	confidence := rank.EstimateConfidence(assembled.Candidates, opts.MinScore)

	logger.Info("Final context: %d candidates, confidence %d", assembled.TotalCount, confidence)

	result := &domain.RetrievalResult{
		Context:    assembled,
		Confidence: confidence,
		Issues:     issues,
	}
	s.storeResult(query, opts, result)
	return result, nil
}

// scanVariants embeds the query and each variant, scans them
// concurrently and merges candidates keeping the best score per
// segment. At least one variant must succeed.
func (s *RetrievalService) scanVariants(
	ctx context.Context, query string, opts domain.RetrievalOptions,
) ([]domain.RetrievalCandidate, []string, error) {
	variants := append([]string{query}, opts.QueryVariants...)
	limit := opts.MaxSources * scanMultiplier

	var (
		mu     sync.Mutex
		merged = make(map[string]domain.RetrievalCandidate)
		errs   = make([]error, len(variants))
		skips  int
	)

	var wg sync.WaitGroup
	for i, variant := range variants {
		wg.Add(1)
		go func(i int, variant string) {
			defer wg.Done()

			found, skipped, err := s.scanOne(ctx, variant, limit)
			if err != nil {
				errs[i] = err
				return
			}

			mu.Lock()
			defer mu.Unlock()
			skips += skipped
			for _, cand := range found {
				if prev, ok := merged[cand.SegmentID]; !ok || cand.Score > prev.Score {
					merged[cand.SegmentID] = cand
				}
			}
		}(i, variant)
	}
	wg.Wait()

	var issues []string
	failed := 0
	for i, err := range errs {
		if err == nil {
			continue
		}
		failed++
		logger.Warn("Variant scan %d failed: %v", i, err)
		issues = append(issues, fmt.Sprintf("query variant %d failed: %v", i, err))
	}
	if failed == len(variants) {
		return nil, nil, fmt.Errorf("retrieve: all query variants failed: %w", errors.Join(append([]error{domain.ErrRetrievalUnavailable}, errs...)...))
	}
	if skips > 0 {
		logger.Warn("Skipped %d segments with inconsistent embeddings", skips)
		issues = append(issues, fmt.Sprintf("skipped %d segments with inconsistent embeddings", skips))
	}

	candidates := make([]domain.RetrievalCandidate, 0, len(merged))
	for _, cand := range merged {
		candidates = append(candidates, cand)
	}
	return candidates, issues, nil
}

// scanOne embeds one query variant and scores segments against it.
func (s *RetrievalService) scanOne(
	ctx context.Context, query string, limit int,
) ([]domain.RetrievalCandidate, int, error) {
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("embed query: %w", err)
	}
	if dims := s.embedder.Dimensions(); dims > 0 && len(embedding) != dims {
		return nil, 0, fmt.Errorf("query embedding: %w: got %d, want %d",
			domain.ErrDimensionMismatch, len(embedding), dims)
	}

	// Prefer server-side similarity when the store supports it.
	if searcher, ok := s.store.(driven.SimilaritySearcher); ok {
		logger.Debug("Using store-side similarity search")
		hits, err := searcher.SearchSimilar(ctx, embedding, limit)
		if err != nil {
			return nil, 0, fmt.Errorf("similarity search: %w", err)
		}
		candidates := make([]domain.RetrievalCandidate, 0, len(hits))
		for _, hit := range hits {
			candidates = append(candidates, candidateFromSegment(hit.Segment, hit.Score))
		}
		return candidates, 0, nil
	}

	// Scored scan fallback: stream every segment and rank locally.
	logger.Debug("Using scored segment scan")
	var (
		candidates []domain.RetrievalCandidate
		skipped    int
	)
	err = s.store.ScanSegments(ctx, func(seg domain.Segment) error {
		if len(seg.Embedding) == 0 || len(seg.Embedding) != len(embedding) {
			skipped++
			return nil
		}
		score := rank.CosineSimilarity(embedding, seg.Embedding)
		if score <= 0 {
			return nil
		}
		candidates = append(candidates, candidateFromSegment(seg, score))
		return nil
	})
	if err != nil {
		return nil, skipped, fmt.Errorf("scan segments: %w", err)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, skipped, nil
}

// hydrateDocumentNames fills DocumentName from the document store,
// dropping candidates whose document no longer exists.
func (s *RetrievalService) hydrateDocumentNames(
	ctx context.Context, candidates []domain.RetrievalCandidate,
) []domain.RetrievalCandidate {
	type lookup struct {
		name string
		ok   bool
	}
	seen := make(map[string]lookup)
	kept := make([]domain.RetrievalCandidate, 0, len(candidates))

	for _, cand := range candidates {
		l, done := seen[cand.DocumentID]
		if !done {
			doc, err := s.store.GetDocument(ctx, cand.DocumentID)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				logger.Debug("Dropping candidate for deleted document %s", cand.DocumentID)
			case err != nil:
				logger.Warn("Document lookup failed for %s: %v", cand.DocumentID, err)
			default:
				l = lookup{name: doc.Title, ok: true}
			}
			seen[cand.DocumentID] = l
		}
		if !l.ok {
			continue
		}
		cand.DocumentName = l.name
		kept = append(kept, cand)
	}

	return kept
}

// cachedResult returns a cached retrieval result for the query, if any.
func (s *RetrievalService) cachedResult(query string, opts domain.RetrievalOptions) (*domain.RetrievalResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	val, ok := s.cache.Get(responseCacheNamespace, responseCacheKey(query, opts))
	if !ok {
		return nil, false
	}
	result, ok := val.(*domain.RetrievalResult)
	if !ok {
		return nil, false
	}
	return copyResult(result), true
}

// storeResult caches a retrieval result.
func (s *RetrievalService) storeResult(query string, opts domain.RetrievalOptions, result *domain.RetrievalResult) {
	if s.cache == nil {
		return
	}
	s.cache.Set(responseCacheNamespace, responseCacheKey(query, opts), copyResult(result), responseCacheTTL)
}

// copyResult clones a result with its own candidate and issue slices.
// The cache stores and serves copies so a caller editing candidates in
// place cannot poison later hits.
func copyResult(result *domain.RetrievalResult) *domain.RetrievalResult {
	copied := *result
	copied.Context.Candidates = append([]domain.RetrievalCandidate(nil), result.Context.Candidates...)
	copied.Issues = append([]string(nil), result.Issues...)
	return &copied
}

// responseCacheKey normalizes the query and folds in the options that
// change the assembled output.
func responseCacheKey(query string, opts domain.RetrievalOptions) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	return fmt.Sprintf("%s|%d|%.2f|%t|%t|%d|%d",
		normalized, opts.MaxSources, opts.MinScore,
		opts.EnableReranking, opts.EnableDeduplication,
		opts.MaxChunksPerDocument, len(opts.QueryVariants))
}

// applyRetrievalDefaults fills unset options with defaults.
func applyRetrievalDefaults(opts domain.RetrievalOptions) domain.RetrievalOptions {
	if opts.MaxSources <= 0 {
		opts.MaxSources = domain.DefaultMaxSources
	}
	if opts.MinScore <= 0 {
		opts.MinScore = domain.DefaultMinScore
	}
	if opts.MaxChunksPerDocument <= 0 {
		opts.MaxChunksPerDocument = domain.DefaultMaxChunksPerDocument
	}
	return opts
}

// filterByScore drops candidates below the similarity threshold.
func filterByScore(candidates []domain.RetrievalCandidate, minScore float64) []domain.RetrievalCandidate {
	kept := candidates[:0:0]
	for _, cand := range candidates {
		if cand.Score >= minScore {
			kept = append(kept, cand)
		}
	}
	return kept
}

// candidateFromSegment builds a fresh per-query candidate.
func candidateFromSegment(seg domain.Segment, score float64) domain.RetrievalCandidate {
	return domain.RetrievalCandidate{
		SegmentID:    seg.ID,
		DocumentID:   seg.DocumentID,
		Content:      seg.Content,
		SegmentIndex: seg.Index,
		Score:        score,
		Metadata:     seg.Metadata,
	}
}
