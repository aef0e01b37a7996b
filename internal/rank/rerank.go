package rank

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
	"github.com/custodia-labs/retriva-cli/internal/core/ports/driven"
	"github.com/custodia-labs/retriva-cli/internal/logger"
)

// CacheNamespace is the cache namespace for rerank results.
const CacheNamespace = "rerank"

// defaultCacheTTL bounds how long a ranked list stays valid.
const defaultCacheTTL = 10 * time.Minute

// Strategy is one tier of the reranking fallback chain. Each tier is
// tried in order and the chain short-circuits on the first success.
type Strategy interface {
	// Name identifies the tier for logging and issue reporting.
	Name() string

	// Rank reorders candidates by relevance to the query, returning at
	// most topK entries with RerankedScore populated.
	Rank(ctx context.Context, query string, candidates []domain.RetrievalCandidate, topK int, minScore float64) ([]domain.RetrievalCandidate, error)
}

// Reranker reorders candidate sets through an explicit ordered list of
// strategies, then applies the exact-term boost.
type Reranker struct {
	strategies  []Strategy
	boostFactor float64
	cache       driven.ContextCache
}

// RerankerOption configures a Reranker.
type RerankerOption func(*Reranker)

// WithBoostFactor sets the term boost multiplier.
func WithBoostFactor(factor float64) RerankerOption {
	return func(r *Reranker) {
		if factor > 1 {
			r.boostFactor = factor
		}
	}
}

// WithCache sets the cache used for ranked lists. Term boost is applied
// after cache retrieval, so boost factor changes never require
// invalidation.
func WithCache(cache driven.ContextCache) RerankerOption {
	return func(r *Reranker) {
		r.cache = cache
	}
}

// NewReranker builds a reranker over the given strategy chain.
// Strategies are tried in the order provided.
func NewReranker(strategies []Strategy, opts ...RerankerOption) *Reranker {
	r := &Reranker{
		strategies:  strategies,
		boostFactor: DefaultBoostFactor,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefaultChain builds the standard three-tier chain: the external
// rerank provider (when configured), the local lexical scorer, and
// finally a plain score sort with threshold filtering. The last tier
// cannot fail, so the chain as a whole cannot either.
func DefaultChain(remote driven.RerankService) []Strategy {
	var chain []Strategy
	if remote != nil {
		chain = append(chain, &RemoteStrategy{Service: remote})
	}
	chain = append(chain, &LexicalStrategy{}, &ScoreSortStrategy{})
	return chain
}

// Rerank reorders candidates for the query. When the candidate set
// already fits within topK the ranking call is skipped and only the
// term boost runs. The first strategy to succeed wins; each failure is
// logged and reported in issues.
func (r *Reranker) Rerank(
	ctx context.Context, query string, candidates []domain.RetrievalCandidate, topK int, minScore float64,
) ([]domain.RetrievalCandidate, []string) {
	if len(candidates) == 0 {
		return candidates, nil
	}

	// Small sets skip the expensive ranking call entirely.
	if len(candidates) <= topK {
		logger.Debug("Rerank: %d candidates <= topK %d, boost only", len(candidates), topK)
		seedRerankedScores(candidates)
		return ApplyTermBoost(query, candidates, r.boostFactor), nil
	}

	if cached, ok := r.cachedRanking(query, candidates); ok {
		logger.Debug("Rerank: cache hit for %d candidates", len(cached))
		return ApplyTermBoost(query, cached, r.boostFactor), nil
	}

	var issues []string
	for _, strategy := range r.strategies {
		ranked, err := strategy.Rank(ctx, query, candidates, topK, minScore)
		if err != nil {
			logger.Warn("Rerank tier %s failed: %v", strategy.Name(), err)
			issues = append(issues, fmt.Sprintf("rerank tier %s failed: %v", strategy.Name(), err))
			continue
		}

		logger.Debug("Rerank: tier %s ranked %d candidates", strategy.Name(), len(ranked))
		r.storeRanking(query, candidates, ranked)
		return ApplyTermBoost(query, ranked, r.boostFactor), issues
	}

	// Unreachable with the default chain; kept for custom chains.
	issues = append(issues, "all rerank tiers failed, using original order")
	seedRerankedScores(candidates)
	return ApplyTermBoost(query, candidates, r.boostFactor), issues
}

// cacheKey builds the cache key from the query and the sorted candidate
// id list, so the same set retrieved in a different order still hits.
func cacheKey(query string, candidates []domain.RetrievalCandidate) string {
	ids := make([]string, len(candidates))
	for i := range candidates {
		ids[i] = candidates[i].SegmentID
	}
	sort.Strings(ids)
	return query + "|" + strings.Join(ids, ",")
}

func (r *Reranker) cachedRanking(query string, candidates []domain.RetrievalCandidate) ([]domain.RetrievalCandidate, bool) {
	if r.cache == nil {
		return nil, false
	}
	val, ok := r.cache.Get(CacheNamespace, cacheKey(query, candidates))
	if !ok {
		return nil, false
	}
	ranked, ok := val.([]domain.RetrievalCandidate)
	if !ok {
		return nil, false
	}
	// Copy so boost mutation never touches the cached slice.
	out := make([]domain.RetrievalCandidate, len(ranked))
	copy(out, ranked)
	return out, true
}

func (r *Reranker) storeRanking(query string, candidates, ranked []domain.RetrievalCandidate) {
	if r.cache == nil {
		return
	}
	stored := make([]domain.RetrievalCandidate, len(ranked))
	copy(stored, ranked)
	r.cache.Set(CacheNamespace, cacheKey(query, candidates), stored, defaultCacheTTL)
}

// seedRerankedScores initialises RerankedScore from Score for paths
// that bypass the strategy chain.
func seedRerankedScores(candidates []domain.RetrievalCandidate) {
	for i := range candidates {
		if candidates[i].RerankedScore == 0 {
			candidates[i].RerankedScore = candidates[i].Score
		}
	}
}

// RemoteStrategy ranks via the external neural rerank provider.
type RemoteStrategy struct {
	// Service is the external provider.
	Service driven.RerankService
}

// Name identifies the tier.
func (s *RemoteStrategy) Name() string { return "remote" }

// Rank sends candidate contents to the provider and maps the returned
// indices back onto candidates. Any provider failure, including an
// out-of-range index in the response, fails the tier.
func (s *RemoteStrategy) Rank(
	ctx context.Context, query string, candidates []domain.RetrievalCandidate, topK int, _ float64,
) ([]domain.RetrievalCandidate, error) {
	if s.Service == nil {
		return nil, domain.ErrRerankUnavailable
	}

	documents := make([]string, len(candidates))
	for i := range candidates {
		documents[i] = candidates[i].Content
	}

	hits, err := s.Service.Rerank(ctx, query, documents, topK)
	if err != nil {
		return nil, fmt.Errorf("remote rerank: %w", err)
	}
	if len(hits) == 0 {
		return nil, errors.New("remote rerank: empty response")
	}

	ranked := make([]domain.RetrievalCandidate, 0, len(hits))
	for _, hit := range hits {
		if hit.Index < 0 || hit.Index >= len(candidates) {
			return nil, fmt.Errorf("remote rerank: index %d out of range", hit.Index)
		}
		cand := candidates[hit.Index]
		cand.RerankedScore = capScore(hit.Score)
		ranked = append(ranked, cand)
	}

	return ranked, nil
}

// LexicalStrategy is the local secondary scoring model: a blend of the
// original similarity score and the lexical overlap between query and
// content. Cheap, deterministic and offline.
type LexicalStrategy struct{}

// Name identifies the tier.
func (s *LexicalStrategy) Name() string { return "lexical" }

// Rank scores every candidate and keeps the topK.
func (s *LexicalStrategy) Rank(
	_ context.Context, query string, candidates []domain.RetrievalCandidate, topK int, _ float64,
) ([]domain.RetrievalCandidate, error) {
	ranked := make([]domain.RetrievalCandidate, len(candidates))
	copy(ranked, candidates)

	for i := range ranked {
		overlap := JaccardSimilarity(query, ranked[i].Content)
		ranked[i].RerankedScore = capScore(0.6*ranked[i].Score + 0.4*overlap)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RerankedScore > ranked[j].RerankedScore
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked, nil
}

// ScoreSortStrategy is the terminal tier: sort by original score and
// filter by the minimum score. It never fails.
type ScoreSortStrategy struct{}

// Name identifies the tier.
func (s *ScoreSortStrategy) Name() string { return "score_sort" }

// Rank sorts descending by Score, drops candidates below minScore and
// keeps the topK.
func (s *ScoreSortStrategy) Rank(
	_ context.Context, _ string, candidates []domain.RetrievalCandidate, topK int, minScore float64,
) ([]domain.RetrievalCandidate, error) {
	ranked := make([]domain.RetrievalCandidate, 0, len(candidates))
	for _, cand := range candidates {
		if cand.Score >= minScore {
			cand.RerankedScore = cand.Score
			ranked = append(ranked, cand)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked, nil
}
