package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	t.Run("identical vectors", func(t *testing.T) {
		v := []float32{1, 2, 3}
		assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
	})

	t.Run("orthogonal vectors", func(t *testing.T) {
		assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	})

	t.Run("opposite vectors", func(t *testing.T) {
		assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 1}, []float32{-1, -1}), 1e-9)
	})

	t.Run("zero vector never divides by zero", func(t *testing.T) {
		assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 2}))
		assert.Equal(t, 0.0, CosineSimilarity([]float32{1, 2}, []float32{0, 0}))
	})

	t.Run("length mismatch returns zero", func(t *testing.T) {
		assert.Equal(t, 0.0, CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
	})

	t.Run("empty vectors return zero", func(t *testing.T) {
		assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
	})
}

func TestJaccardSimilarity(t *testing.T) {
	t.Run("symmetric", func(t *testing.T) {
		a := "the quick brown fox"
		b := "the lazy brown dog"
		assert.Equal(t, JaccardSimilarity(a, b), JaccardSimilarity(b, a))
	})

	t.Run("identical text is 1", func(t *testing.T) {
		assert.Equal(t, 1.0, JaccardSimilarity("quick brown fox", "quick brown fox"))
	})

	t.Run("identical text with only short tokens is 0", func(t *testing.T) {
		assert.Equal(t, 0.0, JaccardSimilarity("a an to", "a an to"))
	})

	t.Run("no overlap is 0", func(t *testing.T) {
		assert.Equal(t, 0.0, JaccardSimilarity("alpha beta", "gamma delta"))
	})

	t.Run("empty union is 0", func(t *testing.T) {
		assert.Equal(t, 0.0, JaccardSimilarity("", ""))
	})

	t.Run("case insensitive", func(t *testing.T) {
		assert.Equal(t, 1.0, JaccardSimilarity("Brown FOX", "brown fox"))
	})

	t.Run("bounded in [0,1]", func(t *testing.T) {
		pairs := [][2]string{
			{"one two three", "two three four"},
			{"overlap text here", "overlap text here completely"},
			{"", "something"},
		}
		for _, p := range pairs {
			sim := JaccardSimilarity(p[0], p[1])
			assert.GreaterOrEqual(t, sim, 0.0)
			assert.LessOrEqual(t, sim, 1.0)
		}
	})

	t.Run("partial overlap", func(t *testing.T) {
		// Tokens: {quick, brown, fox} vs {brown, fox, jumps}.
		// Intersection 2, union 4.
		assert.InDelta(t, 0.5, JaccardSimilarity("quick brown fox", "brown fox jumps"), 1e-9)
	})
}

func TestQueryTerms(t *testing.T) {
	t.Run("drops stopwords and short tokens", func(t *testing.T) {
		terms := QueryTerms("What is the best database for Go?")
		assert.Equal(t, []string{"best", "database"}, terms)
	})

	t.Run("strips punctuation", func(t *testing.T) {
		terms := QueryTerms("retrieval-pipeline, reranking!")
		assert.Equal(t, []string{"retrieval", "pipeline", "reranking"}, terms)
	})

	t.Run("deduplicates preserving order", func(t *testing.T) {
		terms := QueryTerms("cache cache invalidation cache")
		assert.Equal(t, []string{"cache", "invalidation"}, terms)
	})

	t.Run("empty query", func(t *testing.T) {
		assert.Empty(t, QueryTerms(""))
	})
}
