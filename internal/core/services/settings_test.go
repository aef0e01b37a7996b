package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/retriva-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/retriva-cli/internal/core/domain"
)

func TestSettingsService_Get_Defaults(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore())

	cfg, err := svc.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultMaxSources, cfg.MaxSources)
	assert.InDelta(t, domain.DefaultMinScore, cfg.MinScore, 1e-9)
	assert.True(t, cfg.EnableReranking)
	assert.True(t, cfg.EnableDeduplication)
	assert.Equal(t, domain.DefaultMaxChunksPerDocument, cfg.MaxChunksPerDocument)
	assert.Equal(t, domain.DefaultTargetSize, cfg.Segmenter.TargetSize)
	assert.Equal(t, domain.DefaultOverlapSize, cfg.Segmenter.OverlapSize)
}

func TestSettingsService_SaveGet_Roundtrip(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore())

	cfg := domain.DefaultRetrievalConfig()
	cfg.MaxSources = 5
	cfg.MinScore = 0.5
	cfg.EnableReranking = false
	cfg.Segmenter.TargetSize = 450
	cfg.Segmenter.OverlapSize = 90

	require.NoError(t, svc.Save(&cfg))

	loaded, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.MaxSources)
	assert.InDelta(t, 0.5, loaded.MinScore, 1e-9)
	assert.False(t, loaded.EnableReranking)
	assert.Equal(t, 450, loaded.Segmenter.TargetSize)
	assert.Equal(t, 90, loaded.Segmenter.OverlapSize)
}

func TestSettingsService_Save_Nil(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore())

	err := svc.Save(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_Save_InvalidSegmenter(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore())

	cfg := domain.DefaultRetrievalConfig()
	cfg.Segmenter.MinSize = 700 // above max

	err := svc.Save(&cfg)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_Validate(t *testing.T) {
	store := memory.NewConfigStore()
	svc := NewSettingsService(store)

	require.NoError(t, svc.Validate(), "defaults are valid")

	require.NoError(t, store.Set("retrieval.min_score", 1.5))
	err := svc.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_GetDefaults(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore())

	defaults := svc.GetDefaults()
	assert.Equal(t, domain.DefaultRetrievalConfig(), defaults)
}
