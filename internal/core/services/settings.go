package services

import (
	"fmt"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
	"github.com/custodia-labs/retriva-cli/internal/core/ports/driven"
	"github.com/custodia-labs/retriva-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyMaxSources    = "retrieval.max_sources"
	keyMinScore      = "retrieval.min_score"
	keyRerank        = "retrieval.rerank"
	keyDedup         = "retrieval.dedup"
	keyMaxPerDoc     = "retrieval.max_chunks_per_document"
	keyBoostFactor   = "retrieval.boost_factor"
	keyMinConfidence = "retrieval.min_confidence"

	keyTargetSize = "segmenter.target_size"
	keyMinSize    = "segmenter.min_size"
	keyMaxSize    = "segmenter.max_size"
	keyOverlap    = "segmenter.overlap"
	keySentences  = "segmenter.preserve_sentences"
	keyParagraphs = "segmenter.preserve_paragraphs"
)

// SettingsService manages persistent retrieval settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves the current retrieval configuration, falling back to
// defaults for unset keys.
func (s *SettingsService) Get() (*domain.RetrievalConfig, error) {
	defaults := domain.DefaultRetrievalConfig()

	cfg := &domain.RetrievalConfig{
		MaxSources:           s.getInt(keyMaxSources, defaults.MaxSources),
		MinConfidence:        s.getInt(keyMinConfidence, defaults.MinConfidence),
		MinScore:             s.getFloat(keyMinScore, defaults.MinScore),
		EnableReranking:      s.getBool(keyRerank, defaults.EnableReranking),
		EnableDeduplication:  s.getBool(keyDedup, defaults.EnableDeduplication),
		MaxChunksPerDocument: s.getInt(keyMaxPerDoc, defaults.MaxChunksPerDocument),
		BoostFactor:          s.getFloat(keyBoostFactor, defaults.BoostFactor),
		Segmenter: domain.SegmenterConfig{
			TargetSize:         s.getInt(keyTargetSize, defaults.Segmenter.TargetSize),
			MinSize:            s.getInt(keyMinSize, defaults.Segmenter.MinSize),
			MaxSize:            s.getInt(keyMaxSize, defaults.Segmenter.MaxSize),
			OverlapSize:        s.getInt(keyOverlap, defaults.Segmenter.OverlapSize),
			PreserveSentences:  s.getBool(keySentences, defaults.Segmenter.PreserveSentences),
			PreserveParagraphs: s.getBool(keyParagraphs, defaults.Segmenter.PreserveParagraphs),
		},
	}

	return cfg, nil
}

// Save persists the retrieval configuration.
func (s *SettingsService) Save(cfg *domain.RetrievalConfig) error {
	if cfg == nil {
		return domain.ErrInvalidInput
	}
	if err := cfg.Segmenter.Validate(); err != nil {
		return fmt.Errorf("segmenter config: %w", err)
	}

	entries := []struct {
		key string
		val any
	}{
		{keyMaxSources, cfg.MaxSources},
		{keyMinConfidence, cfg.MinConfidence},
		{keyMinScore, cfg.MinScore},
		{keyRerank, cfg.EnableReranking},
		{keyDedup, cfg.EnableDeduplication},
		{keyMaxPerDoc, cfg.MaxChunksPerDocument},
		{keyBoostFactor, cfg.BoostFactor},
		{keyTargetSize, cfg.Segmenter.TargetSize},
		{keyMinSize, cfg.Segmenter.MinSize},
		{keyMaxSize, cfg.Segmenter.MaxSize},
		{keyOverlap, cfg.Segmenter.OverlapSize},
		{keySentences, cfg.Segmenter.PreserveSentences},
		{keyParagraphs, cfg.Segmenter.PreserveParagraphs},
	}
	for _, e := range entries {
		if err := s.configStore.Set(e.key, e.val); err != nil {
			return fmt.Errorf("save %s: %w", e.key, err)
		}
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.RetrievalConfig {
	return domain.DefaultRetrievalConfig()
}

// Validate checks the stored configuration's invariants.
func (s *SettingsService) Validate() error {
	cfg, err := s.Get()
	if err != nil {
		return err
	}

	if cfg.MaxSources <= 0 {
		return fmt.Errorf("%w: max_sources must be positive", domain.ErrInvalidInput)
	}
	if cfg.MinScore < 0 || cfg.MinScore > 1 {
		return fmt.Errorf("%w: min_score must be in [0,1]", domain.ErrInvalidInput)
	}
	if cfg.BoostFactor < 1 {
		return fmt.Errorf("%w: boost_factor must be at least 1", domain.ErrInvalidInput)
	}
	if err := cfg.Segmenter.Validate(); err != nil {
		return fmt.Errorf("segmenter config: %w", err)
	}
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}
