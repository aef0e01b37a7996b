package driving

import "github.com/custodia-labs/retriva-cli/internal/core/domain"

// SettingsService manages persistent retrieval settings.
type SettingsService interface {
	// Get retrieves the current retrieval configuration.
	Get() (*domain.RetrievalConfig, error)

	// Save persists the retrieval configuration.
	Save(cfg *domain.RetrievalConfig) error

	// GetDefaults returns the default configuration.
	GetDefaults() domain.RetrievalConfig

	// Validate checks the stored configuration's invariants.
	Validate() error
}
