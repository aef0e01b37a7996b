package postprocessors

import (
	"github.com/custodia-labs/retriva-cli/internal/core/domain"
	"github.com/custodia-labs/retriva-cli/internal/core/ports/driven"
	"github.com/custodia-labs/retriva-cli/internal/segmenter"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("segmenter", buildSegmenter)
}

// buildSegmenter creates a structure-aware segmenter from generic config.
// Supported config keys:
//   - target_size (int): Preferred characters per segment (default: 500)
//   - min_size (int): Minimum segment size in characters (default: 400)
//   - max_size (int): Maximum segment size in characters (default: 600)
//   - overlap (int): Overlapping characters between segments (default: 125)
func buildSegmenter(cfg map[string]any) (driven.PostProcessor, error) {
	sc := domain.DefaultSegmenterConfig()

	if cfg != nil {
		if size := getIntFromConfig(cfg, "target_size"); size > 0 {
			sc.TargetSize = size
		}
		if size := getIntFromConfig(cfg, "min_size"); size > 0 {
			sc.MinSize = size
		}
		if size := getIntFromConfig(cfg, "max_size"); size > 0 {
			sc.MaxSize = size
		}
		if _, ok := cfg["overlap"]; ok {
			sc.OverlapSize = getIntFromConfig(cfg, "overlap")
		}
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}

	return segmenter.New(segmenter.WithConfig(sc)), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
