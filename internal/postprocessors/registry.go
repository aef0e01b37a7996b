package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/retriva-cli/internal/core/ports/driven"
)

// BuilderFunc constructs a segmentation processor from its settings
// map, as parsed out of the retriva config file.
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

// Registry maps processor names to builders so the ingestion pipeline
// can be assembled from configuration rather than hard-wired.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates an empty registry. Call RegisterDefaults to add
// the built-in segmenter.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
	}
}

// Register adds a builder under the given name. The name must match
// what the built processor reports from Name().
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build constructs the named processor with the given settings.
func (r *Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown processor: %s", name)
	}
	return builder(cfg)
}

// Has reports whether a builder is registered under the given name.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns the registered processor names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	return names
}
