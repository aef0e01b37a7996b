package normalisers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
	"github.com/custodia-labs/retriva-cli/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// fallbackPriorityCeiling separates fallback normalisers (priority 1-9)
// from MIME-specific ones.
const fallbackPriorityCeiling = 10

// Registry dispatches raw content to normalisers by MIME type.
// When several normalisers claim the same MIME type the one with the
// highest Priority wins. Normalisers below the fallback ceiling also
// handle MIME types nothing else claims.
type Registry struct {
	mu        sync.RWMutex
	byMIME    map[string][]driven.Normaliser
	fallbacks []driven.Normaliser
}

// NewRegistry creates an empty normaliser registry.
func NewRegistry() *Registry {
	return &Registry{
		byMIME: make(map[string][]driven.Normaliser),
	}
}

// Register adds a normaliser to the registry.
func (r *Registry) Register(normaliser driven.Normaliser) {
	if normaliser == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if normaliser.Priority() < fallbackPriorityCeiling {
		r.fallbacks = append(r.fallbacks, normaliser)
		sortByPriority(r.fallbacks)
	}

	for _, mt := range normaliser.SupportedMIMETypes() {
		r.byMIME[mt] = append(r.byMIME[mt], normaliser)
		sortByPriority(r.byMIME[mt])
	}
}

// Normalise transforms raw content using the best matching normaliser.
func (r *Registry) Normalise(ctx context.Context, raw *driven.RawContent) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	normaliser := r.normaliserFor(raw.MIMEType)
	if normaliser == nil {
		return nil, fmt.Errorf("normalise %q: %w", raw.MIMEType, domain.ErrUnsupportedType)
	}

	result, err := normaliser.Normalise(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("normalise %q: %w", raw.MIMEType, err)
	}
	return result, nil
}

// SupportedMIMETypes returns all MIME types with a registered normaliser,
// sorted for stable output.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.byMIME))
	for mt := range r.byMIME {
		types = append(types, mt)
	}
	sort.Strings(types)
	return types
}

// normaliserFor selects the highest-priority normaliser for a MIME type.
func (r *Registry) normaliserFor(mimeType string) driven.Normaliser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if candidates, ok := r.byMIME[mimeType]; ok && len(candidates) > 0 {
		return candidates[0]
	}
	if len(r.fallbacks) > 0 {
		return r.fallbacks[0]
	}
	return nil
}

// sortByPriority orders normalisers highest priority first.
func sortByPriority(ns []driven.Normaliser) {
	sort.SliceStable(ns, func(i, j int) bool {
		return ns[i].Priority() > ns[j].Priority()
	})
}
