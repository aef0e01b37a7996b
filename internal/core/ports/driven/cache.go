package driven

import "time"

// ContextCache is a bounded, time-expiring cache shared by pipeline
// stages. It is an explicit service object injected into the pipeline;
// there is no ambient global cache. Writes are last-writer-wins and
// safe to race.
type ContextCache interface {
	// Get returns the cached value for key in namespace, if present
	// and not expired.
	Get(namespace, key string) (any, bool)

	// Set stores a value with the given TTL. A zero TTL uses the
	// cache's default.
	Set(namespace, key string, value any, ttl time.Duration)

	// Invalidate drops every entry in the namespace.
	Invalidate(namespace string)

	// Len returns the number of live entries across all namespaces.
	Len() int
}
