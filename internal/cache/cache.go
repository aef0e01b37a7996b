// Package cache provides an in-memory, namespace-partitioned cache
// with per-entry expiry. It backs the rerank and response caches in
// the retrieval pipeline.
package cache

import (
	"sync"
	"time"

	"github.com/custodia-labs/retriva-cli/internal/core/ports/driven"
)

const (
	// DefaultTTL applies when Set receives a zero TTL.
	DefaultTTL = 10 * time.Minute

	// DefaultMaxEntries bounds the total number of live entries.
	DefaultMaxEntries = 2048
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is a bounded TTL cache. Writes are last-writer-wins; concurrent
// use is safe.
type Cache struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]entry
	defaultTTL time.Duration
	maxEntries int
	now        func() time.Time
}

var _ driven.ContextCache = (*Cache)(nil)

// Option configures the cache.
type Option func(*Cache)

// WithDefaultTTL sets the TTL used when Set receives zero.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// WithMaxEntries bounds the number of live entries across namespaces.
func WithMaxEntries(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// New creates a cache with the given options.
func New(opts ...Option) *Cache {
	c := &Cache{
		namespaces: make(map[string]map[string]entry),
		defaultTTL: DefaultTTL,
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value for key in namespace if present and not expired.
func (c *Cache) Get(namespace, key string) (any, bool) {
	c.mu.RLock()
	ns, ok := c.namespaces[namespace]
	if !ok {
		c.mu.RUnlock()
		return nil, false
	}
	e, ok := ns[key]
	c.mu.RUnlock()

	if !ok || c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under namespace/key. A zero ttl uses the default.
func (c *Cache) Set(namespace, key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ns, ok := c.namespaces[namespace]
	if !ok {
		ns = make(map[string]entry)
		c.namespaces[namespace] = ns
	}

	if _, exists := ns[key]; !exists && c.liveCount() >= c.maxEntries {
		c.evict()
	}

	ns[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
}

// Invalidate drops every entry in the namespace.
func (c *Cache) Invalidate(namespace string) {
	c.mu.Lock()
	delete(c.namespaces, namespace)
	c.mu.Unlock()
}

// Len returns the number of unexpired entries across all namespaces.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	n := 0
	for _, ns := range c.namespaces {
		for _, e := range ns {
			if !now.After(e.expiresAt) {
				n++
			}
		}
	}
	return n
}

// liveCount counts all stored entries, expired or not. Callers hold mu.
func (c *Cache) liveCount() int {
	n := 0
	for _, ns := range c.namespaces {
		n += len(ns)
	}
	return n
}

// evict drops expired entries; if nothing expired, it drops the entry
// closest to expiry. Callers hold mu.
func (c *Cache) evict() {
	now := c.now()
	dropped := false
	for name, ns := range c.namespaces {
		for key, e := range ns {
			if now.After(e.expiresAt) {
				delete(ns, key)
				dropped = true
			}
		}
		if len(ns) == 0 {
			delete(c.namespaces, name)
		}
	}
	if dropped {
		return
	}

	var oldestNS, oldestKey string
	var oldest time.Time
	for name, ns := range c.namespaces {
		for key, e := range ns {
			if oldestKey == "" || e.expiresAt.Before(oldest) {
				oldestNS, oldestKey, oldest = name, key, e.expiresAt
			}
		}
	}
	if oldestKey != "" {
		delete(c.namespaces[oldestNS], oldestKey)
	}
}
