package services

import (
	"context"
	"sync"

	"fund-portal/models"
)

// LookupSource loads the category and subcategory name tables.
type LookupSource interface {
	LoadLookups(ctx context.Context) (models.Lookups, error)
}

// LookupSourceFunc adapts a function to LookupSource.
type LookupSourceFunc func(ctx context.Context) (models.Lookups, error)

func (f LookupSourceFunc) LoadLookups(ctx context.Context) (models.Lookups, error) {
	return f(ctx)
}

type backendLookupFetcher interface {
	GetLookups(ctx context.Context) (models.Lookups, error)
}

// NewBackendLookupSource reads lookups from the fund backend's REST endpoints.
func NewBackendLookupSource(client backendLookupFetcher) LookupSource {
	return LookupSourceFunc(client.GetLookups)
}

// LookupCache memoizes one successful lookup load until Invalidate is called.
// Each screen session owns its own cache; nothing is shared between screens.
type LookupCache struct {
	source LookupSource

	mu     sync.Mutex
	loaded bool
	value  models.Lookups
}

func NewLookupCache(source LookupSource) *LookupCache {
	return &LookupCache{source: source}
}

// Get returns the cached lookups, loading them on first use. Failed loads are not cached.
func (c *LookupCache) Get(ctx context.Context) (models.Lookups, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.value, nil
	}
	value, err := c.source.LoadLookups(ctx)
	if err != nil {
		return models.Lookups{}, err
	}
	if value.Categories == nil {
		value.Categories = map[int]string{}
	}
	if value.Subcategories == nil {
		value.Subcategories = map[int]string{}
	}
	c.value = value
	c.loaded = true
	return c.value, nil
}

// Invalidate drops the cached value so the next Get reloads.
func (c *LookupCache) Invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.value = models.Lookups{}
	c.mu.Unlock()
}
