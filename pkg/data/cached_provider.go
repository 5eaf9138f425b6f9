package data

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/rnglab/param-robustness/pkg/types"
)

// MemoryCache implements DataCache using in-memory storage
type MemoryCache struct {
	cache map[string]types.PriceSeries
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		cache: make(map[string]types.PriceSeries),
	}
}

// Get retrieves data from cache if available. The returned series is a copy.
func (c *MemoryCache) Get(key string) (types.PriceSeries, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	data, exists := c.cache[key]
	if !exists {
		return nil, false
	}
	return data.Clone(), true
}

// Set stores a copy of the data in cache
func (c *MemoryCache) Set(key string, data types.PriceSeries) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache[key] = data.Clone()
}

// Clear removes all cached data
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache = make(map[string]types.PriceSeries)
}

// Size returns the number of cached entries
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.cache)
}

// CachedProvider wraps another DataProvider with caching. Concurrent loads of
// the same source may both hit the underlying provider; the cache keeps the
// last result.
type CachedProvider struct {
	provider DataProvider
	cache    DataCache
}

// NewCachedProvider creates a new cached data provider
func NewCachedProvider(provider DataProvider) *CachedProvider {
	return &CachedProvider{
		provider: provider,
		cache:    NewMemoryCache(),
	}
}

// NewCachedProviderWithCache creates a new cached data provider with a custom cache
func NewCachedProviderWithCache(provider DataProvider, cache DataCache) *CachedProvider {
	return &CachedProvider{
		provider: provider,
		cache:    cache,
	}
}

// GetName returns the name of the underlying provider with cache indication
func (p *CachedProvider) GetName() string {
	return "Cached " + p.provider.GetName()
}

// LoadData loads data, serving repeated requests from cache
func (p *CachedProvider) LoadData(ctx context.Context, source string) (types.PriceSeries, error) {
	if cached, exists := p.cache.Get(source); exists {
		return cached, nil
	}

	data, err := p.provider.LoadData(ctx, source)
	if err != nil {
		return nil, err
	}

	p.cache.Set(source, data)
	log.Debug().Str("source", filepath.Base(source)).Int("bars", len(data)).Msg("Loaded and cached series")
	return data, nil
}

// ValidateData validates data using the underlying provider
func (p *CachedProvider) ValidateData(data types.PriceSeries) error {
	return p.provider.ValidateData(data)
}

// ClearCache clears all cached data
func (p *CachedProvider) ClearCache() {
	p.cache.Clear()
}

// GetCacheSize returns the number of cached entries
func (p *CachedProvider) GetCacheSize() int {
	return p.cache.Size()
}
