// Package markets caches each market's tick size and minimum order
// size. The app seeds each entry from the bot manifest at startup; the
// live feed does not update it, since the orderbook manager handles only
// book and trade events and nothing outside tests calls SetTickSize or
// SetMinSize. Grounded on the
// teacher's CachedMetadataClient for the ristretto-backed TTL-cache
// shape, adapted from a per-token HTTP-fetch cache into a per-market
// cache.
package markets

import (
	"fmt"
	"time"

	"github.com/mselser95/binarybot/pkg/cache"
)

// Metadata is the cached per-market sizing metadata a bot needs to
// round prices and quantities (spec.md §4.7, §4.9 tick rounding).
type Metadata struct {
	TickSize  float64
	MinSize   float64
	UpdatedAt time.Time
}

// TickCache wraps a generic ristretto-backed cache.Cache with typed
// market-metadata accessors and hit/miss metrics.
type TickCache struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewTickCache creates a cache keyed by market id with the given TTL
// (spec.md §6 tick_cache_ttl).
func NewTickCache(c cache.Cache, ttl time.Duration) *TickCache {
	return &TickCache{cache: c, ttl: ttl}
}

// Get returns the cached metadata for a market, or false if absent or
// expired.
func (t *TickCache) Get(marketID string) (Metadata, bool) {
	if t.cache == nil {
		return Metadata{}, false
	}

	cached, ok := t.cache.Get(key(marketID))
	if !ok {
		TickCacheMissesTotal.Inc()
		return Metadata{}, false
	}

	meta, ok := cached.(Metadata)
	if !ok {
		return Metadata{}, false
	}

	TickCacheHitsTotal.Inc()
	return meta, true
}

// SetTickSize updates only the tick size, preserving any previously
// cached minimum size — mirrors the teacher's UpdateTickSize, which
// applies a tick_size_change event without requiring a full refetch.
func (t *TickCache) SetTickSize(marketID string, tickSize float64) {
	if t.cache == nil {
		return
	}

	existing, _ := t.Get(marketID)
	existing.TickSize = tickSize
	existing.UpdatedAt = time.Now()
	t.cache.Set(key(marketID), existing, t.ttl)
}

// SetMinSize updates only the minimum order size.
func (t *TickCache) SetMinSize(marketID string, minSize float64) {
	if t.cache == nil {
		return
	}

	existing, _ := t.Get(marketID)
	existing.MinSize = minSize
	existing.UpdatedAt = time.Now()
	t.cache.Set(key(marketID), existing, t.ttl)
}

// Set overwrites both fields at once, used when seeding the cache from
// a market's static Market record at bot startup.
func (t *TickCache) Set(marketID string, meta Metadata) {
	if t.cache == nil {
		return
	}
	meta.UpdatedAt = time.Now()
	t.cache.Set(key(marketID), meta, t.ttl)
}

func key(marketID string) string {
	return fmt.Sprintf("market:%s", marketID)
}
