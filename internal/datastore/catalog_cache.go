package datastore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/tphakala/wildlife-analytics/internal/detection"
	"github.com/tphakala/wildlife-analytics/internal/observability/metrics"
)

// SpeciesFetcher loads species profiles by id
type SpeciesFetcher interface {
	FetchSpecies(ctx context.Context, ids []uint) ([]detection.SpeciesProfile, error)
}

// cacheRecorder is implemented by metrics.DatastoreMetrics
type cacheRecorder interface {
	RecordCacheOperation(cache, result string)
}

// CachedCatalog provides fast in-memory lookup for species profiles.
// Catalog entries rarely change, so profiles are kept for the TTL and only
// ids missing from the cache are fetched from the underlying store.
type CachedCatalog struct {
	next     SpeciesFetcher
	cache    *cache.Cache
	recorder cacheRecorder
}

// NewCachedCatalog wraps next with a TTL cache
func NewCachedCatalog(next SpeciesFetcher, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{
		next:  next,
		cache: cache.New(ttl, ttl*2),
	}
}

// SetRecorder enables hit/miss metrics
func (c *CachedCatalog) SetRecorder(recorder cacheRecorder) {
	c.recorder = recorder
}

func cacheKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// FetchSpecies returns profiles for ids in the order requested. Ids unknown
// to the underlying store are omitted and not cached.
func (c *CachedCatalog) FetchSpecies(ctx context.Context, ids []uint) ([]detection.SpeciesProfile, error) {
	found := make(map[uint]detection.SpeciesProfile, len(ids))
	queued := make(map[uint]struct{})
	var missing []uint

	for _, id := range ids {
		if _, dup := found[id]; dup {
			continue
		}
		if _, dup := queued[id]; dup {
			continue
		}
		if v, ok := c.cache.Get(cacheKey(id)); ok {
			found[id] = v.(detection.SpeciesProfile)
			c.record(metrics.CacheHit)
			continue
		}
		queued[id] = struct{}{}
		missing = append(missing, id)
		c.record(metrics.CacheMiss)
	}

	if len(missing) > 0 {
		profiles, err := c.next.FetchSpecies(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("failed to load species catalog: %w", err)
		}
		for i := range profiles {
			found[profiles[i].ID] = profiles[i]
			c.cache.Set(cacheKey(profiles[i].ID), profiles[i], cache.DefaultExpiration)
		}
	}

	result := make([]detection.SpeciesProfile, 0, len(found))
	seen := make(map[uint]struct{}, len(found))
	for _, id := range ids {
		profile, ok := found[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, profile)
	}
	return result, nil
}

// Invalidate drops every cached profile
func (c *CachedCatalog) Invalidate() {
	c.cache.Flush()
}

// Size returns the number of cached profiles, including expired ones not yet evicted
func (c *CachedCatalog) Size() int {
	return c.cache.ItemCount()
}

func (c *CachedCatalog) record(result string) {
	if c.recorder != nil {
		c.recorder.RecordCacheOperation(metrics.LabelSpeciesCatalog, result)
	}
}
