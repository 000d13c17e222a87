// Package metrics provides constants used across metric definitions.
package metrics

// Operation names recorded by the datastore.
const (
	// OpFetchDetections represents detection window queries.
	OpFetchDetections = "fetch_detections"
	// OpFetchSpecies represents species catalog queries.
	OpFetchSpecies = "fetch_species"
	// OpSaveDetections represents detection inserts.
	OpSaveDetections = "save_detections"
	// OpSaveCatalog represents camera and species upserts.
	OpSaveCatalog = "save_catalog"
	// OpMigrate represents schema migrations.
	OpMigrate = "migrate"
)

// Label values used for metric labels.
const (
	// StatusSuccess is the status label for successful operations.
	StatusSuccess = "success"
	// StatusError is the status label for failed operations.
	StatusError = "error"
	// StatusRateLimited is the status label for deliveries dropped by a rate limiter.
	StatusRateLimited = "rate_limited"
	// CacheHit is the result label for cache hits.
	CacheHit = "hit"
	// CacheMiss is the result label for cache misses.
	CacheMiss = "miss"
	// LabelSpeciesCatalog is the cache label for the species catalog cache.
	LabelSpeciesCatalog = "species_catalog"
)

// Histogram bucket configuration constants.
const (
	// BucketStart1ms is the starting bucket for 1ms histograms.
	BucketStart1ms = 0.001
	// BucketStart10ms is the starting bucket for 10ms histograms.
	BucketStart10ms = 0.01
	// BucketStart64B is the starting bucket for 64 byte histograms.
	BucketStart64B = 64.0

	// BucketFactor2 is the common exponential growth factor of 2 for histogram buckets.
	BucketFactor2 = 2
	// BucketFactor10 is the exponential growth factor of 10 for larger ranges.
	BucketFactor10 = 10

	// BucketCount6 defines 6 exponential buckets.
	BucketCount6 = 6
	// BucketCount10 defines 10 exponential buckets.
	BucketCount10 = 10
	// BucketCount15 defines 15 exponential buckets.
	BucketCount15 = 15
)
