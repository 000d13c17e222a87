// Package datastore provides integration with the observability metrics package
package datastore

import (
	"time"

	"github.com/tphakala/wildlife-analytics/internal/observability/metrics"
)

// Metrics is a type alias for the metrics.DatastoreMetrics
type Metrics = metrics.DatastoreMetrics

// observe records the outcome of one database operation
func (ds *DataStore) observe(operation string, started time.Time, rows int, err error) {
	elapsed := time.Since(started).Seconds()
	ds.metrics.RecordDuration(operation, elapsed)
	if err != nil {
		ds.metrics.RecordOperation(operation, metrics.StatusError)
		ds.metrics.RecordError(operation, "database")
		return
	}
	ds.metrics.RecordOperation(operation, metrics.StatusSuccess)
	if sized, ok := ds.metrics.(interface{ RecordQueryResultSize(string, int) }); ok && rows >= 0 {
		sized.RecordQueryResultSize(operation, rows)
	}
}
