package analytics

import (
	"context"
	"time"

	"github.com/tphakala/wildlife-analytics/internal/detection"
)

// DetectionSource supplies the detections of a time window. The engine
// calls it exactly once per report.
type DetectionSource interface {
	FetchDetections(ctx context.Context, filter detection.Filter, start, end time.Time) ([]detection.DetectionEvent, error)
}

// SpeciesCatalog resolves species metadata. Unknown ids are omitted from
// the result rather than reported as errors.
type SpeciesCatalog interface {
	FetchSpecies(ctx context.Context, ids []uint) ([]detection.SpeciesProfile, error)
}

// MetricsRecorder receives engine measurements
type MetricsRecorder interface {
	// RecordReport records one report generation by kind ("comprehensive",
	// "realtime", "species", "batch") and status ("success", "error").
	RecordReport(kind, status string, duration time.Duration)
	RecordAnomalies(anomalyType string, count int)
	RecordAlerts(severity string, count int)
	RecordFetchError(source string)
}

// noopMetrics is used when no recorder is configured
type noopMetrics struct{}

func (noopMetrics) RecordReport(string, string, time.Duration) {}
func (noopMetrics) RecordAnomalies(string, int)                {}
func (noopMetrics) RecordAlerts(string, int)                   {}
func (noopMetrics) RecordFetchError(string)                    {}
