package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tphakala/wildlife-analytics/internal/detection"
	"github.com/tphakala/wildlife-analytics/internal/errors"
	"github.com/tphakala/wildlife-analytics/internal/logger"
)

// SpeciesSummary holds the headline numbers of a species report
type SpeciesSummary struct {
	TotalDetections int        `json:"total_detections" yaml:"total_detections"`
	UniqueCameras   int        `json:"unique_cameras" yaml:"unique_cameras"`
	AvgConfidence   float64    `json:"avg_confidence" yaml:"avg_confidence"`
	FirstSeen       *time.Time `json:"first_detection,omitempty" yaml:"first_detection,omitempty"`
	LastSeen        *time.Time `json:"last_detection,omitempty" yaml:"last_detection,omitempty"`
}

// SpeciesReport is the detailed report for one catalogued species
type SpeciesReport struct {
	ID          string                   `json:"id" yaml:"id"`
	GeneratedAt time.Time                `json:"generated_at" yaml:"generated_at"`
	Species     detection.SpeciesProfile `json:"species" yaml:"species"`
	Period      Period                   `json:"period" yaml:"period"`
	Summary     SpeciesSummary           `json:"summary" yaml:"summary"`
	Timeline    []TimelinePoint          `json:"detection_timeline" yaml:"detection_timeline"`
	Cameras     []CameraBreakdown        `json:"camera_breakdown" yaml:"camera_breakdown"`
	Activity    ActivityPattern          `json:"activity_patterns" yaml:"activity_patterns"`
	Trend       *TrendResult             `json:"population_trend,omitempty" yaml:"population_trend,omitempty"`
}

// GenerateSpeciesReport builds a report restricted to one species. An id
// missing from the catalog yields a not-found error.
func (e *Engine) GenerateSpeciesReport(ctx context.Context, filter detection.Filter, speciesID uint,
	start, end time.Time,
) (*SpeciesReport, error) {
	started := time.Now()
	report, err := e.speciesReport(ctx, filter, speciesID, start, end)
	e.recordReport(KindSpecies, started, err)
	if err != nil {
		return nil, err
	}
	e.log.Info("species report generated",
		logger.Uint("species_id", speciesID),
		logger.Int("detections", report.Summary.TotalDetections))
	return report, nil
}

func (e *Engine) speciesReport(ctx context.Context, filter detection.Filter, speciesID uint,
	start, end time.Time,
) (*SpeciesReport, error) {
	if speciesID == 0 {
		return nil, errors.ValidationError("species id must be non-zero")
	}
	start, end, err := e.resolveWindow(start, end)
	if err != nil {
		return nil, err
	}

	catalog, err := e.fetchCatalog(ctx, []uint{speciesID})
	if err != nil {
		return nil, err
	}
	profile, ok := catalog[speciesID]
	if !ok {
		return nil, errors.Newf("species %d not found", speciesID).
			Component(componentName).
			Category(errors.CategoryNotFound).
			Context("species_id", speciesID).
			Build()
	}

	all, err := e.fetchDetections(ctx, filter, start, end)
	if err != nil {
		return nil, err
	}
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	events := make([]detection.DetectionEvent, 0)
	for i := range all {
		if all[i].SpeciesID == speciesID {
			events = append(events, all[i])
		}
	}

	report := &SpeciesReport{
		ID:          uuid.NewString(),
		GeneratedAt: e.now(),
		Species:     profile,
		Period:      newPeriod(start, end),
		Summary:     summarizeSpecies(events),
		Timeline:    BuildTimeline(events, e.loc),
		Cameras:     BuildCameraBreakdown(events),
		Activity:    AnalyzeActivity(events, e.loc, e.phases),
	}

	trends := NewPopulationTrendAnalyzer(e.cfg.Trend, e.loc).Analyze(events)
	if len(trends.Trends) > 0 {
		trend := trends.Trends[0]
		report.Trend = &trend
	}
	return report, nil
}

func summarizeSpecies(events []detection.DetectionEvent) SpeciesSummary {
	summary := SpeciesSummary{TotalDetections: len(events)}
	if len(events) == 0 {
		return summary
	}

	cameras := make(map[uint]struct{})
	first, last := events[0].Timestamp, events[0].Timestamp
	conf := 0.0
	for i := range events {
		cameras[events[i].CameraID] = struct{}{}
		conf += events[i].Confidence
		if events[i].Timestamp.Before(first) {
			first = events[i].Timestamp
		}
		if events[i].Timestamp.After(last) {
			last = events[i].Timestamp
		}
	}
	summary.UniqueCameras = len(cameras)
	summary.AvgConfidence = round4(conf / float64(len(events)))
	summary.FirstSeen = &first
	summary.LastSeen = &last
	return summary
}
