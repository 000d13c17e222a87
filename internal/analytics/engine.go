package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tphakala/wildlife-analytics/internal/detection"
	"github.com/tphakala/wildlife-analytics/internal/errors"
	"github.com/tphakala/wildlife-analytics/internal/logger"
)

// Report kinds and outcomes passed to the MetricsRecorder
const (
	KindComprehensive = "comprehensive"
	KindRealtime      = "realtime"
	KindSpecies       = "species"
	KindBatch         = "batch"

	statusSuccess = "success"
	statusError   = "error"

	sourceDetections = "detections"
	sourceCatalog    = "catalog"

	componentName = "analytics"
)

// Engine assembles reports from the analyzers. It holds no state between
// calls; every call fetches its detections once and analyses that slice.
type Engine struct {
	source  DetectionSource
	catalog SpeciesCatalog
	cfg     Config
	now     func() time.Time
	loc     *time.Location
	metrics MetricsRecorder
	log     logger.Logger
	phases  PhaseClassifier
}

// Option configures an Engine
type Option func(*Engine)

// WithClock sets the clock used for default windows and timestamps
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLocation sets the time zone used for hours and calendar days
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithConfig replaces the analyzer configuration
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithMetrics sets the metrics recorder
func WithMetrics(m MetricsRecorder) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithLogger sets the engine logger
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithPhaseClassifier enables the solar light phase breakdown
func WithPhaseClassifier(p PhaseClassifier) Option {
	return func(e *Engine) { e.phases = p }
}

// NewEngine creates an engine over the given collaborators. catalog may be
// nil, in which case no species metadata is available and no conservation
// alerts are raised.
func NewEngine(source DetectionSource, catalog SpeciesCatalog, opts ...Option) *Engine {
	e := &Engine{
		source:  source,
		catalog: catalog,
		cfg:     DefaultConfig(),
		now:     time.Now,
		loc:     time.UTC,
		metrics: noopMetrics{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = getLog()
	}
	return e
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// Request selects the detections of one report. Zero End means now and
// zero Start means End minus the configured window.
type Request struct {
	Label  string
	Filter detection.Filter
	Start  time.Time
	End    time.Time
}

// resolveWindow applies the default window and validates the result
func (e *Engine) resolveWindow(start, end time.Time) (time.Time, time.Time, error) {
	if end.IsZero() {
		end = e.now()
	}
	if start.IsZero() {
		days := e.cfg.WindowDays
		if days <= 0 {
			days = DefaultWindowDays
		}
		start = end.AddDate(0, 0, -days)
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, errors.Newf("start %s is after end %s",
			start.Format(time.RFC3339), end.Format(time.RFC3339)).
			Component(componentName).
			Category(errors.CategoryValidation).
			Context("start", start).
			Context("end", end).
			Build()
	}
	return start, end, nil
}

// fetchDetections performs the single blocking detection fetch of a call
func (e *Engine) fetchDetections(ctx context.Context, filter detection.Filter, start, end time.Time) ([]detection.DetectionEvent, error) {
	fetchStart := time.Now()
	events, err := e.source.FetchDetections(ctx, filter, start, end)
	if err != nil {
		e.metrics.RecordFetchError(sourceDetections)
		return nil, errors.New(err).
			Component(componentName).
			Category(errors.CategoryUpstreamFetch).
			Context("operation", "fetch_detections").
			Context("organization_id", filter.OrganizationID).
			Context("camera_count", len(filter.CameraIDs)).
			Timing("fetch_detections", time.Since(fetchStart)).
			Build()
	}
	e.log.Debug("fetched detections",
		logger.Int("count", len(events)),
		logger.Duration("elapsed", time.Since(fetchStart)))
	return events, nil
}

// fetchCatalog resolves the species present in events. No ids means no call.
func (e *Engine) fetchCatalog(ctx context.Context, ids []uint) (map[uint]detection.SpeciesProfile, error) {
	catalog := make(map[uint]detection.SpeciesProfile, len(ids))
	if len(ids) == 0 || e.catalog == nil {
		return catalog, nil
	}
	profiles, err := e.catalog.FetchSpecies(ctx, ids)
	if err != nil {
		e.metrics.RecordFetchError(sourceCatalog)
		return nil, errors.New(err).
			Component(componentName).
			Category(errors.CategoryUpstreamFetch).
			Context("operation", "fetch_species").
			Context("species_count", len(ids)).
			Build()
	}
	for i := range profiles {
		catalog[profiles[i].ID] = profiles[i]
	}
	return catalog, nil
}

// checkContext converts a cancelled context into a cancellation error
func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.New(err).
			Component(componentName).
			Category(errors.CategoryCancellation).
			Build()
	}
	return nil
}

// GenerateComprehensiveAnalytics fetches the detections of the requested
// window once and runs every analyzer over them. Either a complete report
// or an error is returned.
func (e *Engine) GenerateComprehensiveAnalytics(ctx context.Context, req Request) (*Report, error) {
	started := time.Now()
	report, err := e.generate(ctx, req)
	e.recordReport(KindComprehensive, started, err)
	if err != nil {
		return nil, err
	}

	e.metrics.RecordAnomalies(string(AnomalyTemporal), len(report.Anomalies.Temporal.Anomalies))
	e.metrics.RecordAnomalies(string(AnomalySpeciesConfidence), len(report.Anomalies.Species.Anomalies))
	for severity, n := range countBySeverity(report.Alerts) {
		e.metrics.RecordAlerts(string(severity), n)
	}

	e.log.Info("analytics report generated",
		logger.String("report_id", report.ID),
		logger.Int("detections", report.Summary.TotalDetections),
		logger.Int("species", report.Summary.UniqueSpecies),
		logger.Int("anomalies", report.Summary.AnomaliesDetected),
		logger.Int("alerts", report.Summary.ConservationAlerts),
		logger.Duration("elapsed", time.Since(started)))
	return report, nil
}

func (e *Engine) generate(ctx context.Context, req Request) (*Report, error) {
	start, end, err := e.resolveWindow(req.Start, req.End)
	if err != nil {
		return nil, err
	}

	events, err := e.fetchDetections(ctx, req.Filter, start, end)
	if err != nil {
		return nil, err
	}
	catalog, err := e.fetchCatalog(ctx, detection.SpeciesIDs(events))
	if err != nil {
		return nil, err
	}
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	return e.assemble(req, start, end, events, catalog), nil
}

// assemble runs the analyzers over one immutable event slice
func (e *Engine) assemble(req Request, start, end time.Time, events []detection.DetectionEvent,
	catalog map[uint]detection.SpeciesProfile,
) *Report {
	counts := CountBySpecies(events)
	anomalies := NewAnomalyDetector(e.cfg.Anomaly, e.loc).Detect(events)
	trends := NewPopulationTrendAnalyzer(e.cfg.Trend, e.loc).Analyze(events)

	alertSystem := NewConservationAlertSystem(e.cfg.Conservation, e.now)
	alerts := alertSystem.Evaluate(trends.Trends, catalog)
	if e.cfg.Conservation.PresenceAlerts {
		alerts = append(alerts, alertSystem.PresenceAlerts(countBySpeciesID(events), catalog)...)
	}

	cameras := BuildCameraBreakdown(events)
	return &Report{
		ID:          uuid.NewString(),
		Label:       req.Label,
		GeneratedAt: e.now(),
		Filter:      req.Filter.Clone(),
		Period:      newPeriod(start, end),
		Summary: Summary{
			TotalDetections:    len(events),
			UniqueSpecies:      len(counts),
			CamerasActive:      len(cameras),
			AnomaliesDetected:  anomalies.Total(),
			ConservationAlerts: len(alerts),
		},
		Biodiversity:     AnalyzeBiodiversity(counts),
		Activity:         AnalyzeActivity(events, e.loc, e.phases),
		Anomalies:        anomalies,
		Trends:           trends,
		Alerts:           alerts,
		SpeciesBreakdown: BuildSpeciesBreakdown(events),
		Timeline:         BuildTimeline(events, e.loc),
		Cameras:          cameras,
	}
}

// GenerateBatch produces one report per request concurrently, bounded by
// MaxConcurrentReports. The first failure cancels the remaining requests
// and no reports are returned.
func (e *Engine) GenerateBatch(ctx context.Context, reqs []Request) ([]*Report, error) {
	started := time.Now()
	reports := make([]*Report, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	limit := e.cfg.MaxConcurrentReports
	if limit <= 0 {
		limit = DefaultMaxConcurrentReports
	}
	g.SetLimit(limit)

	for i := range reqs {
		g.Go(func() error {
			report, err := e.GenerateComprehensiveAnalytics(gctx, reqs[i])
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}

	err := g.Wait()
	e.recordReport(KindBatch, started, err)
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func (e *Engine) recordReport(kind string, started time.Time, err error) {
	status := statusSuccess
	if err != nil {
		status = statusError
		e.log.Warn("report generation failed",
			logger.String("kind", kind),
			logger.Error(err))
	}
	e.metrics.RecordReport(kind, status, time.Since(started))
}

// countBySpeciesID counts detections of catalogued species
func countBySpeciesID(events []detection.DetectionEvent) map[uint]int {
	counts := make(map[uint]int)
	for i := range events {
		if events[i].HasSpecies() {
			counts[events[i].SpeciesID]++
		}
	}
	return counts
}

func countBySeverity(alerts []ConservationAlert) map[Severity]int {
	counts := make(map[Severity]int)
	for i := range alerts {
		counts[alerts[i].Severity]++
	}
	return counts
}
