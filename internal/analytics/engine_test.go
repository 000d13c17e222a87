package analytics_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/wildlife-analytics/internal/analytics"
	"github.com/tphakala/wildlife-analytics/internal/analytics/mocks"
	"github.com/tphakala/wildlife-analytics/internal/detection"
	"github.com/tphakala/wildlife-analytics/internal/errors"
	"github.com/tphakala/wildlife-analytics/internal/logger"
)

var testNow = time.Date(2024, time.June, 30, 12, 0, 0, 0, time.UTC)

// recordingMetrics captures engine measurements
type recordingMetrics struct {
	mu          sync.Mutex
	reports     []string
	anomalies   map[string]int
	alerts      map[string]int
	fetchErrors []string
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{anomalies: map[string]int{}, alerts: map[string]int{}}
}

func (r *recordingMetrics) RecordReport(kind, status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, kind+"/"+status)
}

func (r *recordingMetrics) RecordAnomalies(anomalyType string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.anomalies[anomalyType] += count
}

func (r *recordingMetrics) RecordAlerts(severity string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts[severity] += count
}

func (r *recordingMetrics) RecordFetchError(source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchErrors = append(r.fetchErrors, source)
}

// fixtureEvents returns twelve days of a declining deer population on
// camera 1, a steady fox population on camera 2 and one unattributed detection.
func fixtureEvents() []detection.DetectionEvent {
	events := make([]detection.DetectionEvent, 0)
	start := testNow.AddDate(0, 0, -12)
	for day := range 12 {
		ts := start.AddDate(0, 0, day)
		for k := range 12 - day {
			events = append(events, detection.DetectionEvent{
				SpeciesID: 1, SpeciesName: "deer", Confidence: 0.85, CameraID: 1,
				Timestamp: ts.Add(time.Duration(k) * time.Minute), BehaviorLabel: "grazing",
			})
		}
		for k := range 2 {
			events = append(events, detection.DetectionEvent{
				SpeciesID: 2, SpeciesName: "fox", Confidence: 0.7, CameraID: 2,
				Timestamp: ts.Add(-10*time.Hour + time.Duration(k)*time.Minute),
			})
		}
	}
	events = append(events, detection.DetectionEvent{Confidence: 0.4, CameraID: 1, Timestamp: start})
	return events
}

func fixtureProfiles() []detection.SpeciesProfile {
	return []detection.SpeciesProfile{
		{ID: 1, Name: "deer", ConservationStatus: detection.StatusEndangered, IsEndangered: true, IsProtected: true},
		{ID: 2, Name: "fox", ConservationStatus: detection.StatusLeastConcern},
	}
}

func newTestEngine(t *testing.T, opts ...analytics.Option) (*analytics.Engine, *mocks.MockDetectionSource, *mocks.MockSpeciesCatalog) {
	t.Helper()
	source := mocks.NewMockDetectionSource(t)
	catalog := mocks.NewMockSpeciesCatalog(t)
	base := []analytics.Option{
		analytics.WithClock(func() time.Time { return testNow }),
		analytics.WithLogger(logger.NewSlogLogger(io.Discard, logger.LogLevelError, time.UTC)),
	}
	return analytics.NewEngine(source, catalog, append(base, opts...)...), source, catalog
}

func TestGenerateComprehensiveAnalytics(t *testing.T) {
	t.Parallel()

	recorder := newRecordingMetrics()
	engine, source, catalog := newTestEngine(t, analytics.WithMetrics(recorder))
	filter := detection.Filter{OrganizationID: 3}

	source.EXPECT().
		FetchDetections(mock.Anything, filter, testNow.AddDate(0, 0, -30), testNow).
		Return(fixtureEvents(), nil).
		Once()
	catalog.EXPECT().
		FetchSpecies(mock.Anything, []uint{1, 2}).
		Return(fixtureProfiles(), nil).
		Once()

	report, err := engine.GenerateComprehensiveAnalytics(context.Background(), analytics.Request{Filter: filter})
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, testNow, report.GeneratedAt)
	assert.Equal(t, filter, report.Filter)
	assert.Equal(t, 30, report.Period.TotalDays)

	assert.Equal(t, analytics.Summary{
		TotalDetections:    103,
		UniqueSpecies:      3,
		CamerasActive:      2,
		AnomaliesDetected:  report.Anomalies.Total(),
		ConservationAlerts: 1,
	}, report.Summary)

	assert.Equal(t, 3, report.Biodiversity.SpeciesRichness)
	assert.Equal(t, 103, report.Activity.TotalDetections)
	assert.Equal(t, analytics.StatusOK, report.Trends.Status)
	require.Len(t, report.Trends.Trends, 2)
	assert.Equal(t, "deer", report.Trends.Trends[0].SpeciesName)
	assert.Equal(t, analytics.TrendDecreasing, report.Trends.Trends[0].Direction)

	require.Len(t, report.Alerts, 1)
	assert.Equal(t, analytics.AlertPopulationDecline, report.Alerts[0].Type)
	assert.Equal(t, analytics.SeverityCritical, report.Alerts[0].Severity)
	assert.Equal(t, testNow, report.Alerts[0].CreatedAt)

	require.Len(t, report.SpeciesBreakdown, 3)
	assert.Equal(t, "deer", report.SpeciesBreakdown[0].SpeciesName)
	assert.Equal(t, 78, report.SpeciesBreakdown[0].Count)
	assert.InDelta(t, 75.73, report.SpeciesBreakdown[0].Percentage, 0.01)
	assert.Equal(t, "fox", report.SpeciesBreakdown[1].SpeciesName)
	assert.Equal(t, detection.UnknownSpeciesName, report.SpeciesBreakdown[2].SpeciesName)

	assert.Len(t, report.Timeline, 12)
	require.Len(t, report.Cameras, 2)
	assert.Equal(t, analytics.CameraBreakdown{CameraID: 1, Detections: 79, Species: 2, AvgConfidence: 0.8443}, report.Cameras[0])

	assert.Equal(t, []string{"comprehensive/success"}, recorder.reports)
	assert.Equal(t, 1, recorder.alerts["critical"])
}

func TestGenerateComprehensiveAnalyticsCopiesFilter(t *testing.T) {
	t.Parallel()

	engine, source, _ := newTestEngine(t)
	filter := detection.Filter{OrganizationID: 3, CameraIDs: []uint{4, 5}}

	source.EXPECT().
		FetchDetections(mock.Anything, filter, testNow.AddDate(0, 0, -30), testNow).
		Return([]detection.DetectionEvent{}, nil).
		Once()

	report, err := engine.GenerateComprehensiveAnalytics(context.Background(), analytics.Request{Filter: filter})
	require.NoError(t, err)

	filter.CameraIDs[0] = 99
	assert.Equal(t, []uint{4, 5}, report.Filter.CameraIDs, "caller mutations must not reach the report")
}

func TestGenerateComprehensiveAnalyticsExplicitWindow(t *testing.T) {
	t.Parallel()

	engine, source, _ := newTestEngine(t)
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)

	source.EXPECT().
		FetchDetections(mock.Anything, detection.Filter{}, start, end).
		Return([]detection.DetectionEvent{}, nil).
		Once()

	report, err := engine.GenerateComprehensiveAnalytics(context.Background(), analytics.Request{Start: start, End: end})
	require.NoError(t, err)

	assert.Equal(t, 7, report.Period.TotalDays)
	assert.Equal(t, analytics.Summary{}, report.Summary)
	assert.Equal(t, analytics.StatusInsufficientData, report.Anomalies.Temporal.Status)
	assert.Equal(t, analytics.StatusInsufficientData, report.Anomalies.Species.Status)
	assert.Equal(t, analytics.StatusInsufficientData, report.Trends.Status)
	assert.Equal(t, analytics.ActivityUnknown, report.Activity.ActivityType)
	assert.Empty(t, report.Alerts)
	assert.Empty(t, report.SpeciesBreakdown)
}

func TestGenerateComprehensiveAnalyticsFetchFailure(t *testing.T) {
	t.Parallel()

	recorder := newRecordingMetrics()
	engine, source, _ := newTestEngine(t, analytics.WithMetrics(recorder))
	cause := errors.NewStd("connection refused")

	source.EXPECT().
		FetchDetections(mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, cause).
		Once()

	report, err := engine.GenerateComprehensiveAnalytics(context.Background(), analytics.Request{})
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, errors.IsUpstreamFetch(err))
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, []string{"detections"}, recorder.fetchErrors)
	assert.Equal(t, []string{"comprehensive/error"}, recorder.reports)
}

func TestGenerateComprehensiveAnalyticsCatalogFailure(t *testing.T) {
	t.Parallel()

	engine, source, catalog := newTestEngine(t)
	source.EXPECT().
		FetchDetections(mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(fixtureEvents(), nil).
		Once()
	catalog.EXPECT().
		FetchSpecies(mock.Anything, mock.Anything).
		Return(nil, errors.NewStd("catalog offline")).
		Once()

	report, err := engine.GenerateComprehensiveAnalytics(context.Background(), analytics.Request{})
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, errors.IsUpstreamFetch(err))
}

func TestGenerateComprehensiveAnalyticsInvalidWindow(t *testing.T) {
	t.Parallel()

	engine, _, _ := newTestEngine(t)
	req := analytics.Request{Start: testNow, End: testNow.Add(-time.Hour)}

	report, err := engine.GenerateComprehensiveAnalytics(context.Background(), req)
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, errors.IsValidation(err))
}

func TestGenerateComprehensiveAnalyticsCancelled(t *testing.T) {
	t.Parallel()

	engine, source, catalog := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source.EXPECT().
		FetchDetections(mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(fixtureEvents(), nil).
		Once()
	catalog.EXPECT().
		FetchSpecies(mock.Anything, mock.Anything).
		Return(fixtureProfiles(), nil).
		Maybe()

	report, err := engine.GenerateComprehensiveAnalytics(ctx, analytics.Request{})
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, errors.IsCategory(err, errors.CategoryCancellation))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRealTimeInsights(t *testing.T) {
	t.Parallel()

	repeat := func(n int) []detection.DetectionEvent {
		events := make([]detection.DetectionEvent, n)
		for i := range events {
			name := "deer"
			if i%2 == 1 {
				name = "fox"
			}
			events[i] = detection.DetectionEvent{SpeciesName: name, CameraID: uint(i % 3), Timestamp: testNow.Add(-time.Hour)}
		}
		return events
	}

	testCases := []struct {
		name     string
		count    int
		expected analytics.ActivityLevel
	}{
		{"quiet", 0, analytics.ActivityLevelLow},
		{"three is low", 3, analytics.ActivityLevelLow},
		{"four is moderate", 4, analytics.ActivityLevelModerate},
		{"ten is moderate", 10, analytics.ActivityLevelModerate},
		{"eleven is high", 11, analytics.ActivityLevelHigh},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			engine, source, _ := newTestEngine(t)
			source.EXPECT().
				FetchDetections(mock.Anything, detection.Filter{}, testNow.Add(-24*time.Hour), testNow).
				Return(repeat(tc.count), nil).
				Once()

			insights, err := engine.RealTimeInsights(context.Background(), detection.Filter{})
			require.NoError(t, err)
			assert.Equal(t, tc.expected, insights.ActivityLevel)
			assert.Equal(t, tc.count, insights.TotalDetections)
			assert.LessOrEqual(t, len(insights.TopSpecies), 5)
			if tc.count > 1 {
				assert.Equal(t, 2, insights.ActiveSpecies)
				assert.Positive(t, insights.ShannonIndex)
			}
		})
	}
}

func TestRealTimeInsightsFetchFailure(t *testing.T) {
	t.Parallel()

	engine, source, _ := newTestEngine(t)
	source.EXPECT().
		FetchDetections(mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.NewStd("timeout")).
		Once()

	insights, err := engine.RealTimeInsights(context.Background(), detection.Filter{})
	require.Error(t, err)
	assert.Nil(t, insights)
	assert.True(t, errors.IsUpstreamFetch(err))
}

func TestGenerateSpeciesReport(t *testing.T) {
	t.Parallel()

	engine, source, catalog := newTestEngine(t)
	catalog.EXPECT().
		FetchSpecies(mock.Anything, []uint{1}).
		Return(fixtureProfiles()[:1], nil).
		Once()
	source.EXPECT().
		FetchDetections(mock.Anything, detection.Filter{}, testNow.AddDate(0, 0, -30), testNow).
		Return(fixtureEvents(), nil).
		Once()

	report, err := engine.GenerateSpeciesReport(context.Background(), detection.Filter{}, 1, time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, "deer", report.Species.Name)
	assert.Equal(t, 78, report.Summary.TotalDetections)
	assert.Equal(t, 1, report.Summary.UniqueCameras)
	assert.InDelta(t, 0.85, report.Summary.AvgConfidence, 1e-9)
	require.NotNil(t, report.Summary.FirstSeen)
	assert.Equal(t, testNow.AddDate(0, 0, -12), *report.Summary.FirstSeen)
	assert.Len(t, report.Timeline, 12)
	assert.Equal(t, map[string]int{"grazing": 78}, report.Activity.Behaviors)
	require.NotNil(t, report.Trend)
	assert.Equal(t, analytics.TrendDecreasing, report.Trend.Direction)
}

func TestGenerateSpeciesReportNotFound(t *testing.T) {
	t.Parallel()

	engine, _, catalog := newTestEngine(t)
	catalog.EXPECT().
		FetchSpecies(mock.Anything, []uint{99}).
		Return([]detection.SpeciesProfile{}, nil).
		Once()

	report, err := engine.GenerateSpeciesReport(context.Background(), detection.Filter{}, 99, time.Time{}, time.Time{})
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, errors.IsNotFound(err))
}

func TestGenerateSpeciesReportRejectsZeroID(t *testing.T) {
	t.Parallel()

	engine, _, _ := newTestEngine(t)
	_, err := engine.GenerateSpeciesReport(context.Background(), detection.Filter{}, 0, time.Time{}, time.Time{})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

// cameraSource answers each fetch with the fixture events visible through the filter
func cameraSource(events []detection.DetectionEvent, failCamera uint) func(context.Context, detection.Filter, time.Time, time.Time) ([]detection.DetectionEvent, error) {
	return func(_ context.Context, f detection.Filter, _, _ time.Time) ([]detection.DetectionEvent, error) {
		if failCamera != 0 && f.Matches(0, failCamera) {
			return nil, errors.NewStd("camera offline")
		}
		visible := make([]detection.DetectionEvent, 0)
		for i := range events {
			if f.Matches(0, events[i].CameraID) {
				visible = append(visible, events[i])
			}
		}
		return visible, nil
	}
}

func TestGenerateBatch(t *testing.T) {
	t.Parallel()

	recorder := newRecordingMetrics()
	engine, source, catalog := newTestEngine(t, analytics.WithMetrics(recorder))
	source.EXPECT().
		FetchDetections(mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(cameraSource(fixtureEvents(), 0)).
		Times(2)
	catalog.EXPECT().
		FetchSpecies(mock.Anything, mock.Anything).
		Return(fixtureProfiles(), nil).
		Times(2)

	base := detection.Filter{}
	reports, err := engine.GenerateBatch(context.Background(), []analytics.Request{
		{Label: "camera-1", Filter: base.WithCamera(1)},
		{Label: "camera-2", Filter: base.WithCamera(2)},
	})
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, "camera-1", reports[0].Label)
	assert.Equal(t, 79, reports[0].Summary.TotalDetections)
	assert.Equal(t, "camera-2", reports[1].Label)
	assert.Equal(t, 24, reports[1].Summary.TotalDetections)
	assert.NotEqual(t, reports[0].ID, reports[1].ID)

	assert.Contains(t, recorder.reports, "batch/success")
}

func TestGenerateBatchIsAllOrNothing(t *testing.T) {
	t.Parallel()

	engine, source, catalog := newTestEngine(t, analytics.WithConfig(func() analytics.Config {
		cfg := analytics.DefaultConfig()
		cfg.MaxConcurrentReports = 1
		return cfg
	}()))
	source.EXPECT().
		FetchDetections(mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(cameraSource(fixtureEvents(), 2)).
		Maybe()
	catalog.EXPECT().
		FetchSpecies(mock.Anything, mock.Anything).
		Return(fixtureProfiles(), nil).
		Maybe()

	reports, err := engine.GenerateBatch(context.Background(), []analytics.Request{
		{Filter: detection.Filter{CameraIDs: []uint{1}}},
		{Filter: detection.Filter{CameraIDs: []uint{2}}},
		{Filter: detection.Filter{CameraIDs: []uint{1}}},
	})
	require.Error(t, err)
	assert.Nil(t, reports)
	assert.True(t, errors.IsUpstreamFetch(err))
}
