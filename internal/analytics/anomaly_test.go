package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/wildlife-analytics/internal/detection"
)

var anomalyBase = time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

// steadyDays returns n days of three identical detections at 10:00
func steadyDays(n int) []detection.DetectionEvent {
	events := make([]detection.DetectionEvent, 0, n*3)
	for d := range n {
		ts := anomalyBase.AddDate(0, 0, d).Add(10 * time.Hour)
		for range 3 {
			events = append(events, detection.DetectionEvent{
				SpeciesID: 1, SpeciesName: "deer", Confidence: 0.8, Timestamp: ts,
			})
		}
	}
	return events
}

func TestAggregateDays(t *testing.T) {
	t.Parallel()

	events := []detection.DetectionEvent{
		{Confidence: 0.5, Timestamp: anomalyBase.Add(14 * time.Hour)},
		{Confidence: 0.7, Timestamp: anomalyBase.Add(3 * time.Hour)},
		{Confidence: 0.9, Timestamp: anomalyBase.AddDate(0, 0, 1).Add(5 * time.Hour)},
	}

	days := AggregateDays(events, time.UTC)
	require.Len(t, days, 2)
	assert.Equal(t, "2024-05-01", days[0].Date)
	assert.Equal(t, 2, days[0].Count)
	assert.InDelta(t, 0.6, days[0].MeanConfidence, 1e-9)
	assert.Equal(t, 3, days[0].ModalHour, "ties resolve to the smallest hour")
	assert.Equal(t, "2024-05-02", days[1].Date)
}

func TestStandardizeConstantColumn(t *testing.T) {
	t.Parallel()

	out := standardize([][]float64{{1, 5}, {3, 5}})
	assert.InDelta(t, -1, out[0][0], 1e-9)
	assert.InDelta(t, 1, out[1][0], 1e-9)
	assert.Zero(t, out[0][1])
	assert.Zero(t, out[1][1])
}

func TestDetectTemporalInsufficientData(t *testing.T) {
	t.Parallel()

	d := NewAnomalyDetector(DefaultAnomalyConfig(), nil)

	testCases := []struct {
		name   string
		events []detection.DetectionEvent
	}{
		{"no events", nil},
		{"too few events", steadyDays(3)},
		{"too few days", steadyDays(4)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			findings := d.DetectTemporal(tc.events)
			assert.Equal(t, StatusInsufficientData, findings.Status)
			assert.Empty(t, findings.Anomalies)
		})
	}
}

func TestDetectTemporalFlagsExtremeDay(t *testing.T) {
	t.Parallel()

	events := steadyDays(30)
	extreme := anomalyBase.AddDate(0, 0, 30).Add(2 * time.Hour)
	for range 40 {
		events = append(events, detection.DetectionEvent{
			SpeciesID: 1, SpeciesName: "deer", Confidence: 0.3, Timestamp: extreme,
		})
	}

	findings := NewAnomalyDetector(DefaultAnomalyConfig(), time.UTC).DetectTemporal(events)

	require.Equal(t, StatusOK, findings.Status)
	require.Len(t, findings.Anomalies, 1)

	a := findings.Anomalies[0]
	assert.Equal(t, AnomalyTemporal, a.Type)
	assert.Equal(t, SeverityMedium, a.Severity)
	assert.Equal(t, "2024-05-31", a.Date)
	assert.Equal(t, "Unusual detection pattern: 40 detections with 0.30 avg confidence", a.Description)
	require.NotNil(t, a.Metadata)
	assert.Equal(t, 40, a.Metadata.Count)
	assert.Equal(t, 2, a.Metadata.ModalHour)
	assert.Greater(t, a.Score, 0.5)
}

func TestDetectTemporalIdenticalDaysFlagNothing(t *testing.T) {
	t.Parallel()

	findings := NewAnomalyDetector(DefaultAnomalyConfig(), time.UTC).DetectTemporal(steadyDays(20))
	assert.Equal(t, StatusOK, findings.Status)
	assert.Empty(t, findings.Anomalies)
}

func TestDetectSpecies(t *testing.T) {
	t.Parallel()

	events := make([]detection.DetectionEvent, 0, 30)
	for i := range 24 {
		events = append(events, detection.DetectionEvent{
			SpeciesID: 3, SpeciesName: "owl", Confidence: 0.9,
			Timestamp: anomalyBase.Add(time.Duration(i) * time.Hour),
		})
	}
	lowAt := anomalyBase.Add(30 * time.Hour)
	events = append(events, detection.DetectionEvent{SpeciesID: 3, SpeciesName: "owl", Confidence: 0.1, Timestamp: lowAt})
	// Uniformly low confidence has no spread and is never flagged
	for i := range 5 {
		events = append(events, detection.DetectionEvent{
			SpeciesID: 4, SpeciesName: "hare", Confidence: 0.1,
			Timestamp: anomalyBase.Add(time.Duration(i) * time.Minute),
		})
	}

	findings := NewAnomalyDetector(DefaultAnomalyConfig(), time.UTC).DetectSpecies(events)

	require.Equal(t, StatusOK, findings.Status)
	require.Len(t, findings.Anomalies, 1)

	a := findings.Anomalies[0]
	assert.Equal(t, AnomalySpeciesConfidence, a.Type)
	assert.Equal(t, SeverityHigh, a.Severity)
	assert.Equal(t, uint(3), a.SpeciesID)
	assert.Equal(t, "owl", a.SpeciesName)
	assert.Equal(t, "Unusually low confidence detection for owl", a.Description)
	assert.Equal(t, lowAt, a.DetectedAt)
	assert.InDelta(t, 0.1, a.DetectionConfidence, 1e-9)
	assert.InDelta(t, 0.868, a.SpeciesMeanConfidence, 1e-4)
	assert.Less(t, a.ZScore, -2.0)
}

func TestDetectSpeciesThresholdsAreConfigurable(t *testing.T) {
	t.Parallel()

	events := make([]detection.DetectionEvent, 0, 25)
	for range 24 {
		events = append(events, detection.DetectionEvent{SpeciesName: "owl", Confidence: 0.9, Timestamp: anomalyBase})
	}
	events = append(events, detection.DetectionEvent{SpeciesName: "owl", Confidence: 0.25, Timestamp: anomalyBase})

	stock := NewAnomalyDetector(DefaultAnomalyConfig(), nil).DetectSpecies(events)
	require.Len(t, stock.Anomalies, 1)
	assert.Equal(t, SeverityMedium, stock.Anomalies[0].Severity)

	cfg := DefaultAnomalyConfig()
	cfg.LowConfidenceFloor = 0.2
	strict := NewAnomalyDetector(cfg, nil).DetectSpecies(events)
	assert.Empty(t, strict.Anomalies)

	cfg = DefaultAnomalyConfig()
	cfg.MinSpeciesEvents = 100
	assert.Equal(t, StatusInsufficientData, NewAnomalyDetector(cfg, nil).DetectSpecies(events).Status)
}

func TestAnomalyReportTotal(t *testing.T) {
	t.Parallel()

	r := AnomalyReport{
		Temporal: AnomalyFindings{Anomalies: make([]Anomaly, 2)},
		Species:  AnomalyFindings{Anomalies: make([]Anomaly, 3)},
	}
	assert.Equal(t, 5, r.Total())
}

func TestSeverityRank(t *testing.T) {
	t.Parallel()

	assert.True(t, SeverityCritical.AtLeast(SeverityHigh))
	assert.True(t, SeverityHigh.AtLeast(SeverityHigh))
	assert.False(t, SeverityMedium.AtLeast(SeverityHigh))
	assert.True(t, SeverityWarning.AtLeast(SeverityWarning))
	assert.Zero(t, Severity("bogus").Rank())
}
