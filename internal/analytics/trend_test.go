package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/wildlife-analytics/internal/detection"
)

var trendBase = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

// dailySeries expands per-day counts into detections of one species
func dailySeries(id uint, name string, counts []int) []detection.DetectionEvent {
	events := make([]detection.DetectionEvent, 0)
	for day, c := range counts {
		for k := range c {
			events = append(events, detection.DetectionEvent{
				SpeciesID:   id,
				SpeciesName: name,
				Confidence:  0.8,
				Timestamp:   trendBase.AddDate(0, 0, day).Add(time.Duration(k) * time.Minute),
			})
		}
	}
	return events
}

func TestTrendElkIncreasing(t *testing.T) {
	t.Parallel()

	events := dailySeries(9, "elk", []int{1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6, 7, 7, 8})
	findings := NewPopulationTrendAnalyzer(DefaultTrendConfig(), time.UTC).Analyze(events)

	require.Equal(t, StatusOK, findings.Status)
	require.Len(t, findings.Trends, 1)

	trend := findings.Trends[0]
	assert.Equal(t, uint(9), trend.SpeciesID)
	assert.Equal(t, "elk", trend.SpeciesName)
	assert.Equal(t, TrendIncreasing, trend.Direction)
	assert.Greater(t, trend.Statistics.RSquared, 0.98)
	assert.InDelta(t, 90, trend.ConfidenceLevel, 1e-9)
	assert.InDelta(t, 175.78, trend.Magnitude, 0.01)
	assert.InDelta(t, 0.5, trend.Statistics.Slope, 1e-9)
	assert.Less(t, trend.Statistics.PValue, 0.05)
	assert.Equal(t, 15, trend.Statistics.ObservedDays)
	assert.Equal(t, DateRange{Start: "2024-03-01", End: "2024-03-15"}, trend.Period)

	require.Len(t, trend.Forecast, 30)
	assert.Equal(t, "2024-03-16", trend.Forecast[0].Date)
	// x = 15: 0.5*15 + 0.7667
	assert.InDelta(t, 8.27, trend.Forecast[0].PredictedCount, 0.01)
	assert.Equal(t, "2024-04-14", trend.Forecast[29].Date)
}

func TestTrendStableSeries(t *testing.T) {
	t.Parallel()

	events := dailySeries(2, "hare", []int{2, 2, 2, 2, 2, 2, 2, 2, 2, 2})
	findings := NewPopulationTrendAnalyzer(DefaultTrendConfig(), time.UTC).Analyze(events)

	require.Len(t, findings.Trends, 1)
	trend := findings.Trends[0]
	assert.Equal(t, TrendStable, trend.Direction)
	assert.Zero(t, trend.Magnitude)
	assert.InDelta(t, 1.0, trend.Statistics.PValue, 0)
	assert.Zero(t, trend.ConfidenceLevel)
}

func TestTrendClassification(t *testing.T) {
	t.Parallel()

	a := NewPopulationTrendAnalyzer(DefaultTrendConfig(), nil)

	testCases := []struct {
		name      string
		slope     float64
		direction TrendDirection
	}{
		{"zero slope", 0, TrendStable},
		{"tiny positive", 0.009, TrendStable},
		{"tiny negative", -0.009, TrendStable},
		{"positive", 0.02, TrendIncreasing},
		{"negative", -0.5, TrendDecreasing},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			direction, magnitude := a.classify(tc.slope, 10, 4)
			assert.Equal(t, tc.direction, direction)
			if direction == TrendStable {
				assert.Zero(t, magnitude)
			} else {
				assert.Positive(t, magnitude)
			}
		})
	}
}

func TestTrendForecastLowerBoundNeverNegative(t *testing.T) {
	t.Parallel()

	events := dailySeries(5, "lynx", []int{30, 2, 25, 1, 20, 3, 15, 1, 9, 1, 4, 1})
	findings := NewPopulationTrendAnalyzer(DefaultTrendConfig(), time.UTC).Analyze(events)

	require.Len(t, findings.Trends, 1)
	trend := findings.Trends[0]
	assert.Equal(t, TrendDecreasing, trend.Direction)
	for _, point := range trend.Forecast {
		assert.GreaterOrEqual(t, point.PredictedCount, 0.0, point.Date)
		assert.GreaterOrEqual(t, point.Interval.Lower, 0.0, point.Date)
		assert.GreaterOrEqual(t, point.Interval.Upper, point.Interval.Lower, point.Date)
	}
	assert.Less(t, trend.ConfidenceLevel, 90.0, "noisy fit is not fully confident")
}

func TestTrendInsufficientDays(t *testing.T) {
	t.Parallel()

	events := dailySeries(1, "fox", []int{1, 2, 3, 4, 5, 6, 7, 8, 9})
	findings := NewPopulationTrendAnalyzer(DefaultTrendConfig(), time.UTC).Analyze(events)

	assert.Equal(t, StatusInsufficientData, findings.Status)
	assert.Empty(t, findings.Trends)
}

func TestTrendResultsOrderedByName(t *testing.T) {
	t.Parallel()

	counts := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	events := append(dailySeries(2, "wolf", counts), dailySeries(1, "bear", counts)...)
	findings := NewPopulationTrendAnalyzer(DefaultTrendConfig(), time.UTC).Analyze(events)

	require.Len(t, findings.Trends, 2)
	assert.Equal(t, "bear", findings.Trends[0].SpeciesName)
	assert.Equal(t, "wolf", findings.Trends[1].SpeciesName)
}

func TestLinearRegression(t *testing.T) {
	t.Parallel()

	t.Run("perfect fit", func(t *testing.T) {
		t.Parallel()
		reg := LinearRegression([]float64{0, 1, 2, 3, 4}, []float64{1, 3, 5, 7, 9})
		assert.InDelta(t, 2, reg.Slope, 1e-9)
		assert.InDelta(t, 1, reg.Intercept, 1e-9)
		assert.InDelta(t, 1, reg.RSquared, 1e-9)
		assert.InDelta(t, 0, reg.PValue, 1e-9)
		assert.InDelta(t, 0, reg.StdErr, 1e-9)
	})

	t.Run("too few points", func(t *testing.T) {
		t.Parallel()
		reg := LinearRegression([]float64{0, 1}, []float64{1, 2})
		assert.InDelta(t, 1.0, reg.PValue, 0)
		assert.Zero(t, reg.Slope)
	})

	t.Run("constant x", func(t *testing.T) {
		t.Parallel()
		reg := LinearRegression([]float64{1, 1, 1}, []float64{1, 2, 3})
		assert.Zero(t, reg.Slope)
		assert.InDelta(t, 2, reg.Intercept, 1e-9)
		assert.InDelta(t, 1.0, reg.PValue, 0)
	})

	t.Run("noisy fit", func(t *testing.T) {
		t.Parallel()
		reg := LinearRegression([]float64{0, 1, 2, 3, 4, 5}, []float64{2, 1, 4, 3, 6, 5})
		assert.Positive(t, reg.Slope)
		assert.Positive(t, reg.StdErr)
		assert.Greater(t, reg.PValue, 0.0)
		assert.Less(t, reg.PValue, 1.0)
		assert.Greater(t, reg.RSquared, 0.0)
		assert.Less(t, reg.RSquared, 1.0)
	})
}
