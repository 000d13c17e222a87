package analytics

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/wildlife-analytics/internal/detection"
	"github.com/tphakala/wildlife-analytics/internal/suncalc"
)

func TestClassifyActivityDiurnal(t *testing.T) {
	t.Parallel()

	var hist [24]int
	for i := range 100 {
		hist[9+i%8]++
	}
	assert.Equal(t, ActivityDiurnal, ClassifyActivity(hist))
}

func TestClassifyActivityArchetypes(t *testing.T) {
	t.Parallel()

	hist := func(buckets map[int]int) [24]int {
		var h [24]int
		for hour, c := range buckets {
			h[hour] = c
		}
		return h
	}

	testCases := []struct {
		name     string
		hist     [24]int
		expected ActivityType
	}{
		{"empty", [24]int{}, ActivityUnknown},
		{"night owl", hist(map[int]int{23: 5, 0: 5, 3: 5}), ActivityNocturnal},
		{"twilight", hist(map[int]int{6: 4, 19: 4, 12: 2}), ActivityCrepuscular},
		{"spread out", hist(map[int]int{6: 2, 12: 3, 19: 2, 23: 3}), ActivityCathemeral},
		{"exactly sixty percent day is not diurnal", hist(map[int]int{12: 6, 2: 4}), ActivityCathemeral},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, ClassifyActivity(tc.hist))
		})
	}
}

func TestClassifyActivityIsTotal(t *testing.T) {
	t.Parallel()

	valid := map[ActivityType]bool{
		ActivityDiurnal: true, ActivityNocturnal: true, ActivityCrepuscular: true,
		ActivityCathemeral: true, ActivityUnknown: true,
	}

	rng := rand.New(rand.NewPCG(3, 5))
	for iter := range 1000 {
		var hist [24]int
		total := 0
		for h := range hist {
			if rng.IntN(3) == 0 {
				hist[h] = rng.IntN(20)
				total += hist[h]
			}
		}
		got := ClassifyActivity(hist)
		require.True(t, valid[got], "iteration %d returned %q", iter, got)
		require.Equal(t, total == 0, got == ActivityUnknown, "iteration %d: %v", iter, hist)
	}
}

func TestPeakHours(t *testing.T) {
	t.Parallel()

	var hist [24]int
	hist[4] = 2
	hist[10] = 5
	hist[14] = 5
	hist[20] = 2
	hist[22] = 1

	assert.Equal(t, []HourCount{{10, 5}, {14, 5}, {4, 2}}, PeakHours(hist, 3))

	var sparse [24]int
	sparse[7] = 1
	assert.Equal(t, []HourCount{{7, 1}}, PeakHours(sparse, 3), "zero hours are never peaks")
}

type fixedPhase suncalc.LightPhase

func (p fixedPhase) Phase(time.Time) suncalc.LightPhase { return suncalc.LightPhase(p) }

func TestAnalyzeActivity(t *testing.T) {
	t.Parallel()

	// 2024-06-03 is a Monday
	base := time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)
	events := []detection.DetectionEvent{
		{SpeciesName: "deer", Confidence: 0.8, Timestamp: base.Add(9 * time.Hour), BehaviorLabel: "feeding"},
		{SpeciesName: "deer", Confidence: 0.6, Timestamp: base.Add(10 * time.Hour), BehaviorLabel: "feeding"},
		{SpeciesName: "deer", Confidence: 0.7, Timestamp: base.Add(10*time.Hour + 5*time.Minute)},
		{SpeciesName: "deer", Confidence: 0.9, Timestamp: base.AddDate(0, 1, 1).Add(12 * time.Hour)},
	}

	pattern := AnalyzeActivity(events, time.UTC, fixedPhase(suncalc.PhaseDaylight))

	assert.Equal(t, 4, pattern.TotalDetections)
	assert.Equal(t, ActivityDiurnal, pattern.ActivityType)
	assert.Equal(t, 2, pattern.HourlyDistribution[10])
	assert.Equal(t, HourCount{Hour: 10, Count: 2}, pattern.PeakHours[0])
	assert.InDelta(t, 1.0, pattern.PeriodShares.Day, 1e-9)

	assert.Equal(t, map[string]int{"feeding": 2, detection.UnknownBehavior: 2}, pattern.Behaviors)
	assert.Equal(t, "Monday", pattern.PeakDay)
	require.Len(t, pattern.Weekly, 7)
	assert.Equal(t, "Sunday", pattern.Weekly[0].Day)

	require.Len(t, pattern.Seasonal, 2)
	assert.Equal(t, MonthlyActivity{Month: 6, MonthName: "June", Detections: 3, AvgConfidence: 0.7}, pattern.Seasonal[0])
	assert.Equal(t, 7, pattern.Seasonal[1].Month)

	require.Len(t, pattern.LightPhases, len(suncalc.Phases))
	for _, lp := range pattern.LightPhases {
		if lp.Phase == suncalc.PhaseDaylight {
			assert.Equal(t, 4, lp.Detections)
			assert.InDelta(t, 1.0, lp.Share, 1e-9)
		} else {
			assert.Zero(t, lp.Detections)
		}
	}
}

func TestAnalyzeActivityUsesLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+3", 3*60*60)
	events := []detection.DetectionEvent{
		{Timestamp: time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC)},
	}

	pattern := AnalyzeActivity(events, loc, nil)
	assert.Equal(t, 1, pattern.HourlyDistribution[1])
	assert.Nil(t, pattern.LightPhases)
}

func TestAnalyzeActivityEmpty(t *testing.T) {
	t.Parallel()

	pattern := AnalyzeActivity(nil, nil, nil)

	assert.Equal(t, ActivityUnknown, pattern.ActivityType)
	assert.Equal(t, [24]int{}, pattern.HourlyDistribution)
	assert.Empty(t, pattern.PeakHours)
	assert.Empty(t, pattern.Seasonal)
	assert.Empty(t, pattern.Behaviors)
	assert.Equal(t, "Unknown", pattern.PeakDay)
	assert.Equal(t, PeriodShares{}, pattern.PeriodShares)
}
