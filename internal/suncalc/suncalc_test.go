package suncalc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// London, close to the prime meridian so UTC dates and solar dates agree
const (
	testLatitude  = 51.5074
	testLongitude = -0.1278
)

func newTestSunCalc() *SunCalc {
	return NewSunCalc(testLatitude, testLongitude, time.UTC)
}

func equinoxAt(hour, minute int) time.Time {
	return time.Date(2024, 3, 20, hour, minute, 0, 0, time.UTC)
}

func TestNewSunCalc(t *testing.T) {
	t.Parallel()

	sc := NewSunCalc(testLatitude, testLongitude, nil)
	require.NotNil(t, sc)
	assert.InDelta(t, testLatitude, sc.observer.Latitude, 0)
	assert.InDelta(t, testLongitude, sc.observer.Longitude, 0)
	assert.Equal(t, time.UTC, sc.location, "nil location should default to UTC")
}

func TestGetSunEventTimesOrderedAndCached(t *testing.T) {
	t.Parallel()

	sc := newTestSunCalc()

	times1, err := sc.GetSunEventTimes(equinoxAt(12, 0))
	require.NoError(t, err)

	assert.True(t, times1.CivilDawn.Before(times1.Sunrise), "civil dawn precedes sunrise")
	assert.True(t, times1.Sunrise.Before(times1.Sunset), "sunrise precedes sunset")
	assert.True(t, times1.Sunset.Before(times1.CivilDusk), "sunset precedes civil dusk")

	// Any time on the same date hits the cache
	times2, err := sc.GetSunEventTimes(equinoxAt(23, 30))
	require.NoError(t, err)
	assert.True(t, times1.Sunrise.Equal(times2.Sunrise))
	assert.Len(t, sc.cache, 1)
}

func TestEquinoxDayLength(t *testing.T) {
	t.Parallel()

	sc := newTestSunCalc()

	sunrise, err := sc.GetSunriseTime(equinoxAt(0, 0))
	require.NoError(t, err)
	sunset, err := sc.GetSunsetTime(equinoxAt(0, 0))
	require.NoError(t, err)

	dayLength := sunset.Sub(sunrise)
	assert.InDelta(t, 12*time.Hour, dayLength, float64(30*time.Minute), "equinox day should last about 12h, got %s", dayLength)
}

func TestPhase(t *testing.T) {
	t.Parallel()

	sc := newTestSunCalc()
	times, err := sc.GetSunEventTimes(equinoxAt(0, 0))
	require.NoError(t, err)

	tests := []struct {
		name     string
		at       time.Time
		expected LightPhase
	}{
		{"small hours", equinoxAt(2, 0), PhaseNight},
		{"civil dawn", times.CivilDawn.Add(time.Minute), PhaseCivilDawn},
		{"noon", equinoxAt(12, 0), PhaseDaylight},
		{"civil dusk", times.Sunset.Add(time.Minute), PhaseCivilDusk},
		{"late evening", equinoxAt(22, 30), PhaseNight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sc.Phase(tt.at))
		})
	}
}
