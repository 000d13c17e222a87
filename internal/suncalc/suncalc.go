// Package suncalc computes and caches sun event times for a site and
// classifies timestamps into light phases.
package suncalc

import (
	"fmt"
	"sync"
	"time"

	"github.com/sj14/astral/pkg/astral"
)

// LightPhase names the portion of the solar day a timestamp falls into
type LightPhase string

const (
	PhaseNight     LightPhase = "night"
	PhaseCivilDawn LightPhase = "civil-dawn"
	PhaseDaylight  LightPhase = "daylight"
	PhaseCivilDusk LightPhase = "civil-dusk"
	PhaseUnknown   LightPhase = "unknown" // sun events undefined, e.g. polar day or night
)

// Phases lists every light phase in reporting order
var Phases = []LightPhase{PhaseNight, PhaseCivilDawn, PhaseDaylight, PhaseCivilDusk, PhaseUnknown}

// SunEventTimes holds the calculated sun event times in the site time zone
type SunEventTimes struct {
	CivilDawn time.Time
	Sunrise   time.Time
	Sunset    time.Time
	CivilDusk time.Time
}

// cacheEntry holds the sun event times, or the error, computed for one date
type cacheEntry struct {
	times SunEventTimes
	err   error
}

// SunCalc handles caching and calculation of sun event times
type SunCalc struct {
	cache    map[string]cacheEntry // keyed by YYYY-MM-DD in the site time zone
	lock     sync.RWMutex
	observer astral.Observer
	location *time.Location
}

// NewSunCalc creates a SunCalc for a site. A nil location means UTC.
func NewSunCalc(latitude, longitude float64, location *time.Location) *SunCalc {
	if location == nil {
		location = time.UTC
	}
	return &SunCalc{
		cache:    make(map[string]cacheEntry),
		observer: astral.Observer{Latitude: latitude, Longitude: longitude},
		location: location,
	}
}

// GetSunEventTimes returns the sun event times for the calendar date of
// date in the site time zone, using the cache when available.
func (sc *SunCalc) GetSunEventTimes(date time.Time) (SunEventTimes, error) {
	local := date.In(sc.location)
	dateKey := local.Format(time.DateOnly)

	sc.lock.RLock()
	entry, exists := sc.cache[dateKey]
	sc.lock.RUnlock()

	if exists {
		return entry.times, entry.err
	}

	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, sc.location)
	times, err := sc.calculateSunEventTimes(day)

	// Failures are cached too; polar dates fail identically on every call.
	sc.lock.Lock()
	sc.cache[dateKey] = cacheEntry{times: times, err: err}
	sc.lock.Unlock()

	return times, err
}

// calculateSunEventTimes calculates the sun event times for a given date
func (sc *SunCalc) calculateSunEventTimes(date time.Time) (SunEventTimes, error) {
	civilDawn, err := astral.Dawn(sc.observer, date, astral.DepressionCivil)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate civil dawn: %w", err)
	}

	sunrise, err := astral.Sunrise(sc.observer, date)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate sunrise: %w", err)
	}

	sunset, err := astral.Sunset(sc.observer, date)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate sunset: %w", err)
	}

	civilDusk, err := astral.Dusk(sc.observer, date, astral.DepressionCivil)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate civil dusk: %w", err)
	}

	// astral returns UTC
	return SunEventTimes{
		CivilDawn: civilDawn.In(sc.location),
		Sunrise:   sunrise.In(sc.location),
		Sunset:    sunset.In(sc.location),
		CivilDusk: civilDusk.In(sc.location),
	}, nil
}

// Phase classifies a timestamp into a light phase. Dates where the sun
// events cannot be computed yield PhaseUnknown.
func (sc *SunCalc) Phase(t time.Time) LightPhase {
	times, err := sc.GetSunEventTimes(t)
	if err != nil {
		return PhaseUnknown
	}

	switch {
	case t.Before(times.CivilDawn), !t.Before(times.CivilDusk):
		return PhaseNight
	case t.Before(times.Sunrise):
		return PhaseCivilDawn
	case t.Before(times.Sunset):
		return PhaseDaylight
	default:
		return PhaseCivilDusk
	}
}

// GetSunriseTime returns the sunrise time for a given date
func (sc *SunCalc) GetSunriseTime(date time.Time) (time.Time, error) {
	sunEventTimes, err := sc.GetSunEventTimes(date)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get sun event times: %w", err)
	}
	return sunEventTimes.Sunrise, nil
}

// GetSunsetTime returns the sunset time for a given date
func (sc *SunCalc) GetSunsetTime(date time.Time) (time.Time, error) {
	sunEventTimes, err := sc.GetSunEventTimes(date)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get sun event times: %w", err)
	}
	return sunEventTimes.Sunset, nil
}
