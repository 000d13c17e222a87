package analytics

import (
	"cmp"
	"slices"
	"time"

	"github.com/tphakala/wildlife-analytics/internal/detection"
	"github.com/tphakala/wildlife-analytics/internal/suncalc"
)

// ActivityType is the activity archetype derived from the hourly distribution
type ActivityType string

const (
	ActivityDiurnal     ActivityType = "diurnal"
	ActivityNocturnal   ActivityType = "nocturnal"
	ActivityCrepuscular ActivityType = "crepuscular"
	ActivityCathemeral  ActivityType = "cathemeral"
	ActivityUnknown     ActivityType = "unknown"
)

// Classification thresholds on period shares
const (
	dominantPeriodShare  = 0.6
	twilightPeriodShare  = 0.5
	defaultPeakHourCount = 3
	unknownPeakDay       = "Unknown"
)

// HourCount is the detection count for one hour of day
type HourCount struct {
	Hour  int `json:"hour" yaml:"hour"`
	Count int `json:"count" yaml:"count"`
}

// PeriodShares holds the share (0..1) of detections per fixed day period.
// Dawn is 05-07, day 08-17, dusk 18-20 and night 21-04.
type PeriodShares struct {
	Dawn  float64 `json:"dawn" yaml:"dawn"`
	Day   float64 `json:"day" yaml:"day"`
	Dusk  float64 `json:"dusk" yaml:"dusk"`
	Night float64 `json:"night" yaml:"night"`
}

// MonthlyActivity is one entry of the seasonal breakdown
type MonthlyActivity struct {
	Month         int     `json:"month" yaml:"month"`
	MonthName     string  `json:"month_name" yaml:"month_name"`
	Detections    int     `json:"detections" yaml:"detections"`
	AvgConfidence float64 `json:"avg_confidence" yaml:"avg_confidence"`
}

// WeekdayCount is the detection count for one day of week
type WeekdayCount struct {
	Day        string `json:"day" yaml:"day"`
	Detections int    `json:"detections" yaml:"detections"`
}

// LightPhaseCount is the number and share of detections within one solar light phase
type LightPhaseCount struct {
	Phase      suncalc.LightPhase `json:"phase" yaml:"phase"`
	Detections int                `json:"detections" yaml:"detections"`
	Share      float64            `json:"share" yaml:"share"`
}

// ActivityPattern describes when detections happen
type ActivityPattern struct {
	TotalDetections    int               `json:"total_detections" yaml:"total_detections"`
	HourlyDistribution [24]int           `json:"hourly_distribution" yaml:"hourly_distribution"`
	PeakHours          []HourCount       `json:"peak_hours" yaml:"peak_hours"`
	ActivityType       ActivityType      `json:"activity_type" yaml:"activity_type"`
	PeriodShares       PeriodShares      `json:"period_shares" yaml:"period_shares"`
	Seasonal           []MonthlyActivity `json:"seasonal_patterns" yaml:"seasonal_patterns"`
	Behaviors          map[string]int    `json:"behavior_patterns" yaml:"behavior_patterns"`
	Weekly             []WeekdayCount    `json:"weekly_pattern" yaml:"weekly_pattern"`
	PeakDay            string            `json:"peak_day" yaml:"peak_day"`
	LightPhases        []LightPhaseCount `json:"light_phases,omitempty" yaml:"light_phases,omitempty"`
}

// PhaseClassifier maps a timestamp to a solar light phase
type PhaseClassifier interface {
	Phase(t time.Time) suncalc.LightPhase
}

// periodOfHour returns a pointer to the PeriodShares bucket for an hour
func periodOfHour(shares *PeriodShares, hour int) *float64 {
	switch {
	case hour >= 5 && hour <= 7:
		return &shares.Dawn
	case hour >= 8 && hour <= 17:
		return &shares.Day
	case hour >= 18 && hour <= 20:
		return &shares.Dusk
	default:
		return &shares.Night
	}
}

// ComputePeriodShares returns the share of detections per day period.
// Negative buckets are treated as zero. An empty histogram yields all zeros.
func ComputePeriodShares(hist [24]int) PeriodShares {
	var counts PeriodShares
	total := 0
	for hour, c := range hist {
		if c <= 0 {
			continue
		}
		*periodOfHour(&counts, hour) += float64(c)
		total += c
	}
	if total == 0 {
		return PeriodShares{}
	}

	t := float64(total)
	return PeriodShares{
		Dawn:  counts.Dawn / t,
		Day:   counts.Day / t,
		Dusk:  counts.Dusk / t,
		Night: counts.Night / t,
	}
}

// ClassifyActivity maps a 24 bucket histogram to an activity archetype.
// Rules are evaluated in order: day share > 0.6 is diurnal, night share > 0.6
// nocturnal, dawn+dusk share > 0.5 crepuscular, otherwise cathemeral.
// An empty histogram is unknown.
func ClassifyActivity(hist [24]int) ActivityType {
	total := 0
	for _, c := range hist {
		total += max(c, 0)
	}
	if total == 0 {
		return ActivityUnknown
	}

	shares := ComputePeriodShares(hist)
	switch {
	case shares.Day > dominantPeriodShare:
		return ActivityDiurnal
	case shares.Night > dominantPeriodShare:
		return ActivityNocturnal
	case shares.Dawn+shares.Dusk > twilightPeriodShare:
		return ActivityCrepuscular
	default:
		return ActivityCathemeral
	}
}

// PeakHours returns up to n hours with the most detections, earlier hour
// first on ties. Hours without detections are never reported.
func PeakHours(hist [24]int, n int) []HourCount {
	hours := make([]HourCount, 0, len(hist))
	for hour, c := range hist {
		if c > 0 {
			hours = append(hours, HourCount{Hour: hour, Count: c})
		}
	}
	slices.SortStableFunc(hours, func(a, b HourCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	if len(hours) > n {
		hours = hours[:n]
	}
	return hours
}

// HourlyHistogram buckets events by hour of day in loc
func HourlyHistogram(events []detection.DetectionEvent, loc *time.Location) [24]int {
	var hist [24]int
	for i := range events {
		hist[events[i].Timestamp.In(loc).Hour()]++
	}
	return hist
}

// AnalyzeActivity builds the activity pattern of events. Hours, months and
// weekdays are taken in loc. phases may be nil to skip the light phase breakdown.
func AnalyzeActivity(events []detection.DetectionEvent, loc *time.Location, phases PhaseClassifier) ActivityPattern {
	if loc == nil {
		loc = time.UTC
	}

	hist := HourlyHistogram(events, loc)
	pattern := ActivityPattern{
		TotalDetections:    len(events),
		HourlyDistribution: hist,
		PeakHours:          PeakHours(hist, defaultPeakHourCount),
		ActivityType:       ClassifyActivity(hist),
		PeriodShares:       ComputePeriodShares(hist),
		Seasonal:           seasonalBreakdown(events, loc),
		Behaviors:          make(map[string]int),
	}

	var weekly [7]int
	for i := range events {
		pattern.Behaviors[events[i].Behavior()]++
		weekly[events[i].Timestamp.In(loc).Weekday()]++
	}

	pattern.Weekly = make([]WeekdayCount, 0, len(weekly))
	pattern.PeakDay = unknownPeakDay
	best := 0
	for day, c := range weekly {
		pattern.Weekly = append(pattern.Weekly, WeekdayCount{Day: time.Weekday(day).String(), Detections: c})
		if c > best {
			best = c
			pattern.PeakDay = time.Weekday(day).String()
		}
	}

	if phases != nil {
		pattern.LightPhases = lightPhaseBreakdown(events, phases)
	}

	return pattern
}

// seasonalBreakdown groups events by calendar month regardless of year
func seasonalBreakdown(events []detection.DetectionEvent, loc *time.Location) []MonthlyActivity {
	type acc struct {
		count int
		conf  float64
	}
	var months [13]acc
	for i := range events {
		m := events[i].Timestamp.In(loc).Month()
		months[m].count++
		months[m].conf += events[i].Confidence
	}

	seasonal := make([]MonthlyActivity, 0)
	for m := time.January; m <= time.December; m++ {
		a := months[m]
		if a.count == 0 {
			continue
		}
		seasonal = append(seasonal, MonthlyActivity{
			Month:         int(m),
			MonthName:     m.String(),
			Detections:    a.count,
			AvgConfidence: round2(a.conf / float64(a.count)),
		})
	}
	return seasonal
}

// lightPhaseBreakdown counts events per solar light phase
func lightPhaseBreakdown(events []detection.DetectionEvent, phases PhaseClassifier) []LightPhaseCount {
	counts := make(map[suncalc.LightPhase]int, len(suncalc.Phases))
	for i := range events {
		counts[phases.Phase(events[i].Timestamp)]++
	}

	breakdown := make([]LightPhaseCount, 0, len(suncalc.Phases))
	for _, phase := range suncalc.Phases {
		c := counts[phase]
		share := 0.0
		if len(events) > 0 {
			share = round2(float64(c) / float64(len(events)))
		}
		breakdown = append(breakdown, LightPhaseCount{Phase: phase, Detections: c, Share: share})
	}
	return breakdown
}
