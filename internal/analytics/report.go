package analytics

import (
	"cmp"
	"slices"
	"time"

	"github.com/tphakala/wildlife-analytics/internal/detection"
)

// Period is the analysed time window
type Period struct {
	Start     time.Time `json:"start_date" yaml:"start_date"`
	End       time.Time `json:"end_date" yaml:"end_date"`
	TotalDays int       `json:"total_days" yaml:"total_days"`
}

func newPeriod(start, end time.Time) Period {
	return Period{Start: start, End: end, TotalDays: int(end.Sub(start) / (24 * time.Hour))}
}

// Summary holds the headline counts of a report
type Summary struct {
	TotalDetections    int `json:"total_detections" yaml:"total_detections"`
	UniqueSpecies      int `json:"unique_species" yaml:"unique_species"`
	CamerasActive      int `json:"cameras_active" yaml:"cameras_active"`
	AnomaliesDetected  int `json:"anomalies_detected" yaml:"anomalies_detected"`
	ConservationAlerts int `json:"conservation_alerts" yaml:"conservation_alerts"`
}

// SpeciesBreakdown is one row of the per-species table
type SpeciesBreakdown struct {
	SpeciesID     uint      `json:"species_id,omitempty" yaml:"species_id,omitempty"`
	SpeciesName   string    `json:"species_name" yaml:"species_name"`
	Count         int       `json:"count" yaml:"count"`
	Percentage    float64   `json:"percentage" yaml:"percentage"`
	AvgConfidence float64   `json:"avg_confidence" yaml:"avg_confidence"`
	LastSeen      time.Time `json:"last_seen" yaml:"last_seen"`
}

// TimelinePoint is the activity of one calendar day
type TimelinePoint struct {
	Date       string `json:"date" yaml:"date"`
	Detections int    `json:"detections" yaml:"detections"`
	Species    int    `json:"species" yaml:"species"`
}

// CameraBreakdown is the activity of one camera
type CameraBreakdown struct {
	CameraID      uint    `json:"camera_id" yaml:"camera_id"`
	Detections    int     `json:"detections" yaml:"detections"`
	Species       int     `json:"species" yaml:"species"`
	AvgConfidence float64 `json:"avg_confidence" yaml:"avg_confidence"`
}

// Report is the comprehensive analytics report for one window
type Report struct {
	ID               string              `json:"id" yaml:"id"`
	Label            string              `json:"label,omitempty" yaml:"label,omitempty"`
	GeneratedAt      time.Time           `json:"generated_at" yaml:"generated_at"`
	Filter           detection.Filter    `json:"filter" yaml:"filter"`
	Period           Period              `json:"period" yaml:"period"`
	Summary          Summary             `json:"summary" yaml:"summary"`
	Biodiversity     BiodiversityMetrics `json:"biodiversity" yaml:"biodiversity"`
	Activity         ActivityPattern     `json:"activity_patterns" yaml:"activity_patterns"`
	Anomalies        AnomalyReport       `json:"anomalies" yaml:"anomalies"`
	Trends           TrendFindings       `json:"population_trends" yaml:"population_trends"`
	Alerts           []ConservationAlert `json:"conservation_alerts" yaml:"conservation_alerts"`
	SpeciesBreakdown []SpeciesBreakdown  `json:"species_breakdown" yaml:"species_breakdown"`
	Timeline         []TimelinePoint     `json:"detection_timeline" yaml:"detection_timeline"`
	Cameras          []CameraBreakdown   `json:"camera_breakdown" yaml:"camera_breakdown"`
}

// BuildSpeciesBreakdown counts detections per species, ordered by count
// descending and then by name.
func BuildSpeciesBreakdown(events []detection.DetectionEvent) []SpeciesBreakdown {
	type acc struct {
		id       uint
		count    int
		conf     float64
		lastSeen time.Time
	}
	bySpecies := make(map[string]*acc)
	for i := range events {
		name := events[i].DisplayName()
		a, ok := bySpecies[name]
		if !ok {
			a = &acc{}
			bySpecies[name] = a
		}
		if a.id == 0 {
			a.id = events[i].SpeciesID
		}
		a.count++
		a.conf += events[i].Confidence
		if events[i].Timestamp.After(a.lastSeen) {
			a.lastSeen = events[i].Timestamp
		}
	}

	total := float64(len(events))
	rows := make([]SpeciesBreakdown, 0, len(bySpecies))
	for name, a := range bySpecies {
		rows = append(rows, SpeciesBreakdown{
			SpeciesID:     a.id,
			SpeciesName:   name,
			Count:         a.count,
			Percentage:    round2(float64(a.count) / total * 100),
			AvgConfidence: round4(a.conf / float64(a.count)),
			LastSeen:      a.lastSeen,
		})
	}
	slices.SortFunc(rows, func(x, y SpeciesBreakdown) int {
		if c := cmp.Compare(y.Count, x.Count); c != 0 {
			return c
		}
		return cmp.Compare(x.SpeciesName, y.SpeciesName)
	})
	return rows
}

// BuildTimeline returns one point per calendar day with detections, ordered by date
func BuildTimeline(events []detection.DetectionEvent, loc *time.Location) []TimelinePoint {
	if loc == nil {
		loc = time.UTC
	}
	type acc struct {
		count   int
		species map[string]struct{}
	}
	days := make(map[string]*acc)
	for i := range events {
		key := events[i].Timestamp.In(loc).Format(time.DateOnly)
		a, ok := days[key]
		if !ok {
			a = &acc{species: make(map[string]struct{})}
			days[key] = a
		}
		a.count++
		a.species[events[i].DisplayName()] = struct{}{}
	}

	points := make([]TimelinePoint, 0, len(days))
	for date, a := range days {
		points = append(points, TimelinePoint{Date: date, Detections: a.count, Species: len(a.species)})
	}
	slices.SortFunc(points, func(x, y TimelinePoint) int { return cmp.Compare(x.Date, y.Date) })
	return points
}

// BuildCameraBreakdown summarises detections per camera, ordered by camera id
func BuildCameraBreakdown(events []detection.DetectionEvent) []CameraBreakdown {
	type acc struct {
		count   int
		conf    float64
		species map[string]struct{}
	}
	cameras := make(map[uint]*acc)
	for i := range events {
		a, ok := cameras[events[i].CameraID]
		if !ok {
			a = &acc{species: make(map[string]struct{})}
			cameras[events[i].CameraID] = a
		}
		a.count++
		a.conf += events[i].Confidence
		a.species[events[i].DisplayName()] = struct{}{}
	}

	rows := make([]CameraBreakdown, 0, len(cameras))
	for id, a := range cameras {
		rows = append(rows, CameraBreakdown{
			CameraID:      id,
			Detections:    a.count,
			Species:       len(a.species),
			AvgConfidence: round4(a.conf / float64(a.count)),
		})
	}
	slices.SortFunc(rows, func(x, y CameraBreakdown) int { return cmp.Compare(x.CameraID, y.CameraID) })
	return rows
}
