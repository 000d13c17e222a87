package analytics

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/tphakala/wildlife-analytics/internal/analytics/isolation"
	"github.com/tphakala/wildlife-analytics/internal/detection"
)

// AnalysisStatus tells whether an analyzer had enough data to run
type AnalysisStatus string

const (
	StatusOK               AnalysisStatus = "ok"
	StatusInsufficientData AnalysisStatus = "insufficient_data"
)

// AnomalyType identifies the detector that produced an anomaly
type AnomalyType string

const (
	AnomalyTemporal          AnomalyType = "temporal"
	AnomalySpeciesConfidence AnomalyType = "species_confidence"
)

// Severity is shared by anomalies and conservation alerts
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityWarning  Severity = "warning"
)

// Rank orders severities from warning (1) to critical (4); unknown values rank 0
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether s is as severe as floor
func (s Severity) AtLeast(floor Severity) bool {
	return s.Rank() >= floor.Rank()
}

// DayStat aggregates the detections of one calendar day
type DayStat struct {
	Date           string  `json:"date" yaml:"date"`
	Count          int     `json:"detection_count" yaml:"detection_count"`
	MeanConfidence float64 `json:"avg_confidence" yaml:"avg_confidence"`
	ModalHour      int     `json:"peak_hour" yaml:"peak_hour"`
}

// Anomaly is a flagged day (temporal) or a flagged detection (species confidence)
type Anomaly struct {
	Type        AnomalyType `json:"type" yaml:"type"`
	Severity    Severity    `json:"severity" yaml:"severity"`
	Description string      `json:"description" yaml:"description"`

	// Temporal anomalies
	Date     string   `json:"date,omitempty" yaml:"date,omitempty"`
	Score    float64  `json:"score,omitempty" yaml:"score,omitempty"`
	Metadata *DayStat `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// Species confidence anomalies
	SpeciesID             uint      `json:"species_id,omitempty" yaml:"species_id,omitempty"`
	SpeciesName           string    `json:"species_name,omitempty" yaml:"species_name,omitempty"`
	DetectedAt            time.Time `json:"detected_at,omitzero" yaml:"detected_at,omitempty"`
	DetectionConfidence   float64   `json:"detection_confidence,omitempty" yaml:"detection_confidence,omitempty"`
	SpeciesMeanConfidence float64   `json:"species_avg_confidence,omitempty" yaml:"species_avg_confidence,omitempty"`
	ZScore                float64   `json:"z_score,omitempty" yaml:"z_score,omitempty"`
}

// AnomalyFindings is the result of one detector. Too little data is
// reported as StatusInsufficientData with no anomalies, never as an error.
type AnomalyFindings struct {
	Status    AnalysisStatus `json:"status" yaml:"status"`
	Anomalies []Anomaly      `json:"anomalies" yaml:"anomalies"`
}

func insufficientAnomalies() AnomalyFindings {
	return AnomalyFindings{Status: StatusInsufficientData, Anomalies: []Anomaly{}}
}

// AnomalyReport bundles both detectors' findings
type AnomalyReport struct {
	Temporal AnomalyFindings `json:"temporal" yaml:"temporal"`
	Species  AnomalyFindings `json:"species" yaml:"species"`
}

// Total returns the number of anomalies across both detectors
func (r AnomalyReport) Total() int {
	return len(r.Temporal.Anomalies) + len(r.Species.Anomalies)
}

// AnomalyDetector flags unusual days and unusual detections
type AnomalyDetector struct {
	cfg AnomalyConfig
	loc *time.Location
}

// NewAnomalyDetector creates a detector. Calendar days are taken in loc (nil means UTC).
func NewAnomalyDetector(cfg AnomalyConfig, loc *time.Location) *AnomalyDetector {
	if loc == nil {
		loc = time.UTC
	}
	return &AnomalyDetector{cfg: cfg, loc: loc}
}

// Detect runs both detectors over the same events
func (d *AnomalyDetector) Detect(events []detection.DetectionEvent) AnomalyReport {
	return AnomalyReport{
		Temporal: d.DetectTemporal(events),
		Species:  d.DetectSpecies(events),
	}
}

// AggregateDays builds one DayStat per calendar day, ordered by date.
// The modal hour is the smallest hour among equally frequent hours.
func AggregateDays(events []detection.DetectionEvent, loc *time.Location) []DayStat {
	type acc struct {
		count int
		conf  float64
		hours [24]int
	}
	days := make(map[string]*acc)
	for i := range events {
		ts := events[i].Timestamp.In(loc)
		key := ts.Format(time.DateOnly)
		a, ok := days[key]
		if !ok {
			a = &acc{}
			days[key] = a
		}
		a.count++
		a.conf += events[i].Confidence
		a.hours[ts.Hour()]++
	}

	stats := make([]DayStat, 0, len(days))
	for date, a := range days {
		modal := 0
		for h := 1; h < len(a.hours); h++ {
			if a.hours[h] > a.hours[modal] {
				modal = h
			}
		}
		stats = append(stats, DayStat{
			Date:           date,
			Count:          a.count,
			MeanConfidence: a.conf / float64(a.count),
			ModalHour:      modal,
		})
	}
	slices.SortFunc(stats, func(a, b DayStat) int { return cmp.Compare(a.Date, b.Date) })
	return stats
}

// standardize scales each column to zero mean and unit population variance.
// Constant columns become all zeros.
func standardize(rows [][]float64) [][]float64 {
	if len(rows) == 0 {
		return rows
	}
	dims := len(rows[0])
	out := make([][]float64, len(rows))
	for i := range out {
		out[i] = make([]float64, dims)
	}

	col := make([]float64, len(rows))
	for j := range dims {
		for i := range rows {
			col[i] = rows[i][j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		for i := range rows {
			if std > 0 {
				out[i][j] = (rows[i][j] - mean) / std
			}
		}
	}
	return out
}

// DetectTemporal flags days whose (count, mean confidence, modal hour)
// combination is isolated quickly by a seeded isolation forest.
func (d *AnomalyDetector) DetectTemporal(events []detection.DetectionEvent) AnomalyFindings {
	if len(events) < d.cfg.MinTemporalEvents {
		return insufficientAnomalies()
	}

	days := AggregateDays(events, d.loc)
	if len(days) < d.cfg.MinTemporalDays || len(days) < 2 {
		return insufficientAnomalies()
	}

	features := make([][]float64, len(days))
	for i, day := range days {
		features[i] = []float64{float64(day.Count), day.MeanConfidence, float64(day.ModalHour)}
	}

	result, err := isolation.Detect(standardize(features), d.cfg.forestConfig())
	if err != nil {
		// Only reachable with an invalid contamination setting, which conf validation rejects
		return insufficientAnomalies()
	}

	findings := AnomalyFindings{Status: StatusOK, Anomalies: []Anomaly{}}
	for i, flagged := range result.Outliers {
		if !flagged {
			continue
		}
		day := days[i]
		findings.Anomalies = append(findings.Anomalies, Anomaly{
			Type:        AnomalyTemporal,
			Severity:    SeverityMedium,
			Description: fmt.Sprintf("Unusual detection pattern: %d detections with %.2f avg confidence", day.Count, day.MeanConfidence),
			Date:        day.Date,
			Score:       round4(result.Scores[i]),
			Metadata:    &day,
		})
	}
	return findings
}

// DetectSpecies flags detections whose confidence is both a statistical
// outlier within their species and absolutely low.
func (d *AnomalyDetector) DetectSpecies(events []detection.DetectionEvent) AnomalyFindings {
	if len(events) < d.cfg.MinSpeciesEvents {
		return insufficientAnomalies()
	}

	bySpecies := make(map[string][]int)
	for i := range events {
		name := events[i].DisplayName()
		bySpecies[name] = append(bySpecies[name], i)
	}

	names := make([]string, 0, len(bySpecies))
	for name := range bySpecies {
		names = append(names, name)
	}
	slices.Sort(names)

	findings := AnomalyFindings{Status: StatusOK, Anomalies: []Anomaly{}}
	for _, name := range names {
		idx := bySpecies[name]
		if len(idx) < d.cfg.MinSpeciesDetections {
			continue
		}

		confidences := make([]float64, len(idx))
		for k, i := range idx {
			confidences[k] = events[i].Confidence
		}
		mean, std := stat.PopMeanStdDev(confidences, nil)
		if std == 0 || math.IsNaN(std) {
			continue
		}

		for k, i := range idx {
			z := (confidences[k] - mean) / std
			if math.Abs(z) <= d.cfg.ZScoreThreshold || confidences[k] >= d.cfg.LowConfidenceFloor {
				continue
			}
			severity := SeverityMedium
			if confidences[k] < d.cfg.HighSeverityFloor {
				severity = SeverityHigh
			}
			findings.Anomalies = append(findings.Anomalies, Anomaly{
				Type:                  AnomalySpeciesConfidence,
				Severity:              severity,
				Description:           fmt.Sprintf("Unusually low confidence detection for %s", name),
				SpeciesID:             events[i].SpeciesID,
				SpeciesName:           name,
				DetectedAt:            events[i].Timestamp,
				DetectionConfidence:   confidences[k],
				SpeciesMeanConfidence: round4(mean),
				ZScore:                round4(z),
			})
		}
	}
	return findings
}
