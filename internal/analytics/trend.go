package analytics

import (
	"cmp"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/tphakala/wildlife-analytics/internal/detection"
)

// TrendDirection is the sign of a fitted population trend
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// ConfidenceInterval bounds a forecast value
type ConfidenceInterval struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// ForecastPoint is one projected daily count
type ForecastPoint struct {
	Date           string             `json:"date" yaml:"date"`
	PredictedCount float64            `json:"predicted_count" yaml:"predicted_count"`
	Interval       ConfidenceInterval `json:"confidence_interval" yaml:"confidence_interval"`
}

// DateRange is an inclusive range of calendar dates (YYYY-MM-DD)
type DateRange struct {
	Start string `json:"start_date" yaml:"start_date"`
	End   string `json:"end_date" yaml:"end_date"`
}

// TrendStatistics are the regression diagnostics behind a trend
type TrendStatistics struct {
	Slope          float64 `json:"slope" yaml:"slope"`
	Intercept      float64 `json:"intercept" yaml:"intercept"`
	RSquared       float64 `json:"r_squared" yaml:"r_squared"`
	PValue         float64 `json:"p_value" yaml:"p_value"`
	StdErr         float64 `json:"std_err" yaml:"std_err"`
	MeanDetections float64 `json:"mean_detections" yaml:"mean_detections"`
	StdDetections  float64 `json:"std_detections" yaml:"std_detections"`
	ObservedDays   int     `json:"observed_days" yaml:"observed_days"`
}

// TrendResult is the fitted trend and forecast for one species
type TrendResult struct {
	SpeciesID       uint            `json:"species_id,omitempty" yaml:"species_id,omitempty"`
	SpeciesName     string          `json:"species_name" yaml:"species_name"`
	Direction       TrendDirection  `json:"trend_direction" yaml:"trend_direction"`
	Magnitude       float64         `json:"trend_percentage" yaml:"trend_percentage"`
	ConfidenceLevel float64         `json:"confidence_level" yaml:"confidence_level"`
	Forecast        []ForecastPoint `json:"forecast_data" yaml:"forecast_data"`
	Period          DateRange       `json:"analysis_period" yaml:"analysis_period"`
	Statistics      TrendStatistics `json:"statistical_measures" yaml:"statistical_measures"`
}

// TrendFindings is the result of the trend analyzer
type TrendFindings struct {
	Status AnalysisStatus `json:"status" yaml:"status"`
	Trends []TrendResult  `json:"trends" yaml:"trends"`
}

// PopulationTrendAnalyzer fits per-species daily count trends
type PopulationTrendAnalyzer struct {
	cfg TrendConfig
	loc *time.Location
}

// NewPopulationTrendAnalyzer creates an analyzer. Calendar days are taken in loc (nil means UTC).
func NewPopulationTrendAnalyzer(cfg TrendConfig, loc *time.Location) *PopulationTrendAnalyzer {
	if loc == nil {
		loc = time.UTC
	}
	return &PopulationTrendAnalyzer{cfg: cfg, loc: loc}
}

// speciesSeries accumulates daily counts for one species
type speciesSeries struct {
	id     uint
	counts map[string]int
}

// Analyze fits a trend for every species observed on at least MinDays
// distinct days. Results are ordered by species name.
func (a *PopulationTrendAnalyzer) Analyze(events []detection.DetectionEvent) TrendFindings {
	series := make(map[string]*speciesSeries)
	for i := range events {
		name := events[i].DisplayName()
		s, ok := series[name]
		if !ok {
			s = &speciesSeries{counts: make(map[string]int)}
			series[name] = s
		}
		// First catalogued id seen for the name wins
		if s.id == 0 {
			s.id = events[i].SpeciesID
		}
		s.counts[events[i].Timestamp.In(a.loc).Format(time.DateOnly)]++
	}

	findings := TrendFindings{Status: StatusInsufficientData, Trends: []TrendResult{}}
	for name, s := range series {
		if len(s.counts) < a.cfg.MinDays {
			continue
		}
		trend, ok := a.fit(name, s)
		if ok {
			findings.Trends = append(findings.Trends, trend)
		}
	}
	if len(findings.Trends) > 0 {
		findings.Status = StatusOK
	}

	slices.SortFunc(findings.Trends, func(x, y TrendResult) int { return cmp.Compare(x.SpeciesName, y.SpeciesName) })
	return findings
}

// fit regresses daily counts on the index of observed days
func (a *PopulationTrendAnalyzer) fit(name string, s *speciesSeries) (TrendResult, bool) {
	dates := make([]string, 0, len(s.counts))
	for date := range s.counts {
		dates = append(dates, date)
	}
	slices.Sort(dates)

	n := len(dates)
	x := make([]float64, n)
	y := make([]float64, n)
	for i, date := range dates {
		x[i] = float64(i)
		y[i] = float64(s.counts[date])
	}

	lastDay, err := time.ParseInLocation(time.DateOnly, dates[n-1], a.loc)
	if err != nil {
		return TrendResult{}, false
	}

	reg := LinearRegression(x, y)
	mean, std := stat.PopMeanStdDev(y, nil)

	direction, magnitude := a.classify(reg.Slope, n, mean)

	confidence := math.Min(reg.RSquared*100, a.cfg.MaxConfidence)
	if reg.PValue > a.cfg.SignificanceLevel {
		confidence *= 0.5
	}

	return TrendResult{
		SpeciesID:       s.id,
		SpeciesName:     name,
		Direction:       direction,
		Magnitude:       round2(magnitude),
		ConfidenceLevel: round2(confidence),
		Forecast:        a.forecast(reg, n, lastDay),
		Period:          DateRange{Start: dates[0], End: dates[n-1]},
		Statistics: TrendStatistics{
			Slope:          round4(reg.Slope),
			Intercept:      round4(reg.Intercept),
			RSquared:       round4(reg.RSquared),
			PValue:         round4(reg.PValue),
			StdErr:         round4(reg.StdErr),
			MeanDetections: round4(mean),
			StdDetections:  round4(std),
			ObservedDays:   n,
		},
	}, true
}

// classify maps a slope to a direction and percentage magnitude
func (a *PopulationTrendAnalyzer) classify(slope float64, n int, mean float64) (TrendDirection, float64) {
	if math.Abs(slope) < a.cfg.StableSlope || mean == 0 {
		return TrendStable, 0
	}
	magnitude := math.Abs(slope * float64(n) / mean * 100)
	if slope > 0 {
		return TrendIncreasing, magnitude
	}
	return TrendDecreasing, magnitude
}

// forecast projects the fitted line ForecastDays past the last observed day
func (a *PopulationTrendAnalyzer) forecast(reg Regression, n int, lastDay time.Time) []ForecastPoint {
	points := make([]ForecastPoint, 0, a.cfg.ForecastDays)
	margin := a.cfg.IntervalZ * reg.StdErr
	for i := range a.cfg.ForecastDays {
		futureX := float64(n + i)
		predicted := math.Max(0, reg.Slope*futureX+reg.Intercept)
		points = append(points, ForecastPoint{
			Date:           lastDay.AddDate(0, 0, i+1).Format(time.DateOnly),
			PredictedCount: round2(predicted),
			Interval: ConfidenceInterval{
				Lower: round2(math.Max(0, predicted-margin)),
				Upper: round2(predicted + margin),
			},
		})
	}
	return points
}
