package analytics

import (
	"github.com/tphakala/wildlife-analytics/internal/analytics/isolation"
)

// Default analysis windows and thresholds
const (
	DefaultWindowDays            = 30
	DefaultRealtimeHours         = 24
	DefaultHighActivityCount     = 10
	DefaultModerateActivityCount = 3
	DefaultTopSpeciesCount       = 5
	DefaultMaxConcurrentReports  = 4
)

// AnomalyConfig holds the anomaly detector thresholds
type AnomalyConfig struct {
	MinTemporalEvents    int     `yaml:"mintemporalevents"`
	MinTemporalDays      int     `yaml:"mintemporaldays"`
	Contamination        float64 `yaml:"contamination"`
	Trees                int     `yaml:"trees"`
	SampleSize           int     `yaml:"samplesize"`
	Seed                 uint64  `yaml:"seed"`
	MinSpeciesEvents     int     `yaml:"minspeciesevents"`
	MinSpeciesDetections int     `yaml:"minspeciesdetections"`
	ZScoreThreshold      float64 `yaml:"zscorethreshold"`
	LowConfidenceFloor   float64 `yaml:"lowconfidencefloor"`
	HighSeverityFloor    float64 `yaml:"highseverityfloor"`
}

// DefaultAnomalyConfig returns the stock anomaly thresholds
func DefaultAnomalyConfig() AnomalyConfig {
	return AnomalyConfig{
		MinTemporalEvents:    10,
		MinTemporalDays:      5,
		Contamination:        isolation.DefaultContamination,
		Trees:                isolation.DefaultTrees,
		SampleSize:           isolation.DefaultSampleSize,
		Seed:                 isolation.DefaultSeed,
		MinSpeciesEvents:     20,
		MinSpeciesDetections: 5,
		ZScoreThreshold:      2.0,
		LowConfidenceFloor:   0.3,
		HighSeverityFloor:    0.2,
	}
}

// forestConfig converts the anomaly settings to an isolation forest config
func (c AnomalyConfig) forestConfig() isolation.Config {
	return isolation.Config{
		Trees:         c.Trees,
		SampleSize:    c.SampleSize,
		Contamination: c.Contamination,
		Seed:          c.Seed,
	}
}

// TrendConfig holds the population trend thresholds
type TrendConfig struct {
	MinDays           int     `yaml:"mindays"`
	StableSlope       float64 `yaml:"stableslope"`
	ForecastDays      int     `yaml:"forecastdays"`
	MaxConfidence     float64 `yaml:"maxconfidence"`
	SignificanceLevel float64 `yaml:"significancelevel"`
	IntervalZ         float64 `yaml:"intervalz"`
}

// DefaultTrendConfig returns the stock trend thresholds
func DefaultTrendConfig() TrendConfig {
	return TrendConfig{
		MinDays:           10,
		StableSlope:       0.01,
		ForecastDays:      30,
		MaxConfidence:     90,
		SignificanceLevel: 0.05,
		IntervalZ:         1.96,
	}
}

// ConservationConfig holds the conservation rule thresholds
type ConservationConfig struct {
	DeclineConfidence float64 `yaml:"declineconfidence"`
	DeclineMagnitude  float64 `yaml:"declinemagnitude"`
	PresenceAlerts    bool    `yaml:"presencealerts"`
}

// DefaultConservationConfig returns the stock conservation thresholds
func DefaultConservationConfig() ConservationConfig {
	return ConservationConfig{
		DeclineConfidence: 60,
		DeclineMagnitude:  30,
	}
}

// Config bundles every analyzer setting used by the Engine
type Config struct {
	WindowDays            int                `yaml:"windowdays"`
	RealtimeHours         int                `yaml:"realtimehours"`
	HighActivityCount     int                `yaml:"highactivitycount"`
	ModerateActivityCount int                `yaml:"moderateactivitycount"`
	TopSpeciesCount       int                `yaml:"topspeciescount"`
	MaxConcurrentReports  int                `yaml:"maxconcurrentreports"`
	Anomaly               AnomalyConfig      `yaml:"anomaly"`
	Trend                 TrendConfig        `yaml:"trend"`
	Conservation          ConservationConfig `yaml:"conservation"`
}

// DefaultConfig returns the stock engine configuration
func DefaultConfig() Config {
	return Config{
		WindowDays:            DefaultWindowDays,
		RealtimeHours:         DefaultRealtimeHours,
		HighActivityCount:     DefaultHighActivityCount,
		ModerateActivityCount: DefaultModerateActivityCount,
		TopSpeciesCount:       DefaultTopSpeciesCount,
		MaxConcurrentReports:  DefaultMaxConcurrentReports,
		Anomaly:               DefaultAnomalyConfig(),
		Trend:                 DefaultTrendConfig(),
		Conservation:          DefaultConservationConfig(),
	}
}
