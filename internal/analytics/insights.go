package analytics

import (
	"context"
	"time"

	"github.com/tphakala/wildlife-analytics/internal/detection"
	"github.com/tphakala/wildlife-analytics/internal/logger"
)

// ActivityLevel is a coarse rating of recent detection volume
type ActivityLevel string

const (
	ActivityLevelHigh     ActivityLevel = "high"
	ActivityLevelModerate ActivityLevel = "moderate"
	ActivityLevelLow      ActivityLevel = "low"
)

// Insights is a lightweight summary of the most recent detections
type Insights struct {
	GeneratedAt     time.Time      `json:"generated_at" yaml:"generated_at"`
	Period          Period         `json:"period" yaml:"period"`
	TotalDetections int            `json:"recent_detections" yaml:"recent_detections"`
	ActiveSpecies   int            `json:"active_species" yaml:"active_species"`
	CamerasActive   int            `json:"cameras_active" yaml:"cameras_active"`
	ShannonIndex    float64        `json:"current_biodiversity" yaml:"current_biodiversity"`
	TopSpecies      []SpeciesCount `json:"top_species" yaml:"top_species"`
	ActivityLevel   ActivityLevel  `json:"activity_level" yaml:"activity_level"`
}

// ClassifyActivityLevel rates a detection count: above high is high, above
// moderate is moderate, anything else is low.
func ClassifyActivityLevel(count, high, moderate int) ActivityLevel {
	switch {
	case count > high:
		return ActivityLevelHigh
	case count > moderate:
		return ActivityLevelModerate
	default:
		return ActivityLevelLow
	}
}

// RealTimeInsights summarises the detections of the last RealtimeHours
func (e *Engine) RealTimeInsights(ctx context.Context, filter detection.Filter) (*Insights, error) {
	started := time.Now()
	insights, err := e.realtime(ctx, filter)
	e.recordReport(KindRealtime, started, err)
	if err != nil {
		return nil, err
	}
	e.log.Debug("real-time insights generated",
		logger.Int("detections", insights.TotalDetections),
		logger.String("activity_level", string(insights.ActivityLevel)))
	return insights, nil
}

func (e *Engine) realtime(ctx context.Context, filter detection.Filter) (*Insights, error) {
	hours := e.cfg.RealtimeHours
	if hours <= 0 {
		hours = DefaultRealtimeHours
	}
	end := e.now()
	start := end.Add(-time.Duration(hours) * time.Hour)

	events, err := e.fetchDetections(ctx, filter, start, end)
	if err != nil {
		return nil, err
	}

	top := e.cfg.TopSpeciesCount
	if top <= 0 {
		top = DefaultTopSpeciesCount
	}
	counts := CountBySpecies(events)
	cameras := make(map[uint]struct{})
	for i := range events {
		cameras[events[i].CameraID] = struct{}{}
	}

	return &Insights{
		GeneratedAt:     end,
		Period:          newPeriod(start, end),
		TotalDetections: len(events),
		ActiveSpecies:   len(counts),
		CamerasActive:   len(cameras),
		ShannonIndex:    ShannonIndex(counts),
		TopSpecies:      DominantSpecies(counts, top),
		ActivityLevel:   ClassifyActivityLevel(len(events), e.cfg.HighActivityCount, e.cfg.ModerateActivityCount),
	}, nil
}
