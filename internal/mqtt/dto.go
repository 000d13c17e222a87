// Package mqtt provides MQTT client functionality and data transfer objects.
package mqtt

import (
	"time"

	"github.com/tphakala/wildlife-analytics/internal/analytics"
)

// AlertMessage is the payload published for a conservation alert.
//
// Field names are part of the published contract that dashboards and
// home automation rules subscribe to.
type AlertMessage struct {
	ID                 string    `json:"id"`
	SpeciesID          uint      `json:"speciesId"`
	SpeciesName        string    `json:"speciesName"`
	ConservationStatus string    `json:"conservationStatus"`
	AlertType          string    `json:"alertType"`
	Severity           string    `json:"severity"`
	Description        string    `json:"description"`
	RecommendedActions []string  `json:"recommendedActions"`
	CreatedAt          time.Time `json:"createdAt"`
	DetectionCount     int       `json:"detectionCount,omitempty"`

	// Present only for population decline alerts
	TrendDirection  string  `json:"trendDirection,omitempty"`
	TrendPercentage float64 `json:"trendPercentage,omitempty"`
}

// InsightsMessage is the payload published for a real-time insights summary.
type InsightsMessage struct {
	GeneratedAt      time.Time        `json:"generatedAt"`
	PeriodStart      time.Time        `json:"periodStart"`
	PeriodEnd        time.Time        `json:"periodEnd"`
	RecentDetections int              `json:"recentDetections"`
	ActiveSpecies    int              `json:"activeSpecies"`
	CamerasActive    int              `json:"camerasActive"`
	Biodiversity     float64          `json:"biodiversity"`
	ActivityLevel    string           `json:"activityLevel"`
	TopSpecies       []SpeciesMessage `json:"topSpecies"`
}

// SpeciesMessage is one entry of the top species list.
type SpeciesMessage struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// NewAlertMessage converts a conservation alert into its published form.
func NewAlertMessage(a *analytics.ConservationAlert) AlertMessage {
	msg := AlertMessage{
		ID:                 a.ID,
		SpeciesID:          a.SpeciesID,
		SpeciesName:        a.SpeciesName,
		ConservationStatus: string(a.ConservationStatus),
		AlertType:          string(a.Type),
		Severity:           string(a.Severity),
		Description:        a.Description,
		RecommendedActions: a.RecommendedActions,
		CreatedAt:          a.CreatedAt.UTC(),
		DetectionCount:     a.DetectionCount,
	}
	if msg.RecommendedActions == nil {
		msg.RecommendedActions = []string{}
	}
	if a.Trend != nil {
		msg.TrendDirection = string(a.Trend.Direction)
		msg.TrendPercentage = a.Trend.Magnitude
	}
	return msg
}

// NewInsightsMessage converts real-time insights into their published form.
func NewInsightsMessage(in *analytics.Insights) InsightsMessage {
	top := make([]SpeciesMessage, 0, len(in.TopSpecies))
	for _, sc := range in.TopSpecies {
		top = append(top, SpeciesMessage{Name: sc.Name, Count: sc.Count})
	}
	return InsightsMessage{
		GeneratedAt:      in.GeneratedAt.UTC(),
		PeriodStart:      in.Period.Start.UTC(),
		PeriodEnd:        in.Period.End.UTC(),
		RecentDetections: in.TotalDetections,
		ActiveSpecies:    in.ActiveSpecies,
		CamerasActive:    in.CamerasActive,
		Biodiversity:     in.ShannonIndex,
		ActivityLevel:    string(in.ActivityLevel),
		TopSpecies:       top,
	}
}
