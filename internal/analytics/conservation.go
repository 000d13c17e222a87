package analytics

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/tphakala/wildlife-analytics/internal/detection"
)

// AlertType classifies a conservation alert
type AlertType string

const (
	AlertPopulationDecline AlertType = "population-decline"
	AlertBehavioralAnomaly AlertType = "behavioral-anomaly"
	AlertProtectedPresence AlertType = "protected-presence"
)

var (
	populationDeclineActions = []string{
		"Increase monitoring frequency",
		"Review habitat conditions",
		"Consider intervention measures",
		"Notify conservation authorities",
	}
	behavioralAnomalyActions = []string{
		"Investigate environmental changes",
		"Check camera functionality",
		"Review seasonal patterns",
		"Consult with wildlife experts",
	}
)

// ConservationAlert is an actionable finding about a catalogued species
type ConservationAlert struct {
	ID                 string                       `json:"id" yaml:"id"`
	SpeciesID          uint                         `json:"species_id" yaml:"species_id"`
	SpeciesName        string                       `json:"species_name" yaml:"species_name"`
	ConservationStatus detection.ConservationStatus `json:"conservation_status" yaml:"conservation_status"`
	Type               AlertType                    `json:"alert_type" yaml:"alert_type"`
	Severity           Severity                     `json:"severity" yaml:"severity"`
	Description        string                       `json:"description" yaml:"description"`
	RecommendedActions []string                     `json:"recommended_actions" yaml:"recommended_actions"`
	CreatedAt          time.Time                    `json:"created_at" yaml:"created_at"`
	DetectionCount     int                          `json:"detection_count,omitempty" yaml:"detection_count,omitempty"`
	Trend              *TrendResult                 `json:"trend_data,omitempty" yaml:"trend_data,omitempty"`
}

// ConservationAlertSystem turns trends and catalog metadata into alerts
type ConservationAlertSystem struct {
	cfg   ConservationConfig
	now   func() time.Time
	newID func() string
}

// NewConservationAlertSystem creates an alert system. now stamps alert
// creation times; nil means time.Now.
func NewConservationAlertSystem(cfg ConservationConfig, now func() time.Time) *ConservationAlertSystem {
	if now == nil {
		now = time.Now
	}
	return &ConservationAlertSystem{
		cfg:   cfg,
		now:   now,
		newID: func() string { return uuid.NewString() },
	}
}

// Evaluate applies the decline rules to every trend. A species yields at
// most one alert: the population decline rule takes precedence over the
// protected species decline rule. Trends without a catalogued species are skipped.
func (s *ConservationAlertSystem) Evaluate(trends []TrendResult, catalog map[uint]detection.SpeciesProfile) []ConservationAlert {
	alerts := make([]ConservationAlert, 0)
	for i := range trends {
		trend := trends[i]
		if trend.SpeciesID == 0 {
			continue
		}
		species, ok := catalog[trend.SpeciesID]
		if !ok || trend.Direction != TrendDecreasing {
			continue
		}

		switch {
		case species.IsEndangered && trend.ConfidenceLevel > s.cfg.DeclineConfidence:
			alerts = append(alerts, s.newAlert(species, AlertPopulationDecline, SeverityCritical,
				fmt.Sprintf("Declining population trend detected for endangered species %s", species.Name),
				populationDeclineActions, &trend))
		case species.IsProtected && trend.Magnitude > s.cfg.DeclineMagnitude:
			alerts = append(alerts, s.newAlert(species, AlertBehavioralAnomaly, SeverityHigh,
				fmt.Sprintf("Significant decline in %s detections", species.Name),
				behavioralAnomalyActions, &trend))
		}
	}
	return alerts
}

// PresenceAlerts reports every protected species detected in the window.
// Critically endangered species are critical, the rest warnings. Output is
// ordered by species id.
func (s *ConservationAlertSystem) PresenceAlerts(counts map[uint]int, catalog map[uint]detection.SpeciesProfile) []ConservationAlert {
	alerts := make([]ConservationAlert, 0)
	if !s.cfg.PresenceAlerts {
		return alerts
	}

	ids := make([]uint, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		species, ok := catalog[id]
		if !ok || !species.IsProtected || counts[id] == 0 {
			continue
		}
		severity := SeverityWarning
		if species.ConservationStatus == detection.StatusCriticallyEndangered {
			severity = SeverityCritical
		}
		alert := s.newAlert(species, AlertProtectedPresence, severity,
			fmt.Sprintf("%s (%s) detected %d times", species.Name, species.ConservationStatus, counts[id]),
			nil, nil)
		alert.DetectionCount = counts[id]
		alerts = append(alerts, alert)
	}
	return alerts
}

func (s *ConservationAlertSystem) newAlert(species detection.SpeciesProfile, alertType AlertType, severity Severity,
	description string, actions []string, trend *TrendResult,
) ConservationAlert {
	return ConservationAlert{
		ID:                 s.newID(),
		SpeciesID:          species.ID,
		SpeciesName:        species.Name,
		ConservationStatus: species.ConservationStatus,
		Type:               alertType,
		Severity:           severity,
		Description:        description,
		RecommendedActions: append([]string{}, actions...),
		CreatedAt:          s.now(),
		Trend:              trend,
	}
}
