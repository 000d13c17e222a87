// Package detection defines the read-only value types exchanged between the
// detection store, the species catalog and the analytics engine.
package detection

import (
	"slices"
	"time"
)

const (
	// UnknownSpeciesName is reported for detections without a species name
	UnknownSpeciesName = "Unknown"

	// UnknownBehavior is used in behavior histograms for unlabelled detections
	UnknownBehavior = "unknown"
)

// DetectionEvent is a single camera detection. SpeciesID 0 means the
// classifier could not attribute the detection to a catalogued species.
type DetectionEvent struct {
	SpeciesID     uint      `json:"species_id,omitempty" yaml:"species_id,omitempty"`
	SpeciesName   string    `json:"species_name" yaml:"species_name"`
	Confidence    float64   `json:"confidence" yaml:"confidence"`
	Timestamp     time.Time `json:"timestamp" yaml:"timestamp"`
	CameraID      uint      `json:"camera_id" yaml:"camera_id"`
	BehaviorLabel string    `json:"behavior_label,omitempty" yaml:"behavior_label,omitempty"`
}

// HasSpecies reports whether the event references a catalogued species
func (e DetectionEvent) HasSpecies() bool {
	return e.SpeciesID != 0
}

// DisplayName returns the species name, or "Unknown" when empty
func (e DetectionEvent) DisplayName() string {
	if e.SpeciesName == "" {
		return UnknownSpeciesName
	}
	return e.SpeciesName
}

// Behavior returns the behavior label, or "unknown" when empty
func (e DetectionEvent) Behavior() string {
	if e.BehaviorLabel == "" {
		return UnknownBehavior
	}
	return e.BehaviorLabel
}

// SpeciesProfile is catalog metadata for one species
type SpeciesProfile struct {
	ID                 uint               `json:"id" yaml:"id"`
	Name               string             `json:"name" yaml:"name"`
	ScientificName     string             `json:"scientific_name,omitempty" yaml:"scientific_name,omitempty"`
	ConservationStatus ConservationStatus `json:"conservation_status" yaml:"conservation_status"`
	IsEndangered       bool               `json:"is_endangered" yaml:"is_endangered"`
	IsProtected        bool               `json:"is_protected" yaml:"is_protected"`
}

// SpeciesIDs returns the sorted distinct non-zero species IDs present in events
func SpeciesIDs(events []DetectionEvent) []uint {
	seen := make(map[uint]struct{})
	ids := make([]uint, 0)
	for i := range events {
		id := events[i].SpeciesID
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
