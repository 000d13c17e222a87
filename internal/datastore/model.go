// model.go this code defines the data model for the detection store
package datastore

import (
	"time"

	"gorm.io/gorm"
)

// Camera is a camera trap owned by an organization
type Camera struct {
	ID             uint      `gorm:"primaryKey" yaml:"id"`
	OrganizationID uint      `gorm:"index:idx_cameras_org" yaml:"organization_id"`
	Name           string    `gorm:"size:255" yaml:"name"`
	Latitude       float64   `yaml:"latitude,omitempty"`
	Longitude      float64   `yaml:"longitude,omitempty"`
	CreatedAt      time.Time `yaml:"-"`
}

// TableName pins the table name for Camera
func (Camera) TableName() string { return "cameras" }

// Species is a species catalog entry. Nil flags fall back to the
// defaults implied by ConservationStatus.
type Species struct {
	ID                 uint   `gorm:"primaryKey" yaml:"id"`
	CommonName         string `gorm:"size:255;index:idx_species_comname" yaml:"common_name"`
	ScientificName     string `gorm:"size:255;index:idx_species_sciname" yaml:"scientific_name"`
	ConservationStatus string `gorm:"size:32" yaml:"conservation_status"`
	IsEndangered       *bool  `yaml:"is_endangered,omitempty"`
	IsProtected        *bool  `yaml:"is_protected,omitempty"`
}

// TableName pins the table name for Species
func (Species) TableName() string { return "species" }

// Detection is a single camera detection row. A nil SpeciesID is an
// unattributed detection.
type Detection struct {
	ID            uint      `gorm:"primaryKey" yaml:"-"`
	CameraID      uint      `gorm:"not null;index:idx_detections_camera_timestamp" yaml:"camera_id"`
	SpeciesID     *uint     `gorm:"index:idx_detections_species" yaml:"species_id,omitempty"`
	Confidence    float64   `yaml:"confidence"`
	Timestamp     time.Time `gorm:"not null;index:idx_detections_camera_timestamp;index:idx_detections_timestamp" yaml:"timestamp"`
	BehaviorLabel string    `gorm:"size:64" yaml:"behavior_label,omitempty"`
}

// TableName pins the table name for Detection
func (Detection) TableName() string { return "detections" }

// BeforeSave normalizes timestamps to UTC so range queries compare like with like
func (d *Detection) BeforeSave(_ *gorm.DB) error {
	d.Timestamp = d.Timestamp.UTC()
	return nil
}

// detectionRow is the joined projection returned by detection window queries
type detectionRow struct {
	SpeciesID     *uint
	SpeciesName   *string
	Confidence    float64
	Timestamp     time.Time
	CameraID      uint
	BehaviorLabel string
}
