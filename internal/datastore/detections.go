package datastore

import (
	"context"
	"fmt"
	"time"

	"github.com/tphakala/wildlife-analytics/internal/detection"
	"github.com/tphakala/wildlife-analytics/internal/logger"
	"github.com/tphakala/wildlife-analytics/internal/observability/metrics"
)

// saveBatchSize bounds the rows inserted per statement
const saveBatchSize = 500

// FetchDetections returns detections with start <= timestamp <= end that pass
// filter, ordered by timestamp. Species names come from the catalog; rows
// without a catalogued species have SpeciesID 0 and an empty name.
func (ds *DataStore) FetchDetections(ctx context.Context, filter detection.Filter, start, end time.Time) ([]detection.DetectionEvent, error) {
	if ds.DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	started := time.Now()
	db := ds.DB.WithContext(ctx)

	query := db.Table("detections").
		Select("detections.species_id, species.common_name AS species_name, detections.confidence, " +
			"detections.timestamp, detections.camera_id, detections.behavior_label").
		Joins("LEFT JOIN species ON species.id = detections.species_id").
		Where("detections.timestamp >= ? AND detections.timestamp <= ?", start.UTC(), end.UTC())

	if filter.OrganizationID != 0 {
		cameras := db.Model(&Camera{}).Select("id").Where("organization_id = ?", filter.OrganizationID)
		query = query.Where("detections.camera_id IN (?)", cameras)
	}
	if len(filter.CameraIDs) > 0 {
		query = query.Where("detections.camera_id IN ?", filter.CameraIDs)
	}

	var rows []detectionRow
	err := query.Order("detections.timestamp ASC, detections.id ASC").Scan(&rows).Error
	ds.observe(metrics.OpFetchDetections, started, len(rows), err)
	if err != nil {
		return nil, dbError(err, metrics.OpFetchDetections, time.Since(started),
			"organization_id", filter.OrganizationID,
			"camera_count", len(filter.CameraIDs))
	}

	events := make([]detection.DetectionEvent, 0, len(rows))
	for i := range rows {
		events = append(events, rows[i].toEvent())
	}
	return events, nil
}

// toEvent converts a joined row to a detection event
func (r *detectionRow) toEvent() detection.DetectionEvent {
	event := detection.DetectionEvent{
		Confidence:    r.Confidence,
		Timestamp:     r.Timestamp.UTC(),
		CameraID:      r.CameraID,
		BehaviorLabel: r.BehaviorLabel,
	}
	if r.SpeciesID != nil {
		event.SpeciesID = *r.SpeciesID
	}
	if r.SpeciesName != nil {
		event.SpeciesName = *r.SpeciesName
	}
	return event
}

// FetchSpecies returns the catalog profiles for ids, ordered by id.
// Unknown ids are omitted.
func (ds *DataStore) FetchSpecies(ctx context.Context, ids []uint) ([]detection.SpeciesProfile, error) {
	if len(ids) == 0 {
		return []detection.SpeciesProfile{}, nil
	}
	if ds.DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	started := time.Now()
	var rows []Species
	err := ds.DB.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&rows).Error
	ds.observe(metrics.OpFetchSpecies, started, len(rows), err)
	if err != nil {
		return nil, dbError(err, metrics.OpFetchSpecies, time.Since(started), "species_count", len(ids))
	}

	profiles := make([]detection.SpeciesProfile, 0, len(rows))
	for i := range rows {
		profiles = append(profiles, rows[i].Profile())
	}
	return profiles, nil
}

// Profile converts a catalog row to a species profile, applying the
// status defaults for unset flags
func (s *Species) Profile() detection.SpeciesProfile {
	status := detection.ParseConservationStatus(s.ConservationStatus)
	profile := detection.SpeciesProfile{
		ID:                 s.ID,
		Name:               s.CommonName,
		ScientificName:     s.ScientificName,
		ConservationStatus: status,
		IsEndangered:       status.DefaultEndangered(),
		IsProtected:        status.DefaultProtected(),
	}
	if s.IsEndangered != nil {
		profile.IsEndangered = *s.IsEndangered
	}
	if s.IsProtected != nil {
		profile.IsProtected = *s.IsProtected
	}
	return profile
}

// SaveCamera inserts or updates a camera by primary key
func (ds *DataStore) SaveCamera(ctx context.Context, camera *Camera) error {
	started := time.Now()
	err := ds.DB.WithContext(ctx).Save(camera).Error
	ds.observe(metrics.OpSaveCatalog, started, -1, err)
	if err != nil {
		return dbError(err, metrics.OpSaveCatalog, time.Since(started), "camera_id", camera.ID)
	}
	return nil
}

// SaveSpecies inserts or updates a species by primary key
func (ds *DataStore) SaveSpecies(ctx context.Context, species *Species) error {
	started := time.Now()
	err := ds.DB.WithContext(ctx).Save(species).Error
	ds.observe(metrics.OpSaveCatalog, started, -1, err)
	if err != nil {
		return dbError(err, metrics.OpSaveCatalog, time.Since(started), "species_id", species.ID)
	}
	return nil
}

// SaveDetections inserts detections in batches inside one transaction.
// Confidence must lie in [0, 1]; the whole batch is rejected otherwise.
func (ds *DataStore) SaveDetections(ctx context.Context, detections []Detection) error {
	if len(detections) == 0 {
		return nil
	}
	for i := range detections {
		if c := detections[i].Confidence; c < 0 || c > 1 {
			return validationError(fmt.Sprintf("detection %d has confidence %g outside [0, 1]", i, c), "confidence", c)
		}
	}

	started := time.Now()
	err := ds.DB.WithContext(ctx).CreateInBatches(&detections, saveBatchSize).Error
	ds.observe(metrics.OpSaveDetections, started, len(detections), err)
	if err != nil {
		return dbError(err, metrics.OpSaveDetections, time.Since(started), "count", len(detections))
	}

	ds.log.Debug("detections saved", logger.Int("count", len(detections)))
	return nil
}
