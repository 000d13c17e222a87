// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tphakala/wildlife-analytics/internal/conf"
	"github.com/tphakala/wildlife-analytics/internal/detection"
	"github.com/tphakala/wildlife-analytics/internal/logger"
	"github.com/tphakala/wildlife-analytics/internal/observability/metrics"
	"gorm.io/gorm"
)

// Interface abstracts the underlying database implementation and defines the interface for database operations.
type Interface interface {
	Open() error
	Close() error
	SetMetrics(recorder metrics.Recorder)

	// analytics collaborators
	FetchDetections(ctx context.Context, filter detection.Filter, start, end time.Time) ([]detection.DetectionEvent, error)
	FetchSpecies(ctx context.Context, ids []uint) ([]detection.SpeciesProfile, error)

	// seeding and ingestion
	SaveCamera(ctx context.Context, camera *Camera) error
	SaveSpecies(ctx context.Context, species *Species) error
	SaveDetections(ctx context.Context, detections []Detection) error
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB      *gorm.DB // GORM database instance
	metrics metrics.Recorder
	log     logger.Logger
}

// New creates a new store for the backend selected in settings. The
// returned store must be opened before use.
func New(settings *conf.Settings) (Interface, error) {
	base := DataStore{metrics: metrics.NewNoOpRecorder(), log: getLog()}

	switch strings.ToLower(settings.Database.Type) {
	case conf.DatabaseSQLite:
		return &SQLiteStore{DataStore: base, Settings: settings}, nil
	case conf.DatabaseMySQL:
		return &MySQLStore{DataStore: base, Settings: settings}, nil
	default:
		return nil, validationError(fmt.Sprintf("unsupported database type %q", settings.Database.Type),
			"database.type", settings.Database.Type)
	}
}

// SetMetrics sets the metrics recorder for the datastore
func (ds *DataStore) SetMetrics(recorder metrics.Recorder) {
	if recorder == nil {
		recorder = metrics.NewNoOpRecorder()
	}
	ds.metrics = recorder
}

// gormConfig returns the GORM configuration routed through the central logger
func gormConfig(slowThreshold time.Duration) *gorm.Config {
	return &gorm.Config{
		Logger: logger.NewGormLoggerAdapter(getLog(), slowThreshold),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// performAutoMigration automates database migrations
func (ds *DataStore) performAutoMigration(dbType string) error {
	started := time.Now()
	err := ds.DB.AutoMigrate(&Camera{}, &Species{}, &Detection{})
	ds.observe(metrics.OpMigrate, started, -1, err)
	if err != nil {
		return dbError(fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err),
			metrics.OpMigrate, time.Since(started), "db_type", dbType)
	}

	ds.log.Debug("database schema migrated", logger.String("db_type", dbType))
	return nil
}

// Close closes the underlying SQL database connections
func (ds *DataStore) Close() error {
	if ds.DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	sqlDB, err := ds.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to retrieve generic DB object: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		ds.log.Error("failed to close database", logger.Error(err))
		return err
	}

	ds.log.Debug("database connection closed")
	return nil
}
