package datastore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tphakala/wildlife-analytics/internal/conf"
	"github.com/tphakala/wildlife-analytics/internal/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLiteStore implements Interface for SQLite
type SQLiteStore struct {
	DataStore
	Settings *conf.Settings
}

func validateSQLiteConfig(settings *conf.Settings) error {
	if settings.Database.SQLite.Path == "" {
		return validationError("sqlite path must not be empty", "database.sqlite.path", "")
	}
	return nil
}

// Open sets up the SQLite database connection and migrates the schema
func (store *SQLiteStore) Open() error {
	if err := validateSQLiteConfig(store.Settings); err != nil {
		return err
	}

	path := store.Settings.Database.SQLite.Path
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create SQLite directory: %w", err)
		}
	}

	// busy timeout avoids SQLITE_BUSY when the pool opens a second connection
	dsn := path + "?_busy_timeout=5000&_foreign_keys=on"

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(store.Settings.Database.SlowQueryThreshold))
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}

	store.DB = db
	store.log.Info("SQLite database opened", logger.String("path", path))
	return store.performAutoMigration(conf.DatabaseSQLite)
}
