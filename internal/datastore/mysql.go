package datastore

import (
	"fmt"

	"github.com/tphakala/wildlife-analytics/internal/conf"
	"github.com/tphakala/wildlife-analytics/internal/logger"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// MySQLStore implements Interface for MySQL
type MySQLStore struct {
	DataStore
	Settings *conf.Settings
}

func validateMySQLConfig(settings *conf.Settings) error {
	if settings.Database.MySQL.Host == "" || settings.Database.MySQL.Database == "" {
		return validationError("mysql host and database are required", "database.mysql", settings.Database.MySQL.Host)
	}
	return nil
}

// mysqlDSN builds the MySQL connection string. Timestamps are read back as UTC.
func mysqlDSN(cfg *conf.MySQLSettings) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
}

// Open sets up the MySQL database connection and migrates the schema
func (store *MySQLStore) Open() error {
	if err := validateMySQLConfig(store.Settings); err != nil {
		return err
	}

	cfg := &store.Settings.Database.MySQL
	db, err := gorm.Open(mysql.Open(mysqlDSN(cfg)), gormConfig(store.Settings.Database.SlowQueryThreshold))
	if err != nil {
		store.log.Error("Failed to open MySQL database",
			logger.String("host", cfg.Host),
			logger.String("port", cfg.Port),
			logger.String("database", cfg.Database),
			logger.Error(err))
		return fmt.Errorf("failed to open MySQL database: %w", err)
	}

	store.DB = db
	store.log.Info("MySQL database opened",
		logger.String("host", cfg.Host),
		logger.String("database", cfg.Database))
	return store.performAutoMigration(conf.DatabaseMySQL)
}
