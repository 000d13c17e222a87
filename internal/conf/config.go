// Package conf provides configuration management for the wildlife analytics engine.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/tphakala/wildlife-analytics/internal/analytics"
	"github.com/tphakala/wildlife-analytics/internal/logger"
)

//go:embed config.yaml
var configFiles embed.FS

// EnvPrefix is prepended to every environment variable override,
// e.g. WILDLIFE_DATABASE_TYPE for database.type.
const EnvPrefix = "WILDLIFE"

// Database backends
const (
	DatabaseSQLite = "sqlite"
	DatabaseMySQL  = "mysql"
)

// SQLiteSettings contains settings for the SQLite detection store.
type SQLiteSettings struct {
	Path string // path to sqlite database file
}

// MySQLSettings contains settings for the MySQL detection store.
type MySQLSettings struct {
	Username string // MySQL database username
	Password string // MySQL database user password
	Database string // MySQL database name
	Host     string // MySQL database host
	Port     string // MySQL database port
}

// DatabaseSettings selects and configures the detection store.
type DatabaseSettings struct {
	Type               string         // sqlite or mysql
	SQLite             SQLiteSettings // SQLite settings
	MySQL              MySQLSettings  // MySQL settings
	SlowQueryThreshold time.Duration  // queries slower than this are logged at warn level, 0 disables
}

// AnalyticsSettings wraps the engine configuration with store side settings.
type AnalyticsSettings struct {
	analytics.Config `mapstructure:",squash"`

	CatalogCacheTTL time.Duration // species catalog cache lifetime, 0 disables the cache
}

// SiteSettings locates the monitored site for solar light phase analysis.
type SiteSettings struct {
	Enabled   bool    // true to add light phase breakdowns to activity analysis
	Latitude  float64 // site latitude in decimal degrees
	Longitude float64 // site longitude in decimal degrees
}

// MQTTSettings contains settings for publishing alerts and insights over MQTT.
type MQTTSettings struct {
	Enabled  bool   // true to enable MQTT
	Broker   string // MQTT (tcp://host:port)
	ClientID string // MQTT client id
	Topic    string // MQTT topic prefix
	Username string // MQTT username
	Password string // MQTT password
	QoS      byte   // publish quality of service, 0-2
	Retain   bool   // true to publish retained messages
}

// NotificationSettings contains settings for conservation alert push notifications.
type NotificationSettings struct {
	Enabled     bool     // true to send alerts through shoutrrr
	URLs        []string // shoutrrr service URLs
	MinSeverity string   // lowest alert severity that is pushed
	RateLimit   float64  // notifications per minute
	Burst       int      // maximum burst of notifications
	Timeout     time.Duration
}

// MetricsSettings contains Prometheus metrics export settings.
type MetricsSettings struct {
	Textfile string // write metrics to this file after each command, empty disables
	Listen   string // serve /metrics on this address in monitor mode, empty disables
}

// SentrySettings contains error telemetry settings.
type SentrySettings struct {
	Enabled     bool   // true to report errors to Sentry
	DSN         string // Sentry DSN
	Environment string // Sentry environment tag
}

// Settings contains all configuration options for the application.
type Settings struct {
	Debug    bool   // true to enable debug mode
	Timezone string // IANA time zone used for day and hour bucketing

	// Runtime values, not stored in config file
	Version   string `yaml:"-" mapstructure:"-"`
	BuildDate string `yaml:"-" mapstructure:"-"`

	Logging      logger.LoggingConfig // logging configuration
	Database     DatabaseSettings     // detection store configuration
	Analytics    AnalyticsSettings    // analyzer thresholds
	Site         SiteSettings         // site location
	MQTT         MQTTSettings         // MQTT publishing
	Notification NotificationSettings // push notifications
	Metrics      MetricsSettings      // Prometheus export
	Sentry       SentrySettings       // error telemetry
}

// Location returns the configured time zone.
func (s *Settings) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// NewViper returns a viper instance with defaults and environment
// overrides registered. Callers may bind command line flags to it before Load.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaultConfig(v)
	return v
}

// Load reads the configuration file, environment variables and bound flags
// into a validated Settings. An explicit configFile must exist; otherwise the
// default config paths are searched and built-in defaults are used when no
// config.yaml is found.
func Load(v *viper.Viper, configFile string) (*Settings, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		for _, path := range GetDefaultConfigPaths() {
			v.AddConfigPath(path)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		GetLogger().Debug("no config file found, using defaults")
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	return settings, nil
}

// WriteDefaultConfig writes the embedded default config.yaml to path.
// Existing files are never overwritten.
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}

	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		return fmt.Errorf("error reading embedded config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}
	return nil
}
