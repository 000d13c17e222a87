// conf/validate.go

package conf

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tphakala/wildlife-analytics/internal/analytics"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	validators := []func() error{
		func() error { return validateTimezone(settings.Timezone) },
		func() error { return validateDatabaseSettings(&settings.Database) },
		func() error { return validateAnalyticsSettings(&settings.Analytics) },
		func() error { return validateSiteSettings(&settings.Site) },
		func() error { return validateMQTTSettings(&settings.MQTT) },
		func() error { return validateNotificationSettings(&settings.Notification) },
		func() error { return validateSentrySettings(&settings.Sentry) },
	}

	for _, validate := range validators {
		if err := validate(); err != nil {
			ve.Errors = append(ve.Errors, err.Error())
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateTimezone(tz string) error {
	if tz == "" {
		return nil
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return fmt.Errorf("invalid timezone %q", tz)
	}
	return nil
}

// validateDatabaseSettings validates the detection store settings
func validateDatabaseSettings(settings *DatabaseSettings) error {
	var errs []error

	switch strings.ToLower(settings.Type) {
	case DatabaseSQLite:
		if settings.SQLite.Path == "" {
			errs = append(errs, errors.New("database.sqlite.path is required for sqlite"))
		}
	case DatabaseMySQL:
		if settings.MySQL.Host == "" {
			errs = append(errs, errors.New("database.mysql.host is required for mysql"))
		}
		if settings.MySQL.Database == "" {
			errs = append(errs, errors.New("database.mysql.database is required for mysql"))
		}
		if settings.MySQL.Username == "" {
			errs = append(errs, errors.New("database.mysql.username is required for mysql"))
		}
	default:
		errs = append(errs, fmt.Errorf("database.type must be %q or %q, got %q", DatabaseSQLite, DatabaseMySQL, settings.Type))
	}

	if settings.SlowQueryThreshold < 0 {
		errs = append(errs, errors.New("database.slowquerythreshold must not be negative"))
	}

	return errors.Join(errs...)
}

// validateAnalyticsSettings validates analyzer thresholds
func validateAnalyticsSettings(settings *AnalyticsSettings) error {
	var errs []error
	cfg := settings.Config

	if cfg.WindowDays <= 0 {
		errs = append(errs, errors.New("analytics.windowdays must be positive"))
	}
	if cfg.RealtimeHours <= 0 {
		errs = append(errs, errors.New("analytics.realtimehours must be positive"))
	}
	if cfg.ModerateActivityCount < 0 || cfg.HighActivityCount <= cfg.ModerateActivityCount {
		errs = append(errs, errors.New("analytics.highactivitycount must be greater than analytics.moderateactivitycount, which must not be negative"))
	}
	if cfg.TopSpeciesCount <= 0 {
		errs = append(errs, errors.New("analytics.topspeciescount must be positive"))
	}
	if cfg.MaxConcurrentReports <= 0 {
		errs = append(errs, errors.New("analytics.maxconcurrentreports must be positive"))
	}
	if settings.CatalogCacheTTL < 0 {
		errs = append(errs, errors.New("analytics.catalogcachettl must not be negative"))
	}

	errs = append(errs, validateAnomalyConfig(&cfg.Anomaly), validateTrendConfig(&cfg.Trend),
		validateConservationConfig(&cfg.Conservation))

	return errors.Join(errs...)
}

func validateAnomalyConfig(cfg *analytics.AnomalyConfig) error {
	var errs []error
	if cfg.Contamination <= 0 || cfg.Contamination > 0.5 {
		errs = append(errs, fmt.Errorf("analytics.anomaly.contamination must be in (0, 0.5], got %g", cfg.Contamination))
	}
	if cfg.Trees <= 0 {
		errs = append(errs, errors.New("analytics.anomaly.trees must be positive"))
	}
	if cfg.SampleSize < 2 {
		errs = append(errs, errors.New("analytics.anomaly.samplesize must be at least 2"))
	}
	if cfg.MinTemporalDays < 2 || cfg.MinTemporalEvents < 1 {
		errs = append(errs, errors.New("analytics.anomaly temporal minimums must be at least 2 days and 1 event"))
	}
	if cfg.MinSpeciesDetections < 2 || cfg.MinSpeciesEvents < 1 {
		errs = append(errs, errors.New("analytics.anomaly species minimums must be at least 2 detections and 1 event"))
	}
	if cfg.ZScoreThreshold <= 0 {
		errs = append(errs, errors.New("analytics.anomaly.zscorethreshold must be positive"))
	}
	if cfg.HighSeverityFloor > cfg.LowConfidenceFloor {
		errs = append(errs, errors.New("analytics.anomaly.highseverityfloor must not exceed lowconfidencefloor"))
	}
	return errors.Join(errs...)
}

func validateTrendConfig(cfg *analytics.TrendConfig) error {
	var errs []error
	if cfg.MinDays < 3 {
		errs = append(errs, errors.New("analytics.trend.mindays must be at least 3"))
	}
	if cfg.StableSlope < 0 {
		errs = append(errs, errors.New("analytics.trend.stableslope must not be negative"))
	}
	if cfg.ForecastDays < 0 {
		errs = append(errs, errors.New("analytics.trend.forecastdays must not be negative"))
	}
	if cfg.MaxConfidence <= 0 || cfg.MaxConfidence > 100 {
		errs = append(errs, errors.New("analytics.trend.maxconfidence must be in (0, 100]"))
	}
	if cfg.SignificanceLevel <= 0 || cfg.SignificanceLevel >= 1 {
		errs = append(errs, errors.New("analytics.trend.significancelevel must be in (0, 1)"))
	}
	if cfg.IntervalZ <= 0 {
		errs = append(errs, errors.New("analytics.trend.intervalz must be positive"))
	}
	return errors.Join(errs...)
}

func validateConservationConfig(cfg *analytics.ConservationConfig) error {
	var errs []error
	if cfg.DeclineConfidence < 0 || cfg.DeclineConfidence > 100 {
		errs = append(errs, errors.New("analytics.conservation.declineconfidence must be in [0, 100]"))
	}
	if cfg.DeclineMagnitude < 0 {
		errs = append(errs, errors.New("analytics.conservation.declinemagnitude must not be negative"))
	}
	return errors.Join(errs...)
}

// validateSiteSettings validates the site coordinates when light phases are enabled
func validateSiteSettings(settings *SiteSettings) error {
	if !settings.Enabled {
		return nil
	}
	var errs []error
	if settings.Latitude < -90 || settings.Latitude > 90 {
		errs = append(errs, fmt.Errorf("site.latitude must be between -90 and 90, got %g", settings.Latitude))
	}
	if settings.Longitude < -180 || settings.Longitude > 180 {
		errs = append(errs, fmt.Errorf("site.longitude must be between -180 and 180, got %g", settings.Longitude))
	}
	return errors.Join(errs...)
}

// validateMQTTSettings validates the MQTT-specific settings
func validateMQTTSettings(settings *MQTTSettings) error {
	if !settings.Enabled {
		return nil
	}
	var errs []error
	if settings.Broker == "" {
		errs = append(errs, errors.New("mqtt.broker is required when MQTT is enabled"))
	} else if u, err := url.Parse(settings.Broker); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("mqtt.broker must be a URL like tcp://host:1883, got %q", settings.Broker))
	}
	if settings.Topic == "" {
		errs = append(errs, errors.New("mqtt.topic is required when MQTT is enabled"))
	}
	if settings.QoS > 2 {
		errs = append(errs, fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", settings.QoS))
	}
	return errors.Join(errs...)
}

// validateNotificationSettings validates the push notification settings
func validateNotificationSettings(settings *NotificationSettings) error {
	if !settings.Enabled {
		return nil
	}
	var errs []error
	if len(settings.URLs) == 0 {
		errs = append(errs, errors.New("notification.urls must contain at least one URL when notifications are enabled"))
	}
	if analytics.Severity(strings.ToLower(settings.MinSeverity)).Rank() == 0 {
		errs = append(errs, fmt.Errorf("notification.minseverity must be warning, medium, high or critical, got %q", settings.MinSeverity))
	}
	if settings.RateLimit <= 0 {
		errs = append(errs, errors.New("notification.ratelimit must be positive"))
	}
	if settings.Burst < 1 {
		errs = append(errs, errors.New("notification.burst must be at least 1"))
	}
	return errors.Join(errs...)
}

// validateSentrySettings validates the error telemetry settings
func validateSentrySettings(settings *SentrySettings) error {
	if settings.Enabled && settings.DSN == "" {
		return errors.New("sentry.dsn is required when Sentry is enabled")
	}
	return nil
}
