// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
	"github.com/tphakala/wildlife-analytics/internal/analytics"
	"github.com/tphakala/wildlife-analytics/internal/logger"
)

// Default values shared with config.yaml
const (
	DefaultSQLitePath         = "wildlife.db"
	DefaultMySQLPort          = "3306"
	DefaultCatalogCacheTTL    = 10 * time.Minute
	DefaultSlowQueryThreshold = 500 * time.Millisecond
	DefaultMQTTTopic          = "wildlife"
	DefaultMQTTClientID       = "wildlife-analytics"
	DefaultNotifyRatePerMin   = 6.0
	DefaultNotifyBurst        = 3
	DefaultNotifyTimeout      = 10 * time.Second
	DefaultNotifyMinSeverity  = "high"
)

// Sets default values for the configuration.
func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("timezone", "UTC")

	v.SetDefault("logging.default_level", logger.DefaultLogLevel)
	v.SetDefault("logging.timezone", "UTC")
	v.SetDefault("logging.console.enabled", logger.DefaultConsoleEnabled)
	v.SetDefault("logging.console.level", logger.DefaultLogLevel)
	v.SetDefault("logging.file_output.enabled", logger.DefaultFileEnabled)
	v.SetDefault("logging.file_output.path", logger.DefaultLogPath)
	v.SetDefault("logging.file_output.level", logger.DefaultLogLevel)
	v.SetDefault("logging.module_levels", map[string]string{})

	v.SetDefault("database.type", DatabaseSQLite)
	v.SetDefault("database.sqlite.path", DefaultSQLitePath)
	v.SetDefault("database.mysql.username", "")
	v.SetDefault("database.mysql.password", "")
	v.SetDefault("database.mysql.database", "")
	v.SetDefault("database.mysql.host", "localhost")
	v.SetDefault("database.mysql.port", DefaultMySQLPort)
	v.SetDefault("database.slowquerythreshold", DefaultSlowQueryThreshold)

	a := analytics.DefaultConfig()
	v.SetDefault("analytics.windowdays", a.WindowDays)
	v.SetDefault("analytics.realtimehours", a.RealtimeHours)
	v.SetDefault("analytics.highactivitycount", a.HighActivityCount)
	v.SetDefault("analytics.moderateactivitycount", a.ModerateActivityCount)
	v.SetDefault("analytics.topspeciescount", a.TopSpeciesCount)
	v.SetDefault("analytics.maxconcurrentreports", a.MaxConcurrentReports)
	v.SetDefault("analytics.catalogcachettl", DefaultCatalogCacheTTL)

	v.SetDefault("analytics.anomaly.mintemporalevents", a.Anomaly.MinTemporalEvents)
	v.SetDefault("analytics.anomaly.mintemporaldays", a.Anomaly.MinTemporalDays)
	v.SetDefault("analytics.anomaly.contamination", a.Anomaly.Contamination)
	v.SetDefault("analytics.anomaly.trees", a.Anomaly.Trees)
	v.SetDefault("analytics.anomaly.samplesize", a.Anomaly.SampleSize)
	v.SetDefault("analytics.anomaly.seed", a.Anomaly.Seed)
	v.SetDefault("analytics.anomaly.minspeciesevents", a.Anomaly.MinSpeciesEvents)
	v.SetDefault("analytics.anomaly.minspeciesdetections", a.Anomaly.MinSpeciesDetections)
	v.SetDefault("analytics.anomaly.zscorethreshold", a.Anomaly.ZScoreThreshold)
	v.SetDefault("analytics.anomaly.lowconfidencefloor", a.Anomaly.LowConfidenceFloor)
	v.SetDefault("analytics.anomaly.highseverityfloor", a.Anomaly.HighSeverityFloor)

	v.SetDefault("analytics.trend.mindays", a.Trend.MinDays)
	v.SetDefault("analytics.trend.stableslope", a.Trend.StableSlope)
	v.SetDefault("analytics.trend.forecastdays", a.Trend.ForecastDays)
	v.SetDefault("analytics.trend.maxconfidence", a.Trend.MaxConfidence)
	v.SetDefault("analytics.trend.significancelevel", a.Trend.SignificanceLevel)
	v.SetDefault("analytics.trend.intervalz", a.Trend.IntervalZ)

	v.SetDefault("analytics.conservation.declineconfidence", a.Conservation.DeclineConfidence)
	v.SetDefault("analytics.conservation.declinemagnitude", a.Conservation.DeclineMagnitude)
	v.SetDefault("analytics.conservation.presencealerts", a.Conservation.PresenceAlerts)

	v.SetDefault("site.enabled", false)
	v.SetDefault("site.latitude", 0.0)
	v.SetDefault("site.longitude", 0.0)

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.clientid", DefaultMQTTClientID)
	v.SetDefault("mqtt.topic", DefaultMQTTTopic)
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.qos", 1)
	v.SetDefault("mqtt.retain", false)

	v.SetDefault("notification.enabled", false)
	v.SetDefault("notification.urls", []string{})
	v.SetDefault("notification.minseverity", DefaultNotifyMinSeverity)
	v.SetDefault("notification.ratelimit", DefaultNotifyRatePerMin)
	v.SetDefault("notification.burst", DefaultNotifyBurst)
	v.SetDefault("notification.timeout", DefaultNotifyTimeout)

	v.SetDefault("metrics.textfile", "")
	v.SetDefault("metrics.listen", "")

	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "production")
}
