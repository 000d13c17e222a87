// Package app wires configuration, storage, the analytics engine and the
// delivery channels into a runnable application.
package app

import (
	"github.com/tphakala/wildlife-analytics/internal/analytics"
	"github.com/tphakala/wildlife-analytics/internal/conf"
	"github.com/tphakala/wildlife-analytics/internal/datastore"
	"github.com/tphakala/wildlife-analytics/internal/errors"
	"github.com/tphakala/wildlife-analytics/internal/logger"
	"github.com/tphakala/wildlife-analytics/internal/observability"
	"github.com/tphakala/wildlife-analytics/internal/suncalc"
	"github.com/tphakala/wildlife-analytics/internal/telemetry"
)

// The datastore is the engine's detection source and species catalog.
var (
	_ analytics.DetectionSource = datastore.Interface(nil)
	_ analytics.SpeciesCatalog  = datastore.Interface(nil)
	_ analytics.SpeciesCatalog  = (*datastore.CachedCatalog)(nil)
)

// App holds the long-lived components of one run.
type App struct {
	Settings *conf.Settings
	Metrics  *observability.Metrics
	Store    datastore.Interface
	Catalog  *datastore.CachedCatalog
	Engine   *analytics.Engine

	central *logger.CentralLogger
	log     logger.Logger

	delivery delivery
}

// New builds the application from validated settings. The returned App
// owns the database connection and must be closed.
func New(settings *conf.Settings) (*App, error) {
	if settings.Debug {
		settings.Logging.DefaultLevel = "debug"
		if settings.Logging.Console != nil {
			settings.Logging.Console.Level = "debug"
		}
	}

	central, err := logger.NewCentralLogger(&settings.Logging)
	if err != nil {
		return nil, errors.New(err).
			Component("app").
			Category(errors.CategoryConfiguration).
			Build()
	}
	logger.SetGlobal(central)

	a := &App{
		Settings: settings,
		central:  central,
		log:      central.Module("app"),
	}

	if err := telemetry.InitSentry(settings); err != nil {
		a.log.Warn("sentry initialization failed, continuing without error reporting", logger.Error(err))
	}

	if a.Metrics, err = observability.NewMetrics(); err != nil {
		_ = a.Close()
		return nil, err
	}

	store, err := datastore.New(settings)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if err := store.Open(); err != nil {
		_ = a.Close()
		return nil, err
	}
	store.SetMetrics(a.Metrics.Datastore)
	a.Store = store

	a.Catalog = datastore.NewCachedCatalog(store, settings.Analytics.CatalogCacheTTL)
	a.Catalog.SetRecorder(a.Metrics.Datastore)

	a.Engine, err = newEngine(settings, store, a.Catalog, a.Metrics.Analytics)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.log.Info("application initialized",
		logger.String("database", settings.Database.Type),
		logger.Bool("mqtt", settings.MQTT.Enabled),
		logger.Bool("notifications", settings.Notification.Enabled),
		logger.Bool("site", settings.Site.Enabled))
	return a, nil
}

// newEngine applies the analytics settings to a new engine.
func newEngine(settings *conf.Settings, source analytics.DetectionSource, catalog analytics.SpeciesCatalog,
	recorder analytics.MetricsRecorder,
) (*analytics.Engine, error) {
	loc, err := settings.Location()
	if err != nil {
		return nil, err
	}

	opts := []analytics.Option{
		analytics.WithConfig(settings.Analytics.Config),
		analytics.WithLocation(loc),
		analytics.WithLogger(logger.Global().Module("analytics")),
	}
	if recorder != nil {
		opts = append(opts, analytics.WithMetrics(recorder))
	}
	if settings.Site.Enabled {
		opts = append(opts, analytics.WithPhaseClassifier(
			suncalc.NewSunCalc(settings.Site.Latitude, settings.Site.Longitude, loc)))
	}
	return analytics.NewEngine(source, catalog, opts...), nil
}

// Close releases the database, writes the metrics textfile when configured,
// flushes error reporting and closes the log sinks.
func (a *App) Close() error {
	var errs []error

	a.delivery.close()

	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.Metrics != nil && a.Settings.Metrics.Textfile != "" {
		if err := a.Metrics.WriteToTextfile(a.Settings.Metrics.Textfile); err != nil {
			errs = append(errs, err)
		} else {
			a.log.Debug("metrics textfile written", logger.String("path", a.Settings.Metrics.Textfile))
		}
	}

	telemetry.Flush()

	if a.central != nil {
		_ = a.central.Flush()
		if err := a.central.Close(); err != nil {
			errs = append(errs, err)
		}
		logger.SetGlobal(nil)
	}
	return errors.Join(errs...)
}
