// Package telemetry provides privacy-compliant error tracking through Sentry.
package telemetry

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/tphakala/wildlife-analytics/internal/conf"
	"github.com/tphakala/wildlife-analytics/internal/errors"
	"github.com/tphakala/wildlife-analytics/internal/logger"
)

// FlushTimeout bounds how long Flush waits for queued events at shutdown.
const FlushTimeout = 2 * time.Second

var sentryInitialized atomic.Bool

// InitSentry initializes the Sentry SDK and installs it as the error
// reporter. It is a no-op unless Sentry is explicitly enabled.
func InitSentry(settings *conf.Settings) error {
	return initSentry(settings, nil)
}

// initSentry allows tests to replace the HTTP transport.
func initSentry(settings *conf.Settings, transport sentry.Transport) error {
	log := logger.Global().Module("telemetry")
	if !settings.Sentry.Enabled {
		log.Debug("sentry telemetry is disabled")
		return nil
	}

	environment := settings.Sentry.Environment
	if environment == "" {
		environment = "production"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              settings.Sentry.DSN,
		SampleRate:       1.0,
		AttachStacktrace: false,
		Environment:      environment,
		ServerName:       "", // prevents hostname leakage
		Release:          fmt.Sprintf("wildlife-analytics@%s", settings.Version),
		Transport:        transport,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return applyPrivacyFilters(event)
		},
	})
	if err != nil {
		return errors.New(err).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Build()
	}

	errors.SetTelemetryReporter(errors.NewSentryReporter(true))
	sentryInitialized.Store(true)

	log.Info("sentry telemetry initialized",
		logger.String("environment", environment),
		logger.String("release", settings.Version))
	return nil
}

// Flush waits for queued events and detaches the error reporter.
func Flush() {
	if !sentryInitialized.CompareAndSwap(true, false) {
		return
	}
	errors.SetTelemetryReporter(nil)
	sentry.Flush(FlushTimeout)
}

// applyPrivacyFilters strips user, host and runtime details from an event.
func applyPrivacyFilters(event *sentry.Event) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""

	if event.Contexts != nil {
		delete(event.Contexts, "device")
		delete(event.Contexts, "os")
		delete(event.Contexts, "runtime")
	}

	for k := range event.Extra {
		if k != "error_type" && k != "component" {
			delete(event.Extra, k)
		}
	}

	if event.Tags != nil {
		delete(event.Tags, "server_name")
		delete(event.Tags, "hostname")
	}

	return event
}
