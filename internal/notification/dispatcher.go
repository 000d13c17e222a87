package notification

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/tphakala/wildlife-analytics/internal/analytics"
	"github.com/tphakala/wildlife-analytics/internal/conf"
	"github.com/tphakala/wildlife-analytics/internal/errors"
	"github.com/tphakala/wildlife-analytics/internal/logger"
	"github.com/tphakala/wildlife-analytics/internal/observability/metrics"
)

// DispatcherConfig configures alert filtering and delivery pacing.
type DispatcherConfig struct {
	MinSeverity analytics.Severity
	RatePerMin  float64
	Burst       int
	Timeout     time.Duration
	Breaker     CircuitBreakerConfig
}

// DispatcherConfigFromSettings maps the notification section of the settings.
func DispatcherConfigFromSettings(s *conf.NotificationSettings) DispatcherConfig {
	return DispatcherConfig{
		MinSeverity: analytics.Severity(s.MinSeverity),
		RatePerMin:  s.RateLimit,
		Burst:       s.Burst,
		Timeout:     s.Timeout,
		Breaker:     DefaultCircuitBreakerConfig(),
	}
}

type enhancedProvider struct {
	prov    Provider
	breaker *CircuitBreaker
}

// Dispatcher pushes conservation alerts at or above a minimum severity to
// every enabled provider. A shared token bucket limits how many notifications
// leave per minute; alerts over the limit are dropped, not queued.
type Dispatcher struct {
	cfg       DispatcherConfig
	providers []enhancedProvider
	limiter   *rate.Limiter
	metrics   *metrics.NotificationMetrics
	log       logger.Logger
}

// DispatchResult summarizes one DispatchAlerts call.
type DispatchResult struct {
	Sent        int // notifications delivered by at least one provider
	Filtered    int // alerts below the minimum severity
	RateLimited int // alerts dropped by the rate limiter
	Failed      int // notifications no provider could deliver

	// Undelivered holds the IDs of qualifying alerts that were rate limited,
	// failed on every provider or skipped after cancellation.
	Undelivered []string
}

// NewDispatcher validates every enabled provider and builds a dispatcher.
// metrics may be nil.
func NewDispatcher(cfg DispatcherConfig, m *metrics.NotificationMetrics, providers ...Provider) (*Dispatcher, error) {
	if cfg.MinSeverity.Rank() == 0 {
		return nil, errors.Newf("unknown minimum severity %q", cfg.MinSeverity).
			Component("notification").
			Category(errors.CategoryValidation).
			Build()
	}
	if cfg.RatePerMin <= 0 || cfg.Burst < 1 {
		return nil, errors.Newf("invalid rate limit %.2f/min with burst %d", cfg.RatePerMin, cfg.Burst).
			Component("notification").
			Category(errors.CategoryValidation).
			Build()
	}

	d := &Dispatcher{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerMin/60), cfg.Burst),
		metrics: m,
		log:     getLog(),
	}
	for _, p := range providers {
		if !p.IsEnabled() {
			continue
		}
		if err := p.ValidateConfig(); err != nil {
			return nil, err
		}
		d.providers = append(d.providers, enhancedProvider{
			prov:    p,
			breaker: NewCircuitBreaker(cfg.Breaker, m, p.GetName()),
		})
	}
	return d, nil
}

// ProviderCount returns the number of enabled providers.
func (d *Dispatcher) ProviderCount() int {
	return len(d.providers)
}

// DispatchAlerts delivers the qualifying alerts. Delivery failures are
// logged, counted and returned joined; they never stop the remaining alerts.
func (d *Dispatcher) DispatchAlerts(ctx context.Context, alerts []analytics.ConservationAlert) (DispatchResult, error) {
	var (
		res  DispatchResult
		errs []error
	)
	for i := range alerts {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(alerts); j++ {
				if alerts[j].Severity.AtLeast(d.cfg.MinSeverity) {
					res.Undelivered = append(res.Undelivered, alerts[j].ID)
				}
			}
			errs = append(errs, err)
			break
		}
		alert := &alerts[i]
		if !alert.Severity.AtLeast(d.cfg.MinSeverity) {
			res.Filtered++
			continue
		}
		if !d.limiter.Allow() {
			res.RateLimited++
			res.Undelivered = append(res.Undelivered, alert.ID)
			d.log.Warn("notification rate limit exceeded, dropping alert",
				logger.String("alert_id", alert.ID),
				logger.String("severity", string(alert.Severity)))
			for _, ep := range d.providers {
				d.recordDelivery(ep.prov.GetName(), metrics.StatusRateLimited, 0)
			}
			continue
		}

		if d.metrics != nil {
			d.metrics.IncrementDispatchTotal()
		}
		if err := d.send(ctx, FromAlert(alert)); err != nil {
			res.Failed++
			res.Undelivered = append(res.Undelivered, alert.ID)
			errs = append(errs, err)
			continue
		}
		res.Sent++
	}

	if len(errs) > 0 {
		return res, errors.Join(errs...)
	}
	return res, nil
}

// send delivers n to all providers and succeeds when at least one accepts it.
func (d *Dispatcher) send(ctx context.Context, n *Notification) error {
	if len(d.providers) == 0 {
		return nil
	}

	var errs []error
	delivered := false
	for _, ep := range d.providers {
		name := ep.prov.GetName()
		start := time.Now()
		err := ep.breaker.Call(ctx, func(ctx context.Context) error {
			sendCtx := ctx
			if d.cfg.Timeout > 0 {
				var cancel context.CancelFunc
				sendCtx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
				defer cancel()
			}
			return ep.prov.Send(sendCtx, n)
		})
		if err != nil {
			d.recordDelivery(name, metrics.StatusError, time.Since(start))
			d.log.Warn("notification delivery failed",
				logger.String("provider", name),
				logger.String("alert_id", n.AlertID),
				logger.Error(err))
			errs = append(errs, err)
			continue
		}
		d.recordDelivery(name, metrics.StatusSuccess, time.Since(start))
		d.log.Debug("notification delivered",
			logger.String("provider", name),
			logger.String("alert_id", n.AlertID))
		delivered = true
	}
	if delivered {
		return nil
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) recordDelivery(provider, status string, duration time.Duration) {
	if d.metrics != nil {
		d.metrics.RecordDelivery(provider, status, duration)
	}
}
