package app

import (
	"context"
	"sync"

	"github.com/tphakala/wildlife-analytics/internal/analytics"
	"github.com/tphakala/wildlife-analytics/internal/errors"
	"github.com/tphakala/wildlife-analytics/internal/logger"
	"github.com/tphakala/wildlife-analytics/internal/mqtt"
	"github.com/tphakala/wildlife-analytics/internal/notification"
)

// delivery holds the alert channels. They are created on first use and kept
// for the lifetime of the App so rate limits and circuit breakers carry over
// between reports.
type delivery struct {
	mu         sync.Mutex
	client     mqtt.Client
	publisher  *mqtt.Publisher
	dispatcher *notification.Dispatcher
}

func (d *delivery) close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.client != nil {
		d.client.Disconnect()
		d.client = nil
		d.publisher = nil
	}
}

// Publisher returns the MQTT publisher, connecting on first use.
func (a *App) Publisher(ctx context.Context) (*mqtt.Publisher, error) {
	a.delivery.mu.Lock()
	defer a.delivery.mu.Unlock()

	if a.delivery.publisher != nil {
		return a.delivery.publisher, nil
	}
	if !a.Settings.MQTT.Enabled {
		return nil, errors.Newf("mqtt publishing is disabled").
			Component("app").
			Category(errors.CategoryConfiguration).
			Build()
	}

	client, err := mqtt.NewClient(mqtt.ConfigFromSettings(&a.Settings.MQTT), a.Metrics.MQTT)
	if err != nil {
		return nil, err
	}
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	a.delivery.client = client
	a.delivery.publisher = mqtt.NewPublisher(client, a.Settings.MQTT.Topic)
	return a.delivery.publisher, nil
}

// Dispatcher returns the notification dispatcher, building it on first use.
func (a *App) Dispatcher() (*notification.Dispatcher, error) {
	a.delivery.mu.Lock()
	defer a.delivery.mu.Unlock()

	if a.delivery.dispatcher != nil {
		return a.delivery.dispatcher, nil
	}
	ns := &a.Settings.Notification
	provider := notification.NewShoutrrrProvider("shoutrrr", ns.Enabled, ns.URLs, ns.Timeout)
	d, err := notification.NewDispatcher(notification.DispatcherConfigFromSettings(ns), a.Metrics.Notification, provider)
	if err != nil {
		return nil, err
	}
	a.delivery.dispatcher = d
	return d, nil
}

// DeliveryResult splits the alerts passed to Deliver by outcome. An alert is
// delivered once every enabled channel accepted it or filtered it out.
type DeliveryResult struct {
	Delivered   []analytics.ConservationAlert
	Undelivered []analytics.ConservationAlert
}

// Deliver sends conservation alerts through every enabled channel. Channel
// failures are logged and returned joined after all channels were tried.
func (a *App) Deliver(ctx context.Context, alerts []analytics.ConservationAlert) (DeliveryResult, error) {
	if len(alerts) == 0 {
		return DeliveryResult{}, nil
	}
	var (
		errs    []error
		pending = make(map[string]bool)
	)
	markAll := func() {
		for i := range alerts {
			pending[alerts[i].ID] = true
		}
	}
	mark := func(ids []string) {
		for _, id := range ids {
			pending[id] = true
		}
	}

	if a.Settings.MQTT.Enabled {
		pub, err := a.Publisher(ctx)
		if err != nil {
			markAll()
		} else {
			var unpublished []string
			unpublished, err = pub.PublishAlerts(ctx, alerts)
			mark(unpublished)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	if a.Settings.Notification.Enabled {
		d, err := a.Dispatcher()
		if err != nil {
			markAll()
		} else {
			var res notification.DispatchResult
			res, err = d.DispatchAlerts(ctx, alerts)
			mark(res.Undelivered)
			a.log.Info("conservation alerts dispatched",
				logger.Int("sent", res.Sent),
				logger.Int("filtered", res.Filtered),
				logger.Int("rate_limited", res.RateLimited),
				logger.Int("failed", res.Failed))
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	var out DeliveryResult
	for i := range alerts {
		if pending[alerts[i].ID] {
			out.Undelivered = append(out.Undelivered, alerts[i])
		} else {
			out.Delivered = append(out.Delivered, alerts[i])
		}
	}

	if len(errs) > 0 {
		err := errors.Join(errs...)
		a.log.Warn("alert delivery incomplete",
			logger.Int("undelivered", len(out.Undelivered)),
			logger.Error(err))
		return out, err
	}
	return out, nil
}

// PublishInsights publishes real-time insights when MQTT is enabled.
func (a *App) PublishInsights(ctx context.Context, in *analytics.Insights) error {
	if !a.Settings.MQTT.Enabled {
		return nil
	}
	pub, err := a.Publisher(ctx)
	if err != nil {
		return err
	}
	return pub.PublishInsights(ctx, in)
}
