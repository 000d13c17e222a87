package mqtt

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/tphakala/wildlife-analytics/internal/analytics"
	"github.com/tphakala/wildlife-analytics/internal/errors"
	"github.com/tphakala/wildlife-analytics/internal/logger"
)

const (
	alertsSubtopic   = "alerts"
	insightsSubtopic = "insights"
)

// Publisher serializes analytics output and publishes it below a base topic:
// alerts go to <base>/alerts/<severity>, insights to <base>/insights.
type Publisher struct {
	client Client
	base   string
	log    logger.Logger
}

// NewPublisher creates a publisher on top of a connected client.
func NewPublisher(client Client, baseTopic string) *Publisher {
	return &Publisher{
		client: client,
		base:   strings.TrimRight(baseTopic, "/"),
		log:    getLog(),
	}
}

// AlertTopic returns the topic an alert of the given severity is published to.
func (p *Publisher) AlertTopic(severity analytics.Severity) string {
	return p.base + "/" + alertsSubtopic + "/" + string(severity)
}

// InsightsTopic returns the topic insights are published to.
func (p *Publisher) InsightsTopic() string {
	return p.base + "/" + insightsSubtopic
}

// PublishAlerts publishes every alert as its own message. Publishing continues
// past individual failures; all failures are returned joined together with
// the IDs of the alerts that were not published.
func (p *Publisher) PublishAlerts(ctx context.Context, alerts []analytics.ConservationAlert) ([]string, error) {
	var (
		unpublished []string
		errs        []error
	)
	for i := range alerts {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(alerts); j++ {
				unpublished = append(unpublished, alerts[j].ID)
			}
			errs = append(errs, err)
			break
		}
		payload, err := json.Marshal(NewAlertMessage(&alerts[i]))
		if err != nil {
			unpublished = append(unpublished, alerts[i].ID)
			errs = append(errs, errors.New(err).
				Component("mqtt").
				Category(errors.CategoryMQTTPublish).
				Context("alert_id", alerts[i].ID).
				Build())
			continue
		}
		if err := p.client.Publish(ctx, p.AlertTopic(alerts[i].Severity), string(payload)); err != nil {
			p.log.Warn("failed to publish conservation alert",
				logger.String("alert_id", alerts[i].ID),
				logger.String("severity", string(alerts[i].Severity)),
				logger.Error(err))
			unpublished = append(unpublished, alerts[i].ID)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return unpublished, errors.Join(errs...)
	}
	p.log.Debug("published conservation alerts", logger.Int("count", len(alerts)))
	return nil, nil
}

// PublishInsights publishes a real-time insights summary.
func (p *Publisher) PublishInsights(ctx context.Context, in *analytics.Insights) error {
	if in == nil {
		return errors.Newf("insights must not be nil").
			Component("mqtt").
			Category(errors.CategoryValidation).
			Build()
	}
	payload, err := json.Marshal(NewInsightsMessage(in))
	if err != nil {
		return errors.New(err).
			Component("mqtt").
			Category(errors.CategoryMQTTPublish).
			Build()
	}
	return p.client.Publish(ctx, p.InsightsTopic(), string(payload))
}

// topicKind labels a topic for metrics: "alert", "insights" or "other".
func topicKind(topic string) string {
	switch {
	case strings.Contains(topic, "/"+alertsSubtopic+"/"):
		return "alert"
	case strings.HasSuffix(topic, "/"+insightsSubtopic):
		return "insights"
	default:
		return "other"
	}
}
