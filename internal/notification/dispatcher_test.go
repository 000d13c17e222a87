package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/wildlife-analytics/internal/analytics"
	"github.com/tphakala/wildlife-analytics/internal/conf"
	"github.com/tphakala/wildlife-analytics/internal/detection"
	"github.com/tphakala/wildlife-analytics/internal/errors"
	"github.com/tphakala/wildlife-analytics/internal/observability/metrics"
)

type fakeProvider struct {
	name     string
	disabled bool
	fail     bool
	invalid  bool

	mu   sync.Mutex
	sent []*Notification
}

func (p *fakeProvider) GetName() string { return p.name }
func (p *fakeProvider) IsEnabled() bool { return !p.disabled }

func (p *fakeProvider) ValidateConfig() error {
	if p.invalid {
		return errors.Newf("bad config").Category(errors.CategoryConfiguration).Build()
	}
	return nil
}

func (p *fakeProvider) Send(_ context.Context, n *Notification) error {
	if p.fail {
		return errors.Newf("provider down").Category(errors.CategoryNotification).Build()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n)
	return nil
}

func (p *fakeProvider) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

func testConfig() DispatcherConfig {
	return DispatcherConfig{
		MinSeverity: analytics.SeverityHigh,
		RatePerMin:  60,
		Burst:       10,
		Timeout:     time.Second,
		Breaker:     DefaultCircuitBreakerConfig(),
	}
}

func alertsWithSeverities(severities ...analytics.Severity) []analytics.ConservationAlert {
	alerts := make([]analytics.ConservationAlert, 0, len(severities))
	for i, s := range severities {
		alerts = append(alerts, analytics.ConservationAlert{
			ID:                 string(rune('a' + i)),
			SpeciesName:        "Iberian Lynx",
			ConservationStatus: detection.StatusEndangered,
			Type:               analytics.AlertPopulationDecline,
			Severity:           s,
			Description:        "declining",
		})
	}
	return alerts
}

func newTestNotificationMetrics(t *testing.T) *metrics.NotificationMetrics {
	t.Helper()
	m, err := metrics.NewNotificationMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	return m
}

func TestDispatcherConfigFromSettings(t *testing.T) {
	t.Parallel()

	cfg := DispatcherConfigFromSettings(&conf.NotificationSettings{
		MinSeverity: "critical",
		RateLimit:   6,
		Burst:       3,
		Timeout:     5 * time.Second,
	})
	assert.Equal(t, analytics.SeverityCritical, cfg.MinSeverity)
	assert.InDelta(t, 6.0, cfg.RatePerMin, 1e-9)
	assert.Equal(t, 3, cfg.Burst)
	assert.Equal(t, DefaultCircuitBreakerConfig(), cfg.Breaker)
}

func TestNewDispatcher_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*DispatcherConfig)
	}{
		{"unknown severity", func(c *DispatcherConfig) { c.MinSeverity = "urgent" }},
		{"zero rate", func(c *DispatcherConfig) { c.RatePerMin = 0 }},
		{"zero burst", func(c *DispatcherConfig) { c.Burst = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := testConfig()
			tt.mutate(&cfg)
			_, err := NewDispatcher(cfg, nil)
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
		})
	}
}

func TestNewDispatcher_Providers(t *testing.T) {
	t.Parallel()

	d, err := NewDispatcher(testConfig(), nil,
		&fakeProvider{name: "a"},
		&fakeProvider{name: "b", disabled: true, invalid: true})
	require.NoError(t, err)
	assert.Equal(t, 1, d.ProviderCount())

	_, err = NewDispatcher(testConfig(), nil, &fakeProvider{name: "c", invalid: true})
	require.Error(t, err)
}

func TestDispatcher_FiltersBySeverity(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{name: "fake"}
	m := newTestNotificationMetrics(t)
	d, err := NewDispatcher(testConfig(), m, p)
	require.NoError(t, err)

	alerts := alertsWithSeverities(analytics.SeverityCritical, analytics.SeverityHigh,
		analytics.SeverityMedium, analytics.SeverityWarning)
	res, err := d.DispatchAlerts(t.Context(), alerts)
	require.NoError(t, err)

	assert.Equal(t, DispatchResult{Sent: 2, Filtered: 2}, res)
	require.Equal(t, 2, p.count())
	assert.Equal(t, "[CRITICAL] Iberian Lynx: population-decline", p.sent[0].Title)
	assert.InDelta(t, 2.0, testutil.ToFloat64(m.NotificationDispatchTotal), 1e-9)
	assert.InDelta(t, 2.0, testutil.ToFloat64(m.ProviderDeliveriesTotal.WithLabelValues("fake", metrics.StatusSuccess)), 1e-9)
}

func TestDispatcher_RateLimit(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.RatePerMin = 1
	cfg.Burst = 2

	p := &fakeProvider{name: "fake"}
	m := newTestNotificationMetrics(t)
	d, err := NewDispatcher(cfg, m, p)
	require.NoError(t, err)

	alerts := alertsWithSeverities(analytics.SeverityCritical, analytics.SeverityCritical,
		analytics.SeverityCritical, analytics.SeverityHigh)
	res, err := d.DispatchAlerts(t.Context(), alerts)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 2, res.RateLimited)
	assert.Equal(t, []string{"c", "d"}, res.Undelivered)
	assert.Equal(t, 2, p.count())
	assert.InDelta(t, 2.0, testutil.ToFloat64(m.ProviderDeliveriesTotal.WithLabelValues("fake", metrics.StatusRateLimited)), 1e-9)
}

func TestDispatcher_PartialFailure(t *testing.T) {
	t.Parallel()

	good := &fakeProvider{name: "good"}
	bad := &fakeProvider{name: "bad", fail: true}
	m := newTestNotificationMetrics(t)
	d, err := NewDispatcher(testConfig(), m, bad, good)
	require.NoError(t, err)

	res, err := d.DispatchAlerts(t.Context(), alertsWithSeverities(analytics.SeverityHigh))
	require.NoError(t, err, "one accepting provider is enough")
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 1, good.count())
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.ProviderDeliveriesTotal.WithLabelValues("bad", metrics.StatusError)), 1e-9)
}

func TestDispatcher_AllProvidersFail(t *testing.T) {
	t.Parallel()

	d, err := NewDispatcher(testConfig(), nil, &fakeProvider{name: "bad", fail: true})
	require.NoError(t, err)

	res, err := d.DispatchAlerts(t.Context(), alertsWithSeverities(analytics.SeverityHigh, analytics.SeverityCritical))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryNotification))
	assert.Equal(t, DispatchResult{Failed: 2, Undelivered: []string{"a", "b"}}, res)
}

func TestDispatcher_NoProviders(t *testing.T) {
	t.Parallel()

	d, err := NewDispatcher(testConfig(), nil)
	require.NoError(t, err)

	res, err := d.DispatchAlerts(t.Context(), alertsWithSeverities(analytics.SeverityHigh))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
}

func TestDispatcher_Cancelled(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{name: "fake"}
	d, err := NewDispatcher(testConfig(), nil, p)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	res, err := d.DispatchAlerts(ctx, alertsWithSeverities(analytics.SeverityHigh, analytics.SeverityWarning))
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, p.count())
	assert.Equal(t, []string{"a"}, res.Undelivered, "alerts below the floor are never pending")
}

func TestFromAlert(t *testing.T) {
	t.Parallel()

	n := FromAlert(&analytics.ConservationAlert{
		ID:                 "x",
		SpeciesName:        "Grey Wolf",
		ConservationStatus: detection.StatusVulnerable,
		Type:               analytics.AlertProtectedPresence,
		Severity:           analytics.SeverityWarning,
		Description:        "Protected species detected",
		DetectionCount:     3,
		RecommendedActions: []string{"Notify rangers"},
	})

	assert.Equal(t, "x", n.AlertID)
	assert.Equal(t, "[WARNING] Grey Wolf: protected-presence", n.Title)
	assert.Equal(t, "Protected species detected\nConservation status: vulnerable\nDetections: 3\nRecommended actions:\n- Notify rangers", n.Message)
}
