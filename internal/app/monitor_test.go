package app

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/wildlife-analytics/internal/analytics"
	"github.com/tphakala/wildlife-analytics/internal/detection"
	"github.com/tphakala/wildlife-analytics/internal/observability/metrics"
)

func TestMonitorCycle_RetriesThrottledAlerts(t *testing.T) {
	a := newTestApp(t, `analytics:
  conservation:
    presencealerts: true
notification:
  enabled: true
  urls: ["logger://"]
  minseverity: warning
  ratelimit: 6000
  burst: 1
`)
	ts := func(d time.Duration) string { return time.Now().Add(-d).UTC().Format(time.RFC3339) }
	seed := fmt.Sprintf(`cameras:
  - {id: 1, organization_id: 10, name: Ridge North}
species:
  - {id: 1, common_name: Iberian Lynx, scientific_name: Lynx pardinus, conservation_status: EN}
  - {id: 2, common_name: Grey Wolf, scientific_name: Canis lupus, conservation_status: VU}
detections:
  - {camera_id: 1, species_id: 1, confidence: 0.91, timestamp: %s}
  - {camera_id: 1, species_id: 2, confidence: 0.87, timestamp: %s}
`, ts(time.Hour), ts(2*time.Hour))
	_, err := a.Import(t.Context(), strings.NewReader(seed))
	require.NoError(t, err)

	delivered := func() float64 {
		return testutil.ToFloat64(a.Metrics.Notification.ProviderDeliveriesTotal.WithLabelValues("shoutrrr", metrics.StatusSuccess))
	}
	tracker := newAlertTracker()

	// burst of one lets a single alert through, the other is throttled
	_ = a.monitorCycle(t.Context(), detection.Filter{}, tracker)
	assert.InDelta(t, 1.0, delivered(), 1e-9)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, a.monitorCycle(t.Context(), detection.Filter{}, tracker))
	assert.InDelta(t, 2.0, delivered(), 1e-9, "throttled alert is retried on the next cycle")

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, a.monitorCycle(t.Context(), detection.Filter{}, tracker))
	assert.InDelta(t, 2.0, delivered(), 1e-9, "delivered alerts are not repeated")
}

func TestAlertTracker_CommitKeepsUndeliveredFresh(t *testing.T) {
	t.Parallel()

	alert := func(id uint, sev analytics.Severity) analytics.ConservationAlert {
		return analytics.ConservationAlert{SpeciesID: id, Type: analytics.AlertProtectedPresence, Severity: sev}
	}
	tr := newAlertTracker()

	cycle := []analytics.ConservationAlert{alert(1, analytics.SeverityWarning), alert(2, analytics.SeverityWarning)}
	got := tr.fresh(cycle)
	require.Len(t, got, 2)
	tr.commit(cycle, got[1:])

	got = tr.fresh(cycle)
	require.Len(t, got, 1)
	assert.Equal(t, uint(2), got[0].SpeciesID)

	// a failed escalation is retried at the new severity
	escalated := []analytics.ConservationAlert{alert(1, analytics.SeverityCritical), alert(2, analytics.SeverityWarning)}
	tr.commit(cycle, nil)
	got = tr.fresh(escalated)
	require.Len(t, got, 1)
	tr.commit(escalated, got)
	got = tr.fresh(escalated)
	require.Len(t, got, 1)
	assert.Equal(t, analytics.SeverityCritical, got[0].Severity)
}
