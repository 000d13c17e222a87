package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewAnalyticsMetrics(registry)
	require.NoError(t, err)

	m.RecordReport("comprehensive", StatusSuccess, 120*time.Millisecond)
	m.RecordReport("comprehensive", StatusError, 5*time.Millisecond)
	m.RecordReport("species", StatusSuccess, 40*time.Millisecond)
	m.RecordAnomalies("isolation_forest", 3)
	m.RecordAnomalies("species_confidence", 0)
	m.RecordAlerts("high", 2)
	m.RecordFetchError("detections")

	assert.InDelta(t, 1, testutil.ToFloat64(m.reportsTotal.WithLabelValues("comprehensive", StatusSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.reportsTotal.WithLabelValues("comprehensive", StatusError)), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.anomaliesTotal.WithLabelValues("isolation_forest")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.anomaliesTotal.WithLabelValues("species_confidence")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.alertsTotal.WithLabelValues("high")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.fetchErrorsTotal.WithLabelValues("detections")), 0)
	assert.Positive(t, testutil.ToFloat64(m.lastReportTimestamp))

	assert.Equal(t, 2, testutil.CollectAndCount(m.reportDuration))
}

func TestAnalyticsMetrics_DuplicateRegistration(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	_, err := NewAnalyticsMetrics(registry)
	require.NoError(t, err)

	_, err = NewAnalyticsMetrics(registry)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to register analytics metrics")
}

func TestDatastoreMetrics_ImplementsRecorder(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewDatastoreMetrics(registry)
	require.NoError(t, err)

	var r Recorder = m
	r.RecordOperation(OpFetchDetections, StatusSuccess)
	r.RecordOperation(OpFetchDetections, StatusSuccess)
	r.RecordDuration(OpFetchDetections, 0.004)
	r.RecordError(OpFetchSpecies, "database")
	m.RecordQueryResultSize(OpFetchDetections, 250)
	m.RecordCacheOperation(LabelSpeciesCatalog, CacheHit)

	assert.InDelta(t, 2, testutil.ToFloat64(m.dbOperationsTotal.WithLabelValues(OpFetchDetections, StatusSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.dbOperationErrorsTotal.WithLabelValues(OpFetchSpecies, "database")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.cacheOperationsTotal.WithLabelValues(LabelSpeciesCatalog, CacheHit)), 0)

	expected := `
# HELP datastore_cache_operations_total Total number of cache lookups by cache and result
# TYPE datastore_cache_operations_total counter
datastore_cache_operations_total{cache="species_catalog",result="hit"} 1
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "datastore_cache_operations_total"))
}

func TestMQTTMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewMQTTMetrics(registry)
	require.NoError(t, err)

	m.UpdateConnectionStatus(true)
	m.IncrementMessagesDelivered("alert")
	m.IncrementErrors("insights")
	m.ObserveMessageSize(512)
	m.StartPublishTimer().ObserveDuration()

	assert.InDelta(t, 1, testutil.ToFloat64(m.ConnectionStatus), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.MessagesDelivered.WithLabelValues("alert")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Errors.WithLabelValues("insights")), 0)

	m.UpdateConnectionStatus(false)
	assert.InDelta(t, 0, testutil.ToFloat64(m.ConnectionStatus), 0)
}

func TestNotificationMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewNotificationMetrics(registry)
	require.NoError(t, err)

	m.IncrementDispatchTotal()
	m.RecordDelivery("telegram", StatusSuccess, 30*time.Millisecond)
	m.RecordDelivery("telegram", StatusRateLimited, 0)
	m.RecordDelivery("slack", StatusError, time.Second)

	assert.InDelta(t, 1, testutil.ToFloat64(m.NotificationDispatchTotal), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ProviderDeliveriesTotal.WithLabelValues("telegram", StatusRateLimited)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ProviderDeliveriesTotal.WithLabelValues("slack", StatusError)), 0)
	assert.Positive(t, testutil.ToFloat64(m.ProviderLastSuccessTime.WithLabelValues("telegram")))
	// rate limited attempts are not timed
	assert.Equal(t, 2, testutil.CollectAndCount(m.ProviderDeliveryDuration))
}
