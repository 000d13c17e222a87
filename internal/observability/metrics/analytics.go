package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AnalyticsMetrics contains Prometheus metrics for report generation
type AnalyticsMetrics struct {
	registry *prometheus.Registry

	reportsTotal        *prometheus.CounterVec
	reportDuration      *prometheus.HistogramVec
	anomaliesTotal      *prometheus.CounterVec
	alertsTotal         *prometheus.CounterVec
	fetchErrorsTotal    *prometheus.CounterVec
	lastReportTimestamp prometheus.Gauge

	collectors []prometheus.Collector
}

// NewAnalyticsMetrics creates and registers analytics metrics
func NewAnalyticsMetrics(registry *prometheus.Registry) (*AnalyticsMetrics, error) {
	m := &AnalyticsMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register analytics metrics: %w", err)
	}
	return m, nil
}

func (m *AnalyticsMetrics) initMetrics() {
	m.reportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_reports_total",
			Help: "Total number of generated reports by kind and status",
		},
		[]string{"kind", "status"}, // kind: comprehensive, realtime, species, batch
	)

	m.reportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analytics_report_duration_seconds",
			Help:    "Time taken to generate a report, including the detection fetch",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount15),
		},
		[]string{"kind"},
	)

	m.anomaliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_anomalies_total",
			Help: "Total number of anomalies reported by detector type",
		},
		[]string{"type"},
	)

	m.alertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_conservation_alerts_total",
			Help: "Total number of conservation alerts raised by severity",
		},
		[]string{"severity"},
	)

	m.fetchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_fetch_errors_total",
			Help: "Total number of failed upstream fetches by source",
		},
		[]string{"source"},
	)

	m.lastReportTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "analytics_last_report_timestamp_seconds",
		Help: "Unix time of the last successfully generated report",
	})

	m.collectors = []prometheus.Collector{
		m.reportsTotal,
		m.reportDuration,
		m.anomaliesTotal,
		m.alertsTotal,
		m.fetchErrorsTotal,
		m.lastReportTimestamp,
	}
}

// Describe implements the Collector interface
func (m *AnalyticsMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *AnalyticsMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordReport records one report generation
func (m *AnalyticsMetrics) RecordReport(kind, status string, duration time.Duration) {
	m.reportsTotal.WithLabelValues(kind, status).Inc()
	m.reportDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if status == StatusSuccess {
		m.lastReportTimestamp.SetToCurrentTime()
	}
}

// RecordAnomalies adds count anomalies of a detector type
func (m *AnalyticsMetrics) RecordAnomalies(anomalyType string, count int) {
	m.anomaliesTotal.WithLabelValues(anomalyType).Add(float64(count))
}

// RecordAlerts adds count alerts of a severity
func (m *AnalyticsMetrics) RecordAlerts(severity string, count int) {
	m.alertsTotal.WithLabelValues(severity).Add(float64(count))
}

// RecordFetchError records a failed upstream fetch
func (m *AnalyticsMetrics) RecordFetchError(source string) {
	m.fetchErrorsTotal.WithLabelValues(source).Inc()
}
