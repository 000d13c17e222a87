package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// NotificationMetrics contains Prometheus metrics for alert notification delivery.
type NotificationMetrics struct {
	ProviderDeliveriesTotal     *prometheus.CounterVec   // Total deliveries by provider and status
	ProviderDeliveryDuration    *prometheus.HistogramVec // Latency by provider
	ProviderLastSuccessTime     *prometheus.GaugeVec     // Timestamp of last successful delivery by provider
	ProviderCircuitBreakerState *prometheus.GaugeVec     // 0=closed, 1=half-open, 2=open
	NotificationDispatchTotal   prometheus.Counter       // Total alerts handed to the dispatcher

	registry *prometheus.Registry
}

// NewNotificationMetrics creates a new instance of NotificationMetrics.
// It returns an error if metric registration fails.
func NewNotificationMetrics(registry *prometheus.Registry) (*NotificationMetrics, error) {
	m := &NotificationMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register notification metrics: %w", err)
	}
	return m, nil
}

func (m *NotificationMetrics) initMetrics() {
	m.ProviderDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_provider_deliveries_total",
			Help: "Total number of alert notification attempts by provider and status",
		},
		[]string{"provider", "status"}, // status: success, error, rate_limited
	)

	m.ProviderDeliveryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_provider_delivery_duration_seconds",
			Help:    "Time taken for notification delivery by provider",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0}, // 10ms to 30s
		},
		[]string{"provider"},
	)

	m.ProviderLastSuccessTime = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "notification_provider_last_success_timestamp_seconds",
			Help: "Timestamp of last successful notification delivery by provider",
		},
		[]string{"provider"},
	)

	m.ProviderCircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "notification_provider_circuit_breaker_state",
			Help: "Circuit breaker state by provider (0=closed, 1=half-open, 2=open)",
		},
		[]string{"provider"},
	)

	m.NotificationDispatchTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_dispatch_total",
			Help: "Total number of conservation alerts dispatched to providers",
		},
	)
}

// RecordDelivery records a notification delivery attempt.
func (m *NotificationMetrics) RecordDelivery(provider, status string, duration time.Duration) {
	m.ProviderDeliveriesTotal.WithLabelValues(provider, status).Inc()
	if status == StatusRateLimited {
		return
	}
	m.ProviderDeliveryDuration.WithLabelValues(provider).Observe(duration.Seconds())
	if status == StatusSuccess {
		m.ProviderLastSuccessTime.WithLabelValues(provider).SetToCurrentTime()
	}
}

// UpdateCircuitBreakerState sets the circuit breaker state of a provider.
func (m *NotificationMetrics) UpdateCircuitBreakerState(provider string, state int) {
	m.ProviderCircuitBreakerState.WithLabelValues(provider).Set(float64(state))
}

// IncrementDispatchTotal increments the total dispatch counter.
func (m *NotificationMetrics) IncrementDispatchTotal() {
	m.NotificationDispatchTotal.Inc()
}

// Collect implements the prometheus.Collector interface.
func (m *NotificationMetrics) Collect(ch chan<- prometheus.Metric) {
	m.ProviderDeliveriesTotal.Collect(ch)
	m.ProviderDeliveryDuration.Collect(ch)
	m.ProviderLastSuccessTime.Collect(ch)
	m.ProviderCircuitBreakerState.Collect(ch)
	m.NotificationDispatchTotal.Collect(ch)
}

// Describe implements the prometheus.Collector interface.
func (m *NotificationMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.ProviderDeliveriesTotal.Describe(ch)
	m.ProviderDeliveryDuration.Describe(ch)
	m.ProviderLastSuccessTime.Describe(ch)
	m.ProviderCircuitBreakerState.Describe(ch)
	m.NotificationDispatchTotal.Describe(ch)
}
