package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records order lifecycle operations and their side channels.
type OrderMetrics struct {
	duration     *prometheus.HistogramVec
	success      *prometheus.CounterVec
	failure      *prometheus.CounterVec
	notifyFailed *prometheus.CounterVec
	stockLow     prometheus.Counter
}

// NewOrderMetrics registers the order metrics on the provided registerer. A nil
// registerer yields a no-op recorder.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_operation_duration_seconds",
		Help:    "Duration of order lifecycle operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_operation_success_total",
		Help: "Committed order lifecycle operations.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_operation_failure_total",
		Help: "Rejected or rolled back order lifecycle operations.",
	}, []string{"operation", "code"})
	notifyFailed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_failure_total",
		Help: "Change notifications that could not be published.",
	}, []string{"channel"})
	stockLow := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_low_total",
		Help: "Reservations that left a product at or below its minimum stock.",
	})
	reg.MustRegister(duration, success, failure, notifyFailed, stockLow)
	return &OrderMetrics{
		duration:     duration,
		success:      success,
		failure:      failure,
		notifyFailed: notifyFailed,
		stockLow:     stockLow,
	}
}

// ObserveDuration records the duration for the named operation.
func (m *OrderMetrics) ObserveDuration(operation string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named operation.
func (m *OrderMetrics) IncSuccess(operation string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncFailure increments the failure counter for the operation and error code.
func (m *OrderMetrics) IncFailure(operation, code string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(operation), normalizeLabel(code)).Inc()
}

// IncNotificationFailure counts a notification that could not be published.
func (m *OrderMetrics) IncNotificationFailure(channel string) {
	if m == nil || m.notifyFailed == nil {
		return
	}
	m.notifyFailed.WithLabelValues(normalizeLabel(channel)).Inc()
}

// IncStockLow counts a reservation that crossed the minimum stock threshold.
func (m *OrderMetrics) IncStockLow() {
	if m == nil || m.stockLow == nil {
		return
	}
	m.stockLow.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
