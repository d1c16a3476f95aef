package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	ValidationErrors *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them on reg.
// A nil reg registers on the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "melhorenvio_cart_requests_total",
				Help: "Total number of cart operations by operation, carrier, and status",
			},
			[]string{"operation", "carrier", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "melhorenvio_cart_request_duration_seconds",
				Help:    "Cart operation duration in seconds by operation and carrier",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "carrier"},
		),
		ValidationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "melhorenvio_validation_errors_total",
				Help: "Total payload validation errors by carrier",
			},
			[]string{"carrier"},
		),
	}
}

// RecordRequest records a cart operation.
func (m *Metrics) RecordRequest(operation, carrier, status string, duration float64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(operation, carrier, status).Inc()
	m.RequestDuration.WithLabelValues(operation, carrier).Observe(duration)
}

// RecordValidationErrors adds n validation errors for a carrier.
func (m *Metrics) RecordValidationErrors(carrier string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.ValidationErrors.WithLabelValues(carrier).Add(float64(n))
}
