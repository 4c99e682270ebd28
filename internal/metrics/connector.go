package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every flowconn metric.
const Namespace = "flowconn"

// Invocation outcomes used as the "outcome" label.
const (
	OutcomeSuccess    = "success"
	OutcomeEmpty      = "empty"
	OutcomeValidation = "validation_error"
	OutcomeTransport  = "transport_error"
)

// Connector Prometheus metrics.
var (
	ConnectorInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "connector_invocations_total",
			Help:      "Total number of connector invocations by outcome",
		},
		[]string{"connector", "outcome"},
	)

	ConnectorDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "connector_duration_seconds",
			Help:      "Connector invocation duration in seconds",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"connector"},
	)

	AggregatedRecordsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "aggregated_records_total",
			Help:      "Total normalized records emitted by the result aggregator",
		},
	)

	AggregateSkippedInputsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "aggregate_skipped_inputs_total",
			Help:      "Total aggregator inputs skipped for lacking an item list",
		},
	)
)

var connectorMetricsRegistered bool

// RegisterConnectorMetrics registers connector metrics. Must be called once from main.
func RegisterConnectorMetrics() {
	if connectorMetricsRegistered {
		return
	}
	prometheus.MustRegister(ConnectorInvocationsTotal)
	prometheus.MustRegister(ConnectorDuration)
	prometheus.MustRegister(AggregatedRecordsTotal)
	prometheus.MustRegister(AggregateSkippedInputsTotal)
	connectorMetricsRegistered = true
}

// ObserveInvocation records one connector invocation.
func ObserveInvocation(connector, outcome string, start time.Time) {
	ConnectorInvocationsTotal.WithLabelValues(connector, outcome).Inc()
	ConnectorDuration.WithLabelValues(connector).Observe(time.Since(start).Seconds())
}
