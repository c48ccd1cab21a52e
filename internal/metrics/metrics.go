package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the scheduling service
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Business Metrics
	AssignmentsCreatedTotal prometheus.CounterVec
	AssignmentConflicts     prometheus.Counter
	BulkRowsTotal           prometheus.CounterVec
	ImportsTotal            prometheus.CounterVec
	ExportsTotal            prometheus.CounterVec
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vanlist_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vanlist_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "vanlist_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		AssignmentsCreatedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vanlist_assignments_created_total",
				Help: "Assignment rows created by source (api, bulk, pairing)",
			},
			[]string{"source"},
		),
		AssignmentConflicts: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "vanlist_assignment_conflicts_total",
				Help: "Assignment writes rejected by the conflict rules",
			},
		),
		BulkRowsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vanlist_bulk_rows_total",
				Help: "Bulk reconciliation row outcomes by kind and result",
			},
			[]string{"kind", "result"},
		),
		ImportsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vanlist_imports_total",
				Help: "Roster file imports by type",
			},
			[]string{"import_type"},
		),
		ExportsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vanlist_exports_total",
				Help: "Report exports by kind",
			},
			[]string{"kind"},
		),
	}
}
