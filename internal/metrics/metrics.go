package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all Prometheus metrics of the capacity service
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Source Metrics
	SourceLoadDuration *prometheus.HistogramVec

	// Reconciliation Metrics
	RunsTotal           *prometheus.CounterVec
	RunDuration         *prometheus.HistogramVec
	CoercedCellsTotal   prometheus.Counter
	UnmatchedGeneration prometheus.Counter
	SummaryRows         prometheus.Gauge
	SubstationsWithRoom prometheus.Gauge
}

// NewRegistry registers every metric on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh prometheus.NewRegistry() in tests.
func NewRegistry(reg prometheus.Registerer) *Registry {
	f := promauto.With(reg)
	return &Registry{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "capacity_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "capacity_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "capacity_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		SourceLoadDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "capacity_source_load_duration_seconds",
				Help:    "Time spent reading one input table",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"source", "table"},
		),

		RunsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "capacity_reconcile_runs_total",
				Help: "Reconciliation runs by input source and outcome",
			},
			[]string{"source", "outcome"},
		),
		RunDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "capacity_reconcile_duration_seconds",
				Help:    "End-to-end reconciliation time in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"source"},
		),
		CoercedCellsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "capacity_coerced_cells_total",
				Help: "Numeric cells coerced to zero",
			},
		),
		UnmatchedGeneration: f.NewCounter(
			prometheus.CounterOpts{
				Name: "capacity_unmatched_generation_total",
				Help: "Generation rows that matched no valid substation and feeder pair",
			},
		),
		SummaryRows: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "capacity_last_run_summary_rows",
				Help: "Summary rows produced by the last successful run",
			},
		),
		SubstationsWithRoom: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "capacity_last_run_substations_with_capacity",
				Help: "Substations with positive available capacity in the last successful run",
			},
		),
	}
}
