package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instrumentation for the optimization
// service.
type Metrics struct {
	jobsStarted  prometheus.Counter
	jobsFinished *prometheus.CounterVec
	evaluations  prometheus.Counter
	solveSeconds prometheus.Histogram
}

// NewMetrics registers the service metrics on reg and returns them.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		jobsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "smplx",
			Name:      "jobs_started_total",
			Help:      "Number of optimization jobs accepted.",
		}),
		jobsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smplx",
			Name:      "jobs_finished_total",
			Help:      "Number of optimization jobs finished, by terminal status.",
		}, []string{"status"}),
		evaluations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "smplx",
			Name:      "function_evaluations_total",
			Help:      "Cumulative objective function evaluations across jobs.",
		}),
		solveSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "smplx",
			Name:      "solve_duration_seconds",
			Help:      "Wall-clock duration of optimization solves.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 10, 8),
		}),
	}
}
