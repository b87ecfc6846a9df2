package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSimulationMetrics() {
	r.RunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "risksim_runs_total",
			Help: "Total number of simulation runs",
		},
		[]string{"status"},
	)

	r.RunDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "risksim_run_duration_seconds",
			Help:    "Full simulation run duration in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1.0, 5.0, 30.0, 120.0},
		},
	)

	r.TrialsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "risksim_trials_total",
			Help: "Total number of simulated years across all runs",
		},
	)

	r.AttacksPerTrial = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "risksim_attacks_per_trial",
			Help:    "Sampled yearly attack counts",
			Buckets: []float64{0, 1, 2, 8, 18, 80, 400, 8000},
		},
	)

	r.CostPerTrial = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "risksim_cost_per_trial",
			Help:    "Simulated total annual loss per trial",
			Buckets: prometheus.ExponentialBuckets(100, 10, 7),
		},
	)
}
