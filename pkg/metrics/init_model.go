package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initModelMetrics() {
	r.FitsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "risksim_fits_total",
			Help: "Total number of power-law fit attempts",
		},
		[]string{"status"},
	)

	r.FitDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "risksim_fit_duration_seconds",
			Help:    "Power-law fit duration in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1.0},
		},
	)

	r.LastRisk = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "risksim_last_risk",
			Help: "Loss-exceedance probability of the most recent analysis",
		},
	)

	r.LastRiskTrials = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "risksim_last_risk_trials",
			Help: "Trial count behind the most recent risk figure",
		},
	)
}
