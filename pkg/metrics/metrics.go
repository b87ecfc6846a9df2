package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RecordRun records a completed simulation run with its duration.
// Status is one of "ok", "cancelled" or "error".
func (r *Registry) RecordRun(status string, duration time.Duration) {
	r.RunsTotal.WithLabelValues(status).Inc()
	r.RunDuration.Observe(duration.Seconds())
}

// RecordTrial records the outcome of one simulated year.
func (r *Registry) RecordTrial(attacks int, totalCost float64) {
	r.TrialsTotal.Inc()
	r.AttacksPerTrial.Observe(float64(attacks))
	r.CostPerTrial.Observe(totalCost)
}

// RecordFit records a power-law fit attempt.
func (r *Registry) RecordFit(status string, duration time.Duration) {
	r.FitsTotal.WithLabelValues(status).Inc()
	r.FitDuration.Observe(duration.Seconds())
}

// SetRisk publishes the most recent loss-exceedance probability.
func (r *Registry) SetRisk(risk float64, trials int) {
	r.LastRisk.Set(risk)
	r.LastRiskTrials.Set(float64(trials))
}

// Handler returns an HTTP handler serving this registry in the Prometheus
// exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
