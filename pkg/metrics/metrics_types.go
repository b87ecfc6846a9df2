// Package metrics exposes Prometheus metrics for the risk simulation
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all pipeline metrics backed by a private Prometheus
// registry, so multiple instances can coexist in tests.
type Registry struct {
	registry *prometheus.Registry

	// Simulation metrics
	RunsTotal       *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	TrialsTotal     prometheus.Counter
	AttacksPerTrial prometheus.Histogram
	CostPerTrial    prometheus.Histogram

	// Model-construction metrics
	FitsTotal      *prometheus.CounterVec
	FitDuration    prometheus.Histogram
	LastRisk       prometheus.Gauge
	LastRiskTrials prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initSimulationMetrics()
	r.initModelMetrics()

	return r
}

// PrometheusRegistry exposes the underlying registry for HTTP handlers and
// test gathering.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.registry
}
