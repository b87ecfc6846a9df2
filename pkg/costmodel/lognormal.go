// Package costmodel derives a lognormal per-incident cost model from the
// summary statistics (mean, median) that survey sources publish, and samples
// total annual costs from it.
package costmodel

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/dd0wney/cluso-risksim/pkg/sampling"
)

// CostStats are the published summary statistics of the per-incident cost
// distribution. Loaded once per run and treated as immutable.
type CostStats struct {
	Mean   float64 // > 0
	Median float64 // >= 0; 0 means the source did not report a median
}

// Lognormal holds the derived parameters of the underlying normal
// distribution of log-cost.
type Lognormal struct {
	Mu    float64
	Sigma float64 // > 0
}

// CostModelError reports that a cost model could not be derived from the
// given summary statistics.
type CostModelError struct {
	Reason string
}

func (e *CostModelError) Error() string {
	return "cost model: " + e.Reason
}

// Derive converts (mean, median) summary statistics into lognormal
// parameters.
//
// The spread is recovered from the mean/median ratio:
//
//	logstd = sqrt(2 * (ln(mean) - ln(median)))
//	std    = exp(logstd)
//	mu     = ln(mean^2 / sqrt(std^2 + mean^2))
//	sigma  = sqrt(ln(1 + std^2/mean^2))
//
// When the median is zero or missing, its log contribution is taken as 0.
// That fallback is a documented oddity inherited from the historical
// estimator for sources with missing medians; it is preserved verbatim for
// compatibility with previously generated distributions.
func Derive(stats CostStats) (Lognormal, error) {
	if !(stats.Mean > 0) {
		return Lognormal{}, &CostModelError{Reason: fmt.Sprintf("mean cost %g is not positive", stats.Mean)}
	}
	if stats.Median < 0 {
		return Lognormal{}, &CostModelError{Reason: fmt.Sprintf("median cost %g is negative", stats.Median)}
	}

	logMedian := 0.0
	if stats.Median > 0 {
		logMedian = math.Log(stats.Median)
	}

	logStd := math.Sqrt(2 * (math.Log(stats.Mean) - logMedian))
	std := math.Exp(logStd)

	mu := math.Log(stats.Mean * stats.Mean / math.Sqrt(std*std+stats.Mean*stats.Mean))
	sigma := math.Sqrt(math.Log(1 + (std*std)/(stats.Mean*stats.Mean)))

	ln := Lognormal{Mu: mu, Sigma: sigma}
	if err := ln.Validate(); err != nil {
		return Lognormal{}, err
	}
	return ln, nil
}

// Validate checks the derived parameter invariants.
func (l Lognormal) Validate() error {
	if math.IsNaN(l.Mu) || math.IsInf(l.Mu, 0) {
		return &CostModelError{Reason: fmt.Sprintf("derived mu %g is not finite", l.Mu)}
	}
	if math.IsNaN(l.Sigma) || math.IsInf(l.Sigma, 0) || !(l.Sigma > 0) {
		return &CostModelError{Reason: fmt.Sprintf("derived sigma %g is not finite and positive", l.Sigma)}
	}
	return nil
}

// Sampler draws per-incident costs from a derived lognormal model using an
// injected random source. It is not safe for concurrent use; give each
// worker its own Sampler over an independently seeded source.
type Sampler struct {
	params Lognormal
	rng    *rand.Rand
}

// NewSampler binds a lognormal model to a random source.
func NewSampler(params Lognormal, rng *rand.Rand) *Sampler {
	return &Sampler{params: params, rng: rng}
}

// Sample draws one per-incident cost.
func (s *Sampler) Sample() float64 {
	return math.Exp(s.params.Mu + s.params.Sigma*s.rng.NormFloat64())
}

// SampleSum draws n independent per-incident costs and returns their sum:
// the total direct cost of n incidents in one simulated year. A year with
// no incidents costs exactly zero. A NaN or infinite draw is a defect in
// the model parameters and surfaces as a SamplingError.
func (s *Sampler) SampleSum(n int) (float64, error) {
	if n <= 0 {
		return 0, nil
	}
	total := 0.0
	for i := 0; i < n; i++ {
		c := s.Sample()
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return 0, &sampling.SamplingError{
				Reason: fmt.Sprintf("cost draw %d of %d produced %g with mu=%g sigma=%g", i+1, n, c, s.params.Mu, s.params.Sigma),
			}
		}
		total += c
	}
	return total, nil
}
