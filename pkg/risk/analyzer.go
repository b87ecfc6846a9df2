// Package risk reduces a simulated trial set to a loss-exceedance
// probability and the descriptive statistics used for reporting.
package risk

import (
	"fmt"
	"math"
	"sort"

	"github.com/dd0wney/cluso-risksim/pkg/distribution"
	"github.com/dd0wney/cluso-risksim/pkg/simulation"
)

// DefaultHistogramBins is the bin count for the reporting histogram of
// total annual costs.
const DefaultHistogramBins = 15

// DefaultExceedanceBins is the resolution of the loss-exceedance curve.
// Fewer than ~30 bins makes the curve visibly steppy.
const DefaultExceedanceBins = 100

// defaultPercentiles are the cost percentiles included in every assessment.
var defaultPercentiles = []float64{50, 75, 90, 95, 99}

// HistogramBin is one reporting histogram bucket over total annual cost.
type HistogramBin struct {
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
	Count      int     `json:"count"`
}

// ExceedancePoint is one point of the loss-exceedance curve: the
// probability that the simulated annual loss reaches Loss or more.
type ExceedancePoint struct {
	Loss        float64 `json:"loss"`
	Probability float64 `json:"probability"`
}

// Percentile is a named percentile of the simulated annual cost.
type Percentile struct {
	Rank  float64 `json:"rank"`
	Value float64 `json:"value"`
}

// Assessment is the value object produced by Analyze, consumed by
// reporting collaborators.
type Assessment struct {
	Threshold float64 `json:"threshold"`
	Trials    int     `json:"trials"`
	NumOver   int     `json:"num_over"`
	Risk      float64 `json:"risk"`

	MeanAttacks  float64 `json:"mean_attacks"`
	MeanCost     float64 `json:"mean_cost"`
	CostVariance float64 `json:"cost_variance"`

	Percentiles []Percentile      `json:"percentiles"`
	Histogram   []HistogramBin    `json:"histogram"`
	Exceedance  []ExceedancePoint `json:"exceedance"`
}

// Analyze computes the loss-exceedance probability for the threshold along
// with descriptive statistics over the trial costs. It is a pure function:
// the result is not mutated and no I/O happens here.
//
// Incomplete results are refused so a cancelled run can never masquerade
// as a full-length one downstream.
func Analyze(result *simulation.Result, threshold float64) (*Assessment, error) {
	if result == nil || len(result.Trials) == 0 {
		return nil, &distribution.ConfigError{Reason: "no trials to analyze"}
	}
	if !result.Complete {
		return nil, &distribution.ConfigError{Reason: fmt.Sprintf("result %s is incomplete (%d trials)", result.RunID, len(result.Trials))}
	}
	if !(threshold > 0) {
		return nil, &distribution.ConfigError{Reason: fmt.Sprintf("loss threshold %g is not positive", threshold)}
	}

	n := len(result.Trials)
	costs := make([]float64, n)

	numOver := 0
	sumCost := 0.0
	sumAttacks := 0.0
	for i, t := range result.Trials {
		costs[i] = t.TotalCost
		sumCost += t.TotalCost
		sumAttacks += float64(t.Attacks)
		if t.TotalCost > threshold {
			numOver++
		}
	}

	meanCost := sumCost / float64(n)
	variance := 0.0
	for _, c := range costs {
		d := c - meanCost
		variance += d * d
	}
	variance /= float64(n)

	sort.Float64s(costs)

	a := &Assessment{
		Threshold:    threshold,
		Trials:       n,
		NumOver:      numOver,
		Risk:         float64(numOver) / float64(n),
		MeanAttacks:  sumAttacks / float64(n),
		MeanCost:     meanCost,
		CostVariance: variance,
		Percentiles:  percentiles(costs, defaultPercentiles),
		Histogram:    histogram(costs, DefaultHistogramBins),
		Exceedance:   exceedance(costs, DefaultExceedanceBins),
	}
	return a, nil
}

// percentiles computes nearest-rank percentiles over sorted costs.
func percentiles(sorted []float64, ranks []float64) []Percentile {
	out := make([]Percentile, len(ranks))
	n := len(sorted)
	for i, r := range ranks {
		idx := int(math.Ceil(r/100*float64(n))) - 1
		if idx < 0 {
			idx = 0
		}
		if idx >= n {
			idx = n - 1
		}
		out[i] = Percentile{Rank: r, Value: sorted[idx]}
	}
	return out
}

// histogram buckets sorted costs into equal-width bins over [0, max].
func histogram(sorted []float64, bins int) []HistogramBin {
	max := sorted[len(sorted)-1]
	if max <= 0 {
		max = 1
	}
	width := max / float64(bins)

	out := make([]HistogramBin, bins)
	for i := range out {
		out[i] = HistogramBin{
			LowerBound: float64(i) * width,
			UpperBound: float64(i+1) * width,
		}
	}
	for _, c := range sorted {
		idx := int(c / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		out[idx].Count++
	}
	return out
}

// exceedance builds the loss-exceedance curve: for each loss level, the
// fraction of trials whose cost reaches that level or more. Computed as a
// reversed cumulative histogram over [0, max].
func exceedance(sorted []float64, bins int) []ExceedancePoint {
	n := len(sorted)
	max := sorted[n-1]
	if max <= 0 {
		max = 1
	}
	width := max / float64(bins)

	out := make([]ExceedancePoint, bins)
	for i := 0; i < bins; i++ {
		loss := float64(i) * width
		// First index with cost >= loss; everything from there exceeds
		idx := sort.SearchFloat64s(sorted, loss)
		out[i] = ExceedancePoint{
			Loss:        loss,
			Probability: float64(n-idx) / float64(n),
		}
	}
	return out
}
