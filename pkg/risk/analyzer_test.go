package risk

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-risksim/pkg/costmodel"
	"github.com/dd0wney/cluso-risksim/pkg/distribution"
	"github.com/dd0wney/cluso-risksim/pkg/simulation"
)

func fixedResult(costs []float64, attacks []int) *simulation.Result {
	trials := make([]simulation.Trial, len(costs))
	for i := range costs {
		trials[i] = simulation.Trial{Attacks: attacks[i], TotalCost: costs[i]}
	}
	return &simulation.Result{
		RunID:    uuid.New(),
		Trials:   trials,
		Complete: true,
	}
}

func TestAnalyze_ExceedanceRisk(t *testing.T) {
	res := fixedResult(
		[]float64{1000, 2000, 3000, 4000},
		[]int{1, 2, 3, 4},
	)

	a, err := Analyze(res, 2500)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	if a.NumOver != 2 {
		t.Errorf("num over = %d, want 2", a.NumOver)
	}
	if a.Risk != 0.5 {
		t.Errorf("risk = %g, want 0.5", a.Risk)
	}
	if a.Trials != 4 {
		t.Errorf("trials = %d, want 4", a.Trials)
	}
	if a.MeanCost != 2500 {
		t.Errorf("mean cost = %g, want 2500", a.MeanCost)
	}
	if a.MeanAttacks != 2.5 {
		t.Errorf("mean attacks = %g, want 2.5", a.MeanAttacks)
	}

	// Population variance of {1000,2000,3000,4000}
	if math.Abs(a.CostVariance-1250000) > 1e-6 {
		t.Errorf("variance = %g, want 1250000", a.CostVariance)
	}
}

func TestAnalyze_ThresholdIsExclusive(t *testing.T) {
	// A cost exactly at the threshold does not exceed it
	res := fixedResult([]float64{2500, 2500.01}, []int{1, 1})

	a, err := Analyze(res, 2500)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if a.NumOver != 1 {
		t.Errorf("num over = %d, want 1", a.NumOver)
	}
}

func TestAnalyze_Percentiles(t *testing.T) {
	res := fixedResult(
		[]float64{4000, 1000, 3000, 2000}, // unsorted on purpose
		[]int{1, 1, 1, 1},
	)

	a, err := Analyze(res, 100)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	want := map[float64]float64{
		50: 2000,
		75: 3000,
		90: 4000,
		95: 4000,
		99: 4000,
	}
	for _, p := range a.Percentiles {
		if want[p.Rank] != p.Value {
			t.Errorf("p%g = %g, want %g", p.Rank, p.Value, want[p.Rank])
		}
	}
}

func TestAnalyze_HistogramCountsSumToTrials(t *testing.T) {
	res := fixedResult(
		[]float64{0, 10, 250, 777, 1500, 9999, 10000},
		[]int{0, 1, 1, 1, 2, 3, 4},
	)

	a, err := Analyze(res, 5000)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	if len(a.Histogram) != DefaultHistogramBins {
		t.Fatalf("got %d bins, want %d", len(a.Histogram), DefaultHistogramBins)
	}
	total := 0
	for _, bin := range a.Histogram {
		total += bin.Count
	}
	if total != len(res.Trials) {
		t.Errorf("histogram counts sum to %d, want %d", total, len(res.Trials))
	}
}

func TestAnalyze_ExceedanceCurve(t *testing.T) {
	res := fixedResult(
		[]float64{100, 200, 300, 400},
		[]int{1, 1, 1, 1},
	)

	a, err := Analyze(res, 250)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	if len(a.Exceedance) != DefaultExceedanceBins {
		t.Fatalf("got %d curve points, want %d", len(a.Exceedance), DefaultExceedanceBins)
	}

	// At zero loss every trial exceeds; the curve never increases
	if a.Exceedance[0].Probability != 1.0 {
		t.Errorf("P(loss >= 0) = %g, want 1", a.Exceedance[0].Probability)
	}
	prev := 1.0
	for i, pt := range a.Exceedance {
		if pt.Probability > prev {
			t.Fatalf("curve increases at point %d", i)
		}
		prev = pt.Probability
	}
}

func TestAnalyze_RefusesBadInputs(t *testing.T) {
	valid := fixedResult([]float64{100}, []int{1})

	t.Run("nil result", func(t *testing.T) {
		if _, err := Analyze(nil, 100); err == nil {
			t.Error("expected error for nil result")
		}
	})

	t.Run("incomplete result", func(t *testing.T) {
		partial := fixedResult([]float64{100}, []int{1})
		partial.Complete = false
		if _, err := Analyze(partial, 100); err == nil {
			t.Error("expected error for incomplete result")
		}
	})

	t.Run("non-positive threshold", func(t *testing.T) {
		if _, err := Analyze(valid, 0); err == nil {
			t.Error("expected error for zero threshold")
		}
		if _, err := Analyze(valid, -5); err == nil {
			t.Error("expected error for negative threshold")
		}
	})
}

func TestAnalyze_DoesNotMutateResult(t *testing.T) {
	res := fixedResult(
		[]float64{4000, 1000, 3000, 2000},
		[]int{4, 1, 3, 2},
	)

	if _, err := Analyze(res, 2500); err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	want := []float64{4000, 1000, 3000, 2000}
	for i, tr := range res.Trials {
		if tr.TotalCost != want[i] {
			t.Fatalf("trial %d mutated: cost %g, want %g", i, tr.TotalCost, want[i])
		}
	}
}

// TestAnalyze_FixedSeedRegression pins the full pipeline to recorded
// reference figures for seed 42, 5000 trials, threshold 2500 with the
// standing models (law a=1.2 b=1, costs from mean=3230 median=274).
//
// With b=1 the inverse CDF draws x >= 1, so every simulated year has at
// least one incident; the derived sigma is tiny, so each incident costs
// close to the 3230 mean and every trial exceeds the 2500 threshold. The
// mean-cost figure is the sensitive one: any change to the per-trial seed
// derivation, the draw order, or the sampling formulas shifts it by whole
// units, far outside the tolerance.
func TestAnalyze_FixedSeedRegression(t *testing.T) {
	const (
		refRisk        = 1.0
		refNumOver     = 5000
		refMeanAttacks = 4.0776
		refMeanCost    = 13170.659590780411
	)

	law := distribution.PowerLaw{Exponent: 1.2, Scale: 1}
	cost, err := costmodel.Derive(costmodel.CostStats{Mean: 3230, Median: 274})
	if err != nil {
		t.Fatalf("derive failed: %v", err)
	}

	run := func() *Assessment {
		engine, err := simulation.New(law, cost, simulation.Options{
			Trials: 5000, Seed: 42, Workers: 1, Mode: simulation.ModeFitted,
		})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		res, err := engine.Run(context.Background())
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		a, err := Analyze(res, 2500)
		if err != nil {
			t.Fatalf("analyze failed: %v", err)
		}
		return a
	}

	first := run()

	if math.Abs(first.Risk-refRisk) > 1e-12 {
		t.Errorf("risk = %g, want reference %g", first.Risk, refRisk)
	}
	if first.NumOver != refNumOver {
		t.Errorf("numOver = %d, want reference %d", first.NumOver, refNumOver)
	}
	if math.Abs(first.MeanAttacks-refMeanAttacks) > 1e-9 {
		t.Errorf("mean attacks = %.10g, want reference %.10g", first.MeanAttacks, refMeanAttacks)
	}
	if math.Abs(first.MeanCost-refMeanCost) > 1e-6 {
		t.Errorf("mean cost = %.16g, want reference %.16g", first.MeanCost, refMeanCost)
	}

	second := run()
	if first.Risk != second.Risk || first.NumOver != second.NumOver {
		t.Errorf("identical runs diverged: risk %g vs %g, numOver %d vs %d",
			first.Risk, second.Risk, first.NumOver, second.NumOver)
	}
}
