package distribution

import (
	"fmt"
	"math"
)

// PowerLaw is a fitted Pareto-style tail model for annual incident counts.
// Its survival function is S(x) = (Scale/x)^Exponent for x >= Scale.
type PowerLaw struct {
	Exponent float64 // a > 0, tail decay rate
	Scale    float64 // b > 0, lower bound of the tail
}

// FitError reports that a power-law tail could not be fitted to the
// empirical table.
type FitError struct {
	Reason string
}

func (e *FitError) Error() string {
	return "power-law fit: " + e.Reason
}

// Survival evaluates the fitted survival function at x.
func (p PowerLaw) Survival(x float64) float64 {
	if x <= p.Scale {
		return 1.0
	}
	return math.Pow(p.Scale/x, p.Exponent)
}

// Validate checks the fitted parameter invariants.
func (p PowerLaw) Validate() error {
	if !(p.Exponent > 0) || math.IsInf(p.Exponent, 0) {
		return &FitError{Reason: fmt.Sprintf("exponent %g is not a positive finite value", p.Exponent)}
	}
	if !(p.Scale > 0) || math.IsInf(p.Scale, 0) {
		return &FitError{Reason: fmt.Sprintf("scale %g is not a positive finite value", p.Scale)}
	}
	return nil
}

// FitPowerLaw fits a power-law tail to an empirical frequency table by
// ordinary least squares on the log-log survival curve:
//
//	ln S(x) = intercept + slope * ln x
//
// with a = -slope and b = exp(intercept/a). Buckets whose survival mass is
// zero or negative carry no information for the tail and are discarded; at
// least two usable points must remain.
func FitPowerLaw(table FrequencyTable) (PowerLaw, error) {
	if len(table) < 2 {
		return PowerLaw{}, &FitError{Reason: fmt.Sprintf("need at least 2 buckets, got %d", len(table))}
	}

	survival := table.Survival()

	// Keep only points where ln(S) is defined.
	xs := make([]float64, 0, len(table))
	ys := make([]float64, 0, len(table))
	for i, s := range survival {
		if s <= 0 {
			continue
		}
		if table[i].Boundary <= 0 {
			return PowerLaw{}, &FitError{Reason: fmt.Sprintf("bucket %d: boundary %g is not positive", i, table[i].Boundary)}
		}
		xs = append(xs, math.Log(table[i].Boundary))
		ys = append(ys, math.Log(s))
	}

	if len(xs) < 2 {
		return PowerLaw{}, &FitError{Reason: fmt.Sprintf("only %d usable buckets with positive survival mass, need at least 2", len(xs))}
	}

	slope, intercept, err := leastSquares(xs, ys)
	if err != nil {
		return PowerLaw{}, err
	}

	a := -slope
	if !(a > 0) {
		return PowerLaw{}, &FitError{Reason: fmt.Sprintf("fitted exponent %g is not positive, tail does not decay", a)}
	}
	b := math.Exp(intercept / a)

	law := PowerLaw{Exponent: a, Scale: b}
	if err := law.Validate(); err != nil {
		return PowerLaw{}, err
	}
	return law, nil
}

// leastSquares performs an ordinary least-squares regression of ys on xs.
func leastSquares(xs, ys []float64) (slope, intercept float64, err error) {
	n := float64(len(xs))

	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / n
	meanY := sumY / n

	var sxx, sxy float64
	for i := range xs {
		dx := xs[i] - meanX
		sxx += dx * dx
		sxy += dx * (ys[i] - meanY)
	}

	if sxx == 0 {
		return 0, 0, &FitError{Reason: "singular regression: all boundaries are equal"}
	}

	slope = sxy / sxx
	intercept = meanY - slope*meanX
	return slope, intercept, nil
}
