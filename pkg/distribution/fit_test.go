package distribution

import (
	"errors"
	"math"
	"testing"
)

// canonicalTable is the CSBS-style survey table used as the standing
// regression fixture for the fitter.
func canonicalTable(t *testing.T) FrequencyTable {
	t.Helper()

	table, err := NewTable(
		CSBSBoundaries,
		[]float64{0.54, 0.1058, 0.1012, 0.0966, 0.069, 0.0368, 0.0414},
	)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	return table
}

func TestFitPowerLaw_CanonicalTable(t *testing.T) {
	law, err := FitPowerLaw(canonicalTable(t))
	if err != nil {
		t.Fatalf("fit failed on canonical table: %v", err)
	}

	if !(law.Exponent > 0) {
		t.Errorf("expected positive exponent, got %g", law.Exponent)
	}
	if !(law.Scale > 0) {
		t.Errorf("expected positive scale, got %g", law.Scale)
	}
}

func TestFitPowerLaw_RecoversExactLaw(t *testing.T) {
	// Table constructed so the empirical survival lies exactly on
	// S(x) = 1/x: the log-log regression must recover a=1, b=1.
	table := FrequencyTable{
		{Boundary: 1, Mass: 0},
		{Boundary: 2, Mass: 0.5},
		{Boundary: 4, Mass: 0.25},
		{Boundary: 8, Mass: 0.125},
		{Boundary: 16, Mass: 0.0625},
	}

	law, err := FitPowerLaw(table)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	if math.Abs(law.Exponent-1.0) > 1e-9 {
		t.Errorf("exponent = %.12f, want 1.0", law.Exponent)
	}
	if math.Abs(law.Scale-1.0) > 1e-9 {
		t.Errorf("scale = %.12f, want 1.0", law.Scale)
	}
}

func TestFitPowerLaw_TooFewBuckets(t *testing.T) {
	_, err := FitPowerLaw(FrequencyTable{{Boundary: 1, Mass: 1}})
	if err == nil {
		t.Fatal("expected error for single-bucket table")
	}

	var fitErr *FitError
	if !errors.As(err, &fitErr) {
		t.Errorf("expected FitError, got %T", err)
	}
}

func TestFitPowerLaw_SingleUsableBucket(t *testing.T) {
	// Second bucket exhausts the mass, so only one point has positive
	// survival.
	table := FrequencyTable{
		{Boundary: 1, Mass: 0.5},
		{Boundary: 2, Mass: 0.5},
	}

	_, err := FitPowerLaw(table)
	if err == nil {
		t.Fatal("expected error with a single usable bucket")
	}

	var fitErr *FitError
	if !errors.As(err, &fitErr) {
		t.Errorf("expected FitError, got %T", err)
	}
}

func TestFitPowerLaw_SingularRegression(t *testing.T) {
	// Equal boundaries give zero variance in ln(x).
	table := FrequencyTable{
		{Boundary: 5, Mass: 0.25},
		{Boundary: 5, Mass: 0.25},
		{Boundary: 5, Mass: 0.25},
	}

	_, err := FitPowerLaw(table)
	if err == nil {
		t.Fatal("expected error for singular regression")
	}

	var fitErr *FitError
	if !errors.As(err, &fitErr) {
		t.Errorf("expected FitError, got %T", err)
	}
}

func TestFitPowerLaw_NonDecayingTail(t *testing.T) {
	// Survival mass increasing with the boundary can only happen with a
	// hand-built table, but the fitter must still refuse the positive
	// slope rather than return a non-decaying model.
	table := FrequencyTable{
		{Boundary: 1, Mass: 0.5},
		{Boundary: 2, Mass: -0.2},
		{Boundary: 4, Mass: -0.3},
	}

	_, err := FitPowerLaw(table)
	if err == nil {
		t.Fatal("expected error for non-decaying tail")
	}

	var fitErr *FitError
	if !errors.As(err, &fitErr) {
		t.Errorf("expected FitError, got %T", err)
	}
}

func TestPowerLaw_Survival(t *testing.T) {
	law := PowerLaw{Exponent: 2, Scale: 3}

	if got := law.Survival(3); got != 1.0 {
		t.Errorf("S(scale) = %g, want 1", got)
	}
	if got := law.Survival(1); got != 1.0 {
		t.Errorf("S below scale = %g, want 1", got)
	}
	if got := law.Survival(6); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("S(6) = %g, want 0.25", got)
	}
}

func TestPowerLaw_Validate(t *testing.T) {
	cases := []struct {
		name string
		law  PowerLaw
		ok   bool
	}{
		{"valid", PowerLaw{Exponent: 1.2, Scale: 1}, true},
		{"zero exponent", PowerLaw{Exponent: 0, Scale: 1}, false},
		{"negative exponent", PowerLaw{Exponent: -1, Scale: 1}, false},
		{"zero scale", PowerLaw{Exponent: 1, Scale: 0}, false},
		{"nan exponent", PowerLaw{Exponent: math.NaN(), Scale: 1}, false},
		{"inf scale", PowerLaw{Exponent: 1, Scale: math.Inf(1)}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.law.Validate()
			if tc.ok && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
