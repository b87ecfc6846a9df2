package distribution

import (
	"errors"
	"math"
	"testing"
)

func validTable(t *testing.T) FrequencyTable {
	t.Helper()

	table, err := NewTable(
		[]float64{1, 2, 8, 18},
		[]float64{0.4, 0.3, 0.2, 0.1},
	)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	return table
}

func TestNewTable_LengthMismatch(t *testing.T) {
	_, err := NewTable([]float64{1, 2}, []float64{0.5})
	if err == nil {
		t.Fatal("expected error for mismatched lengths")
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigError, got %T", err)
	}
}

func TestValidate_ValidTable(t *testing.T) {
	table := validTable(t)
	if err := table.Validate(0); err != nil {
		t.Errorf("valid table rejected: %v", err)
	}
}

func TestValidate_TooFewBuckets(t *testing.T) {
	table := FrequencyTable{{Boundary: 1, Mass: 1}}
	if err := table.Validate(0); err == nil {
		t.Error("expected error for single-bucket table")
	}
}

func TestValidate_NonPositiveBoundary(t *testing.T) {
	table := FrequencyTable{
		{Boundary: 0, Mass: 0.5},
		{Boundary: 2, Mass: 0.5},
	}
	if err := table.Validate(0); err == nil {
		t.Error("expected error for zero boundary")
	}
}

func TestValidate_NonIncreasingBoundaries(t *testing.T) {
	table := FrequencyTable{
		{Boundary: 2, Mass: 0.5},
		{Boundary: 2, Mass: 0.5},
	}
	if err := table.Validate(0); err == nil {
		t.Error("expected error for equal boundaries")
	}

	table = FrequencyTable{
		{Boundary: 8, Mass: 0.5},
		{Boundary: 2, Mass: 0.5},
	}
	if err := table.Validate(0); err == nil {
		t.Error("expected error for decreasing boundaries")
	}
}

func TestValidate_NegativeMass(t *testing.T) {
	table := FrequencyTable{
		{Boundary: 1, Mass: -0.1},
		{Boundary: 2, Mass: 1.1},
	}
	if err := table.Validate(0); err == nil {
		t.Error("expected error for negative mass")
	}
}

func TestValidate_MassSumOutsideTolerance(t *testing.T) {
	table := FrequencyTable{
		{Boundary: 1, Mass: 0.4},
		{Boundary: 2, Mass: 0.4},
	}
	if err := table.Validate(0); err == nil {
		t.Error("expected error for masses summing to 0.8")
	}

	// A generous tolerance admits the same table
	if err := table.Validate(0.25); err != nil {
		t.Errorf("expected table to pass with tolerance 0.25, got %v", err)
	}
}

func TestSurvival(t *testing.T) {
	table := validTable(t)
	survival := table.Survival()

	expected := []float64{0.6, 0.3, 0.1, 0.0}
	if len(survival) != len(expected) {
		t.Fatalf("expected %d survival points, got %d", len(expected), len(survival))
	}
	for i, want := range expected {
		if math.Abs(survival[i]-want) > 1e-12 {
			t.Errorf("survival[%d] = %g, want %g", i, survival[i], want)
		}
	}
}

func TestBoundariesAndMasses(t *testing.T) {
	table := validTable(t)

	bs := table.Boundaries()
	ms := table.Masses()
	if len(bs) != len(table) || len(ms) != len(table) {
		t.Fatalf("accessor lengths do not match table length %d", len(table))
	}
	if bs[2] != 8 || ms[2] != 0.2 {
		t.Errorf("unexpected accessor values: boundary %g mass %g", bs[2], ms[2])
	}
}
