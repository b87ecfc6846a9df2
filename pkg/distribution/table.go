package distribution

import (
	"fmt"
	"math"
)

// DefaultMassTolerance is how far the bucket masses may drift from summing
// to 1 before a table is rejected. Survey-derived tables are published with
// rounded percentages, so the tolerance is deliberately looser than float
// epsilon.
const DefaultMassTolerance = 0.01

// MaxAnnualIncidents caps the number of incidents an organisation can
// experience in a single year. Draws above this are clamped.
const MaxAnnualIncidents = 8000

// CSBSBoundaries is the canonical bucket boundary set used by
// verbal-frequency survey sources ("once per year", "once a month", ...):
// 1 = annually, 2 = less than monthly, 8 = monthly, 18 = weekly,
// 80 = daily, 400 = several times a day, 8000 = cap.
var CSBSBoundaries = []float64{1, 2, 8, 18, 80, 400, MaxAnnualIncidents}

// Bucket is one (boundary, mass) pair of an empirical frequency table.
// The boundary is the lower edge of the incident-count bucket and the mass
// is the probability assigned to it.
type Bucket struct {
	Boundary float64
	Mass     float64
}

// FrequencyTable is a histogram of incident-count buckets, ordered by
// boundary. Tables are loaded once per run and treated as immutable.
type FrequencyTable []Bucket

// ConfigError reports a malformed empirical input (frequency table or
// run parameters) before any model is built.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Reason
}

// NewTable pairs up boundaries and masses into a FrequencyTable.
func NewTable(boundaries, masses []float64) (FrequencyTable, error) {
	if len(boundaries) != len(masses) {
		return nil, &ConfigError{
			Reason: fmt.Sprintf("boundary/mass length mismatch: %d vs %d", len(boundaries), len(masses)),
		}
	}
	table := make(FrequencyTable, len(boundaries))
	for i := range boundaries {
		table[i] = Bucket{Boundary: boundaries[i], Mass: masses[i]}
	}
	return table, nil
}

// Validate checks the table invariants: boundaries strictly increasing and
// positive, masses non-negative, masses summing to 1 within tolerance.
// A tolerance <= 0 falls back to DefaultMassTolerance.
func (t FrequencyTable) Validate(tolerance float64) error {
	if tolerance <= 0 {
		tolerance = DefaultMassTolerance
	}
	if len(t) < 2 {
		return &ConfigError{Reason: fmt.Sprintf("table needs at least 2 buckets, got %d", len(t))}
	}

	sum := 0.0
	prev := 0.0
	for i, b := range t {
		if b.Boundary <= 0 {
			return &ConfigError{Reason: fmt.Sprintf("bucket %d: boundary %g is not positive", i, b.Boundary)}
		}
		if i > 0 && b.Boundary <= prev {
			return &ConfigError{Reason: fmt.Sprintf("bucket %d: boundary %g does not exceed previous boundary %g", i, b.Boundary, prev)}
		}
		if b.Mass < 0 {
			return &ConfigError{Reason: fmt.Sprintf("bucket %d: mass %g is negative", i, b.Mass)}
		}
		prev = b.Boundary
		sum += b.Mass
	}

	if math.Abs(sum-1.0) > tolerance {
		return &ConfigError{Reason: fmt.Sprintf("bucket masses sum to %g, outside tolerance %g of 1", sum, tolerance)}
	}
	return nil
}

// Boundaries returns the bucket boundaries in order.
func (t FrequencyTable) Boundaries() []float64 {
	out := make([]float64, len(t))
	for i, b := range t {
		out[i] = b.Boundary
	}
	return out
}

// Masses returns the bucket masses in order.
func (t FrequencyTable) Masses() []float64 {
	out := make([]float64, len(t))
	for i, b := range t {
		out[i] = b.Mass
	}
	return out
}

// Survival returns the empirical survival values S_i = 1 - F_i, where F_i
// is the cumulative mass up to and including bucket i.
func (t FrequencyTable) Survival() []float64 {
	out := make([]float64, len(t))
	cum := 0.0
	for i, b := range t {
		cum += b.Mass
		out[i] = 1.0 - cum
	}
	return out
}
