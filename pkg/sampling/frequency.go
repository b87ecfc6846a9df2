// Package sampling draws synthetic yearly attack counts from a fitted
// power-law tail by inverse-CDF sampling, with an optional empirical-pool
// mode used as a cross-check.
package sampling

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/dd0wney/cluso-risksim/pkg/distribution"
)

// SamplingError reports a degenerate draw (NaN or infinity). Draws only
// degenerate when a model parameter is invalid, so this is a defect in the
// inputs, never a recoverable numeric nuisance.
type SamplingError struct {
	Reason string
}

func (e *SamplingError) Error() string {
	return "sampling: " + e.Reason
}

// Sampler draws yearly attack counts from a fitted power law using an
// injected random source. Not safe for concurrent use; give each worker its
// own Sampler over an independently seeded source.
type Sampler struct {
	law distribution.PowerLaw
	rng *rand.Rand
	cap int
}

// NewSampler binds a fitted power law to a random source. Draws are capped
// at distribution.MaxAnnualIncidents.
func NewSampler(law distribution.PowerLaw, rng *rand.Rand) *Sampler {
	return &Sampler{law: law, rng: rng, cap: distribution.MaxAnnualIncidents}
}

// Next draws one yearly attack count by inverse-transform sampling:
//
//	x = b / (1-u)^(1/a), u ~ Uniform(0,1)
//
// The count is floor(x), clamped to [0, MaxAnnualIncidents].
func (s *Sampler) Next() (int, error) {
	u := s.rng.Float64() // in [0, 1), so 1-u is never zero
	x := s.law.Scale / math.Pow(1-u, 1/s.law.Exponent)

	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, &SamplingError{
			Reason: fmt.Sprintf("inverse-CDF draw produced %g with a=%g b=%g u=%g", x, s.law.Exponent, s.law.Scale, u),
		}
	}

	n := int(math.Floor(x))
	if n < 0 {
		n = 0
	}
	if n > s.cap {
		n = s.cap
	}
	return n, nil
}

// Stream is a restartable, infinite sequence of attack counts. Resetting
// the stream replays the exact same draws, so a fixed seed reproduces a
// run deterministically.
type Stream struct {
	law  distribution.PowerLaw
	seed int64
	s    *Sampler
}

// NewStream creates a seeded attack-count stream for the given law.
func NewStream(law distribution.PowerLaw, seed int64) *Stream {
	st := &Stream{law: law, seed: seed}
	st.Reset()
	return st
}

// Next draws the next attack count in the sequence.
func (st *Stream) Next() (int, error) {
	return st.s.Next()
}

// Reset restarts the sequence from its first draw.
func (st *Stream) Reset() {
	st.s = NewSampler(st.law, rand.New(rand.NewSource(st.seed)))
}

// Take draws the next n attack counts.
func (st *Stream) Take(n int) ([]int, error) {
	out := make([]int, n)
	for i := range out {
		v, err := st.s.Next()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Rebucket is a diagnostic that buckets a sample of attack counts against
// the original table boundaries and returns the observed fraction per
// bucket. For a good fit on a large sample the fractions approximately
// reproduce the table masses. Bucket i spans [boundary_i, boundary_i+1);
// the final bucket is open-ended, and counts below the first boundary are
// folded into the first bucket.
func Rebucket(counts []int, boundaries []float64) ([]float64, error) {
	if len(boundaries) == 0 {
		return nil, &SamplingError{Reason: "rebucket needs at least one boundary"}
	}
	if len(counts) == 0 {
		return nil, &SamplingError{Reason: "rebucket needs a non-empty sample"}
	}

	fractions := make([]float64, len(boundaries))
	for _, c := range counts {
		idx := 0
		for i := len(boundaries) - 1; i > 0; i-- {
			if float64(c) >= boundaries[i] {
				idx = i
				break
			}
		}
		fractions[idx]++
	}

	n := float64(len(counts))
	for i := range fractions {
		fractions[i] /= n
	}
	return fractions, nil
}
