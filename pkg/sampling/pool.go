package sampling

import (
	"fmt"
	"math/rand"
)

// Pool resamples yearly attack counts from a previously generated empirical
// pool instead of redrawing from the fitted tail. It exists as a
// cross-check against the fitted sampler and must be selected explicitly;
// the fitted power law is always the primary mode.
type Pool struct {
	counts []int
}

// NewPool wraps an empirical pool of attack counts.
func NewPool(counts []int) (*Pool, error) {
	if len(counts) == 0 {
		return nil, &SamplingError{Reason: "empirical pool is empty"}
	}
	for i, c := range counts {
		if c < 0 {
			return nil, &SamplingError{Reason: fmt.Sprintf("pool entry %d is negative: %d", i, c)}
		}
	}
	cp := make([]int, len(counts))
	copy(cp, counts)
	return &Pool{counts: cp}, nil
}

// Draw resamples one attack count from the pool, with replacement.
func (p *Pool) Draw(rng *rand.Rand) int {
	return p.counts[rng.Intn(len(p.counts))]
}

// Size returns the number of counts in the pool.
func (p *Pool) Size() int {
	return len(p.counts)
}
