// Package store is the collaborator surface between the numerical core and
// whatever backing store holds the survey-derived inputs and the fitted
// distributions. The core never talks to a store directly; loaders receive
// an explicit Store so the pipeline stays independently testable.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/dd0wney/cluso-risksim/pkg/costmodel"
	"github.com/dd0wney/cluso-risksim/pkg/distribution"
)

// Errors for store operations
var (
	ErrNotFound     = errors.New("no data for pairing")
	ErrEmptyPairing = errors.New("pairing has empty size or industry")
)

// All matches every organisation regardless of size or industry.
const All = "All"

// Pairing identifies the (organisation size, industry) slice a
// distribution belongs to.
type Pairing struct {
	Size     string
	Industry string
}

// AllPairing returns the catch-all pairing.
func AllPairing() Pairing {
	return Pairing{Size: All, Industry: All}
}

func (p Pairing) String() string {
	return p.Size + "/" + p.Industry
}

// Validate checks that both components are present.
func (p Pairing) Validate() error {
	if p.Size == "" || p.Industry == "" {
		return ErrEmptyPairing
	}
	return nil
}

// FittedDistributions are the derived parameters written back by the
// regenerate collaborator for reuse in future runs.
type FittedDistributions struct {
	Pairing   Pairing
	Frequency distribution.PowerLaw
	Cost      costmodel.Lognormal
}

// Store supplies empirical inputs and persists derived distributions.
// Implementations own their query language; callers treat requests and
// responses as opaque.
type Store interface {
	// FrequencyTable loads the empirical incident-frequency table for a pairing.
	FrequencyTable(ctx context.Context, p Pairing) (distribution.FrequencyTable, error)
	// CostStats loads the published cost summary statistics for a pairing.
	CostStats(ctx context.Context, p Pairing) (costmodel.CostStats, error)
	// SaveDistributions writes fitted parameters back for reuse.
	SaveDistributions(ctx context.Context, fitted FittedDistributions) error
	// Distributions loads previously fitted parameters, if any.
	Distributions(ctx context.Context, p Pairing) (FittedDistributions, error)
	// Pairings lists every pairing the store has empirical data for.
	Pairings(ctx context.Context) ([]Pairing, error)
}

// MemoryStore is an in-memory Store for tests and single-shot runs fed
// from configuration files.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[Pairing]distribution.FrequencyTable
	stats  map[Pairing]costmodel.CostStats
	fitted map[Pairing]FittedDistributions
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: make(map[Pairing]distribution.FrequencyTable),
		stats:  make(map[Pairing]costmodel.CostStats),
		fitted: make(map[Pairing]FittedDistributions),
	}
}

// PutEmpirical seeds the store with the inputs for one pairing.
func (m *MemoryStore) PutEmpirical(p Pairing, table distribution.FrequencyTable, stats costmodel.CostStats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[p] = table
	m.stats[p] = stats
}

// FrequencyTable loads the empirical table for a pairing.
func (m *MemoryStore) FrequencyTable(_ context.Context, p Pairing) (distribution.FrequencyTable, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[p]
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

// CostStats loads the cost summary statistics for a pairing.
func (m *MemoryStore) CostStats(_ context.Context, p Pairing) (costmodel.CostStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.stats[p]
	if !ok {
		return costmodel.CostStats{}, ErrNotFound
	}
	return s, nil
}

// SaveDistributions stores fitted parameters for a pairing.
func (m *MemoryStore) SaveDistributions(_ context.Context, fitted FittedDistributions) error {
	if err := fitted.Pairing.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fitted[fitted.Pairing] = fitted
	return nil
}

// Distributions loads fitted parameters for a pairing.
func (m *MemoryStore) Distributions(_ context.Context, p Pairing) (FittedDistributions, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.fitted[p]
	if !ok {
		return FittedDistributions{}, ErrNotFound
	}
	return f, nil
}

// Pairings lists every pairing with empirical data.
func (m *MemoryStore) Pairings(_ context.Context) ([]Pairing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Pairing, 0, len(m.tables))
	for p := range m.tables {
		out = append(out, p)
	}
	return out, nil
}
