package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dd0wney/cluso-risksim/pkg/costmodel"
	"github.com/dd0wney/cluso-risksim/pkg/distribution"
)

// PostgresStore implements Store on top of an injected pgx connection
// pool. The pool's lifecycle belongs to the caller; this type never opens
// or closes connections of its own.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("postgres store needs a connection pool")
	}
	return &PostgresStore{pool: pool}, nil
}

// FrequencyTable loads the empirical incident-frequency table for a pairing.
func (s *PostgresStore) FrequencyTable(ctx context.Context, p Pairing) (distribution.FrequencyTable, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT boundary, mass
		   FROM frequency_buckets
		  WHERE org_size = $1 AND industry = $2
		  ORDER BY boundary`,
		p.Size, p.Industry,
	)
	if err != nil {
		return nil, fmt.Errorf("query frequency table for %s: %w", p, err)
	}
	defer rows.Close()

	var table distribution.FrequencyTable
	for rows.Next() {
		var b distribution.Bucket
		if err := rows.Scan(&b.Boundary, &b.Mass); err != nil {
			return nil, fmt.Errorf("scan frequency bucket for %s: %w", p, err)
		}
		table = append(table, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read frequency table for %s: %w", p, err)
	}
	if len(table) == 0 {
		return nil, ErrNotFound
	}
	return table, nil
}

// CostStats loads the published cost summary statistics for a pairing.
func (s *PostgresStore) CostStats(ctx context.Context, p Pairing) (costmodel.CostStats, error) {
	if err := p.Validate(); err != nil {
		return costmodel.CostStats{}, err
	}

	var stats costmodel.CostStats
	err := s.pool.QueryRow(ctx,
		`SELECT mean_cost, median_cost
		   FROM cost_summaries
		  WHERE org_size = $1 AND industry = $2`,
		p.Size, p.Industry,
	).Scan(&stats.Mean, &stats.Median)
	if errors.Is(err, pgx.ErrNoRows) {
		return costmodel.CostStats{}, ErrNotFound
	}
	if err != nil {
		return costmodel.CostStats{}, fmt.Errorf("query cost stats for %s: %w", p, err)
	}
	return stats, nil
}

// SaveDistributions upserts the fitted parameters for a pairing.
func (s *PostgresStore) SaveDistributions(ctx context.Context, fitted FittedDistributions) error {
	if err := fitted.Pairing.Validate(); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO fitted_distributions
		        (id, org_size, industry, exponent, scale, mu, sigma, generated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		 ON CONFLICT (org_size, industry) DO UPDATE
		    SET exponent = EXCLUDED.exponent,
		        scale = EXCLUDED.scale,
		        mu = EXCLUDED.mu,
		        sigma = EXCLUDED.sigma,
		        generated_at = EXCLUDED.generated_at`,
		uuid.New(), fitted.Pairing.Size, fitted.Pairing.Industry,
		fitted.Frequency.Exponent, fitted.Frequency.Scale,
		fitted.Cost.Mu, fitted.Cost.Sigma,
	)
	if err != nil {
		return fmt.Errorf("save distributions for %s: %w", fitted.Pairing, err)
	}
	return nil
}

// Distributions loads previously fitted parameters for a pairing.
func (s *PostgresStore) Distributions(ctx context.Context, p Pairing) (FittedDistributions, error) {
	if err := p.Validate(); err != nil {
		return FittedDistributions{}, err
	}

	fitted := FittedDistributions{Pairing: p}
	err := s.pool.QueryRow(ctx,
		`SELECT exponent, scale, mu, sigma
		   FROM fitted_distributions
		  WHERE org_size = $1 AND industry = $2`,
		p.Size, p.Industry,
	).Scan(&fitted.Frequency.Exponent, &fitted.Frequency.Scale, &fitted.Cost.Mu, &fitted.Cost.Sigma)
	if errors.Is(err, pgx.ErrNoRows) {
		return FittedDistributions{}, ErrNotFound
	}
	if err != nil {
		return FittedDistributions{}, fmt.Errorf("query distributions for %s: %w", p, err)
	}
	return fitted, nil
}

// Pairings lists every pairing the store has empirical data for.
func (s *PostgresStore) Pairings(ctx context.Context) ([]Pairing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT org_size, industry FROM frequency_buckets ORDER BY org_size, industry`,
	)
	if err != nil {
		return nil, fmt.Errorf("query pairings: %w", err)
	}
	defer rows.Close()

	var out []Pairing
	for rows.Next() {
		var p Pairing
		if err := rows.Scan(&p.Size, &p.Industry); err != nil {
			return nil, fmt.Errorf("scan pairing: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read pairings: %w", err)
	}
	return out, nil
}
