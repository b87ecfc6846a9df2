package store

import (
	"context"
	"time"

	"github.com/dd0wney/cluso-risksim/pkg/costmodel"
	"github.com/dd0wney/cluso-risksim/pkg/distribution"
	"github.com/dd0wney/cluso-risksim/pkg/logging"
	"github.com/dd0wney/cluso-risksim/pkg/metrics"
)

// RegenerateReport summarises a regeneration pass over the store.
type RegenerateReport struct {
	Attempted int
	Fitted    int
	Skipped   int // pairings with no or unusable empirical data
}

// RegenerateOptions configure a regeneration pass.
type RegenerateOptions struct {
	// Pairings restricts the pass; empty means every pairing in the store.
	Pairings []Pairing
	// MassTolerance is passed to table validation; zero means the default.
	MassTolerance float64

	Logger  logging.Logger
	Metrics *metrics.Registry
}

// Regenerate refits the frequency and cost distributions for each pairing
// from the empirical data in the store and writes the derived parameters
// back. Pairings whose data cannot support a fit are skipped and logged,
// not fatal: one bad survey slice should not abort the rest of the pass.
func Regenerate(ctx context.Context, s Store, opts RegenerateOptions) (RegenerateReport, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}

	pairings := opts.Pairings
	if len(pairings) == 0 {
		var err error
		pairings, err = s.Pairings(ctx)
		if err != nil {
			return RegenerateReport{}, err
		}
	}

	var report RegenerateReport
	for _, p := range pairings {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Attempted++

		fitted, err := regenerateOne(ctx, s, p, opts)
		if err != nil {
			report.Skipped++
			log.Warn("skipping pairing",
				logging.Pairing(p.Size, p.Industry),
				logging.Error(err),
			)
			continue
		}

		if err := s.SaveDistributions(ctx, fitted); err != nil {
			return report, err
		}
		report.Fitted++
		log.Info("distributions regenerated",
			logging.Pairing(p.Size, p.Industry),
			logging.Float64("exponent", fitted.Frequency.Exponent),
			logging.Float64("scale", fitted.Frequency.Scale),
			logging.Float64("mu", fitted.Cost.Mu),
			logging.Float64("sigma", fitted.Cost.Sigma),
		)
	}
	return report, nil
}

func regenerateOne(ctx context.Context, s Store, p Pairing, opts RegenerateOptions) (FittedDistributions, error) {
	table, err := s.FrequencyTable(ctx, p)
	if err != nil {
		return FittedDistributions{}, err
	}
	if err := table.Validate(opts.MassTolerance); err != nil {
		return FittedDistributions{}, err
	}

	stats, err := s.CostStats(ctx, p)
	if err != nil {
		return FittedDistributions{}, err
	}

	fitStart := time.Now()
	law, err := distribution.FitPowerLaw(table)
	if opts.Metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		opts.Metrics.RecordFit(status, time.Since(fitStart))
	}
	if err != nil {
		return FittedDistributions{}, err
	}

	cost, err := costmodel.Derive(stats)
	if err != nil {
		return FittedDistributions{}, err
	}

	return FittedDistributions{Pairing: p, Frequency: law, Cost: cost}, nil
}
