// Package simulation runs the Monte Carlo loop: N independent simulated
// years, each pairing a sampled attack count with a sampled total cost.
package simulation

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-risksim/pkg/costmodel"
	"github.com/dd0wney/cluso-risksim/pkg/distribution"
	"github.com/dd0wney/cluso-risksim/pkg/logging"
	"github.com/dd0wney/cluso-risksim/pkg/metrics"
	"github.com/dd0wney/cluso-risksim/pkg/sampling"
)

// Mode selects how yearly attack counts are drawn.
type Mode string

const (
	// ModeFitted redraws each trial's attack count from the fitted power
	// law. This is the primary, theoretically grounded mode.
	ModeFitted Mode = "fitted"
	// ModePool resamples attack counts from a previously generated
	// empirical pool. Used as a cross-check, never as the default.
	ModePool Mode = "pool"
)

// DefaultTrials is the number of simulated years when the caller does not
// specify one.
const DefaultTrials = 5000

// trialBatchSize is the cancellation checkpoint granularity for parallel
// runs: the context is checked between batches, and every trial inside a
// batch runs to completion.
const trialBatchSize = 256

// Trial is the outcome of one simulated year.
type Trial struct {
	Attacks   int     `json:"attacks"`
	TotalCost float64 `json:"total_cost"`
}

// Result is the full trial set of one run. It is read-only once produced.
// A cancelled run carries the trials completed so far with Complete=false;
// a Result is never silently reported as full-length when it is not.
type Result struct {
	RunID    uuid.UUID `json:"run_id"`
	Seed     int64     `json:"seed"`
	Trials   []Trial   `json:"trials"`
	Complete bool      `json:"complete"`
}

// Options configure a simulation engine.
type Options struct {
	Trials  int   // number of simulated years, > 0
	Seed    int64 // base seed; each trial derives its own stream from it
	Workers int   // 0 or 1 runs serially
	Mode    Mode  // defaults to ModeFitted
	Pool    []int // empirical attack-count pool, required for ModePool
}

// DefaultOptions returns the default engine configuration.
func DefaultOptions() Options {
	return Options{
		Trials:  DefaultTrials,
		Workers: 1,
		Mode:    ModeFitted,
	}
}

// Engine orchestrates the Monte Carlo trials for one pair of fitted
// distributions. All model validation happens in New, before any trial
// runs; an Engine never simulates with invalid parameters.
type Engine struct {
	law  distribution.PowerLaw
	cost costmodel.Lognormal
	pool *sampling.Pool
	opts Options

	logger  logging.Logger
	metrics *metrics.Registry
}

// New builds an engine after validating every input.
func New(law distribution.PowerLaw, cost costmodel.Lognormal, opts Options, extra ...Option) (*Engine, error) {
	if err := law.Validate(); err != nil {
		return nil, err
	}
	if err := cost.Validate(); err != nil {
		return nil, err
	}
	if opts.Trials <= 0 {
		return nil, &distribution.ConfigError{Reason: fmt.Sprintf("trial count %d is not positive", opts.Trials)}
	}
	if opts.Workers < 0 {
		return nil, &distribution.ConfigError{Reason: fmt.Sprintf("worker count %d is negative", opts.Workers)}
	}
	if opts.Mode == "" {
		opts.Mode = ModeFitted
	}

	e := &Engine{
		law:    law,
		cost:   cost,
		opts:   opts,
		logger: logging.Nop(),
	}

	switch opts.Mode {
	case ModeFitted:
	case ModePool:
		pool, err := sampling.NewPool(opts.Pool)
		if err != nil {
			return nil, err
		}
		e.pool = pool
	default:
		return nil, &distribution.ConfigError{Reason: fmt.Sprintf("unknown sampling mode %q", opts.Mode)}
	}

	for _, o := range extra {
		o(e)
	}
	return e, nil
}

// Option customises an Engine beyond its numeric parameters.
type Option func(*Engine)

// WithLogger attaches a structured logger to the engine.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics attaches a metrics registry to the engine.
func WithMetrics(m *metrics.Registry) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// Run executes the trials and returns the result.
//
// Given the same options and distributions, the result is byte-for-byte
// identical across runs and across worker counts: trial i derives its own
// random stream from (seed, i), so no trial observes another's draws.
//
// On cancellation Run returns the partial result, marked incomplete,
// together with the context error. On a sampling defect (NaN/Inf draw)
// Run returns no result at all.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{
		RunID:  uuid.New(),
		Seed:   e.opts.Seed,
		Trials: make([]Trial, e.opts.Trials),
	}

	e.logger.Info("simulation starting",
		logging.Stage("simulate"),
		logging.RunID(res.RunID.String()),
		logging.Trials(e.opts.Trials),
		logging.Seed(e.opts.Seed),
		logging.String("mode", string(e.opts.Mode)),
		logging.Int("workers", e.opts.Workers),
	)

	var (
		done int
		err  error
	)
	if e.opts.Workers > 1 {
		done, err = e.runParallel(ctx, res.Trials)
	} else {
		done, err = e.runSerial(ctx, res.Trials)
	}

	if err != nil && ctx.Err() == nil {
		// A degenerate draw is a defect in the inputs; return no result
		// rather than a partially garbage trial set.
		e.logger.Error("simulation aborted", logging.Stage("simulate"), logging.Error(err))
		if e.metrics != nil {
			e.metrics.RecordRun("error", time.Since(start))
		}
		return nil, err
	}

	res.Trials = res.Trials[:done]
	res.Complete = done == e.opts.Trials

	if e.metrics != nil {
		status := "ok"
		if !res.Complete {
			status = "cancelled"
		}
		e.metrics.RecordRun(status, time.Since(start))
		for _, t := range res.Trials {
			e.metrics.RecordTrial(t.Attacks, t.TotalCost)
		}
	}

	if !res.Complete {
		e.logger.Warn("simulation cancelled",
			logging.Stage("simulate"),
			logging.RunID(res.RunID.String()),
			logging.Int("completed", done),
			logging.Trials(e.opts.Trials),
		)
		return res, ctx.Err()
	}

	e.logger.Info("simulation complete",
		logging.Stage("simulate"),
		logging.RunID(res.RunID.String()),
		logging.Trials(done),
		logging.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

func (e *Engine) runSerial(ctx context.Context, trials []Trial) (int, error) {
	for i := range trials {
		if ctx.Err() != nil {
			return i, ctx.Err()
		}
		t, err := e.runTrial(i)
		if err != nil {
			return i, err
		}
		trials[i] = t
	}
	return len(trials), nil
}

func (e *Engine) runParallel(ctx context.Context, trials []Trial) (int, error) {
	pool, err := NewWorkerPool(e.opts.Workers)
	if err != nil {
		return 0, err
	}
	defer pool.Close()

	for batchStart := 0; batchStart < len(trials); batchStart += trialBatchSize {
		if ctx.Err() != nil {
			return batchStart, ctx.Err()
		}

		batchEnd := batchStart + trialBatchSize
		if batchEnd > len(trials) {
			batchEnd = len(trials)
		}

		var (
			wg       sync.WaitGroup
			errMu    sync.Mutex
			batchErr error
		)
		for i := batchStart; i < batchEnd; i++ {
			i := i
			wg.Add(1)
			pool.Submit(func() {
				defer wg.Done()
				t, err := e.runTrial(i)
				if err != nil {
					errMu.Lock()
					if batchErr == nil {
						batchErr = err
					}
					errMu.Unlock()
					return
				}
				trials[i] = t
			})
		}
		wg.Wait()

		if batchErr != nil {
			return batchStart, batchErr
		}
	}
	return len(trials), nil
}

// runTrial simulates one year. The trial owns a private random stream
// derived from (base seed, trial index): the attack-count draw comes
// first, then one cost draw per attack, so a trial's outcome depends only
// on its own stream.
func (e *Engine) runTrial(i int) (Trial, error) {
	rng := rand.New(rand.NewSource(trialSeed(e.opts.Seed, i)))

	var (
		attacks int
		err     error
	)
	if e.pool != nil {
		attacks = e.pool.Draw(rng)
	} else {
		attacks, err = sampling.NewSampler(e.law, rng).Next()
		if err != nil {
			return Trial{}, err
		}
	}

	cost, err := costmodel.NewSampler(e.cost, rng).SampleSum(attacks)
	if err != nil {
		return Trial{}, err
	}

	return Trial{Attacks: attacks, TotalCost: cost}, nil
}

// trialSeed mixes the base seed with the trial index (splitmix64 finalizer)
// so neighbouring trials get well-separated streams.
func trialSeed(base int64, i int) int64 {
	z := uint64(base) + uint64(i+1)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return int64(z ^ (z >> 31))
}
