package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dd0wney/cluso-risksim/pkg/config"
	"github.com/dd0wney/cluso-risksim/pkg/costmodel"
	"github.com/dd0wney/cluso-risksim/pkg/distribution"
	"github.com/dd0wney/cluso-risksim/pkg/export"
	"github.com/dd0wney/cluso-risksim/pkg/logging"
	"github.com/dd0wney/cluso-risksim/pkg/metrics"
	"github.com/dd0wney/cluso-risksim/pkg/risk"
	"github.com/dd0wney/cluso-risksim/pkg/sampling"
	"github.com/dd0wney/cluso-risksim/pkg/simulation"
)

// Exit codes, one per pipeline stage that can refuse to run.
const (
	exitOK        = 0
	exitFailure   = 1
	exitConfig    = 2
	exitFit       = 3
	exitCostModel = 4
)

func main() {
	configPath := flag.String("config", "", "Run configuration YAML (required)")
	trials := flag.Int("n", 0, "Override the configured trial count")
	threshold := flag.Float64("threshold", 0, "Override the configured loss threshold")
	seed := flag.Int64("seed", 0, "Override the configured random seed")
	workers := flag.Int("workers", 0, "Override the configured worker count")
	mode := flag.String("mode", "", "Sampling mode: fitted (default) or pool")
	exportPath := flag.String("export", "", "Write the full trial set to this file")
	compress := flag.Bool("compress", false, "Snappy-compress the exported trial set")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address")
	verbose := flag.Bool("v", false, "Verbose output")
	debug := flag.Bool("d", false, "Debug output")
	flag.Parse()

	logger := logging.NewDefaultLogger()
	switch {
	case *debug:
		logger.SetLevel(logging.DebugLevel)
	case *verbose:
		logger.SetLevel(logging.InfoLevel)
	default:
		logger.SetLevel(logging.WarnLevel)
	}

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "risksim: -config is required")
		flag.Usage()
		os.Exit(exitConfig)
	}

	overrides := overrides{
		trials:    *trials,
		threshold: *threshold,
		workers:   *workers,
		mode:      *mode,
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			overrides.seed = seed
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, overrides, *exportPath, *compress, *metricsAddr, logger); err != nil {
		logger.Error("run failed", logging.Error(err))
		fmt.Fprintf(os.Stderr, "risksim: %v\n", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitOK)
}

type overrides struct {
	trials    int
	threshold float64
	seed      *int64
	workers   int
	mode      string
}

func (o overrides) apply(cfg *config.RunConfig) {
	if o.trials > 0 {
		cfg.Trials = o.trials
	}
	if o.threshold > 0 {
		cfg.Threshold = o.threshold
	}
	if o.seed != nil {
		cfg.Seed = *o.seed
	}
	if o.workers > 0 {
		cfg.Workers = o.workers
	}
	if o.mode != "" {
		cfg.Mode = o.mode
	}
}

func run(ctx context.Context, configPath string, o overrides, exportPath string, compress bool, metricsAddr string, logger logging.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	o.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", reg.Handler())
		go func() {
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				logger.Error("metrics server stopped", logging.Error(err))
			}
		}()
	}

	// Model construction: everything that can fail does so here, before
	// the first trial runs.
	fitTimer := logging.StartTimer(logger, "power law fitted", logging.Stage("fit"))
	law, err := distribution.FitPowerLaw(cfg.Table())
	if err != nil {
		fitTimer.EndError(err)
		return err
	}
	fitTimer.End()
	logger.Info("fitted tail parameters",
		logging.Stage("fit"),
		logging.Float64("exponent", law.Exponent),
		logging.Float64("scale", law.Scale),
	)

	cost, err := costmodel.Derive(cfg.Stats())
	if err != nil {
		return err
	}
	logger.Info("derived cost model",
		logging.Stage("cost_model"),
		logging.Float64("mu", cost.Mu),
		logging.Float64("sigma", cost.Sigma),
	)

	opts := cfg.EngineOptions()
	if opts.Mode == simulation.ModePool {
		// The pool mode cross-check resamples from a pool generated once
		// from the fitted tail.
		pool, err := sampling.NewStream(law, cfg.Seed).Take(opts.Trials)
		if err != nil {
			return err
		}
		opts.Pool = pool
	}

	engine, err := simulation.New(law, cost, opts,
		simulation.WithLogger(logger),
		simulation.WithMetrics(reg),
	)
	if err != nil {
		return err
	}

	result, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	assessment, err := risk.Analyze(result, cfg.Threshold)
	if err != nil {
		return err
	}
	reg.SetRisk(assessment.Risk, assessment.Trials)

	if exportPath != "" {
		if err := writeExport(exportPath, compress, result); err != nil {
			return err
		}
		logger.Info("trial set exported", logging.String("path", exportPath), logging.Bool("compressed", compress))
	}

	printAssessment(assessment)
	return nil
}

func writeExport(path string, compress bool, res *simulation.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	if compress {
		return export.WriteCompressed(f, res)
	}
	return export.Write(f, res)
}

func printAssessment(a *risk.Assessment) {
	fmt.Printf("trials:            %d\n", a.Trials)
	fmt.Printf("loss threshold:    %.2f\n", a.Threshold)
	fmt.Printf("exceedance risk:   %.4f (%d/%d trials)\n", a.Risk, a.NumOver, a.Trials)
	fmt.Printf("mean attacks/year: %.1f\n", a.MeanAttacks)
	fmt.Printf("mean annual cost:  %.2f\n", a.MeanCost)
	for _, p := range a.Percentiles {
		fmt.Printf("p%-2.0f annual cost:   %.2f\n", p.Rank, p.Value)
	}
}

// exitCode maps an error to the documented exit code for its pipeline stage.
func exitCode(err error) int {
	var (
		configErr    *distribution.ConfigError
		fitErr       *distribution.FitError
		costModelErr *costmodel.CostModelError
	)
	switch {
	case errors.As(err, &configErr):
		return exitConfig
	case errors.As(err, &fitErr):
		return exitFit
	case errors.As(err, &costModelErr):
		return exitCostModel
	default:
		return exitFailure
	}
}
