package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dd0wney/cluso-risksim/pkg/logging"
	"github.com/dd0wney/cluso-risksim/pkg/metrics"
	"github.com/dd0wney/cluso-risksim/pkg/store"
)

func main() {
	dsn := flag.String("store", "", "PostgreSQL connection string (or set RISKSIM_STORE_DSN)")
	size := flag.String("size", "", "Restrict to one organisation size")
	industry := flag.String("industry", "", "Restrict to one industry (top-level SIC letter)")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	logger := logging.NewDefaultLogger()
	if *verbose {
		logger.SetLevel(logging.DebugLevel)
	}

	if *dsn == "" {
		*dsn = os.Getenv("RISKSIM_STORE_DSN")
	}
	if *dsn == "" {
		fmt.Fprintln(os.Stderr, "regen-distributions: -store is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, *dsn)
	if err != nil {
		logger.Error("failed to connect to store", logging.Error(err))
		os.Exit(1)
	}
	defer pool.Close()

	st, err := store.NewPostgresStore(pool)
	if err != nil {
		logger.Error("failed to wrap store", logging.Error(err))
		os.Exit(1)
	}

	opts := store.RegenerateOptions{
		Logger:  logger,
		Metrics: metrics.NewRegistry(),
	}
	// An explicit size and industry restricts the pass to one pairing;
	// otherwise every pairing in the store is refitted.
	if *size != "" && *industry != "" {
		opts.Pairings = []store.Pairing{{Size: *size, Industry: *industry}}
	}

	report, err := store.Regenerate(ctx, st, opts)
	if err != nil {
		logger.Error("regeneration failed", logging.Error(err))
		os.Exit(1)
	}

	fmt.Printf("pairings attempted: %d\n", report.Attempted)
	fmt.Printf("distributions fitted: %d\n", report.Fitted)
	fmt.Printf("pairings skipped: %d\n", report.Skipped)

	if report.Fitted == 0 {
		logger.Warn("no distributions were regenerated")
		os.Exit(1)
	}
	os.Exit(0)
}
