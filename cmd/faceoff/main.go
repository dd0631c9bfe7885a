// Package main provides the CLI entry point for faceoff, a
// comparative benchmark harness for two candidate binaries.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/weiihann/faceoff/harness"
	"github.com/weiihann/faceoff/report"
	"github.com/weiihann/faceoff/sysinfo"
	"github.com/weiihann/faceoff/workload"
)

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	root := newRootCmd(logger, level)
	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	root := &cobra.Command{
		Use:   "faceoff",
		Short: "Comparative benchmark harness for two candidate binaries",
		Long: `Faceoff runs an identical battery of workloads against two candidate
binaries believed to be functionally equivalent, reduces the noisy repeated
samples into robust summaries, and adjudicates a noise-aware winner per
workload plus a magnitude-weighted overall verdict.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(logger, level))

	return root
}

func newRunCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	var (
		suitePath  string
		warmup     int
		iterations int
		timeout    time.Duration
		orderSeed  int64
		nameA      string
		nameB      string
		outputJSON bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "run <binary-a> <binary-b>",
		Short: "Compare two binaries over a workload suite",
		Long: `Run every workload in the suite against both candidates: a warmup
phase whose trials are discarded, then measured paired trials in randomized
execution order. Candidate A is always the comparison baseline.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				level.Set(slog.LevelDebug)
			}

			return runComparison(cmd.Context(), logger, compareConfig{
				binaryA:    args[0],
				binaryB:    args[1],
				suitePath:  suitePath,
				warmup:     warmup,
				iterations: iterations,
				timeout:    timeout,
				orderSeed:  orderSeed,
				nameA:      nameA,
				nameB:      nameB,
				outputJSON: outputJSON,
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&suitePath, "suite", "",
		"Path to the YAML workload suite (required)")
	flags.IntVar(&warmup, "warmup", 3,
		"Discarded warmup trials per workload")
	flags.IntVar(&iterations, "iterations", 10,
		"Measured trials per workload")
	flags.DurationVar(&timeout, "timeout", harness.DefaultTimeout,
		"Per-trial timeout before the process is killed")
	flags.Int64Var(&orderSeed, "order-seed", 0,
		"Seed for execution-order randomization (0 = use current time)")
	flags.StringVar(&nameA, "name-a", "",
		"Display name for candidate A (default: binary basename)")
	flags.StringVar(&nameB, "name-b", "",
		"Display name for candidate B (default: binary basename)")
	flags.BoolVar(&outputJSON, "json", false,
		"Output the report as JSON instead of a table")
	flags.BoolVar(&verbose, "verbose", false,
		"Log every trial")

	cobra.CheckErr(cmd.MarkFlagRequired("suite"))

	return cmd
}

type compareConfig struct {
	binaryA    string
	binaryB    string
	suitePath  string
	warmup     int
	iterations int
	timeout    time.Duration
	orderSeed  int64
	nameA      string
	nameB      string
	outputJSON bool
}

func runComparison(
	ctx context.Context,
	logger *slog.Logger,
	cfg compareConfig,
) error {
	// Everything checked here is fatal; nothing past this point is.
	if err := harness.ValidateBinary(cfg.binaryA); err != nil {
		return err
	}

	if err := harness.ValidateBinary(cfg.binaryB); err != nil {
		return err
	}

	if cfg.iterations < 1 {
		return fmt.Errorf("iterations must be at least 1, got %d", cfg.iterations)
	}

	defs, err := workload.LoadSuite(cfg.suitePath)
	if err != nil {
		return err
	}

	nameA := cfg.nameA
	if nameA == "" {
		nameA = filepath.Base(cfg.binaryA)
	}

	nameB := cfg.nameB
	if nameB == "" {
		nameB = filepath.Base(cfg.binaryB)
	}

	runID := uuid.NewString()
	logger = logger.With(slog.String("run_id", runID))

	logger.Info("starting comparison",
		slog.String("candidate_a", cfg.binaryA),
		slog.String("candidate_b", cfg.binaryB),
		slog.Int("workloads", len(defs)),
		slog.Int("warmup", cfg.warmup),
		slog.Int("iterations", cfg.iterations),
		slog.Duration("timeout", cfg.timeout),
	)

	sampler := harness.NewSampler(
		harness.NewRunner(nameA, cfg.binaryA, cfg.timeout, logger),
		harness.NewRunner(nameB, cfg.binaryB, cfg.timeout, logger),
		harness.SampleConfig{
			WarmupCount:  cfg.warmup,
			MeasureCount: cfg.iterations,
		},
		harness.NewOrderSource(cfg.orderSeed),
		logger,
	)

	var results []harness.MetricResult

	// Workloads run strictly in suite order, one subprocess at a time.
	for _, def := range defs {
		samples, err := sampler.Measure(ctx, def)
		if err != nil {
			return fmt.Errorf("workload %s: %w", def.Name, err)
		}

		if len(samples.MetricNames) == 0 {
			logger.Warn("workload produced no metrics",
				slog.String("workload", def.Name),
				slog.Int("dropped_a", samples.DroppedA),
				slog.Int("dropped_b", samples.DroppedB),
			)

			continue
		}

		for _, metric := range samples.MetricNames {
			rec, err := harness.Compare(
				def, metric, samples.Metrics[metric],
				samples.DroppedA, samples.DroppedB,
			)
			if err != nil {
				// One candidate collected nothing for this metric;
				// the row is omitted rather than failing the run.
				logger.Warn("metric skipped",
					slog.String("workload", def.Name),
					slog.String("metric", metric),
					slog.String("error", err.Error()),
				)

				continue
			}

			results = append(results, rec)
		}
	}

	rep := harness.Aggregate(results)
	rep.RunID = runID
	rep.CandidateA = nameA
	rep.CandidateB = nameB

	env := sysinfo.Collect()

	if len(rep.Results) == 0 {
		logger.Warn("no workload produced comparable samples")

		if cfg.outputJSON {
			return report.GenerateJSON(os.Stdout, env, rep)
		}

		return nil
	}

	if cfg.outputJSON {
		err = report.GenerateJSON(os.Stdout, env, rep)
	} else {
		err = report.Generate(os.Stdout, env, rep)
	}

	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	logger.Info("comparison complete",
		slog.String("overall", rep.Overall.String()),
	)

	return nil
}
