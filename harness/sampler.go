package harness

import (
	"context"
	"log/slog"
	mrand "math/rand"
	"sort"
	"time"

	"github.com/weiihann/faceoff/workload"
)

// SampleConfig carries the measurement knobs for one run. It is
// passed explicitly so independent runs cannot interfere through
// package state.
type SampleConfig struct {
	WarmupCount  int
	MeasureCount int
}

// OrderSource decides, per paired trial, which candidate runs first.
// Randomizing this across trials splits systematic external bias
// (thermal drift, cache state, scheduler noise) roughly evenly
// between the candidates instead of always loading it onto one side.
type OrderSource interface {
	// AFirst reports whether candidate A executes first in the next
	// paired trial.
	AFirst() bool
}

type randOrder struct {
	rng *mrand.Rand
}

func (r *randOrder) AFirst() bool {
	return r.rng.Intn(2) == 0
}

// NewOrderSource returns an unbiased coin-flip order source. A seed
// of zero seeds from the current time; any other seed makes the
// order sequence reproducible.
func NewOrderSource(seed int64) OrderSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &randOrder{rng: mrand.New(mrand.NewSource(seed))}
}

// Sampler runs one workload's warmup and measurement phases against
// both candidates and owns the sample sets while they are being
// populated.
type Sampler struct {
	A      *Runner
	B      *Runner
	Config SampleConfig
	Order  OrderSource
	Logger *slog.Logger
}

// NewSampler creates a Sampler over the two candidate runners.
func NewSampler(
	a, b *Runner,
	cfg SampleConfig,
	order OrderSource,
	logger *slog.Logger,
) *Sampler {
	return &Sampler{A: a, B: b, Config: cfg, Order: order, Logger: logger}
}

// Measure runs the configured warmup trials (discarded entirely) and
// then the measured trials for one workload, returning the collected
// sample sets. Trials within a pair run strictly sequentially, never
// concurrently; only the order within the pair is randomized. The
// returned WorkloadSamples must be treated as immutable.
//
// The only error returned is context cancellation between trials;
// every per-trial failure degrades to a smaller sample set.
func (s *Sampler) Measure(
	ctx context.Context,
	def workload.Definition,
) (*WorkloadSamples, error) {
	logger := s.Logger.With(slog.String("workload", def.Name))

	logger.Info("measuring workload",
		slog.Int("warmup", s.Config.WarmupCount),
		slog.Int("iterations", s.Config.MeasureCount),
	)

	for i := 0; i < s.Config.WarmupCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s.pairedTrial(ctx, def, nil, logger)
	}

	ws := newWorkloadSamples()

	for i := 0; i < s.Config.MeasureCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s.pairedTrial(ctx, def, ws, logger)
	}

	if ws.DroppedA != ws.DroppedB {
		logger.Warn("drop counts diverge between candidates",
			slog.Int("dropped_a", ws.DroppedA),
			slog.Int("dropped_b", ws.DroppedB),
		)
	}

	return ws, nil
}

// pairedTrial runs one trial of each candidate back to back in coin-
// flipped order. A nil ws marks a warmup pair whose results are
// discarded. Both trials complete before the pair returns.
func (s *Sampler) pairedTrial(
	ctx context.Context,
	def workload.Definition,
	ws *WorkloadSamples,
	logger *slog.Logger,
) {
	first, second := s.A, s.B
	if !s.Order.AFirst() {
		first, second = s.B, s.A
	}

	s.trial(ctx, first, def, ws, logger)
	s.trial(ctx, second, def, ws, logger)
}

// trial runs one candidate once and, for measured trials, appends its
// observations. Observations are attributed by candidate identity,
// never by execution position within the pair. Timed-out,
// unstartable, and unparsable trials contribute nothing and bump the
// candidate's drop counter.
func (s *Sampler) trial(
	ctx context.Context,
	r *Runner,
	def workload.Definition,
	ws *WorkloadSamples,
	logger *slog.Logger,
) {
	result, err := r.Run(ctx, def.Args)

	if ws == nil {
		return
	}

	toA := r == s.A

	if err != nil {
		ws.drop(toA)
		logger.Warn("trial not started",
			slog.String("candidate", r.Name),
			slog.String("error", err.Error()),
		)

		return
	}

	if result.TimedOut {
		ws.drop(toA)
		logger.Debug("trial timed out", slog.String("candidate", r.Name))

		return
	}

	obs, err := def.Collect(workload.Outcome{
		DurationMs: result.DurationMs,
		Stdout:     result.Stdout,
		Stderr:     result.Stderr,
		ExitCode:   result.ExitCode,
	})
	if err != nil {
		ws.drop(toA)
		logger.Debug("observation dropped",
			slog.String("candidate", r.Name),
			slog.Int("exit_code", result.ExitCode),
			slog.String("error", err.Error()),
		)

		return
	}

	names := make([]string, 0, len(obs))
	for name := range obs {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		ws.append(toA, name, obs[name])
	}
}
