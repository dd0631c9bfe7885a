package harness

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiihann/faceoff/workload"
)

// alternatingOrder deterministically flips execution order every
// paired trial.
type alternatingOrder struct {
	next bool
}

func (o *alternatingOrder) AFirst() bool {
	o.next = !o.next

	return o.next
}

func newTestSampler(t *testing.T, bodyA, bodyB string, iterations int) *Sampler {
	t.Helper()

	logger := testLogger()

	return NewSampler(
		NewRunner("a", writeScript(t, bodyA), 5*time.Second, logger),
		NewRunner("b", writeScript(t, bodyB), 5*time.Second, logger),
		SampleConfig{
			WarmupCount:  1,
			MeasureCount: iterations,
		},
		&alternatingOrder{},
		logger,
	)
}

func TestSamplerAttributionIndependentOfOrder(t *testing.T) {
	// Candidates print distinct constants; the alternating order
	// source makes each run first half the time. Every observation
	// must still land in its own candidate's sample set.
	s := newTestSampler(t, "echo 100", "echo 200", 4)
	def := workload.Reported("val", "ops", false)

	ws, err := s.Measure(context.Background(), def)
	require.NoError(t, err)

	require.Equal(t, []string{"val"}, ws.MetricNames)

	ms := ws.Metrics["val"]
	require.Len(t, ms.A, 4)
	require.Len(t, ms.B, 4)

	for i := range ms.A {
		assert.Equal(t, 100.0, ms.A[i])
		assert.Equal(t, 200.0, ms.B[i])
	}

	assert.Zero(t, ws.DroppedA)
	assert.Zero(t, ws.DroppedB)
}

func TestSamplerStructuredPayload(t *testing.T) {
	s := newTestSampler(t,
		`echo '{"p50": 10, "p99": 20}'`,
		`echo '{"p50": 12, "p99": 24}'`,
		3,
	)
	def := workload.Reported("latency", "ms", true)

	ws, err := s.Measure(context.Background(), def)
	require.NoError(t, err)

	// Metric names enumerate deterministically.
	assert.Equal(t, []string{"p50", "p99"}, ws.MetricNames)
	assert.Equal(t, SampleSet{10, 10, 10}, ws.Metrics["p50"].A)
	assert.Equal(t, SampleSet{24, 24, 24}, ws.Metrics["p99"].B)
}

func TestSamplerDropsUnparsableSide(t *testing.T) {
	// B never prints a number: its side collects nothing, A's side
	// is unaffected, and the divergence is visible in the counters.
	s := newTestSampler(t, "echo 5", "echo not-a-number", 3)
	def := workload.Reported("val", "ops", false)

	ws, err := s.Measure(context.Background(), def)
	require.NoError(t, err)

	ms := ws.Metrics["val"]
	assert.Len(t, ms.A, 3)
	assert.Empty(t, ms.B)
	assert.Zero(t, ws.DroppedA)
	assert.Equal(t, 3, ws.DroppedB)
}

func TestSamplerDropsTimedOutTrials(t *testing.T) {
	logger := testLogger()
	s := NewSampler(
		NewRunner("a", writeScript(t, "echo 1"), time.Second, logger),
		NewRunner("b", writeScript(t, "sleep 10"), 300*time.Millisecond, logger),
		SampleConfig{MeasureCount: 2},
		&alternatingOrder{},
		logger,
	)

	ws, err := s.Measure(context.Background(), workload.Reported("val", "", true))
	require.NoError(t, err)

	assert.Len(t, ws.Metrics["val"].A, 2)
	assert.Equal(t, 2, ws.DroppedB)
}

func TestSamplerDropsCrashingCandidateWallClock(t *testing.T) {
	// B crashes immediately: its sub-millisecond durations must not
	// enter the wall-clock sample set and win the latency metric,
	// they count as drops.
	s := newTestSampler(t, "sleep 0.05", "exit 127", 3)

	ws, err := s.Measure(context.Background(), workload.WallClock("startup"))
	require.NoError(t, err)

	ms := ws.Metrics[workload.WallClockMetric]
	assert.Len(t, ms.A, 3)
	assert.Empty(t, ms.B)
	assert.Zero(t, ws.DroppedA)
	assert.Equal(t, 3, ws.DroppedB)
}

func TestSamplerKeepsReportedOutputFromFailingCandidate(t *testing.T) {
	// Self-reported metrics are salvaged from a failing process as
	// long as the printed number parses.
	s := newTestSampler(t, "echo 10", "echo 8; exit 1", 3)
	def := workload.Reported("val", "ops", false)

	ws, err := s.Measure(context.Background(), def)
	require.NoError(t, err)

	ms := ws.Metrics["val"]
	assert.Equal(t, SampleSet{10, 10, 10}, ms.A)
	assert.Equal(t, SampleSet{8, 8, 8}, ms.B)
	assert.Zero(t, ws.DroppedB)
}

func TestSamplerWallClockWorkload(t *testing.T) {
	s := newTestSampler(t, "true", "true", 3)

	ws, err := s.Measure(context.Background(), workload.WallClock("startup"))
	require.NoError(t, err)

	require.Equal(t, []string{workload.WallClockMetric}, ws.MetricNames)

	ms := ws.Metrics[workload.WallClockMetric]
	require.Len(t, ms.A, 3)
	require.Len(t, ms.B, 3)

	for _, v := range append(ms.A, ms.B...) {
		assert.Greater(t, v, 0.0)
	}
}

func TestSamplerHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestSampler(t, "echo 1", "echo 2", 3)

	_, err := s.Measure(ctx, workload.Reported("val", "", true))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIdenticalCandidatesTie(t *testing.T) {
	// Two copies of the same deterministic program must compare as a
	// tie with a 50/50 weighted share.
	s := newTestSampler(t, "echo 123", "echo 123", 5)
	def := workload.Reported("val", "ops", false)

	ws, err := s.Measure(context.Background(), def)
	require.NoError(t, err)

	rec, err := Compare(def, "val", ws.Metrics["val"], ws.DroppedA, ws.DroppedB)
	require.NoError(t, err)
	assert.Equal(t, VerdictTie, rec.Verdict)

	rep := Aggregate([]MetricResult{rec})
	assert.Equal(t, VerdictTie, rep.Overall)
	assert.InDelta(t, 50.0, rep.ShareA, 1e-9)
	assert.InDelta(t, 50.0, rep.ShareB, 1e-9)
}
