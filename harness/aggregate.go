package harness

import (
	"fmt"
	"math"

	"github.com/weiihann/faceoff/stats"
	"github.com/weiihann/faceoff/workload"
)

// PercentDiff returns the relative difference of b against baseline
// a, in percent. The baseline is always candidate A's value, no
// matter which candidate wins.
func PercentDiff(a, b float64) float64 {
	return (b - a) / a * 100
}

// Compare reduces one metric's two sample sets into an adjudicated
// MetricResult. Verdicts and percentage differences are computed on
// medians, which resist outliers better than means; the standard
// deviations feed the noise gate. It fails when either side's sample
// set is empty (stats.ErrNoSamples).
func Compare(
	def workload.Definition,
	metric string,
	ms *MetricSamples,
	droppedA, droppedB int,
) (MetricResult, error) {
	sumA, err := stats.Summarize(ms.A)
	if err != nil {
		return MetricResult{}, fmt.Errorf(
			"candidate A on %s/%s: %w", def.Name, metric, err,
		)
	}

	sumB, err := stats.Summarize(ms.B)
	if err != nil {
		return MetricResult{}, fmt.Errorf(
			"candidate B on %s/%s: %w", def.Name, metric, err,
		)
	}

	return MetricResult{
		Workload:      def.Name,
		Metric:        metric,
		Unit:          def.Unit,
		LowerIsBetter: def.LowerIsBetter,
		A:             sumA,
		B:             sumB,
		DroppedA:      droppedA,
		DroppedB:      droppedB,
		PercentDiff:   PercentDiff(sumA.Median, sumB.Median),
		Verdict: Adjudicate(
			sumA.Median, sumB.Median,
			def.LowerIsBetter,
			sumA.Stddev, sumB.Stddev,
		),
	}, nil
}

// Aggregate folds the ordered per-metric results into the overall
// report. Each metric contributes the absolute percentage gap between
// the candidates to the winner's weighted-advantage total, so a 50%
// win outweighs a 0.1% win instead of counting the same; ties add to
// neither total. A metric whose baseline median is non-positive
// contributes zero weight, to avoid division artifacts. Shares are
// 50/50 when the grand total is zero.
func Aggregate(results []MetricResult) Report {
	rep := Report{Results: results}

	for _, r := range results {
		var gap float64
		if r.A.Median > 0 {
			gap = math.Abs(PercentDiff(r.A.Median, r.B.Median))
		}

		switch r.Verdict {
		case VerdictA:
			rep.WinsA++
			rep.AdvantageA += gap

		case VerdictB:
			rep.WinsB++
			rep.AdvantageB += gap

		default:
			rep.Ties++
		}
	}

	total := rep.AdvantageA + rep.AdvantageB
	if total > 0 {
		rep.ShareA = rep.AdvantageA / total * 100
		rep.ShareB = rep.AdvantageB / total * 100
	} else {
		rep.ShareA = 50
		rep.ShareB = 50
	}

	switch {
	case rep.AdvantageA > rep.AdvantageB:
		rep.Overall = VerdictA
	case rep.AdvantageB > rep.AdvantageA:
		rep.Overall = VerdictB
	default:
		rep.Overall = VerdictTie
	}

	return rep
}
