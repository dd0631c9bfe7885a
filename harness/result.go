// Package harness drives paired benchmark trials of two candidate
// binaries and reduces the collected samples into an adjudicated
// comparison report.
package harness

import "github.com/weiihann/faceoff/stats"

// TrialResult holds everything captured from one candidate
// invocation.
type TrialResult struct {
	DurationMs float64
	Stdout     string
	Stderr     string
	ExitCode   int
	TimedOut   bool
}

// SampleSet is the ordered sequence of retained observations for one
// candidate on one metric. Order reflects trial index only.
type SampleSet []float64

// MetricSamples pairs the two candidates' sample sets for one metric.
type MetricSamples struct {
	A SampleSet
	B SampleSet
}

// WorkloadSamples holds everything one workload's measurement phase
// produced: per-metric sample pairs plus per-candidate drop counts.
// One trial feeds all of a workload's metrics at once, so drops are
// counted per candidate rather than per metric.
type WorkloadSamples struct {
	Metrics map[string]*MetricSamples

	// MetricNames lists metric names in discovery order, sorted
	// within each trial so multi-metric payloads enumerate
	// deterministically.
	MetricNames []string

	DroppedA int
	DroppedB int
}

func newWorkloadSamples() *WorkloadSamples {
	return &WorkloadSamples{Metrics: make(map[string]*MetricSamples)}
}

func (ws *WorkloadSamples) append(toA bool, metric string, value float64) {
	ms, ok := ws.Metrics[metric]
	if !ok {
		ms = &MetricSamples{}
		ws.Metrics[metric] = ms
		ws.MetricNames = append(ws.MetricNames, metric)
	}

	if toA {
		ms.A = append(ms.A, value)
	} else {
		ms.B = append(ms.B, value)
	}
}

func (ws *WorkloadSamples) drop(fromA bool) {
	if fromA {
		ws.DroppedA++
	} else {
		ws.DroppedB++
	}
}

// MetricResult is the adjudicated comparison of one metric within one
// workload. PercentDiff is always (B - A) / A * 100 with candidate A
// as the baseline, regardless of which candidate wins.
type MetricResult struct {
	Workload      string        `json:"workload"`
	Metric        string        `json:"metric"`
	Unit          string        `json:"unit,omitempty"`
	LowerIsBetter bool          `json:"lower_is_better"`
	A             stats.Summary `json:"a"`
	B             stats.Summary `json:"b"`
	DroppedA      int           `json:"dropped_a"`
	DroppedB      int           `json:"dropped_b"`
	PercentDiff   float64       `json:"percent_diff"`
	Verdict       Verdict       `json:"verdict"`
}

// Report is the aggregate outcome of a full comparison run.
type Report struct {
	RunID      string `json:"run_id,omitempty"`
	CandidateA string `json:"candidate_a"`
	CandidateB string `json:"candidate_b"`

	Results []MetricResult `json:"results"`

	WinsA int `json:"wins_a"`
	WinsB int `json:"wins_b"`
	Ties  int `json:"ties"`

	// Weighted advantage accumulates the absolute percentage gap of
	// every metric a candidate won; shares express each total as a
	// percentage of the grand total.
	AdvantageA float64 `json:"advantage_a"`
	AdvantageB float64 `json:"advantage_b"`
	ShareA     float64 `json:"share_a"`
	ShareB     float64 `json:"share_b"`

	Overall Verdict `json:"overall"`
}
