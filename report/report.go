// Package report formats comparison runs into markdown tables or
// JSON. Rendering is a presentation concern only: it consumes a
// finished harness.Report and never influences adjudication.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/weiihann/faceoff/harness"
	"github.com/weiihann/faceoff/sysinfo"
)

// Generate writes a human-readable comparison for the given report:
// a host banner, one table row per metric (summary ± noise for each
// candidate, percentage difference against candidate A, verdict), and
// a trailing summary block with win counts, weighted-advantage totals
// and shares, and the overall verdict.
func Generate(w io.Writer, env sysinfo.Info, rep harness.Report) error {
	if len(rep.Results) == 0 {
		return fmt.Errorf("no results to report")
	}

	fmt.Fprintf(w, "## %s vs %s\n\n", rep.CandidateA, rep.CandidateB)

	fmt.Fprintf(w, "Host: %s (%s/%s, %s)\n",
		env.Hostname, env.OS, env.Arch, env.GoVersion,
	)
	fmt.Fprintf(w, "CPU: %s, %d logical cores, %d MB memory\n",
		env.CPUModel, env.LogicalCPUs, env.MemoryTotalMB,
	)

	if rep.RunID != "" {
		fmt.Fprintf(w, "Run: %s\n", rep.RunID)
	}

	fmt.Fprintln(w)

	fmt.Fprintf(w, "| Workload | Metric | %s | %s | Samples | Diff | Verdict |\n",
		rep.CandidateA, rep.CandidateB,
	)
	fmt.Fprintln(w, "|----------|--------|---|---|---------|------|---------|")

	for _, r := range rep.Results {
		fmt.Fprintf(w, "| %s | %s | %s | %s | %d/%d | %s | %s |\n",
			r.Workload,
			r.Metric,
			formatSummary(r.A.Median, r.A.Stddev, r.Unit),
			formatSummary(r.B.Median, r.B.Stddev, r.Unit),
			r.A.N, r.B.N,
			formatPercent(r.PercentDiff),
			verdictLabel(r.Verdict, rep),
		)
	}

	fmt.Fprintln(w)
	writeDrops(w, rep)

	fmt.Fprintf(w, "Wins: %s %d, %s %d, ties %d\n",
		rep.CandidateA, rep.WinsA, rep.CandidateB, rep.WinsB, rep.Ties,
	)
	fmt.Fprintf(w, "Weighted advantage: %s %s (%.1f%%), %s %s (%.1f%%)\n",
		rep.CandidateA, formatPercent(rep.AdvantageA), rep.ShareA,
		rep.CandidateB, formatPercent(rep.AdvantageB), rep.ShareB,
	)
	fmt.Fprintf(w, "Overall: %s\n", verdictLabel(rep.Overall, rep))

	return nil
}

// JSONReport is the machine-readable envelope written by
// GenerateJSON.
type JSONReport struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Host        sysinfo.Info   `json:"host"`
	Comparison  harness.Report `json:"comparison"`
}

// GenerateJSON writes the report as indented JSON to w.
func GenerateJSON(w io.Writer, env sysinfo.Info, rep harness.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(JSONReport{
		GeneratedAt: time.Now().UTC(),
		Host:        env,
		Comparison:  rep,
	})
}

// writeDrops lists workloads where trials were dropped, so shrunken
// sample sets are visible instead of silently absent.
func writeDrops(w io.Writer, rep harness.Report) {
	seen := make(map[string]bool)
	var any bool

	for _, r := range rep.Results {
		if r.DroppedA == 0 && r.DroppedB == 0 {
			continue
		}

		if seen[r.Workload] {
			continue
		}

		seen[r.Workload] = true

		if !any {
			fmt.Fprintln(w, "Dropped trials (timeout or unparsable output):")
			any = true
		}

		fmt.Fprintf(w, "  - %s: %s %d, %s %d\n",
			r.Workload,
			rep.CandidateA, r.DroppedA,
			rep.CandidateB, r.DroppedB,
		)
	}

	if any {
		fmt.Fprintln(w)
	}
}

func verdictLabel(v harness.Verdict, rep harness.Report) string {
	switch v {
	case harness.VerdictA:
		return rep.CandidateA
	case harness.VerdictB:
		return rep.CandidateB
	default:
		return "tie"
	}
}

func formatSummary(median, stddev float64, unit string) string {
	s := formatNum(median) + " ± " + formatNum(stddev)
	if unit != "" {
		s += " " + unit
	}

	return s
}

func formatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}

	return fmt.Sprintf("%+.2f%%", v)
}

func formatNum(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}

	formatted := fmt.Sprintf("%.3f", v)
	formatted = strings.TrimRight(formatted, "0")
	formatted = strings.TrimRight(formatted, ".")

	return formatted
}
