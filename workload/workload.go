// Package workload defines the battery of named workloads a
// comparison run drives through both candidate binaries. A workload
// is an argument list plus a collection function that turns one
// trial's outcome into named numeric observations.
package workload

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// WallClockMetric is the metric name under which harness-measured
// wall-clock durations are recorded.
const WallClockMetric = "wall_ms"

// Outcome is what one finished trial exposes to a workload's
// collection function.
type Outcome struct {
	DurationMs float64
	Stdout     string
	Stderr     string
	ExitCode   int
}

// CollectFunc derives named numeric observations from one trial
// outcome. An error means the trial produced no usable observation
// and is dropped for that candidate.
type CollectFunc func(Outcome) (map[string]float64, error)

// Definition describes one workload: how to invoke a candidate and
// how to read the result.
type Definition struct {
	Name          string
	Unit          string
	LowerIsBetter bool
	Args          []string
	Collect       CollectFunc
}

// WallClock returns a workload measured by the harness's own
// wall-clock timing of the candidate process, startup and teardown
// included. Duration is in milliseconds and lower is better. A trial
// that exits non-zero contributes no sample: the duration of a
// process that crashed instead of doing the work would only reward
// failing fast.
func WallClock(name string, args ...string) Definition {
	return Definition{
		Name:          name,
		Unit:          "ms",
		LowerIsBetter: true,
		Args:          args,
		Collect: func(o Outcome) (map[string]float64, error) {
			if o.ExitCode != 0 {
				return nil, fmt.Errorf(
					"exit status %d, duration not comparable", o.ExitCode,
				)
			}

			return map[string]float64{WallClockMetric: o.DurationMs}, nil
		},
	}
}

// Reported returns a workload whose observations are parsed from the
// candidate's stdout: either a bare numeric literal (recorded under
// the workload name) or a flat JSON object of named numeric fields.
func Reported(name, unit string, lowerIsBetter bool, args ...string) Definition {
	return Definition{
		Name:          name,
		Unit:          unit,
		LowerIsBetter: lowerIsBetter,
		Args:          args,
		Collect: func(o Outcome) (map[string]float64, error) {
			return ParseMetrics(o.Stdout, name)
		},
	}
}

// ParseMetrics interprets captured stdout as observations. A payload
// starting with '{' must be a flat JSON object whose values are all
// numeric; anything else must be a single numeric literal, recorded
// under fallbackName. Any other shape is a parse failure.
func ParseMetrics(stdout, fallbackName string) (map[string]float64, error) {
	text := strings.TrimSpace(stdout)
	if text == "" {
		return nil, fmt.Errorf("empty output")
	}

	if strings.HasPrefix(text, "{") {
		var fields map[string]float64
		if err := json.Unmarshal([]byte(text), &fields); err != nil {
			return nil, fmt.Errorf("decode metrics payload: %w", err)
		}

		if len(fields) == 0 {
			return nil, fmt.Errorf("metrics payload has no fields")
		}

		return fields, nil
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("parse numeric output %q: %w", text, err)
	}

	return map[string]float64{fallbackName: v}, nil
}
