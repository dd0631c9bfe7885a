// Package stats provides the numeric reductions used to summarize
// benchmark samples: median, mean, and sample standard deviation.
// All functions are pure and never mutate their input.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrNoSamples is returned when a reduction is requested over an
// empty sample set.
var ErrNoSamples = errors.New("no samples")

// ErrInsufficientSamples is returned when a reduction needs more
// samples than were provided (stddev needs at least two).
var ErrInsufficientSamples = errors.New("insufficient samples")

// Summary is the immutable reduction of one sample set.
type Summary struct {
	Median float64 `json:"median"`
	Mean   float64 `json:"mean"`
	Stddev float64 `json:"stddev"`
	N      int     `json:"n"`
}

// Median returns the middle element of the samples for odd counts,
// or the mean of the two middle elements for even counts.
func Median(samples []float64) (float64, error) {
	n := len(samples)
	if n == 0 {
		return 0, fmt.Errorf("median: %w", ErrNoSamples)
	}

	sorted := make([]float64, n)
	copy(sorted, samples)
	sort.Float64s(sorted)

	if n%2 == 1 {
		return sorted[n/2], nil
	}

	return (sorted[n/2-1] + sorted[n/2]) / 2, nil
}

// Mean returns the arithmetic mean of the samples.
func Mean(samples []float64) (float64, error) {
	if len(samples) == 0 {
		return 0, fmt.Errorf("mean: %w", ErrNoSamples)
	}

	var sum float64
	for _, v := range samples {
		sum += v
	}

	return sum / float64(len(samples)), nil
}

// Stddev returns the sample standard deviation (divisor n-1).
// It fails with ErrInsufficientSamples when fewer than two samples
// are provided, rather than dividing by zero.
func Stddev(samples []float64) (float64, error) {
	n := len(samples)
	if n < 2 {
		return 0, fmt.Errorf(
			"stddev over %d samples: %w", n, ErrInsufficientSamples,
		)
	}

	mean, err := Mean(samples)
	if err != nil {
		return 0, err
	}

	var sumSq float64
	for _, v := range samples {
		d := v - mean
		sumSq += d * d
	}

	return math.Sqrt(sumSq / float64(n-1)), nil
}

// Summarize reduces a sample set to a Summary. It fails with
// ErrNoSamples on an empty set. A single-element set is accepted
// and reported with Stddev 0: with one observation there is no
// spread to estimate, and downstream noise gating simply stays
// inactive.
func Summarize(samples []float64) (Summary, error) {
	median, err := Median(samples)
	if err != nil {
		return Summary{}, err
	}

	mean, err := Mean(samples)
	if err != nil {
		return Summary{}, err
	}

	var stddev float64
	if len(samples) >= 2 {
		stddev, err = Stddev(samples)
		if err != nil {
			return Summary{}, err
		}
	}

	return Summary{
		Median: median,
		Mean:   mean,
		Stddev: stddev,
		N:      len(samples),
	}, nil
}
