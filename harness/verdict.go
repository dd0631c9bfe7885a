package harness

import (
	"fmt"
	"math"
)

// Verdict is the three-way outcome of one comparison.
type Verdict int

const (
	VerdictTie Verdict = iota
	VerdictA
	VerdictB
)

func (v Verdict) String() string {
	switch v {
	case VerdictA:
		return "A"
	case VerdictB:
		return "B"
	default:
		return "tie"
	}
}

// MarshalText renders the verdict as its string form in JSON output.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText parses the string form written by MarshalText.
func (v *Verdict) UnmarshalText(text []byte) error {
	switch string(text) {
	case "A":
		*v = VerdictA
	case "B":
		*v = VerdictB
	case "tie":
		*v = VerdictTie
	default:
		return fmt.Errorf("unknown verdict %q", text)
	}

	return nil
}

// Adjudicate compares two summary values directionally, suppressing
// any decision that falls inside measurement noise: when the larger
// of the two standard deviations exceeds the observed gap, no winner
// can be asserted and the result is a tie. This is a heuristic noise
// gate, not a significance test; it prefers declaring a tie over
// false precision when variance is high.
func Adjudicate(a, b float64, lowerIsBetter bool, stdA, stdB float64) Verdict {
	noise := math.Max(stdA, stdB)
	if noise > 0 && math.Abs(a-b) < noise {
		return VerdictTie
	}

	switch {
	case a == b:
		return VerdictTie
	case (a < b) == lowerIsBetter:
		return VerdictA
	default:
		return VerdictB
	}
}
