// Package snap normalizes slider values to steps and marks.
package snap

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// remainderPrecision trims float noise from step remainders
// (0.3 - 0.1*3 is not zero in binary floating point).
const remainderPrecision = 8

// Normalizer snaps a raw domain value.
// Implementations must be pure: same inputs, same output, no side effects.
type Normalizer interface {
	Normalize(value, min, step float64, marks []float64) float64
}

// Func adapts a plain function to Normalizer.
type Func func(value, min, step float64, marks []float64) float64

// Normalize calls f.
func (f Func) Normalize(value, min, step float64, marks []float64) float64 {
	return f(value, min, step, marks)
}

// Default snaps to the nearest mark when marks are given, otherwise to the
// nearest min + k*step.
var Default Normalizer = Func(Normalize)

// Identity returns values unchanged.
var Identity Normalizer = Func(func(value, _, _ float64, _ []float64) float64 { return value })

// Normalize is the default snapping rule.
func Normalize(value, min, step float64, marks []float64) float64 {
	if len(marks) > 0 {
		return ToMark(value, marks)
	}
	return ToStep(value, min, step)
}

// ToStep rounds value to the closest min + k*step. Half steps round up.
// The result is rounded to the number of decimals in step. A step that is
// not positive, or a non-finite min, leaves value untouched.
func ToStep(value, min, step float64) float64 {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) ||
		math.IsNaN(min) || math.IsInf(min, 0) {
		return value
	}

	steps := math.Floor((value - min) / step)
	remain := round(value-(steps*step+min), remainderPrecision)

	var closest float64
	switch {
	case remain == 0:
		closest = value
	case remain < step/2:
		closest = steps*step + min
	default:
		closest = (steps+1)*step + min
	}
	return round(closest, decimals(step))
}

// ToMark returns the mark closest to value. On a tie the upper mark wins.
func ToMark(value float64, marks []float64) float64 {
	if len(marks) == 0 {
		return value
	}
	sorted := slices.Clone(marks)
	slices.Sort(sorted)

	i, _ := slices.BinarySearch(sorted, value)
	switch {
	case i == 0:
		return sorted[0]
	case i == len(sorted):
		return sorted[len(sorted)-1]
	}
	lo, hi := sorted[i-1], sorted[i]
	if value-lo < hi-value {
		return lo
	}
	return hi
}

// decimals counts the digits after the decimal point of f.
func decimals(f float64) int {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}

func round(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}
