// Package stats provides order statistics over angle samples.
//
// Every function leaves its input untouched and reports ok=false for an empty
// sample instead of panicking.
package stats

import (
	"slices"

	"gonum.org/v1/gonum/floats"
)

// Min returns the smallest value in xs.
func Min(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	return floats.Min(xs), true
}

// Max returns the largest value in xs.
func Max(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	return floats.Max(xs), true
}

// ArgMax returns the index of the first occurrence of the largest value in xs.
func ArgMax(xs []float64) (int, bool) {
	if len(xs) == 0 {
		return -1, false
	}
	return floats.MaxIdx(xs), true
}

// Median returns the middle value of xs. For an even count it is the mean of
// the two middle values.
func Median(xs []float64) (float64, bool) {
	n := len(xs)
	if n == 0 {
		return 0, false
	}

	sorted := slices.Clone(xs)
	slices.Sort(sorted)

	if n%2 == 1 {
		return sorted[n/2], true
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2, true
}

// Percentile returns the nearest-rank value at fraction p (0..1): the element
// at index floor(n*p) of the sorted sample, clamped to the last element.
func Percentile(xs []float64, p float64) (float64, bool) {
	n := len(xs)
	if n == 0 {
		return 0, false
	}

	sorted := slices.Clone(xs)
	slices.Sort(sorted)

	idx := int(float64(n) * p)
	idx = max(0, min(idx, n-1))
	return sorted[idx], true
}
