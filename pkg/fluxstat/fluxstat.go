// Package fluxstat provides the summary statistics used throughout the
// eddy-covariance pipeline. All functions are pure and operate on borrowed
// slices.
package fluxstat

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean of x. x must not be empty.
func Mean(x []float64) float64 {
	return stat.Mean(x, nil)
}

// StdDev returns the sample standard deviation of x (divisor n-1).
// The result is NaN when len(x) < 2.
func StdDev(x []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	return stat.StdDev(x, nil)
}

// StdDevAbout returns the sample standard deviation of x about a mean the
// caller has already computed, saving a pass over large buffers.
func StdDevAbout(x []float64, mean float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	var ss float64
	for _, v := range x {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(x)-1))
}

// Covariance returns the population covariance of a and b (divisor n),
// each taken about its own mean. a and b must have the same, non-zero length.
func Covariance(a, b []float64) float64 {
	n := len(a)
	if n == 1 {
		return 0
	}
	// gonum returns the unbiased estimate; rescale to the population form.
	return stat.Covariance(a, b, nil) * float64(n-1) / float64(n)
}

// WindowMeanStdDev returns the population mean and standard deviation of a
// short window. weights may be nil; a zero weight excludes a sample. It does
// not allocate, so callers can pass subslices of a large buffer.
func WindowMeanStdDev(x, weights []float64) (mean, std float64) {
	return stat.PopMeanStdDev(x, weights)
}
