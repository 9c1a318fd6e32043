// Package qc implements the Foken quality tests applied to rotated
// eddy-covariance series: the Foken and Wichura (1996) stationarity test and
// the integral turbulence characteristics (ITC) test.
package qc

import (
	"math"

	"github.com/chrissnell/eddyflux/pkg/fluxstat"
)

const (
	// SubPeriods is the number of contiguous segments compared against the
	// whole averaging period (5-minute segments of a 30-minute run).
	SubPeriods = 6
	// StationarityThreshold is the largest accepted relative difference
	// between the whole-period covariance and the mean segment covariance.
	StationarityThreshold = 0.30
)

// Stationarity is the outcome of CheckStationarity.
type Stationarity struct {
	Stationary bool
	// Covariance is the whole-period w'T' covariance, reused for the flux.
	Covariance         float64
	MeanSubCovariance  float64
	RelativeDifference float64
}

// CheckStationarity splits w and t into SubPeriods segments of
// floor(n/SubPeriods) samples; up to SubPeriods-1 trailing samples take part
// in the whole-period covariance only. A zero whole-period covariance yields
// a non-finite difference and is reported as non-stationary.
func CheckStationarity(w, t []float64) Stationarity {
	total := fluxstat.Covariance(w, t)
	seg := len(w) / SubPeriods

	var sum float64
	for i := 0; i < SubPeriods; i++ {
		start := i * seg
		sum += fluxstat.Covariance(w[start:start+seg], t[start:start+seg])
	}
	meanSub := sum / SubPeriods

	diff := math.Abs(total-meanSub) / math.Abs(total)

	return Stationarity{
		Stationary:         diff <= StationarityThreshold,
		Covariance:         total,
		MeanSubCovariance:  meanSub,
		RelativeDifference: diff,
	}
}
