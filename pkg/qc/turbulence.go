package qc

import "github.com/chrissnell/eddyflux/pkg/fluxstat"

// Range is an inclusive interval.
type Range struct {
	Min, Max float64
}

// Contains reports whether x lies in [r.Min, r.Max]. NaN is never contained.
func (r Range) Contains(x float64) bool {
	return x >= r.Min && x <= r.Max
}

// ITCBounds holds the accepted ranges of σ/U for each wind component.
type ITCBounds struct {
	SigmaU, SigmaV, SigmaW Range
}

// DefaultITCBounds returns the ranges expected for well-developed turbulence.
func DefaultITCBounds() ITCBounds {
	return ITCBounds{
		SigmaU: Range{Min: 0.5, Max: 3.0},
		SigmaV: Range{Min: 0.5, Max: 2.5},
		SigmaW: Range{Min: 0.1, Max: 1.0},
	}
}

// Turbulence is the outcome of CheckTurbulence.
type Turbulence struct {
	Sufficient  bool
	MeanU       float64
	SigmaURatio float64
	SigmaVRatio float64
	SigmaWRatio float64
}

// CheckTurbulence compares the sample standard deviations of the rotated
// wind components, normalised by the mean rotated u, against DefaultITCBounds.
func CheckTurbulence(u, v, w []float64) Turbulence {
	return CheckTurbulenceBounds(u, v, w, DefaultITCBounds())
}

// CheckTurbulenceBounds is CheckTurbulence with caller-supplied bounds.
func CheckTurbulenceBounds(u, v, w []float64, bounds ITCBounds) Turbulence {
	meanU := fluxstat.Mean(u)

	res := Turbulence{
		MeanU:       meanU,
		SigmaURatio: fluxstat.StdDevAbout(u, meanU) / meanU,
		SigmaVRatio: fluxstat.StdDev(v) / meanU,
		SigmaWRatio: fluxstat.StdDev(w) / meanU,
	}
	res.Sufficient = bounds.SigmaU.Contains(res.SigmaURatio) &&
		bounds.SigmaV.Contains(res.SigmaVRatio) &&
		bounds.SigmaW.Contains(res.SigmaWRatio)

	return res
}
