package rotation

import (
	"errors"

	"github.com/chrissnell/eddyflux/pkg/fluxstat"
)

// Correction is the outcome of ApplyCoordinateRotation. When rotation was
// skipped or failed, U, V and W are the caller's input slices and the angles
// are zero.
type Correction struct {
	U, V, W []float64

	AlphaDegrees float64
	BetaDegrees  float64

	HorizontalWindSpeed float64
	Plane               *Plane
	Flags               Flags
}

// ApplyCoordinateRotation rotates the wind components with the selected
// method. It never fails: very low wind speed skips rotation, and a failed
// rotation returns the unrotated input with the failure's flag added to
// whatever flags were already set.
func ApplyCoordinateRotation(u, v, w []float64, method Method) Correction {
	means := Means{
		U: fluxstat.Mean(u),
		V: fluxstat.Mean(v),
		W: fluxstat.Mean(w),
	}
	speed := means.HorizontalSpeed()

	unrotated := Correction{
		U:                   u,
		V:                   v,
		W:                   w,
		HorizontalWindSpeed: speed,
	}

	flags := FlagValid
	switch {
	case speed < VeryLowWindSpeed:
		unrotated.Flags = FlagLowWindSpeed
		return unrotated
	case speed < LowWindSpeed:
		flags = FlagLowWindSpeed
	}

	var (
		rotated Rotated
		err     error
	)
	switch method {
	case PlanarFit:
		rotated, err = PlanarFitRotate(u, v, w, means)
	default:
		rotated, err = DoubleRotate(u, v, w, means)
	}

	if err != nil {
		var rotErr *Error
		if errors.As(err, &rotErr) {
			flags |= rotErr.Reason.Flag()
		}
		unrotated.Flags = flags
		return unrotated
	}

	return Correction{
		U:                   rotated.U,
		V:                   rotated.V,
		W:                   rotated.W,
		AlphaDegrees:        rotated.Alpha,
		BetaDegrees:         rotated.Beta,
		HorizontalWindSpeed: speed,
		Plane:               rotated.Plane,
		Flags:               flags,
	}
}
