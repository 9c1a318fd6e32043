// Package footprint estimates the upwind distance of peak contribution to a
// measured flux. The model assumes neutral stability, a logarithmic wind
// profile over a homogeneous surface and no boundary-layer height limit, so
// it is a screening estimate for quality control rather than a footprint
// climatology.
package footprint

import (
	"errors"
	"fmt"
	"math"
)

// VonKarman is the von Kármán constant.
const VonKarman = 0.41

var (
	ErrInvalidHeight    = errors.New("footprint: measurement height must be positive")
	ErrInvalidRoughness = errors.New("footprint: roughness length must be positive and below the measurement height")
	ErrNoWind           = errors.New("footprint: friction velocity is zero")
)

// Estimate is the result of a footprint calculation.
type Estimate struct {
	// PeakDistance is the upwind distance (m) of the maximum contribution.
	PeakDistance float64
	// FrictionVelocity is u* (m/s) from the log-law.
	FrictionVelocity float64
	// RoughnessLength is the z0 (m) actually used.
	RoughnessLength float64
}

// DefaultRoughnessLength returns the z0 assumed when none is configured.
func DefaultRoughnessLength(measurementHeight float64) float64 {
	return measurementHeight / 10
}

// FrictionVelocity estimates u* from the mean wind using the neutral
// logarithmic profile.
func FrictionVelocity(meanWind, measurementHeight, roughnessLength float64) float64 {
	return meanWind * VonKarman / math.Log(measurementHeight/roughnessLength)
}

// Calculate returns the peak footprint distance
//
//	xmax = z * (2U/u*) * (1 - exp(-1.5 z/z0))
//
// for mean wind U, measurement height z and roughness length z0. A nil
// roughnessLength uses DefaultRoughnessLength.
func Calculate(meanWind, measurementHeight float64, roughnessLength *float64) (Estimate, error) {
	if !(measurementHeight > 0) {
		return Estimate{}, ErrInvalidHeight
	}

	z0 := DefaultRoughnessLength(measurementHeight)
	if roughnessLength != nil {
		z0 = *roughnessLength
	}
	if !(z0 > 0) || z0 >= measurementHeight {
		return Estimate{}, fmt.Errorf("%w: z0=%g z=%g", ErrInvalidRoughness, z0, measurementHeight)
	}

	uStar := FrictionVelocity(meanWind, measurementHeight, z0)
	if uStar == 0 || math.IsNaN(uStar) {
		return Estimate{}, ErrNoWind
	}

	xmax := measurementHeight * (2 * meanWind / uStar) * (1 - math.Exp(-1.5*measurementHeight/z0))

	return Estimate{
		PeakDistance:     xmax,
		FrictionVelocity: uStar,
		RoughnessLength:  z0,
	}, nil
}
