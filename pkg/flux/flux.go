// Package flux turns one averaging interval of sonic anemometer data into a
// quality-controlled sensible heat flux.
package flux

import (
	"errors"
	"math"

	"github.com/chrissnell/eddyflux/pkg/despike"
	"github.com/chrissnell/eddyflux/pkg/footprint"
	"github.com/chrissnell/eddyflux/pkg/qc"
	"github.com/chrissnell/eddyflux/pkg/rotation"
)

const (
	// AirDensity is the dry-air density (kg/m³) assumed for the conversion.
	AirDensity = 1.225
	// SpecificHeatCapacity of air at constant pressure, J/(kg·K).
	SpecificHeatCapacity = 1004.0
	// WPLCorrectionFactor approximates the Webb-Pearman-Leuning density
	// correction as a flat +7%.
	WPLCorrectionFactor = 1.07
	// MaxAngleOfAttack is the largest accepted pitch angle in degrees.
	MaxAngleOfAttack = 30.0

	// Unit of Result.Value.
	Unit = "W/m²"
)

// Diagnostic keys.
const (
	DiagSpikePercentage        = "spike_percentage"
	DiagRotationAlpha          = "rotation_angle_alpha"
	DiagRotationBeta           = "rotation_angle_beta"
	DiagRotationFlags          = "rotation_flags"
	DiagHorizontalWindSpeed    = "horizontal_wind_speed"
	DiagStationarityDifference = "stationarity_relative_difference"
	DiagSigmaURatio            = "sigma_u_ratio"
	DiagSigmaVRatio            = "sigma_v_ratio"
	DiagSigmaWRatio            = "sigma_w_ratio"
	DiagAveragingPeriod        = "averaging_period_seconds"
	DiagFrictionVelocity       = "friction_velocity"
	DiagFluxFootprintDistance  = "flux_footprint_distance"
	DiagCovarianceWT           = "covariance_wt"
	DiagPlanarFitIntercept     = "planar_fit_b0"
	DiagPlanarFitSlopeU        = "planar_fit_b1"
	DiagPlanarFitSlopeV        = "planar_fit_b2"
)

// Series is one averaging interval of synchronous samples: wind components
// u, v, w in m/s and sonic temperature T in K.
type Series struct {
	U []float64 `json:"u"`
	V []float64 `json:"v"`
	W []float64 `json:"w"`
	T []float64 `json:"t"`
}

// Len returns the length of U.
func (s Series) Len() int {
	return len(s.U)
}

// Diagnostics holds intermediate values of a computation by key.
type Diagnostics map[string]float64

// Add accumulates value under key. Non-finite values are dropped so the map
// always encodes.
func (d Diagnostics) Add(key string, value float64) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return
	}
	d[key] += value
}

// Result is a computed sensible heat flux.
type Result struct {
	Value        float64      `json:"value"`
	Unit         string       `json:"unit"`
	QualityFlags QualityFlags `json:"quality_flags"`
	Diagnostics  Diagnostics  `json:"diagnostics"`
}

var channelNames = [...]string{"u", "v", "w", "t"}

// Validate checks s against opts without computing anything.
func (s Series) Validate(opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	n := len(s.U)
	if len(s.V) != n || len(s.W) != n || len(s.T) != n {
		return invalid(ErrLengthMismatch, "u=%d v=%d w=%d t=%d", len(s.U), len(s.V), len(s.W), len(s.T))
	}
	if n < opts.MinSamples {
		return invalid(ErrTooFewSamples, "got %d, need %d", n, opts.MinSamples)
	}

	for c, ch := range [][]float64{s.U, s.V, s.W, s.T} {
		for i, x := range ch {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return invalid(ErrNonFinite, "%s[%d]=%v", channelNames[c], i, x)
			}
		}
	}
	return nil
}

// ComputeSensibleHeatFlux despikes and rotates s, runs the stationarity and
// turbulence tests, optionally estimates the footprint, and converts the
// w'T' covariance to W/m². Only invalid input returns an error; every data
// quality problem is reported through Result.QualityFlags.
func ComputeSensibleHeatFlux(s Series, opts Options) (Result, error) {
	if err := s.Validate(opts); err != nil {
		return Result{}, err
	}

	flags := Valid
	diag := Diagnostics{}

	clean, err := despike.RemoveSpikes(s.U, s.V, s.W, s.T, opts.Despike)
	if err != nil {
		return Result{}, &ValidationError{Err: ErrInvalidOptions, Detail: err.Error()}
	}
	if clean.Stats.TotalSpikes > 0 {
		flags |= SpikesDetected
	}
	diag.Add(DiagSpikePercentage, clean.Stats.SpikePercentage)

	rot := rotation.ApplyCoordinateRotation(clean.U, clean.V, clean.W, opts.RotationMethod)
	if math.Abs(rot.BetaDegrees) > MaxAngleOfAttack {
		flags |= AngleOfAttackExceeded
	}
	diag.Add(DiagRotationAlpha, rot.AlphaDegrees)
	diag.Add(DiagRotationBeta, rot.BetaDegrees)
	diag.Add(DiagRotationFlags, float64(rot.Flags))
	diag.Add(DiagHorizontalWindSpeed, rot.HorizontalWindSpeed)
	if rot.Plane != nil {
		diag.Add(DiagPlanarFitIntercept, rot.Plane.B0)
		diag.Add(DiagPlanarFitSlopeU, rot.Plane.B1)
		diag.Add(DiagPlanarFitSlopeV, rot.Plane.B2)
	}

	stat := qc.CheckStationarity(rot.W, clean.T)
	if !stat.Stationary {
		flags |= NonStationaryConditions
	}
	diag.Add(DiagStationarityDifference, stat.RelativeDifference)
	diag.Add(DiagCovarianceWT, stat.Covariance)

	turb := qc.CheckTurbulence(rot.U, rot.V, rot.W)
	if !turb.Sufficient {
		flags |= WeakTurbulence
	}
	diag.Add(DiagSigmaURatio, turb.SigmaURatio)
	diag.Add(DiagSigmaVRatio, turb.SigmaVRatio)
	diag.Add(DiagSigmaWRatio, turb.SigmaWRatio)

	diag.Add(DiagAveragingPeriod, float64(s.Len())/opts.SamplingFrequency)

	if opts.MeasurementHeight != nil {
		fp, err := footprint.Calculate(rot.HorizontalWindSpeed, *opts.MeasurementHeight, opts.RoughnessLength)
		switch {
		case err == nil:
			diag.Add(DiagFrictionVelocity, fp.FrictionVelocity)
			diag.Add(DiagFluxFootprintDistance, fp.PeakDistance)
			if opts.FetchDistance != nil && fp.PeakDistance > *opts.FetchDistance {
				flags |= OutsideFluxFootprint
			}
		case errors.Is(err, footprint.ErrNoWind):
			// Calm air has no defined footprint.
		default:
			return Result{}, &ValidationError{Err: ErrInvalidRoughness, Detail: err.Error()}
		}
	}

	return Result{
		Value:        AirDensity * SpecificHeatCapacity * stat.Covariance * WPLCorrectionFactor,
		Unit:         Unit,
		QualityFlags: flags,
		Diagnostics:  diag,
	}, nil
}
