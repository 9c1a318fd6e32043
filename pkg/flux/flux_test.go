package flux

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/eddyflux/pkg/despike"
	"github.com/chrissnell/eddyflux/pkg/fluxstat"
	"github.com/chrissnell/eddyflux/pkg/rotation"
)

// sinusoid returns a zero-mean sine with standard deviation amp/√2.
func sinusoid(n int, amp, period, phase float64) []float64 {
	out := make([]float64, n)
	for j := range out {
		out[j] = amp * math.Sin(2*math.Pi*float64(j)/period+phase)
	}
	m := fluxstat.Mean(out)
	for j := range out {
		out[j] -= m
	}
	return out
}

// synthetic builds a well-behaved interval: 5 m/s mean wind along u,
// σu = σv = 5, σw = 1.5 and a population w'T' covariance of exactly 0.1 K·m/s.
// The temperature background is orthogonal to w so it adds no covariance.
func synthetic(n int) Series {
	u := sinusoid(n, 5*math.Sqrt2, 89, 0.3)
	for j := range u {
		u[j] += 5
	}
	v := sinusoid(n, 5*math.Sqrt2, 73, 0)
	w := sinusoid(n, 1.5*math.Sqrt2, 97, 0)

	background := make([]float64, n)
	var sumWW, sumWB float64
	for j, x := range w {
		background[j] = 0.5 * math.Cos(2*math.Pi*float64(j)/61)
		sumWW += x * x
		sumWB += x * background[j]
	}
	gain := 0.1 / (sumWW / float64(n))
	leak := sumWB / sumWW

	t := make([]float64, n)
	for j := range t {
		t[j] = 293.15 + gain*w[j] + background[j] - leak*w[j]
	}
	return Series{U: u, V: v, W: w, T: t}
}

func expectedFlux(s Series) float64 {
	return AirDensity * SpecificHeatCapacity * fluxstat.Covariance(s.W, s.T) * WPLCorrectionFactor
}

func TestComputeSensibleHeatFluxClean(t *testing.T) {
	s := synthetic(MinSamples30Min)

	res, err := ComputeSensibleHeatFlux(s, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, Valid, res.QualityFlags)
	assert.Equal(t, Unit, res.Unit)
	assert.InEpsilon(t, expectedFlux(s), res.Value, 1e-6)
	assert.InDelta(t, 131.4, res.Value, 0.5)
	assert.InDelta(t, 0.1, res.Diagnostics[DiagCovarianceWT], 1e-9)

	d := res.Diagnostics
	assert.Equal(t, 0.0, d[DiagSpikePercentage])
	assert.InDelta(t, 0, d[DiagRotationAlpha], 1e-9)
	assert.InDelta(t, 0, d[DiagRotationBeta], 1e-9)
	assert.Equal(t, float64(rotation.FlagValid), d[DiagRotationFlags])
	assert.InDelta(t, 5, d[DiagHorizontalWindSpeed], 1e-9)
	assert.InDelta(t, 1.0, d[DiagSigmaURatio], 0.01)
	assert.InDelta(t, 1.0, d[DiagSigmaVRatio], 0.01)
	assert.InDelta(t, 0.3, d[DiagSigmaWRatio], 0.01)
	assert.InDelta(t, 1800, d[DiagAveragingPeriod], 1e-9)
	assert.Less(t, d[DiagStationarityDifference], 0.01)

	_, ok := d[DiagFluxFootprintDistance]
	assert.False(t, ok, "footprint needs a measurement height")
}

func TestComputeSensibleHeatFluxDoesNotModifyInput(t *testing.T) {
	s := synthetic(MinSamples15Min)
	s.T[4000] += 10
	s.T[4001] += 10
	s.T[4002] += 10
	before := append([]float64(nil), s.T...)

	_, err := ComputeSensibleHeatFlux(s, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, before, s.T)
}

func TestComputeSensibleHeatFluxValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Series, *Options)
		want   error
	}{
		{
			name:   "length mismatch",
			mutate: func(s *Series, _ *Options) { s.T = s.T[:len(s.T)-1] },
			want:   ErrLengthMismatch,
		},
		{
			name:   "too few samples",
			mutate: func(s *Series, o *Options) { *o = Profile30Min() },
			want:   ErrTooFewSamples,
		},
		{
			name:   "negative height",
			mutate: func(_ *Series, o *Options) { *o = o.With(WithMeasurementHeight(-2)) },
			want:   ErrInvalidHeight,
		},
		{
			name:   "zero height",
			mutate: func(_ *Series, o *Options) { *o = o.With(WithMeasurementHeight(0)) },
			want:   ErrInvalidHeight,
		},
		{
			name: "roughness above height",
			mutate: func(_ *Series, o *Options) {
				*o = o.With(WithMeasurementHeight(2), WithRoughnessLength(3))
			},
			want: ErrInvalidRoughness,
		},
		{
			name:   "zero frequency",
			mutate: func(_ *Series, o *Options) { *o = o.With(WithSamplingFrequency(0)) },
			want:   ErrInvalidFrequency,
		},
		{
			name:   "NaN sample",
			mutate: func(s *Series, _ *Options) { s.W[10] = math.NaN() },
			want:   ErrNonFinite,
		},
		{
			name:   "tiny minimum",
			mutate: func(_ *Series, o *Options) { *o = o.With(WithMinSamples(5)) },
			want:   ErrInvalidOptions,
		},
		{
			name: "bad despike window",
			mutate: func(_ *Series, o *Options) {
				*o = o.With(WithDespikeParams(despike.Params{WindowSize: 1, Threshold: 3.5, MinConsecutive: 3}))
			},
			want: ErrInvalidOptions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := synthetic(MinSamples15Min)
			opts := DefaultOptions()
			tt.mutate(&s, &opts)

			res, err := ComputeSensibleHeatFlux(s, opts)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var verr *ValidationError
			assert.True(t, errors.As(err, &verr))
			assert.Equal(t, Result{}, res)
		})
	}
}

func TestComputeSensibleHeatFluxSpikes(t *testing.T) {
	s := synthetic(MinSamples30Min)
	for j := 9000; j < 9003; j++ {
		s.T[j] += 10
	}

	res, err := ComputeSensibleHeatFlux(s, DefaultOptions())
	require.NoError(t, err)

	assert.True(t, res.QualityFlags.Has(Valid|SpikesDetected))
	assert.InDelta(t, 100*3.0/float64(MinSamples30Min), res.Diagnostics[DiagSpikePercentage], 1e-12)
	assert.False(t, res.QualityFlags.Has(NonStationaryConditions))
}

func TestComputeSensibleHeatFluxAngleOfAttack(t *testing.T) {
	s := synthetic(MinSamples30Min)
	for j := range s.W {
		s.W[j] += 3.5
	}

	res, err := ComputeSensibleHeatFlux(s, DefaultOptions())
	require.NoError(t, err)

	assert.True(t, res.QualityFlags.Has(AngleOfAttackExceeded))
	assert.InDelta(t, math.Atan2(3.5, 5)*180/math.Pi, res.Diagnostics[DiagRotationBeta], 1e-6)
	assert.Equal(t, float64(rotation.FlagValid), res.Diagnostics[DiagRotationFlags])
}

func TestComputeSensibleHeatFluxExtremeRotationFallsBack(t *testing.T) {
	s := synthetic(MinSamples15Min)
	for j := range s.W {
		s.W[j] += 10
	}

	res, err := ComputeSensibleHeatFlux(s, DefaultOptions())
	require.NoError(t, err)

	flags := rotation.Flags(res.Diagnostics[DiagRotationFlags])
	assert.True(t, flags.Has(rotation.FlagExtremeRotationAngle))
	assert.Equal(t, 0.0, res.Diagnostics[DiagRotationBeta])
	assert.False(t, res.QualityFlags.Has(AngleOfAttackExceeded))
}

func TestComputeSensibleHeatFluxWeakTurbulence(t *testing.T) {
	s := synthetic(MinSamples30Min)
	for j := range s.W {
		s.W[j] *= 0.1
	}

	res, err := ComputeSensibleHeatFlux(s, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, Valid|WeakTurbulence, res.QualityFlags)
	assert.InDelta(t, 0.03, res.Diagnostics[DiagSigmaWRatio], 0.001)
}

func TestComputeSensibleHeatFluxNonStationary(t *testing.T) {
	s := synthetic(MinSamples30Min)
	n := float64(len(s.W))
	for j := range s.W {
		s.W[j] += 0.5 * (float64(j)/n - 0.5)
		s.T[j] += 2 * float64(j) / n
	}

	res, err := ComputeSensibleHeatFlux(s, DefaultOptions())
	require.NoError(t, err)

	assert.True(t, res.QualityFlags.Has(NonStationaryConditions))
	assert.Greater(t, res.Diagnostics[DiagStationarityDifference], 0.3)
}

func TestComputeSensibleHeatFluxLowWind(t *testing.T) {
	s := synthetic(MinSamples15Min)
	for j := range s.U {
		s.U[j] -= 5
	}

	res, err := ComputeSensibleHeatFlux(s, DefaultOptions().With(WithMeasurementHeight(3)))
	require.NoError(t, err)

	assert.Equal(t, float64(rotation.FlagLowWindSpeed), res.Diagnostics[DiagRotationFlags])
	assert.True(t, res.QualityFlags.Has(Valid|WeakTurbulence))
	assert.Equal(t, 0.0, res.Diagnostics[DiagRotationAlpha])
	assert.False(t, math.IsNaN(res.Value))
}

func TestComputeSensibleHeatFluxFootprint(t *testing.T) {
	s := synthetic(MinSamples15Min)

	uStar := 5 * 0.41 / math.Log(10)
	peak := 3 * (2 * 5 / uStar) * (1 - math.Exp(-15))

	res, err := ComputeSensibleHeatFlux(s, DefaultOptions().With(WithMeasurementHeight(3), WithFetchDistance(100)))
	require.NoError(t, err)
	assert.Equal(t, Valid, res.QualityFlags)
	assert.InDelta(t, uStar, res.Diagnostics[DiagFrictionVelocity], 1e-6)
	assert.InDelta(t, peak, res.Diagnostics[DiagFluxFootprintDistance], 1e-4)

	res, err = ComputeSensibleHeatFlux(s, DefaultOptions().With(WithMeasurementHeight(3), WithFetchDistance(10)))
	require.NoError(t, err)
	assert.Equal(t, Valid|OutsideFluxFootprint, res.QualityFlags)
}

func TestComputeSensibleHeatFluxPlanarFit(t *testing.T) {
	s := synthetic(MinSamples30Min)
	want := expectedFlux(s)

	// Tilt the sensor: w picks up a tenth of the u fluctuation.
	for j := range s.W {
		s.W[j] += 0.1 * (s.U[j] - 5)
	}

	res, err := ComputeSensibleHeatFlux(s, Profile30Min())
	require.NoError(t, err)

	assert.Equal(t, Valid, res.QualityFlags)
	assert.InDelta(t, 0.1, res.Diagnostics[DiagPlanarFitSlopeU], 0.01)
	assert.InDelta(t, 0, res.Diagnostics[DiagPlanarFitSlopeV], 0.01)
	assert.InDelta(t, 5.7, res.Diagnostics[DiagRotationBeta], 0.5)
	assert.InEpsilon(t, want, res.Value, 0.02)
}

func TestDiagnosticsAddSkipsNonFinite(t *testing.T) {
	d := Diagnostics{}
	d.Add("a", 1)
	d.Add("a", 2)
	d.Add("b", math.NaN())
	d.Add("c", math.Inf(1))

	assert.Equal(t, Diagnostics{"a": 3}, d)
}

func TestOptionsPresets(t *testing.T) {
	assert.Equal(t, Profile15Min(), DefaultOptions())
	assert.Equal(t, rotation.PlanarFit, Profile30Min().RotationMethod)
	assert.Equal(t, MinSamples30Min, Profile30Min().MinSamples)

	base := DefaultOptions()
	tuned := base.With(WithMeasurementHeight(2.5), WithRotationMethod(rotation.PlanarFit))
	assert.Nil(t, base.MeasurementHeight)
	require.NotNil(t, tuned.MeasurementHeight)
	assert.Equal(t, 2.5, *tuned.MeasurementHeight)
	assert.Equal(t, rotation.PlanarFit, tuned.RotationMethod)
}

func TestQualityFlagsString(t *testing.T) {
	assert.Equal(t, "None", None.String())
	assert.Equal(t, "Valid|SpikesDetected|WeakTurbulence", (Valid | WeakTurbulence | SpikesDetected).String())
	assert.False(t, Valid.Degraded())
	assert.True(t, (Valid | OutsideFluxFootprint).Degraded())
}
