// Package simulator generates synthetic sonic anemometer intervals with a
// known kinematic heat flux, for exercising the pipeline end to end.
package simulator

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/chrissnell/eddyflux/pkg/flux"
	"github.com/chrissnell/eddyflux/pkg/fluxstat"
)

// Params describes the interval to generate.
type Params struct {
	Samples int
	// MeanWind (m/s) blows from the u axis rotated by WindDirection degrees.
	MeanWind      float64
	WindDirection float64
	// Tilt adds a mean vertical wind of MeanWind*tan(Tilt degrees).
	Tilt float64

	SigmaU, SigmaV, SigmaW float64

	MeanTemperature float64
	// Covariance is the target population w'T' covariance in K·m/s.
	Covariance float64

	// Noise is the white-noise standard deviation as a fraction of each
	// channel's sigma.
	Noise float64
	// Spikes is the number of three-sample temperature spikes to inject.
	Spikes int

	Seed int64
}

// DefaultParams returns a 15-minute, 10 Hz interval with 4 m/s wind and a
// sensible heat flux of roughly 130 W/m².
func DefaultParams() Params {
	return Params{
		Samples:         flux.MinSamples15Min,
		MeanWind:        4,
		SigmaU:          4,
		SigmaV:          3,
		SigmaW:          1.2,
		MeanTemperature: 293.15,
		Covariance:      0.1,
		Noise:           0.02,
		Seed:            1,
	}
}

// Validate reports whether p can generate a series.
func (p Params) Validate() error {
	switch {
	case p.Samples < 2:
		return fmt.Errorf("simulator: need at least 2 samples, got %d", p.Samples)
	case p.SigmaU < 0 || p.SigmaV < 0 || !(p.SigmaW > 0):
		return fmt.Errorf("simulator: sigmas must be non-negative and sigma_w positive")
	case p.Noise < 0:
		return fmt.Errorf("simulator: noise must be non-negative")
	case p.Spikes < 0 || p.Spikes*20 > p.Samples:
		return fmt.Errorf("simulator: cannot place %d spikes in %d samples", p.Spikes, p.Samples)
	}
	return nil
}

// Generate builds the series. Each wind component is a sum of two sinusoids
// with seed-dependent phases plus Gaussian noise; T follows w scaled to hit
// the target covariance exactly before spikes are injected.
func Generate(p Params) (flux.Series, error) {
	if err := p.Validate(); err != nil {
		return flux.Series{}, err
	}
	rng := rand.New(rand.NewSource(p.Seed))
	n := p.Samples

	u := component(rng, n, p.SigmaU, 89, 233, p.Noise)
	v := component(rng, n, p.SigmaV, 73, 211, p.Noise)
	w := component(rng, n, p.SigmaW, 97, 199, p.Noise)
	background := component(rng, n, 0.3, 61, 157, 0)

	gain := 0.0
	if varW := fluxstat.Covariance(w, w); varW > 0 {
		gain = (p.Covariance - fluxstat.Covariance(w, background)) / varW
	}

	sinD, cosD := math.Sincos(p.WindDirection * math.Pi / 180)
	meanW := p.MeanWind * math.Tan(p.Tilt*math.Pi/180)

	s := flux.Series{
		U: make([]float64, n),
		V: make([]float64, n),
		W: make([]float64, n),
		T: make([]float64, n),
	}
	for j := 0; j < n; j++ {
		along := p.MeanWind + u[j]
		s.U[j] = along*cosD - v[j]*sinD
		s.V[j] = along*sinD + v[j]*cosD
		s.W[j] = meanW + w[j]
		s.T[j] = p.MeanTemperature + gain*w[j] + background[j]
	}

	injectSpikes(s.T, p.Spikes, 8*math.Max(p.SigmaW*gain, 1))
	return s, nil
}

// component returns a zero-mean series with standard deviation close to sigma.
func component(rng *rand.Rand, n int, sigma, p1, p2, noise float64) []float64 {
	out := make([]float64, n)
	if sigma == 0 {
		return out
	}
	ph1, ph2 := rng.Float64()*2*math.Pi, rng.Float64()*2*math.Pi
	a := sigma * math.Sqrt(2) * 0.8
	b := sigma * math.Sqrt(2) * 0.6
	for j := range out {
		x := float64(j)
		out[j] = a*math.Sin(2*math.Pi*x/p1+ph1) + b*math.Sin(2*math.Pi*x/p2+ph2)
		if noise > 0 {
			out[j] += rng.NormFloat64() * noise * sigma
		}
	}
	m := fluxstat.Mean(out)
	for j := range out {
		out[j] -= m
	}
	return out
}

// injectSpikes adds count three-sample runs of +height, evenly spaced and
// clear of the series ends.
func injectSpikes(t []float64, count int, height float64) {
	if count == 0 {
		return
	}
	step := len(t) / (count + 1)
	for k := 1; k <= count; k++ {
		at := k * step
		for j := at; j < at+3 && j < len(t); j++ {
			t[j] += height
		}
	}
}
