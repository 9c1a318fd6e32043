package flux

import (
	"github.com/chrissnell/eddyflux/pkg/despike"
	"github.com/chrissnell/eddyflux/pkg/rotation"
)

const (
	// DefaultSamplingFrequency is the sonic anemometer output rate in Hz.
	DefaultSamplingFrequency = 10.0

	// MinSamples15Min is 15 minutes of 10 Hz data.
	MinSamples15Min = 9000
	// MinSamples30Min is 30 minutes of 10 Hz data.
	MinSamples30Min = 18000

	// minSamplesFloor keeps every stationarity segment at two samples or more.
	minSamplesFloor = 12
)

// Options configures ComputeSensibleHeatFlux.
type Options struct {
	// MeasurementHeight (m) enables the footprint estimate when set.
	MeasurementHeight *float64
	// RoughnessLength (m) defaults to MeasurementHeight/10.
	RoughnessLength *float64
	// FetchDistance (m) is the homogeneous upwind fetch. When set along with
	// MeasurementHeight, a peak footprint beyond it raises OutsideFluxFootprint.
	FetchDistance *float64

	RotationMethod    rotation.Method
	MinSamples        int
	SamplingFrequency float64
	Despike           despike.Params
}

// Option adjusts Options.
type Option func(*Options)

// Profile15Min is the 15-minute averaging profile: 9000 samples, double rotation.
func Profile15Min() Options {
	return Options{
		RotationMethod:    rotation.DoubleRotation,
		MinSamples:        MinSamples15Min,
		SamplingFrequency: DefaultSamplingFrequency,
		Despike:           despike.DefaultParams(),
	}
}

// Profile30Min is the 30-minute averaging profile: 18000 samples, planar fit.
func Profile30Min() Options {
	return Options{
		RotationMethod:    rotation.PlanarFit,
		MinSamples:        MinSamples30Min,
		SamplingFrequency: DefaultSamplingFrequency,
		Despike:           despike.DefaultParams(),
	}
}

// DefaultOptions returns Profile15Min.
func DefaultOptions() Options {
	return Profile15Min()
}

// NewOptions applies opts to a copy of base.
func NewOptions(base Options, opts ...Option) Options {
	for _, opt := range opts {
		opt(&base)
	}
	return base
}

// With returns a copy of o with opts applied.
func (o Options) With(opts ...Option) Options {
	return NewOptions(o, opts...)
}

func WithMeasurementHeight(meters float64) Option {
	return func(o *Options) { o.MeasurementHeight = &meters }
}

func WithRoughnessLength(meters float64) Option {
	return func(o *Options) { o.RoughnessLength = &meters }
}

func WithFetchDistance(meters float64) Option {
	return func(o *Options) { o.FetchDistance = &meters }
}

func WithRotationMethod(m rotation.Method) Option {
	return func(o *Options) { o.RotationMethod = m }
}

func WithMinSamples(n int) Option {
	return func(o *Options) { o.MinSamples = n }
}

func WithSamplingFrequency(hz float64) Option {
	return func(o *Options) { o.SamplingFrequency = hz }
}

func WithDespikeParams(p despike.Params) Option {
	return func(o *Options) { o.Despike = p }
}

// Validate checks the options independently of any data.
func (o Options) Validate() error {
	if o.MinSamples < minSamplesFloor {
		return invalid(ErrInvalidOptions, "minimum sample count must be at least %d, got %d", minSamplesFloor, o.MinSamples)
	}
	if !(o.SamplingFrequency > 0) {
		return invalid(ErrInvalidFrequency, "got %v Hz", o.SamplingFrequency)
	}
	if o.RotationMethod != rotation.DoubleRotation && o.RotationMethod != rotation.PlanarFit {
		return invalid(ErrInvalidOptions, "unknown rotation method %v", o.RotationMethod)
	}
	if err := o.Despike.Validate(); err != nil {
		return &ValidationError{Err: ErrInvalidOptions, Detail: err.Error()}
	}
	if o.MeasurementHeight != nil && !(*o.MeasurementHeight > 0) {
		return invalid(ErrInvalidHeight, "got %v m", *o.MeasurementHeight)
	}
	if o.RoughnessLength != nil {
		z0 := *o.RoughnessLength
		if !(z0 > 0) || (o.MeasurementHeight != nil && z0 >= *o.MeasurementHeight) {
			return invalid(ErrInvalidRoughness, "got %v m", z0)
		}
	}
	if o.FetchDistance != nil && !(*o.FetchDistance > 0) {
		return invalid(ErrInvalidOptions, "fetch distance must be positive, got %v m", *o.FetchDistance)
	}
	return nil
}
