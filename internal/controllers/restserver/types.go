package restserver

import (
	"time"

	"github.com/chrissnell/eddyflux/pkg/flux"
	"github.com/chrissnell/eddyflux/pkg/rotation"
)

// FluxRequest is the body of POST /api/v1/flux.
type FluxRequest struct {
	// Site selects the configured site; empty means the first one.
	Site string `json:"site,omitempty"`
	// StartTime is the beginning of the averaging interval; defaults to now.
	StartTime *time.Time       `json:"start_time,omitempty"`
	Series    flux.Series      `json:"series"`
	Options   *OptionOverrides `json:"options,omitempty"`
}

// OptionOverrides adjust the site options for one request.
type OptionOverrides struct {
	MeasurementHeight *float64 `json:"measurement_height,omitempty"`
	RoughnessLength   *float64 `json:"roughness_length,omitempty"`
	FetchDistance     *float64 `json:"fetch_distance,omitempty"`
	RotationMethod    string   `json:"rotation_method,omitempty"`
}

func (o *OptionOverrides) toOptions() ([]flux.Option, error) {
	if o == nil {
		return nil, nil
	}

	var opts []flux.Option
	if o.MeasurementHeight != nil {
		opts = append(opts, flux.WithMeasurementHeight(*o.MeasurementHeight))
	}
	if o.RoughnessLength != nil {
		opts = append(opts, flux.WithRoughnessLength(*o.RoughnessLength))
	}
	if o.FetchDistance != nil {
		opts = append(opts, flux.WithFetchDistance(*o.FetchDistance))
	}
	if o.RotationMethod != "" {
		m, err := rotation.ParseMethod(o.RotationMethod)
		if err != nil {
			return nil, err
		}
		opts = append(opts, flux.WithRotationMethod(m))
	}
	return opts, nil
}

// SiteInfo describes a configured site in GET /api/v1/sites.
type SiteInfo struct {
	Name              string   `json:"name"`
	RotationMethod    string   `json:"rotation_method"`
	MinSamples        int      `json:"min_samples"`
	SamplingFrequency float64  `json:"sampling_frequency"`
	MeasurementHeight *float64 `json:"measurement_height,omitempty"`
	RoughnessLength   *float64 `json:"roughness_length,omitempty"`
	FetchDistance     *float64 `json:"fetch_distance,omitempty"`
}

// Recommendation is the body of GET /api/v1/recommend.
type Recommendation struct {
	Terrain        string  `json:"terrain"`
	WindSpeed      float64 `json:"wind_speed"`
	SlopeDegrees   float64 `json:"slope_degrees"`
	RotationMethod string  `json:"rotation_method"`
}
