package config

import (
	"fmt"

	"github.com/chrissnell/eddyflux/pkg/flux"
	"github.com/chrissnell/eddyflux/pkg/rotation"
)

// Profile names accepted in SiteData.Profile.
const (
	Profile15Min = "15min"
	Profile30Min = "30min"
)

// FluxOptions builds validated flux.Options for the site: the profile preset
// first, then every field the site sets explicitly.
func (s SiteData) FluxOptions() (flux.Options, error) {
	var opts flux.Options
	switch s.Profile {
	case "", Profile15Min:
		opts = flux.Profile15Min()
	case Profile30Min:
		opts = flux.Profile30Min()
	default:
		return flux.Options{}, fmt.Errorf("site %q: unknown profile %q", s.Name, s.Profile)
	}

	var overrides []flux.Option
	if s.MeasurementHeight != nil {
		overrides = append(overrides, flux.WithMeasurementHeight(*s.MeasurementHeight))
	}
	if s.RoughnessLength != nil {
		overrides = append(overrides, flux.WithRoughnessLength(*s.RoughnessLength))
	}
	if s.FetchDistance != nil {
		overrides = append(overrides, flux.WithFetchDistance(*s.FetchDistance))
	}
	if s.RotationMethod != "" {
		m, err := rotation.ParseMethod(s.RotationMethod)
		if err != nil {
			return flux.Options{}, fmt.Errorf("site %q: %w", s.Name, err)
		}
		overrides = append(overrides, flux.WithRotationMethod(m))
	}
	if s.MinSamples != 0 {
		overrides = append(overrides, flux.WithMinSamples(s.MinSamples))
	}
	if s.SamplingFrequency != 0 {
		overrides = append(overrides, flux.WithSamplingFrequency(s.SamplingFrequency))
	}
	if s.Despike != nil {
		p := opts.Despike
		if s.Despike.WindowSize != 0 {
			p.WindowSize = s.Despike.WindowSize
		}
		if s.Despike.Threshold != 0 {
			p.Threshold = s.Despike.Threshold
		}
		if s.Despike.MinConsecutive != 0 {
			p.MinConsecutive = s.Despike.MinConsecutive
		}
		overrides = append(overrides, flux.WithDespikeParams(p))
	}

	opts = opts.With(overrides...)
	if err := opts.Validate(); err != nil {
		return flux.Options{}, fmt.Errorf("site %q: %w", s.Name, err)
	}
	return opts, nil
}

// Validate checks the configuration as a whole.
func (c *ConfigData) Validate() error {
	if len(c.Sites) == 0 {
		return fmt.Errorf("no sites configured - at least one site must be configured")
	}

	seen := make(map[string]bool, len(c.Sites))
	for _, s := range c.Sites {
		if s.Name == "" {
			return fmt.Errorf("every site needs a name")
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate site name %q", s.Name)
		}
		seen[s.Name] = true

		if _, err := s.FluxOptions(); err != nil {
			return err
		}
	}

	if c.Storage.SQLite != nil && c.Storage.TimescaleDB != nil {
		return fmt.Errorf("storage: configure either sqlite or timescaledb, not both")
	}
	return nil
}

// FindSite returns the named site, or the first configured site when name
// is empty.
func (c *ConfigData) FindSite(name string) (*SiteData, error) {
	if name == "" && len(c.Sites) > 0 {
		return &c.Sites[0], nil
	}
	for i := range c.Sites {
		if c.Sites[i].Name == name {
			return &c.Sites[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrSiteNotFound, name)
}
