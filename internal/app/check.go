package app

import (
	"fmt"
	"io"

	"github.com/chrissnell/eddyflux/pkg/config"
)

// CheckConfig validates the configuration behind provider and writes the
// resolved flux options of every site, or of the named site only, followed
// by the storage backend and REST listener that Run would use.
func CheckConfig(provider config.ConfigProvider, site string, w io.Writer) error {
	var sites []config.SiteData
	if site != "" {
		s, err := provider.GetSite(site)
		if err != nil {
			return err
		}
		sites = []config.SiteData{*s}
	} else {
		all, err := provider.GetSites()
		if err != nil {
			return fmt.Errorf("error reading config file. Did you pass the -config flag? Run with -h for help: %w", err)
		}
		sites = all
	}

	for _, s := range sites {
		opts, err := s.FluxOptions()
		if err != nil {
			return err
		}
		height := "none"
		if opts.MeasurementHeight != nil {
			height = fmt.Sprintf("%g m", *opts.MeasurementHeight)
		}
		fmt.Fprintf(w, "%-20s method=%s min_samples=%d frequency=%gHz height=%s\n",
			s.Name, opts.RotationMethod, opts.MinSamples, opts.SamplingFrequency, height)
	}

	sc, err := provider.GetStorageConfig()
	if err != nil {
		return err
	}
	switch {
	case sc.TimescaleDB != nil && sc.TimescaleDB.ConnectionString != "":
		fmt.Fprintln(w, "storage: timescaledb")
	case sc.SQLite != nil:
		fmt.Fprintf(w, "storage: sqlite %s\n", sc.SQLite.Path)
	default:
		fmt.Fprintln(w, "storage: in-memory sqlite")
	}

	rc, err := provider.GetRESTConfig()
	if err != nil {
		return err
	}
	addr, port := rc.ListenAddr, rc.HTTPPort
	if addr == "" {
		addr = "0.0.0.0"
	}
	if port == 0 {
		port = 8080
	}
	fmt.Fprintf(w, "rest: %s:%d\n", addr, port)

	return nil
}
