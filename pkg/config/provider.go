package config

import (
	"errors"
)

// ErrSiteNotFound is returned by GetSite for an unknown site name.
var ErrSiteNotFound = errors.New("site not found")

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetSites() ([]SiteData, error)
	GetSite(name string) (*SiteData, error)
	GetStorageConfig() (*StorageData, error)
	GetRESTConfig() (*RESTServerData, error)

	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Sites   []SiteData     `json:"sites" yaml:"sites"`
	Storage StorageData    `json:"storage,omitempty" yaml:"storage,omitempty"`
	REST    RESTServerData `json:"rest,omitempty" yaml:"rest,omitempty"`
}

// SiteData describes one flux tower. Unset pointer fields fall back to the
// values of the selected profile.
type SiteData struct {
	Name              string       `json:"name" yaml:"name"`
	Profile           string       `json:"profile,omitempty" yaml:"profile,omitempty"`
	MeasurementHeight *float64     `json:"measurement_height,omitempty" yaml:"measurement_height,omitempty"`
	RoughnessLength   *float64     `json:"roughness_length,omitempty" yaml:"roughness_length,omitempty"`
	FetchDistance     *float64     `json:"fetch_distance,omitempty" yaml:"fetch_distance,omitempty"`
	RotationMethod    string       `json:"rotation_method,omitempty" yaml:"rotation_method,omitempty"`
	MinSamples        int          `json:"min_samples,omitempty" yaml:"min_samples,omitempty"`
	SamplingFrequency float64      `json:"sampling_frequency,omitempty" yaml:"sampling_frequency,omitempty"`
	Despike           *DespikeData `json:"despike,omitempty" yaml:"despike,omitempty"`
}

// DespikeData overrides the spike detector settings.
type DespikeData struct {
	WindowSize     int     `json:"window_size,omitempty" yaml:"window_size,omitempty"`
	Threshold      float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	MinConsecutive int     `json:"min_consecutive,omitempty" yaml:"min_consecutive,omitempty"`
}

// StorageData holds the configuration for the result store. At most one
// backend may be set; with none, results are kept in an in-process SQLite
// database.
type StorageData struct {
	SQLite      *SQLiteData      `json:"sqlite,omitempty" yaml:"sqlite,omitempty"`
	TimescaleDB *TimescaleDBData `json:"timescaledb,omitempty" yaml:"timescaledb,omitempty"`
}

type SQLiteData struct {
	Path string `json:"path" yaml:"path"`
}

type TimescaleDBData struct {
	ConnectionString string `json:"connection_string" yaml:"connection_string"`
}

type RESTServerData struct {
	ListenAddr  string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
	HTTPPort    int    `json:"http_port,omitempty" yaml:"http_port,omitempty"`
	TLSCertPath string `json:"tls_cert,omitempty" yaml:"tls_cert,omitempty"`
	TLSKeyPath  string `json:"tls_key,omitempty" yaml:"tls_key,omitempty"`
}
