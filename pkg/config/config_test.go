package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/eddyflux/pkg/flux"
	"github.com/chrissnell/eddyflux/pkg/rotation"
)

const sampleConfig = `
sites:
  - name: meadow
    measurement_height: 3
    fetch_distance: 250
  - name: ridge
    profile: 30min
    measurement_height: 10
    roughness_length: 0.5
    rotation_method: double-rotation
    despike:
      threshold: 4
storage:
  sqlite:
    path: /var/lib/eddyflux/results.db
rest:
  listen_addr: 127.0.0.1
  http_port: 9090
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eddyflux.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestYAMLProviderLoadConfig(t *testing.T) {
	p := NewYAMLProvider(writeConfig(t, sampleConfig))
	defer p.Close()

	cfg, err := p.LoadConfig()
	require.NoError(t, err)
	require.Len(t, cfg.Sites, 2)
	assert.Equal(t, "/var/lib/eddyflux/results.db", cfg.Storage.SQLite.Path)
	assert.Nil(t, cfg.Storage.TimescaleDB)
	assert.Equal(t, 9090, cfg.REST.HTTPPort)

	rest, err := p.GetRESTConfig()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", rest.ListenAddr)

	site, err := p.GetSite("")
	require.NoError(t, err)
	assert.Equal(t, "meadow", site.Name)

	_, err = p.GetSite("nowhere")
	assert.ErrorIs(t, err, ErrSiteNotFound)
}

func TestSiteFluxOptions(t *testing.T) {
	cfg, err := ParseYAML([]byte(sampleConfig))
	require.NoError(t, err)

	meadow, err := cfg.Sites[0].FluxOptions()
	require.NoError(t, err)
	assert.Equal(t, flux.MinSamples15Min, meadow.MinSamples)
	assert.Equal(t, rotation.DoubleRotation, meadow.RotationMethod)
	require.NotNil(t, meadow.MeasurementHeight)
	assert.Equal(t, 3.0, *meadow.MeasurementHeight)
	require.NotNil(t, meadow.FetchDistance)
	assert.Equal(t, 250.0, *meadow.FetchDistance)
	assert.Nil(t, meadow.RoughnessLength)

	ridge, err := cfg.Sites[1].FluxOptions()
	require.NoError(t, err)
	assert.Equal(t, flux.MinSamples30Min, ridge.MinSamples)
	assert.Equal(t, rotation.DoubleRotation, ridge.RotationMethod)
	assert.Equal(t, 4.0, ridge.Despike.Threshold)
	assert.Equal(t, 10, ridge.Despike.WindowSize)
	assert.Equal(t, 3, ridge.Despike.MinConsecutive)
}

func TestParseYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ``},
		{"unknown key", "sites:\n  - name: a\n    hieght: 3\n"},
		{"unnamed site", "sites:\n  - profile: 15min\n"},
		{"duplicate site", "sites:\n  - name: a\n  - name: a\n"},
		{"bad profile", "sites:\n  - name: a\n    profile: hourly\n"},
		{"bad method", "sites:\n  - name: a\n    rotation_method: triple\n"},
		{"roughness above height", "sites:\n  - name: a\n    measurement_height: 2\n    roughness_length: 5\n"},
		{"two backends", "sites:\n  - name: a\nstorage:\n  sqlite:\n    path: x.db\n  timescaledb:\n    connection_string: postgres://x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.body))
			assert.Error(t, err)
		})
	}
}

func TestYAMLProviderMissingFile(t *testing.T) {
	p := NewYAMLProvider(filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := p.GetSites()
	assert.Error(t, err)
}
