package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig reads and validates the YAML file. Unknown keys are rejected so
// that misspelled settings do not silently fall back to defaults.
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	config, err := ParseYAML(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", y.filename, err)
	}

	y.config = config
	return config, nil
}

// ParseYAML decodes and validates a configuration document.
func ParseYAML(data []byte) (*ConfigData, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var config ConfigData
	if err := dec.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (y *YAMLProvider) loaded() (*ConfigData, error) {
	if y.config == nil {
		return y.LoadConfig()
	}
	return y.config, nil
}

// GetSites returns site configurations
func (y *YAMLProvider) GetSites() ([]SiteData, error) {
	config, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return config.Sites, nil
}

// GetSite returns the named site, or the first site when name is empty
func (y *YAMLProvider) GetSite(name string) (*SiteData, error) {
	config, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return config.FindSite(name)
}

// GetStorageConfig returns storage configuration
func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	config, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &config.Storage, nil
}

// GetRESTConfig returns the REST server configuration
func (y *YAMLProvider) GetRESTConfig() (*RESTServerData, error) {
	config, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &config.REST, nil
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}
