package feedscan

import (
	"github.com/hazyhaar/feedscan/feedscan/internal/config"
)

// Config is the top-level feedscan configuration. Re-exported from internal.
type Config = config.Config

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig = config.BrowserConfig

// PageConfig describes the feed page and its markup.
type PageConfig = config.PageConfig

// SearchConfig holds the timing policy of the search session.
type SearchConfig = config.SearchConfig

// HTTPConfig enables the control API.
type HTTPConfig = config.HTTPConfig

// SinkConfig defines an event output backend.
type SinkConfig = config.SinkConfig

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	return config.LoadFile(path)
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}
