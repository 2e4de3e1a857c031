// CLAUDE:SUMMARY Defines feedscan config structs and parses YAML configuration files with defaults.
// Package config handles feedscan configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level feedscan configuration.
type Config struct {
	Browser BrowserConfig `yaml:"browser"`
	Page    PageConfig    `yaml:"page"`
	Search  SearchConfig  `yaml:"search"`
	HTTP    HTTPConfig    `yaml:"http"`
	Sinks   []SinkConfig  `yaml:"sinks"`
}

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig struct {
	Remote           string        `yaml:"remote"`
	MemoryLimit      int64         `yaml:"memory_limit"`
	RecycleInterval  time.Duration `yaml:"recycle_interval"`
	ResourceBlocking []string      `yaml:"resource_blocking"`
	Stealth          string        `yaml:"stealth"` // headless | headful
	XvfbDisplay      string        `yaml:"xvfb_display"`
	UserDataDir      string        `yaml:"user_data_dir"` // keeps the login session
}

// PageConfig describes the feed page and its markup.
type PageConfig struct {
	URL                string   `yaml:"url"`
	ItemSelector       string   `yaml:"item_selector"`
	NativeFormSelector string   `yaml:"native_form_selector"`
	AllowedPaths       []string `yaml:"allowed_paths"`
	CanonicalHost      string   `yaml:"canonical_host"`
}

// SearchConfig holds the timing policy of the search session.
type SearchConfig struct {
	TickInterval      time.Duration `yaml:"tick_interval"`
	ScrollFactor      float64       `yaml:"scroll_factor"`
	HighlightDelay    time.Duration `yaml:"highlight_delay"`
	CursorDelay       time.Duration `yaml:"cursor_delay"`
	NavDebounce       time.Duration `yaml:"nav_debounce"`
	PollInterval      time.Duration `yaml:"poll_interval"`
	InjectDelay       time.Duration `yaml:"inject_delay"`
	ReloadResumeDelay time.Duration `yaml:"reload_resume_delay"`
	SnippetMax        int           `yaml:"snippet_max"`
}

// HTTPConfig enables the control API when Addr is set.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// SinkConfig defines an event output backend.
type SinkConfig struct {
	Type string `yaml:"type"` // stdout | webhook | sqlite
	URL  string `yaml:"url"`  // for webhook
	Path string `yaml:"path"` // for sqlite
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills every zero field with its default.
func (c *Config) ApplyDefaults() {
	if c.Browser.MemoryLimit <= 0 {
		c.Browser.MemoryLimit = 1 << 30
	}
	if c.Browser.RecycleInterval <= 0 {
		c.Browser.RecycleInterval = 4 * time.Hour
	}
	if c.Browser.XvfbDisplay == "" {
		c.Browser.XvfbDisplay = ":99"
	}
	if c.Browser.Stealth == "" {
		c.Browser.Stealth = "headless"
	}

	if c.Page.URL == "" {
		c.Page.URL = "https://x.com/home"
	}
	if c.Page.ItemSelector == "" {
		c.Page.ItemSelector = `[data-testid="tweet"]`
	}
	if c.Page.NativeFormSelector == "" {
		c.Page.NativeFormSelector = `form[aria-label="Search"]`
	}
	if c.Page.CanonicalHost == "" {
		c.Page.CanonicalHost = "https://x.com"
	}

	s := &c.Search
	if s.TickInterval <= 0 {
		s.TickInterval = time.Second
	}
	if s.ScrollFactor <= 0 {
		s.ScrollFactor = 2
	}
	if s.HighlightDelay <= 0 {
		s.HighlightDelay = 150 * time.Millisecond
	}
	if s.CursorDelay <= 0 {
		s.CursorDelay = 100 * time.Millisecond
	}
	if s.NavDebounce <= 0 {
		s.NavDebounce = 300 * time.Millisecond
	}
	if s.PollInterval <= 0 {
		s.PollInterval = time.Second
	}
	if s.InjectDelay <= 0 {
		s.InjectDelay = 500 * time.Millisecond
	}
	if s.ReloadResumeDelay <= 0 {
		s.ReloadResumeDelay = 60 * time.Second
	}
	if s.SnippetMax <= 0 {
		s.SnippetMax = 2000
	}
}
