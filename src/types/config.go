package types

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// BrowserConfig points one benchmarked browser at its executable. The path is
// handed to the DevTools allocator; an empty path falls back to looking the
// name up on PATH.
type BrowserConfig struct {
	Name     Browser `yaml:"name" validate:"required,oneof=Chrome Firefox"`
	ExecPath string  `yaml:"exec_path" validate:"required"`
}

// Config is the static configuration for one benchmark run. All keys are
// optional in the YAML file; absent keys keep their compiled-in defaults.
type Config struct {
	URLs        []string        `yaml:"urls" validate:"min=1,dive,url"`
	Iterations  int             `yaml:"iterations" validate:"min=1"`
	Headless    bool            `yaml:"headless"`
	ResultsFile string          `yaml:"results_file" validate:"required"`
	ReportFile  string          `yaml:"report_file" validate:"required"`
	Browsers    []BrowserConfig `yaml:"browsers" validate:"min=1,dive"`
	// Optional GeoLite2 country database; enables origin-country annotations
	// in the report header when set.
	GeoIPDB string `yaml:"geoip_db"`
}

// DefaultConfig returns the compiled-in configuration: four well-known pages,
// five trials per scenario, windowed (non-headless) browsers.
func DefaultConfig() Config {
	return Config{
		URLs: []string{
			"https://example.com/",
			"https://www.wikipedia.org/",
			"https://www.theguardian.com/",
			"https://developer.mozilla.org/",
		},
		Iterations:  5,
		Headless:    false,
		ResultsFile: "benchmark_results.json",
		ReportFile:  "benchmark_report.html",
		Browsers: []BrowserConfig{
			{Name: Chrome, ExecPath: "google-chrome"},
			{Name: Firefox, ExecPath: "firefox"},
		},
	}
}

// LoadConfig reads a YAML config file over the defaults and validates the
// result. An empty path returns the validated defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ExecPath returns the configured executable for a browser, or "" when the
// browser has no entry (callers treat that as "not runnable").
func (c Config) ExecPath(b Browser) string {
	for _, bc := range c.Browsers {
		if bc.Name == b {
			return bc.ExecPath
		}
	}
	return ""
}

// Validate checks the config against its struct tags plus the cross-field
// rules the tags cannot express (duplicate browsers or URLs).
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	seenBrowser := map[Browser]bool{}
	for _, b := range c.Browsers {
		if seenBrowser[b.Name] {
			return fmt.Errorf("duplicate browser %q", b.Name)
		}
		seenBrowser[b.Name] = true
	}
	// The sweep matrix is fixed: both browsers always run, so both need an
	// executable configured.
	for _, b := range AllBrowsers() {
		if !seenBrowser[b] {
			return fmt.Errorf("missing browser config for %q", b)
		}
	}
	seenURL := map[string]bool{}
	for _, u := range c.URLs {
		if seenURL[u] {
			return fmt.Errorf("duplicate url %q", u)
		}
		seenURL[u] = true
	}
	return nil
}
