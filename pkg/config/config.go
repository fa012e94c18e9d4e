// Package config loads scanner configuration from a YAML file, with
// environment variables supplying API credentials so secrets stay out of
// the config file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dorkscan/dorkscan/pkg/defaults"
)

// ScraperConfig controls the headless browser.
type ScraperConfig struct {
	Headless       bool `yaml:"headless"`
	Timeout        int  `yaml:"timeout"`
	RateLimitDelay int  `yaml:"rate_limit_delay"`
}

// SearchConfig controls dork discovery via Google Custom Search.
type SearchConfig struct {
	APIKey            string `yaml:"api_key"`
	CSEID             string `yaml:"cse_id"`
	MaxResultsPerDork int    `yaml:"max_results_per_dork"`
}

// ScoringConfig carries per-finding-type risk weights.
type ScoringConfig struct {
	Weights map[string]int `yaml:"weights"`
}

// AISettings toggles the optional ensemble stages.
type AISettings struct {
	UseNLP    bool `yaml:"use_nlp"`
	UseML     bool `yaml:"use_ml"`
	UseVision bool `yaml:"use_vision"`
}

// OSINTConfig controls the Shodan exposure lookup.
type OSINTConfig struct {
	ShodanEnabled bool   `yaml:"shodan_enabled"`
	ShodanAPIKey  string `yaml:"shodan_api_key"`
}

// ServerConfig controls the HTTP API listener.
type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
}

// Config is the root configuration.
type Config struct {
	Scraper      ScraperConfig `yaml:"scraper"`
	GoogleSearch SearchConfig  `yaml:"google_search"`
	Scoring      ScoringConfig `yaml:"scoring"`
	AISettings   AISettings    `yaml:"ai_settings"`
	OSINT        OSINTConfig   `yaml:"osint"`
	Server       ServerConfig  `yaml:"server"`
	ReportsDir   string        `yaml:"reports_dir"`

	// Credentials resolved from the environment, never serialized.
	ClassifierAPIKey string `yaml:"-"`
	VisionAPIKey     string `yaml:"-"`
}

// DefaultConfig returns a configuration with every stage that needs
// credentials disabled and conservative scraper timings.
func DefaultConfig() *Config {
	return &Config{
		Scraper: ScraperConfig{
			Headless:       true,
			Timeout:        int(defaults.FetchTimeout / time.Second),
			RateLimitDelay: int(defaults.RateLimitDelay / time.Second),
		},
		GoogleSearch: SearchConfig{
			MaxResultsPerDork: defaults.MaxResultsPerDork,
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8000,
			MetricsPort: defaults.MetricsPort,
		},
		ReportsDir: defaults.ReportsDir,
	}
}

// Load reads the YAML file at path, overlays it on defaults, and resolves
// credential fallbacks from the environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnv()
	return cfg, cfg.Validate()
}

// LoadOrDefault behaves like Load but falls back to defaults (plus
// environment credentials) when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnv()
		return cfg, nil
	}
	return Load(path)
}

// applyEnv fills credentials from environment variables when the config
// file left them empty.
func (c *Config) applyEnv() {
	if c.GoogleSearch.APIKey == "" {
		c.GoogleSearch.APIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if c.GoogleSearch.CSEID == "" {
		c.GoogleSearch.CSEID = os.Getenv("GOOGLE_CSE_ID")
	}
	if c.OSINT.ShodanAPIKey == "" {
		c.OSINT.ShodanAPIKey = os.Getenv("SHODAN_API_KEY")
	}
	if c.ClassifierAPIKey == "" {
		c.ClassifierAPIKey = os.Getenv("HF_API_KEY")
	}
	if c.VisionAPIKey == "" {
		c.VisionAPIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// Validate rejects configurations that cannot run.
func (c *Config) Validate() error {
	if c.Scraper.Timeout <= 0 {
		return fmt.Errorf("scraper timeout must be positive, got %d", c.Scraper.Timeout)
	}
	if c.Scraper.RateLimitDelay < 0 {
		return fmt.Errorf("rate limit delay must not be negative, got %d", c.Scraper.RateLimitDelay)
	}
	if c.GoogleSearch.MaxResultsPerDork <= 0 {
		return fmt.Errorf("max results per dork must be positive, got %d", c.GoogleSearch.MaxResultsPerDork)
	}
	for ftype, w := range c.Scoring.Weights {
		if w < 0 {
			return fmt.Errorf("weight for %q must not be negative, got %d", ftype, w)
		}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	return nil
}

// FetchTimeout returns the scraper timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Scraper.Timeout) * time.Second
}

// RateDelay returns the per-navigation delay as a duration.
func (c *Config) RateDelay() time.Duration {
	return time.Duration(c.Scraper.RateLimitDelay) * time.Second
}
