package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
scraper:
  headless: true
  timeout: 15
  rate_limit_delay: 3
google_search:
  max_results_per_dork: 5
scoring:
  weights:
    email: 10
    private_key: 50
ai_settings:
  use_nlp: true
  use_ml: true
osint:
  shodan_enabled: true
reports_dir: out
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scraper.Timeout != 15 || cfg.FetchTimeout() != 15*time.Second {
		t.Errorf("timeout = %d", cfg.Scraper.Timeout)
	}
	if cfg.GoogleSearch.MaxResultsPerDork != 5 {
		t.Errorf("max results = %d", cfg.GoogleSearch.MaxResultsPerDork)
	}
	if cfg.Scoring.Weights["private_key"] != 50 {
		t.Errorf("weights = %v", cfg.Scoring.Weights)
	}
	if !cfg.AISettings.UseNLP || !cfg.AISettings.UseML || cfg.AISettings.UseVision {
		t.Errorf("ai settings = %+v", cfg.AISettings)
	}
	if cfg.ReportsDir != "out" {
		t.Errorf("reports dir = %q", cfg.ReportsDir)
	}
	// Unset sections keep their defaults.
	if cfg.Server.Port != 8000 {
		t.Errorf("server port = %d", cfg.Server.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if !cfg.Scraper.Headless || cfg.ReportsDir == "" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestEnvCredentialFallback(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "g-key")
	t.Setenv("GOOGLE_CSE_ID", "cse-id")
	t.Setenv("SHODAN_API_KEY", "s-key")
	t.Setenv("HF_API_KEY", "hf-key")
	t.Setenv("OPENAI_API_KEY", "oa-key")

	path := writeConfig(t, "scraper:\n  timeout: 10\n  rate_limit_delay: 2\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GoogleSearch.APIKey != "g-key" || cfg.GoogleSearch.CSEID != "cse-id" {
		t.Errorf("google creds = %q/%q", cfg.GoogleSearch.APIKey, cfg.GoogleSearch.CSEID)
	}
	if cfg.OSINT.ShodanAPIKey != "s-key" {
		t.Errorf("shodan key = %q", cfg.OSINT.ShodanAPIKey)
	}
	if cfg.ClassifierAPIKey != "hf-key" || cfg.VisionAPIKey != "oa-key" {
		t.Errorf("ai keys = %q/%q", cfg.ClassifierAPIKey, cfg.VisionAPIKey)
	}
}

func TestConfigFileWinsOverEnv(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "env-key")
	path := writeConfig(t, "google_search:\n  api_key: file-key\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GoogleSearch.APIKey != "file-key" {
		t.Errorf("api key = %q, want file value", cfg.GoogleSearch.APIKey)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero timeout", func(c *Config) { c.Scraper.Timeout = 0 }},
		{"negative delay", func(c *Config) { c.Scraper.RateLimitDelay = -1 }},
		{"zero max results", func(c *Config) { c.GoogleSearch.MaxResultsPerDork = 0 }},
		{"negative weight", func(c *Config) { c.Scoring.Weights = map[string]int{"email": -5} }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}
