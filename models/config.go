package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds termscan configuration loaded from a YAML file.
type Config struct {
	Gemini   GeminiConfig  `yaml:"gemini"`
	Cache    CacheConfig   `yaml:"cache"`
	Network  NetworkConfig `yaml:"network"`
	Server   ServerConfig  `yaml:"server"`
	Language string        `yaml:"language"` // report language code, or "auto"
}

type GeminiConfig struct {
	Endpoint       string `yaml:"endpoint"`
	Model          string `yaml:"model"`
	APIKeyEnv      string `yaml:"api_key_env"` // env var holding the credential
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// APIKey resolves the credential from the configured environment variable.
func (g GeminiConfig) APIKey() string {
	return os.Getenv(g.APIKeyEnv)
}

// Timeout returns the request timeout for backend calls.
func (g GeminiConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

type CacheConfig struct {
	// Path to the SQLite result cache. Empty means a database file next to
	// the binary, matching where scan output is expected to live.
	Path string `yaml:"path"`
	// HTMLDir is the directory for the raw-HTML fetch cache.
	HTMLDir string `yaml:"html_dir"`
}

type NetworkConfig struct {
	ProbeURL             string `yaml:"probe_url"`
	ProbeIntervalSeconds int    `yaml:"probe_interval_seconds"`
}

// ProbeInterval returns the reachability probe interval.
func (n NetworkConfig) ProbeInterval() time.Duration {
	return time.Duration(n.ProbeIntervalSeconds) * time.Second
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoadConfig reads configuration from a YAML file. A missing file yields the
// default config and no error, so the CLI works with zero setup.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := &Config{}
			applyDefaults(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Gemini.Endpoint == "" {
		cfg.Gemini.Endpoint = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-1.5-flash"
	}
	if cfg.Gemini.APIKeyEnv == "" {
		cfg.Gemini.APIKeyEnv = "GEMINI_API_KEY"
	}
	if cfg.Gemini.TimeoutSeconds <= 0 {
		cfg.Gemini.TimeoutSeconds = 60
	}
	if cfg.Cache.HTMLDir == "" {
		cfg.Cache.HTMLDir = ".termscan-cache"
	}
	if cfg.Network.ProbeURL == "" {
		cfg.Network.ProbeURL = "https://clients3.google.com/generate_204"
	}
	if cfg.Network.ProbeIntervalSeconds <= 0 {
		cfg.Network.ProbeIntervalSeconds = 30
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8787"
	}
	if cfg.Language == "" {
		cfg.Language = "auto"
	}
}
