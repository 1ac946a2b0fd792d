// Package config loads the tool configuration from YAML and validates it
// against an embedded JSON schema before use.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root of cm-content-tool.yml.
type Config struct {
	Site     SiteConfig    `yaml:"site" json:"site"`
	Logging  LoggingConfig `yaml:"logging" json:"logging"`
	Progress bool          `yaml:"progress" json:"progress"`
}

// SiteConfig addresses the management endpoint.
type SiteConfig struct {
	Server          string `yaml:"server" json:"server"`
	SiteCode        string `yaml:"siteCode" json:"siteCode"`
	BaseURL         string `yaml:"baseUrl" json:"baseUrl"`
	Username        string `yaml:"username" json:"username"`
	Password        string `yaml:"password" json:"password"`
	AllowSelfSigned bool   `yaml:"allowSelfSigned" json:"allowSelfSigned"`
	TimeoutSeconds  int    `yaml:"timeoutSeconds" json:"timeoutSeconds"`
}

// LoggingConfig selects the log level.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
}

// Timeout returns the configured request timeout.
func (s SiteConfig) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Load reads, validates and parses the configuration file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(raw)
}

// Parse validates raw YAML against the config schema and decodes it.
func Parse(raw []byte) (*Config, error) {
	if err := ValidateYAML("cm-content-tool.yml", configSchema, raw); err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
