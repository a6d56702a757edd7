package anthropic

import "time"

// DefaultModel is the model used when none is specified.
// Pinned to a dated release for reproducibility.
const DefaultModel = "claude-sonnet-4-5-20250929"

// defaultTimeout bounds a whole Messages call.
const defaultTimeout = 60 * time.Second

// Config holds the YAML-decoded configuration for the Anthropic backend.
type Config struct {
	APIKey  string        `yaml:"api_key" env:"ANTHROPIC_API_KEY"`
	Model   string        `yaml:"model" env:"ANTHROPIC_MODEL"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// defaults fills in zero-value fields with sensible defaults.
func (c *Config) defaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}
