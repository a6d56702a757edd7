package openai

import "time"

// Output budget for the first attempt and the ceiling it may grow to when
// the model stops on max_output_tokens.
const (
	limitMaxOutputTokens int64 = 2048
	minMaxOutputTokens   int64 = 64
)

// Config holds the configuration for the OpenAI backend.
type Config struct {
	APIKey  string        `yaml:"api_key" env:"OPENAI_API_KEY"`
	Model   string        `yaml:"model" env:"OPENAI_MODEL"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4.1-mini"

// defaults fills zero-valued fields with sensible defaults.
func (c *Config) defaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
}
