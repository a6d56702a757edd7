package huggingface

import "time"

// Default endpoint values.
const (
	DefaultModel     = "facebook/bart-large-cnn"
	DefaultBaseURL   = "https://api-inference.huggingface.co/models"
	DefaultWhoAmIURL = "https://huggingface.co/api/whoami-v2"
)

// Config holds the configuration for the Hugging Face Inference API backend.
type Config struct {
	Token     string        `yaml:"token" env:"HF_TOKEN"`
	Model     string        `yaml:"model" env:"HF_MODEL"`
	BaseURL   string        `yaml:"base_url"`
	WhoAmIURL string        `yaml:"whoami_url"`
	Timeout   time.Duration `yaml:"timeout"`

	// NumBeams and NoRepeatNgramSize are passed through as generation
	// parameters.
	NumBeams          int     `yaml:"num_beams"`
	NoRepeatNgramSize int     `yaml:"no_repeat_ngram_size"`
	LengthPenalty     float64 `yaml:"length_penalty"`
}

// defaults fills zero-valued fields with sensible defaults.
func (c *Config) defaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.WhoAmIURL == "" {
		c.WhoAmIURL = DefaultWhoAmIURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	if c.NumBeams <= 0 {
		c.NumBeams = 4
	}
	if c.NoRepeatNgramSize <= 0 {
		c.NoRepeatNgramSize = 3
	}
	if c.LengthPenalty == 0 {
		c.LengthPenalty = 1.0
	}
}
