// Package config handles YAML configuration loading, environment variable
// expansion and overrides, and structural validation for abridge.
package config

import (
	"time"

	"github.com/flemzord/abridge/internal/cron"
	"github.com/flemzord/abridge/internal/gateway"
	"github.com/flemzord/abridge/internal/pipeline"
	"github.com/flemzord/abridge/internal/provider"
	"github.com/flemzord/abridge/internal/telemetry"
	"github.com/flemzord/abridge/modules/provider/anthropic"
	"github.com/flemzord/abridge/modules/provider/huggingface"
	"github.com/flemzord/abridge/modules/provider/local"
	"github.com/flemzord/abridge/modules/provider/openai"
)

// CurrentVersion is the only supported config format version.
const CurrentVersion = "1"

// DefaultRequestTimeout bounds a single backend call, in seconds.
const DefaultRequestTimeout = 60

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	Backend BackendConfig `yaml:"backend"`

	HF        huggingface.Config `yaml:"hf"`
	OpenAI    openai.Config      `yaml:"openai"`
	Anthropic anthropic.Config   `yaml:"anthropic"`
	Local     local.Config       `yaml:"local"`

	Pipeline  pipeline.Config `yaml:"pipeline"`
	Gateway   gateway.Config  `yaml:"gateway"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// BackendConfig selects the summarization backend and tunes the shared
// retry, health and probe behavior wrapped around it.
type BackendConfig struct {
	// Mode is one of auto, hf, openai, anthropic, local. Default: auto.
	Mode string `yaml:"mode" env:"SUMMARIZER_BACKEND"`

	// RequestTimeout is the per-call timeout in seconds, applied to every
	// remote backend that does not set its own. Default: 60.
	RequestTimeout float64 `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`

	Retry  provider.RetryConfig  `yaml:"retry"`
	Health provider.HealthConfig `yaml:"health"`
	Probe  ProbeConfig           `yaml:"probe"`
}

// ProbeConfig controls the periodic health probe of a failing backend.
type ProbeConfig struct {
	Disabled bool          `yaml:"disabled"`
	Schedule string        `yaml:"schedule"`
	Timeout  time.Duration `yaml:"timeout"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	// Level is debug, info, warn or error. Default: info.
	Level string `yaml:"level" env:"LOG_LEVEL"`

	// Format is text or json. Default: text.
	Format string `yaml:"format"`
}

// TelemetryConfig groups metrics and tracing.
type TelemetryConfig struct {
	// MetricsDisabled removes the /metrics route.
	MetricsDisabled bool                    `yaml:"metrics_disabled"`
	Tracing         telemetry.TracingConfig `yaml:"tracing"`
}

// Defaults fills zero values. It runs after the file and the environment
// have been applied, so only truly unset fields are touched.
func (c *Config) Defaults() {
	if c.Version == "" {
		c.Version = CurrentVersion
	}
	if c.Backend.Mode == "" {
		c.Backend.Mode = string(provider.ModeAuto)
	}
	// Negative values are left for Validate to report.
	if c.Backend.RequestTimeout == 0 {
		c.Backend.RequestTimeout = DefaultRequestTimeout
	}
	timeout := c.RequestTimeout()
	if c.HF.Timeout == 0 {
		c.HF.Timeout = timeout
	}
	if c.OpenAI.Timeout == 0 {
		c.OpenAI.Timeout = timeout
	}
	if c.Anthropic.Timeout == 0 {
		c.Anthropic.Timeout = timeout
	}
	if c.Backend.Probe.Schedule == "" {
		c.Backend.Probe.Schedule = cron.DefaultProbeSchedule
	}
	if c.Backend.Probe.Timeout <= 0 {
		c.Backend.Probe.Timeout = cron.DefaultProbeTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	c.Gateway.Defaults()
}

// RequestTimeout returns Backend.RequestTimeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Backend.RequestTimeout * float64(time.Second))
}

// Secrets returns every configured credential, for log redaction.
func (c *Config) Secrets() []string {
	return []string{
		c.HF.Token,
		c.OpenAI.APIKey,
		c.Anthropic.APIKey,
		c.Gateway.Auth.BearerToken,
		c.Gateway.Auth.BasicPass,
	}
}
