package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/flemzord/abridge/internal/chunk"
	"github.com/flemzord/abridge/internal/cron"
	"github.com/flemzord/abridge/internal/provider"
	"github.com/flemzord/abridge/modules/provider/local"
)

// Validate checks the structural validity of a Config after defaults have
// been applied. Every problem is reported, joined into one error.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != CurrentVersion {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: %q)", cfg.Version, CurrentVersion))
	}

	errs = append(errs, validateBackend(cfg)...)
	errs = append(errs, validatePipeline(cfg)...)
	errs = append(errs, validateGateway(cfg)...)

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("config: log.level: unknown level %q", cfg.Log.Level))
	}
	if f := cfg.Log.Format; f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("config: log.format: must be text or json, got %q", f))
	}

	if r := cfg.Telemetry.Tracing.SampleRatio; r < 0 || r > 1 {
		errs = append(errs, fmt.Errorf("config: telemetry.tracing.sample_ratio: must be within [0, 1], got %g", r))
	}

	return errors.Join(errs...)
}

func validateBackend(cfg *Config) []error {
	var errs []error

	mode, err := provider.ParseMode(cfg.Backend.Mode)
	if err != nil {
		errs = append(errs, fmt.Errorf("config: backend.mode: %w", err))
	}

	// A named remote backend cannot start without its credential; auto
	// mode simply skips it.
	switch mode {
	case provider.ModeHF:
		if cfg.HF.Token == "" {
			errs = append(errs, errors.New("config: backend.mode is hf but hf.token (HF_TOKEN) is empty"))
		}
	case provider.ModeOpenAI:
		if cfg.OpenAI.APIKey == "" {
			errs = append(errs, errors.New("config: backend.mode is openai but openai.api_key (OPENAI_API_KEY) is empty"))
		}
	case provider.ModeAnthropic:
		if cfg.Anthropic.APIKey == "" {
			errs = append(errs, errors.New("config: backend.mode is anthropic but anthropic.api_key (ANTHROPIC_API_KEY) is empty"))
		}
	}

	if m := cfg.Local.Model; m != "" && m != local.DefaultModel {
		errs = append(errs, fmt.Errorf("config: local.model: unknown model %q (want %q)", m, local.DefaultModel))
	}

	if cfg.Backend.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("config: backend.request_timeout: must not be negative, got %g", cfg.Backend.RequestTimeout))
	}
	if cfg.Backend.Retry.Multiplier != 0 && cfg.Backend.Retry.Multiplier < 1 {
		errs = append(errs, fmt.Errorf("config: backend.retry.multiplier: must be >= 1, got %g", cfg.Backend.Retry.Multiplier))
	}
	if cfg.Backend.Health.MaxFailures < 0 {
		errs = append(errs, fmt.Errorf("config: backend.health.max_failures: must be >= 0, got %d", cfg.Backend.Health.MaxFailures))
	}

	if !cfg.Backend.Probe.Disabled {
		if err := cron.ValidateSchedule(cfg.Backend.Probe.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("config: backend.probe.schedule: %w", err))
		}
	}

	return errs
}

func validatePipeline(cfg *Config) []error {
	var errs []error
	p := cfg.Pipeline

	for _, f := range []struct {
		name  string
		value int
	}{
		{"max_input_chars", p.MaxInputChars},
		{"long_doc_threshold", p.LongDocThreshold},
		{"min_words", p.MinWords},
		{"max_workers", p.MaxWorkers},
	} {
		if f.value < 0 {
			errs = append(errs, fmt.Errorf("config: pipeline.%s: must be >= 0, got %d", f.name, f.value))
		}
	}

	errs = append(errs, validatePlan("long_plan", p.LongPlan)...)
	errs = append(errs, validatePlan("short_plan", p.ShortPlan)...)
	return errs
}

func validatePlan(name string, plan chunk.Plan) []error {
	if plan == (chunk.Plan{}) {
		return nil
	}
	if plan.ChunkChars <= 0 {
		return []error{fmt.Errorf("config: pipeline.%s.chunk_chars: must be positive, got %d", name, plan.ChunkChars)}
	}
	if plan.Overlap < 0 || plan.Overlap >= plan.ChunkChars {
		return []error{fmt.Errorf("config: pipeline.%s.overlap: must be within [0, %d), got %d", name, plan.ChunkChars, plan.Overlap)}
	}
	return nil
}

func validateGateway(cfg *Config) []error {
	var errs []error
	g := cfg.Gateway

	if _, _, err := net.SplitHostPort(g.Bind); err != nil {
		errs = append(errs, fmt.Errorf("config: gateway.bind: %w", err))
	}
	if (g.Auth.BasicUser == "") != (g.Auth.BasicPass == "") {
		errs = append(errs, errors.New("config: gateway.auth: basic_user and basic_pass must be set together"))
	}
	if g.RateLimit.RequestsPerMin < 0 {
		errs = append(errs, fmt.Errorf("config: gateway.rate_limit.requests_per_min: must be >= 0, got %d", g.RateLimit.RequestsPerMin))
	}
	for i, origin := range g.CORSOrigins {
		if strings.TrimSpace(origin) == "" {
			errs = append(errs, fmt.Errorf("config: gateway.cors_origins[%d]: empty origin", i))
		}
	}
	return errs
}
