package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/flemzord/abridge/internal/config"
	"github.com/flemzord/abridge/internal/cron"
	"github.com/flemzord/abridge/internal/gateway"
	"github.com/flemzord/abridge/internal/mcpserver"
	"github.com/flemzord/abridge/internal/pipeline"
	"github.com/flemzord/abridge/internal/provider"
	"github.com/flemzord/abridge/internal/security"
	"github.com/flemzord/abridge/internal/telemetry"
	"github.com/flemzord/abridge/modules/provider/anthropic"
	"github.com/flemzord/abridge/modules/provider/huggingface"
	"github.com/flemzord/abridge/modules/provider/local"
	"github.com/flemzord/abridge/modules/provider/openai"
)

// Components is the wired process graph shared by every entry point.
type Components struct {
	Config   *config.Config
	Logger   *slog.Logger
	Redactor *security.Redactor

	// Metrics is nil when telemetry.metrics_disabled is set.
	Metrics *telemetry.Metrics

	// Backend is the selected summarizer behind its retry decorator.
	Backend  *provider.Retrying
	Health   *provider.Health
	Pipeline *pipeline.Pipeline
}

// NewLogger builds the process logger. Every configured credential is
// registered as a redaction literal on top of the default key patterns.
func NewLogger(cfg *config.Config, w io.Writer) (*slog.Logger, *security.Redactor) {
	redactor := security.NewRedactor()
	redactor.AddLiteral(cfg.Secrets()...)
	logger := security.NewLogger(w, cfg.Log.Format, security.ParseLevel(cfg.Log.Level), redactor)
	return logger, redactor
}

// Build selects the backend and assembles the pipeline around it.
func Build(cfg *config.Config, logger *slog.Logger, redactor *security.Redactor) (*Components, error) {
	mode, err := provider.ParseMode(cfg.Backend.Mode)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	c := &Components{Config: cfg, Logger: logger, Redactor: redactor}
	if !cfg.Telemetry.MetricsDisabled {
		c.Metrics = telemetry.NewMetrics()
	}

	remotes, fallback := candidates(cfg, logger)
	selected, err := provider.Select(mode, remotes, fallback, logger)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	name := selected.Name()
	c.Health = provider.NewHealth(cfg.Backend.Health, func(from, to provider.HealthState) {
		logger.Warn("backend state changed", "backend", name, "from", from.String(), "to", to.String())
		if c.Metrics != nil {
			c.Metrics.SetBackendState(name, to)
		}
	})

	retryOpts := []provider.RetryOption{
		provider.WithHealth(c.Health),
		provider.WithLogger(logger),
	}
	pipelineOpts := []pipeline.Option{pipeline.WithLogger(logger)}
	if c.Metrics != nil {
		c.Metrics.SetBackendState(name, provider.StateHealthy)
		retryOpts = append(retryOpts, provider.WithObserver(c.Metrics))
		pipelineOpts = append(pipelineOpts, pipeline.WithRecorder(c.Metrics))
	}

	c.Backend = provider.WithRetry(selected, cfg.Backend.Retry, retryOpts...)
	c.Pipeline = pipeline.New(c.Backend, cfg.Pipeline, pipelineOpts...)
	return c, nil
}

// candidates lists the remote backends in auto-mode order and the local
// fallback. Constructors return concrete pointers, so each closure checks
// err before converting to keep a typed nil out of the interface.
func candidates(cfg *config.Config, logger *slog.Logger) ([]provider.Candidate, provider.Candidate) {
	remotes := []provider.Candidate{
		{Name: huggingface.Name, New: func() (provider.Summarizer, error) {
			p, err := huggingface.New(cfg.HF, logger.With("backend", huggingface.Name))
			if err != nil {
				return nil, err
			}
			return p, nil
		}},
		{Name: openai.Name, New: func() (provider.Summarizer, error) {
			p, err := openai.New(cfg.OpenAI, logger.With("backend", openai.Name))
			if err != nil {
				return nil, err
			}
			return p, nil
		}},
		{Name: anthropic.Name, New: func() (provider.Summarizer, error) {
			p, err := anthropic.New(cfg.Anthropic, logger.With("backend", anthropic.Name))
			if err != nil {
				return nil, err
			}
			return p, nil
		}},
	}
	fallback := provider.Candidate{Name: local.Name, New: func() (provider.Summarizer, error) {
		p, err := local.New(cfg.Local, logger.With("backend", local.Name))
		if err != nil {
			return nil, err
		}
		return p, nil
	}}
	return remotes, fallback
}

// Gateway builds the HTTP gateway over the pipeline.
func (c *Components) Gateway() (*gateway.Gateway, error) {
	opts := []gateway.Option{
		gateway.WithLogger(c.Logger),
		gateway.WithRedactor(c.Redactor),
	}
	if c.Metrics != nil {
		opts = append(opts, gateway.WithMetrics(c.Metrics))
	}
	g := gateway.New(c.Config.Gateway, c.Pipeline, opts...)
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Scheduler returns a scheduler running the backend probe, or nil when the
// probe is disabled.
func (c *Components) Scheduler() (*cron.Scheduler, error) {
	probe := c.Config.Backend.Probe
	if probe.Disabled {
		return nil, nil
	}
	s := cron.NewScheduler(c.Logger)
	if err := s.RegisterJob(&cron.BackendProbeJob{
		Backend:      c.Backend,
		Logger:       c.Logger,
		ScheduleExpr: probe.Schedule,
		Timeout:      probe.Timeout,
	}); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	return s, nil
}

// MCP builds the stdio MCP server over the pipeline.
func (c *Components) MCP(version string) *mcpserver.Server {
	return mcpserver.New(c.Pipeline, version,
		mcpserver.WithLogger(c.Logger),
		mcpserver.WithRedactor(c.Redactor),
	)
}
