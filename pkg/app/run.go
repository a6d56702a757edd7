// Package app provides the shared entry point for the abridge binary: it
// resolves configuration, wires the process graph, and runs the serving
// lifecycle until shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flemzord/abridge/internal/config"
	"github.com/flemzord/abridge/internal/telemetry"
)

// ServiceName is reported to the tracer and the OS service manager.
const ServiceName = "abridge"

// tracingShutdownTimeout bounds the final span flush.
const tracingShutdownTimeout = 5 * time.Second

// RunParams configures the main application loop.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, the standard search paths are tried and a missing file is
	// allowed.
	ConfigPath string

	// Version, Commit, and Date are injected at build time via ldflags.
	Version string
	Commit  string
	Date    string

	// LogOutput receives the process log. Defaults to os.Stderr.
	LogOutput io.Writer
}

// Setup resolves and validates configuration, then wires every component.
func Setup(params RunParams) (*Components, error) {
	cfg, path, err := config.Resolve(params.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	out := params.LogOutput
	if out == nil {
		out = os.Stderr
	}
	logger, redactor := NewLogger(cfg, out)
	logger.Info("configuration loaded", "source", config.Describe(path))

	return Build(cfg, logger, redactor)
}

// Run sets the process up and serves until SIGINT or SIGTERM.
func Run(params RunParams) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := Setup(params)
	if err != nil {
		return err
	}
	return c.Serve(ctx, params.Version)
}

// Serve starts tracing, the HTTP gateway and the probe scheduler, blocks
// until ctx ends, then shuts everything down in reverse order.
func (c *Components) Serve(ctx context.Context, version string) error {
	shutdownTracing, err := telemetry.SetupTracing(ctx, c.Config.Telemetry.Tracing, ServiceName, version)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), tracingShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			c.Logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	g, err := c.Gateway()
	if err != nil {
		return err
	}
	sched, err := c.Scheduler()
	if err != nil {
		return err
	}

	if err := g.Start(ctx); err != nil {
		return err
	}
	if sched != nil {
		if err := sched.Start(ctx); err != nil {
			_ = g.Stop(context.WithoutCancel(ctx))
			return err
		}
	}

	c.Logger.Info("abridge started",
		"version", version,
		"addr", g.Addr(),
		"backend", c.Backend.Name(),
		"model", c.Backend.ModelName(),
	)

	<-ctx.Done()
	c.Logger.Info("shutdown signal received")

	stopCtx := context.WithoutCancel(ctx)
	var errs []error
	if err := g.Stop(stopCtx); err != nil {
		errs = append(errs, fmt.Errorf("gateway: %w", err))
	}
	if sched != nil {
		schedCtx, cancel := context.WithTimeout(stopCtx, c.Config.Gateway.ShutdownTimeout)
		defer cancel()
		if err := sched.Stop(schedCtx); err != nil {
			errs = append(errs, err)
		}
	}
	c.Logger.Info("shutdown complete")
	return errors.Join(errs...)
}
