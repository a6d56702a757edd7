package cron

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/flemzord/abridge/internal/provider"
)

// Defaults for BackendProbeJob.
const (
	DefaultProbeSchedule = "@every 30s"
	DefaultProbeTimeout  = 10 * time.Second
)

// BackendProbeJob actively checks a backend whose health tracker asks for
// it (dead, or cooldown expired) and feeds the outcome back into the
// tracker. Healthy backends are left alone.
type BackendProbeJob struct {
	Backend      provider.Summarizer
	Logger       *slog.Logger
	ScheduleExpr string        // empty = DefaultProbeSchedule
	Timeout      time.Duration // zero = DefaultProbeTimeout
}

// Compile-time interface check.
var _ Job = (*BackendProbeJob)(nil)

// Name implements Job.
func (j *BackendProbeJob) Name() string {
	return "backend_probe:" + j.Backend.Name()
}

// Schedule implements Job.
func (j *BackendProbeJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return DefaultProbeSchedule
}

// Run probes the backend when its tracker needs a check.
func (j *BackendProbeJob) Run(ctx context.Context) error {
	logger := j.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	retrying, ok := provider.As[*provider.Retrying](j.Backend)
	if !ok || retrying.Health() == nil {
		return nil
	}
	health := retrying.Health()
	if !health.ShouldHealthCheck() {
		return nil
	}

	checker, ok := provider.As[provider.HealthChecker](j.Backend)
	if !ok {
		logger.Debug("cron: backend has no health check", "backend", j.Backend.Name())
		return nil
	}

	timeout := j.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := checker.HealthCheck(probeCtx); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("cron: probe %s canceled: %w", j.Backend.Name(), ctx.Err())
		}
		health.RecordFailure(err)
		return fmt.Errorf("cron: probe %s: %w", j.Backend.Name(), err)
	}

	health.RecordSuccess()
	logger.Info("cron: backend recovered", "backend", j.Backend.Name())
	return nil
}
