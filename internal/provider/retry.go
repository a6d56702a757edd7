package provider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/flemzord/abridge/internal/band"
)

const tracerName = "github.com/flemzord/abridge/internal/provider"

// RetryConfig controls the retrying decorator.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt.
	// Zero selects the default of 2; a negative value disables retries.
	MaxRetries int `yaml:"max_retries"`

	// InitialInterval is the wait before the first retry. Default: 1s.
	InitialInterval time.Duration `yaml:"initial_interval"`

	// Multiplier grows the wait between consecutive retries. Default: 2.
	Multiplier float64 `yaml:"multiplier"`

	// MaxInterval caps a single wait. Default: 30s.
	MaxInterval time.Duration `yaml:"max_interval"`
}

func (c *RetryConfig) defaults() {
	switch {
	case c.MaxRetries == 0:
		c.MaxRetries = 2
	case c.MaxRetries < 0:
		c.MaxRetries = 0
	}
	if c.InitialInterval <= 0 {
		c.InitialInterval = time.Second
	}
	if c.Multiplier < 1 {
		c.Multiplier = 2
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = 30 * time.Second
	}
}

// Observer receives per-call outcomes. telemetry.Metrics implements it.
type Observer interface {
	ObserveCall(backend string, elapsed time.Duration, err error)
	ObserveRetry(backend string, err error)
}

// RetryOption configures a Retrying decorator.
type RetryOption func(*Retrying)

// WithHealth records every call outcome into h.
func WithHealth(h *Health) RetryOption {
	return func(r *Retrying) { r.health = h }
}

// WithLogger sets the logger used for retry notices.
func WithLogger(l *slog.Logger) RetryOption {
	return func(r *Retrying) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithObserver attaches a metrics observer.
func WithObserver(o Observer) RetryOption {
	return func(r *Retrying) { r.observer = o }
}

// Retrying wraps a Summarizer and retries transient failures with
// exponential backoff. Fatal errors and context cancellation return at once.
type Retrying struct {
	inner    Summarizer
	cfg      RetryConfig
	health   *Health
	observer Observer
	logger   *slog.Logger
	tracer   trace.Tracer
}

// Compile-time interface guard.
var _ Summarizer = (*Retrying)(nil)

// WithRetry decorates s with retry, health and metrics handling.
func WithRetry(s Summarizer, cfg RetryConfig, opts ...RetryOption) *Retrying {
	cfg.defaults()
	r := &Retrying{
		inner:  s,
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the wrapped backend's name.
func (r *Retrying) Name() string { return r.inner.Name() }

// ModelName returns the wrapped backend's model.
func (r *Retrying) ModelName() string { return r.inner.ModelName() }

// Unwrap returns the decorated summarizer.
func (r *Retrying) Unwrap() Summarizer { return r.inner }

// Health returns the tracker attached with WithHealth, or nil.
func (r *Retrying) Health() *Health { return r.health }

// SummarizeOnce calls the wrapped backend, retrying transient failures up to
// MaxRetries times. When every attempt fails transiently the returned error
// wraps ErrRetriesExhausted and is no longer retryable.
func (r *Retrying) SummarizeOnce(ctx context.Context, text string, b band.Band, allowSampling bool) (string, error) {
	ctx, span := r.tracer.Start(ctx, "provider.summarize_once", trace.WithAttributes(
		attribute.String("backend", r.inner.Name()),
		attribute.Int("input_runes", len([]rune(text))),
		attribute.String("band", b.String()),
	))
	defer span.End()

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = r.cfg.InitialInterval
	eb.Multiplier = r.cfg.Multiplier
	eb.MaxInterval = r.cfg.MaxInterval
	eb.RandomizationFactor = 0

	attempts := 0
	op := func() (string, error) {
		attempts++
		start := time.Now()
		out, err := r.inner.SummarizeOnce(ctx, text, b, allowSampling)
		if r.observer != nil {
			r.observer.ObserveCall(r.inner.Name(), time.Since(start), err)
		}
		if err == nil || IsRetryable(err) {
			return out, err
		}
		return "", backoff.Permanent(err)
	}

	notify := func(err error, wait time.Duration) {
		r.logger.Warn("backend call failed, retrying",
			"backend", r.inner.Name(),
			"attempt", attempts,
			"wait", wait,
			"error", err,
		)
		if r.observer != nil {
			r.observer.ObserveRetry(r.inner.Name(), err)
		}
	}

	out, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(eb),
		backoff.WithMaxTries(uint(r.cfg.MaxRetries+1)),
		backoff.WithNotify(notify),
	)
	span.SetAttributes(attribute.Int("attempts", attempts))

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !IsContextError(err) {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		if IsRetryable(err) && !IsContextError(err) {
			err = fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, attempts, err)
		}
		if r.health != nil && !IsContextError(err) {
			r.health.RecordFailure(err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, Kind(err))
		return "", err
	}

	if r.health != nil {
		r.health.RecordSuccess()
	}
	return out, nil
}
