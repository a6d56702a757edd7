// Package gateway exposes the summarization pipeline over HTTP and
// WebSocket.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/flemzord/abridge/internal/pipeline"
	"github.com/flemzord/abridge/internal/provider"
	"github.com/flemzord/abridge/internal/security"
	"github.com/flemzord/abridge/internal/telemetry"
)

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithMetrics enables request instrumentation and mounts GET /metrics.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

// WithRedactor sets the redactor applied to error details.
func WithRedactor(r *security.Redactor) Option {
	return func(g *Gateway) {
		if r != nil {
			g.redactor = r
		}
	}
}

// Gateway is the HTTP front end of the pipeline.
type Gateway struct {
	config   Config
	logger   *slog.Logger
	pipeline *pipeline.Pipeline
	backend  provider.Summarizer
	metrics  *telemetry.Metrics
	redactor *security.Redactor
	limiter  *security.RateLimiter
	counters counters

	server    *http.Server
	listener  net.Listener
	startedAt time.Time
}

// New builds a gateway serving p.
func New(cfg Config, p *pipeline.Pipeline, opts ...Option) *Gateway {
	cfg.Defaults()
	g := &Gateway{
		config:   cfg,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		pipeline: p,
		backend:  p.Summarizer(),
		redactor: security.NewRedactor(),
		limiter:  security.NewRateLimiter(cfg.RateLimit),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Validate checks the bind address.
func (g *Gateway) Validate() error {
	if _, err := net.ResolveTCPAddr("tcp", g.config.Bind); err != nil {
		return fmt.Errorf("gateway: invalid bind address %q: %w", g.config.Bind, err)
	}
	return nil
}

// Handler returns the routed handler, for tests and embedding.
func (g *Gateway) Handler() http.Handler {
	return g.buildRouter()
}

// Start listens on the bind address and serves in the background.
func (g *Gateway) Start(ctx context.Context) error {
	g.startedAt = time.Now()
	g.server = &http.Server{
		Addr:         g.config.Bind,
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", g.config.Bind)
	if err != nil {
		return fmt.Errorf("gateway: listen failed: %w", err)
	}
	g.listener = ln

	go func() {
		g.logger.Info("gateway listening", "addr", ln.Addr().String(), "backend", g.backend.Name())
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Addr returns the listening address once Start has succeeded.
func (g *Gateway) Addr() string {
	if g.listener == nil {
		return ""
	}
	return g.listener.Addr().String()
}

// Stop shuts the server down gracefully within the configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}
