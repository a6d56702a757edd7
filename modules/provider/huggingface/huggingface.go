// Package huggingface implements the "hf" summarization backend on top of
// the Hugging Face Inference API.
package huggingface

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/flemzord/abridge/internal/provider"
)

// Name is the backend identifier.
const Name = "hf"

// Compile-time interface guards.
var (
	_ provider.Summarizer    = (*Provider)(nil)
	_ provider.HealthChecker = (*Provider)(nil)
	_ provider.Identifier    = (*Provider)(nil)
)

// Provider calls a hosted seq2seq summarization model. It holds no
// per-request state and is safe for concurrent use.
type Provider struct {
	config Config
	logger *slog.Logger
	client *http.Client
}

// New validates cfg and returns a ready backend. A missing token fails with
// provider.ErrInit.
func New(cfg Config, logger *slog.Logger) (*Provider, error) {
	cfg.defaults()
	if cfg.Token == "" {
		return nil, fmt.Errorf("%w: HF_TOKEN is required for the Hugging Face backend", provider.ErrInit)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Provider{
		config: cfg,
		logger: logger.With("backend", Name),
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Name implements provider.Summarizer.
func (p *Provider) Name() string { return Name }

// ModelName returns the configured model identifier.
func (p *Provider) ModelName() string { return p.config.Model }
