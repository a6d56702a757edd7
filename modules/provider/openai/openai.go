// Package openai implements the "openai" summarization backend on top of the
// OpenAI Responses API.
package openai

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	sdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/flemzord/abridge/internal/provider"
)

// Name is the backend identifier.
const Name = "openai"

// Compile-time interface guards.
var (
	_ provider.Summarizer    = (*Provider)(nil)
	_ provider.HealthChecker = (*Provider)(nil)
)

// Provider summarizes with an instruction-following chat model. Retries are
// left to provider.WithRetry, so the SDK's own retry loop is disabled.
type Provider struct {
	config Config
	logger *slog.Logger
	client sdk.Client
}

// New validates cfg and returns a ready backend.
func New(cfg Config, logger *slog.Logger) (*Provider, error) {
	cfg.defaults()
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is required for the OpenAI backend", provider.ErrInit)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Provider{
		config: cfg,
		logger: logger.With("backend", Name),
		client: sdk.NewClient(opts...),
	}, nil
}

// Name implements provider.Summarizer.
func (p *Provider) Name() string { return Name }

// ModelName returns the configured model identifier.
func (p *Provider) ModelName() string { return p.config.Model }
