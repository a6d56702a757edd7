// Package anthropic implements the "anthropic" summarization backend on top
// of the Anthropic Messages API.
package anthropic

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	sdkanthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/flemzord/abridge/internal/provider"
)

// Name is the backend identifier.
const Name = "anthropic"

// Interface guards.
var (
	_ provider.Summarizer    = (*Anthropic)(nil)
	_ provider.HealthChecker = (*Anthropic)(nil)
)

// Anthropic implements provider.Summarizer and provider.HealthChecker using
// the Anthropic Messages API.
type Anthropic struct {
	config Config
	client *sdkanthropic.Client
	logger *slog.Logger
}

// New validates cfg and returns a ready backend.
func New(cfg Config, logger *slog.Logger) (*Anthropic, error) {
	cfg.defaults()
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY is required for the Anthropic backend", provider.ErrInit)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		// Retries belong to provider.WithRetry.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	client := sdkanthropic.NewClient(opts...)
	return &Anthropic{
		config: cfg,
		client: &client,
		logger: logger.With("backend", Name),
	}, nil
}

// Name implements provider.Summarizer.
func (a *Anthropic) Name() string { return Name }

// ModelName implements provider.Summarizer.
func (a *Anthropic) ModelName() string {
	return a.config.Model
}
