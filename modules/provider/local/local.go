// Package local implements the "local" summarization backend: an
// in-process extractive summarizer that ranks sentences with TextRank and
// keeps the best ones in document order.
//
// It needs no network and no credentials, so it always initializes. Output
// is deterministic; the sampling flag is ignored.
package local

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/flemzord/abridge/internal/band"
	"github.com/flemzord/abridge/internal/chunk"
	"github.com/flemzord/abridge/internal/provider"
)

// Name is the backend identifier.
const Name = "local"

// DefaultModel names the ranking algorithm reported as the model.
const DefaultModel = "textrank"

// Weights balance the three sentence scores.
type Weights struct {
	TF       float64 `yaml:"tf"`
	Graph    float64 `yaml:"graph"`
	Position float64 `yaml:"position"`
}

// Config holds the local backend configuration.
type Config struct {
	Model   string  `yaml:"model" env:"LOCAL_MODEL"`
	Weights Weights `yaml:"weights"`
}

func (c *Config) defaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Weights == (Weights{}) {
		c.Weights = Weights{TF: 0.3, Graph: 0.5, Position: 0.2}
	}
}

// Compile-time interface guard.
var _ provider.Summarizer = (*Provider)(nil)

// Provider is the extractive backend. It is stateless and safe for
// concurrent use.
type Provider struct {
	config Config
	logger *slog.Logger
}

// New returns a local backend. Only the "textrank" model is known.
func New(cfg Config, logger *slog.Logger) (*Provider, error) {
	cfg.defaults()
	if cfg.Model != DefaultModel {
		return nil, fmt.Errorf("%w: local: unknown model %q (want %q)", provider.ErrInit, cfg.Model, DefaultModel)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Provider{config: cfg, logger: logger.With("backend", Name)}, nil
}

// Name implements provider.Summarizer.
func (p *Provider) Name() string { return Name }

// ModelName implements provider.Summarizer.
func (p *Provider) ModelName() string { return p.config.Model }

// SummarizeOnce extracts the highest ranked sentences until the band's word
// floor is reached without passing its ceiling. Text already within the
// ceiling is returned unchanged.
func (p *Provider) SummarizeOnce(ctx context.Context, text string, b band.Band, _ bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: local: empty input", provider.ErrFatal)
	}

	minWords, maxWords := b.Bound().Words()
	if len(strings.Fields(text)) <= maxWords {
		return text, nil
	}

	sents := newSentences(chunk.Sentences(text))
	rank(sents, p.config.Weights)
	chosen := selectSentences(sents, minWords, maxWords)

	parts := make([]string, len(chosen))
	for i, s := range chosen {
		parts[i] = strings.TrimSpace(s.text)
	}
	p.logger.Debug("extracted sentences", "selected", len(chosen), "of", len(sents))
	return strings.Join(parts, " "), nil
}
