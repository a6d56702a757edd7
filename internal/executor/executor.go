// Package executor summarizes a batch of chunks in parallel with a bounded
// number of in-flight backend calls.
package executor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/flemzord/abridge/internal/band"
	"github.com/flemzord/abridge/internal/chunk"
	"github.com/flemzord/abridge/internal/provider"
)

// DefaultMaxWorkers is the concurrency limit when none is configured.
const DefaultMaxWorkers = 4

// ProgressFunc is called once per finished chunk, from the worker goroutine
// that finished it. done counts finished chunks including this one.
type ProgressFunc func(index, done, total int)

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// Executor fans chunk summaries out to a Summarizer.
type Executor struct {
	summarizer provider.Summarizer
	maxWorkers int
	logger     *slog.Logger
	tracer     trace.Tracer
}

// New returns an Executor. maxWorkers <= 0 selects DefaultMaxWorkers.
func New(s provider.Summarizer, maxWorkers int, opts ...Option) *Executor {
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}
	e := &Executor{
		summarizer: s,
		maxWorkers: maxWorkers,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:     otel.Tracer("github.com/flemzord/abridge/internal/executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxWorkers returns the configured concurrency limit.
func (e *Executor) MaxWorkers() int { return e.maxWorkers }

// SummarizeAll summarizes every chunk within b and returns the summaries in
// chunk order. At most min(maxWorkers, len(chunks)) calls run at once. The
// first failure cancels the remaining calls and is returned once every
// started call has finished; no partial output is returned.
func (e *Executor) SummarizeAll(ctx context.Context, chunks []chunk.Chunk, b band.Band, allowSampling bool, progress ProgressFunc) ([]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	ctx, span := e.tracer.Start(ctx, "executor.summarize_all", trace.WithAttributes(
		attribute.Int("chunks", len(chunks)),
		attribute.Int("workers", min(e.maxWorkers, len(chunks))),
	))
	defer span.End()

	results := make([]string, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(e.maxWorkers, len(chunks)))

	var done atomic.Int64
	start := time.Now()
	for i, c := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := e.summarizer.SummarizeOnce(gctx, c.Text, b, allowSampling)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", c.Index, err)
			}
			results[i] = out
			n := int(done.Add(1))
			e.logger.Debug("chunk summarized", "chunk", c.Index, "done", n, "total", len(chunks))
			if progress != nil {
				progress(c.Index, n, len(chunks))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	e.logger.Debug("all chunks summarized", "chunks", len(chunks), "elapsed", time.Since(start))
	return results, nil
}
