// Package pipeline turns raw document text into a length-controlled
// summary. It sanitizes the input, plans a token band from the word count,
// and picks one of three paths: a single call for short text, or a parallel
// chunk pass followed by a final compression pass for long or "concise"
// requests.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/flemzord/abridge/internal/band"
	"github.com/flemzord/abridge/internal/chunk"
	"github.com/flemzord/abridge/internal/executor"
	"github.com/flemzord/abridge/internal/provider"
	"github.com/flemzord/abridge/internal/sanitize"
)

// Defaults for Config.
const (
	DefaultLongDocThreshold = 4500
	DefaultMinWords         = 40
)

// Config tunes the pipeline.
type Config struct {
	// MaxInputChars caps the sanitized text, in runes. Default: 60000.
	MaxInputChars int `yaml:"max_input_chars" env:"MAX_INPUT_CHARS"`

	// LongDocThreshold is the rune length above which the long path is
	// taken regardless of level. Default: 4500.
	LongDocThreshold int `yaml:"long_doc_threshold" env:"LONG_DOC_THRESHOLD"`

	// MinWords is the smallest accepted input. Default: 40.
	MinWords int `yaml:"min_words"`

	// MaxWorkers bounds concurrent chunk calls. Default: 4.
	MaxWorkers int `yaml:"max_workers" env:"MAX_WORKERS"`

	// LongPlan and ShortPlan override the chunk windows of the long and
	// concise paths.
	LongPlan  chunk.Plan `yaml:"long_plan"`
	ShortPlan chunk.Plan `yaml:"short_plan"`
}

func (c *Config) defaults() {
	if c.MaxInputChars <= 0 {
		c.MaxInputChars = sanitize.DefaultMaxChars
	}
	if c.LongDocThreshold <= 0 {
		c.LongDocThreshold = DefaultLongDocThreshold
	}
	if c.MinWords <= 0 {
		c.MinWords = DefaultMinWords
	}
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = executor.DefaultMaxWorkers
	}
	if c.LongPlan.ChunkChars <= 0 {
		c.LongPlan = chunk.LongPlan
	}
	if c.ShortPlan.ChunkChars <= 0 {
		c.ShortPlan = chunk.ShortPlan
	}
}

// Recorder receives one observation per finished request.
// telemetry.Metrics implements it.
type Recorder interface {
	ObserveRequest(path string, chunks int, elapsed time.Duration, err error)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// Pipeline orchestrates one summarization request at a time per call; a
// single Pipeline serves any number of concurrent requests.
type Pipeline struct {
	cfg        Config
	summarizer provider.Summarizer
	executor   *executor.Executor
	logger     *slog.Logger
	recorder   Recorder
	tracer     trace.Tracer
}

// New builds a Pipeline around s.
func New(s provider.Summarizer, cfg Config, opts ...Option) *Pipeline {
	cfg.defaults()
	p := &Pipeline{
		cfg:        cfg,
		summarizer: s,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:     otel.Tracer("github.com/flemzord/abridge/internal/pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.executor = executor.New(s, cfg.MaxWorkers, executor.WithLogger(p.logger))
	return p
}

// Summarizer returns the backend the pipeline calls.
func (p *Pipeline) Summarizer() provider.Summarizer { return p.summarizer }

// Summarize runs req to completion.
func (p *Pipeline) Summarize(ctx context.Context, req Request) (Result, error) {
	return p.SummarizeWithProgress(ctx, req, nil)
}

// SummarizeWithProgress runs req and reports progress to onEvent, which may
// be nil. A ratio of zero is clamped like any other out-of-range ratio;
// callers that want the default must set band.DefaultRatio. On a backend
// failure the Result carries Path and Chunks but no Summary.
func (p *Pipeline) SummarizeWithProgress(ctx context.Context, req Request, onEvent EventFunc) (res Result, err error) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "pipeline.summarize")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.String("path", string(res.Path)), attribute.Int("chunks", res.Chunks))
		span.End()
		if p.recorder != nil && !IsValidation(err) {
			p.recorder.ObserveRequest(string(res.Path), res.Chunks, time.Since(start), err)
		}
	}()

	emit := func(e Event) {
		if onEvent != nil {
			onEvent(e)
		}
	}

	text := sanitize.Text(req.Text, p.cfg.MaxInputChars)
	if text == "" {
		return Result{}, &ValidationError{Message: msgEmpty}
	}
	words := sanitize.WordCount(text)
	if words < p.cfg.MinWords {
		return Result{}, &ValidationError{Message: msgTooShort}
	}
	level, err := ParseLevel(string(req.Level))
	if err != nil {
		return Result{}, err
	}
	emit(Event{Stage: StageSanitized, Words: words})

	final := band.Target(words, req.Ratio)
	res = Result{Band: final, Words: words}

	var plan chunk.Plan
	switch {
	case utf8.RuneCountInString(text) > p.cfg.LongDocThreshold:
		res.Path, plan = PathLong, p.cfg.LongPlan
	case level == LevelRatio:
		res.Path = PathSingle
	default:
		res.Path, plan = PathConcise, p.cfg.ShortPlan
	}

	logger := p.logger.With("path", string(res.Path), "words", words, "band", final.String())

	if res.Path == PathSingle {
		res.Chunks = 1
		emit(Event{Stage: StageChunked, Path: res.Path, Total: 1})
		summary, err := p.summarizer.SummarizeOnce(ctx, text, final, req.DoSample)
		if err != nil {
			return res, fmt.Errorf("pipeline: single pass: %w", err)
		}
		res.Summary = summary
		emit(Event{Stage: StageFinal, Path: res.Path})
		logger.Debug("summary ready", "elapsed", time.Since(start))
		return res, nil
	}

	chunks := chunk.Split(text, plan)
	res.Chunks = len(chunks)
	emit(Event{Stage: StageChunked, Path: res.Path, Total: len(chunks)})
	logger.Debug("text chunked", "chunks", len(chunks))

	parts, err := p.executor.SummarizeAll(ctx, chunks, band.Intermediate(), req.DoSample, func(index, done, total int) {
		emit(Event{Stage: StageChunkDone, Path: res.Path, Chunk: index, Done: done, Total: total})
	})
	if err != nil {
		return res, fmt.Errorf("pipeline: chunk pass: %w", err)
	}

	summary, err := p.summarizer.SummarizeOnce(ctx, strings.Join(parts, " "), final, req.DoSample)
	if err != nil {
		return res, fmt.Errorf("pipeline: final pass: %w", err)
	}
	res.Summary = summary
	emit(Event{Stage: StageFinal, Path: res.Path})
	logger.Debug("summary ready", "chunks", len(chunks), "elapsed", time.Since(start))
	return res, nil
}
