// Package mcpserver exposes the summarization pipeline as Model Context
// Protocol tools over stdio, so editors and agents can call abridge
// directly.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/flemzord/abridge/internal/band"
	"github.com/flemzord/abridge/internal/extract"
	"github.com/flemzord/abridge/internal/pipeline"
	"github.com/flemzord/abridge/internal/provider"
	"github.com/flemzord/abridge/internal/security"
)

// Tool names.
const (
	ToolSummarize = "summarize"
	ToolBackend   = "backend_status"
)

// Server wraps an MCP server bound to one pipeline.
type Server struct {
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
	redactor *security.Redactor
	mcp      *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Nil keeps the discarding default.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRedactor scrubs secrets from error text returned to clients.
func WithRedactor(r *security.Redactor) Option {
	return func(s *Server) { s.redactor = r }
}

// New registers the abridge tools on a fresh MCP server.
func New(p *pipeline.Pipeline, version string, opts ...Option) *Server {
	s := &Server{
		pipeline: p,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		mcp: server.NewMCPServer("abridge", version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp.AddTool(mcp.NewTool(ToolSummarize,
		mcp.WithDescription("Summarize a document. Long inputs are chunked, summarized in parallel and compressed in a final pass."),
		mcp.WithString("text", mcp.Description("Plain text to summarize. Either text or html is required.")),
		mcp.WithString("html", mcp.Description("HTML document; readable text is extracted first.")),
		mcp.WithNumber("ratio",
			mcp.Description("Target summary length as a fraction of the input, clamped to [0.05, 0.30]."),
			mcp.DefaultNumber(band.DefaultRatio),
		),
		mcp.WithString("level",
			mcp.Description("ratio: one pass for short inputs. concise: always chunk and compress."),
			mcp.Enum(string(pipeline.LevelRatio), string(pipeline.LevelConcise)),
		),
		mcp.WithBoolean("do_sample", mcp.Description("Allow sampling for more varied wording.")),
	), s.handleSummarize)

	s.mcp.AddTool(mcp.NewTool(ToolBackend,
		mcp.WithDescription("Report the active summarization backend, its model and health."),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleBackend)

	return s
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// Serve speaks MCP over in and out until ctx is canceled or in closes.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(log.New(slogWriter{s.logger}, "", 0))

	s.logger.Info("mcp: serving on stdio", "backend", s.pipeline.Summarizer().Name())
	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp: %w", err)
	}
	return nil
}

func (s *Server) handleSummarize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := req.GetString("text", "")
	if text == "" {
		if html := req.GetString("html", ""); html != "" {
			page, err := extract.Text(html)
			if err != nil && !errors.Is(err, extract.ErrNoText) {
				return mcp.NewToolResultError(fmt.Sprintf("Invalid html: %v", err)), nil
			}
			text = page.Text
		}
	}

	level, err := pipeline.ParseLevel(req.GetString("level", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.pipeline.Summarize(ctx, pipeline.Request{
		Text:     text,
		Ratio:    req.GetFloat("ratio", band.DefaultRatio),
		Level:    level,
		DoSample: req.GetBool("do_sample", false),
	})
	if err != nil {
		var ve *pipeline.ValidationError
		if errors.As(err, &ve) {
			return mcp.NewToolResultError(ve.Message), nil
		}
		s.logger.Warn("mcp: summarize failed", "error", err)
		detail := fmt.Sprintf("%s request failed: %v", s.pipeline.Summarizer().Name(), err)
		if s.redactor != nil {
			detail = s.redactor.Redact(detail)
		}
		return mcp.NewToolResultError(detail), nil
	}

	s.logger.Info("mcp: summarized",
		"path", string(res.Path),
		"chunks", res.Chunks,
		"words", res.Words,
	)
	return mcp.NewToolResultText(res.Summary), nil
}

// BackendStatus is the JSON payload of the backend_status tool.
type BackendStatus struct {
	Backend string                 `json:"backend"`
	Model   string                 `json:"model"`
	Health  *provider.HealthStatus `json:"health,omitempty"`
}

func (s *Server) handleBackend(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	backend := s.pipeline.Summarizer()
	st := BackendStatus{Backend: backend.Name(), Model: backend.ModelName()}
	if r, ok := provider.As[*provider.Retrying](backend); ok && r.Health() != nil {
		status := r.Health().Status()
		st.Health = &status
	}

	data, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("mcp: encode status: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// slogWriter adapts the stdio transport's *log.Logger to slog.
type slogWriter struct{ logger *slog.Logger }

func (w slogWriter) Write(p []byte) (int, error) {
	msg := string(p)
	if n := len(msg); n > 0 && msg[n-1] == '\n' {
		msg = msg[:n-1]
	}
	w.logger.Warn("mcp: transport", "detail", msg)
	return len(p), nil
}
