package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/flemzord/abridge/internal/band"
	"github.com/flemzord/abridge/internal/pipeline"
	"github.com/flemzord/abridge/internal/provider"
	"github.com/flemzord/abridge/internal/provider/providertest"
	"github.com/flemzord/abridge/internal/security"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("lorem ", n))
}

func newServer(t *testing.T, stub *providertest.Stub, opts ...Option) *Server {
	t.Helper()
	backend := provider.WithRetry(stub, provider.RetryConfig{MaxRetries: -1},
		provider.WithHealth(provider.NewHealth(provider.HealthConfig{}, nil)))
	return New(pipeline.New(backend, pipeline.Config{}), "test", opts...)
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T, want mcp.TextContent", res.Content[0])
	}
	return text.Text
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	stub := &providertest.Stub{}
	s := newServer(t, stub)

	res, err := s.handleSummarize(context.Background(), call(ToolSummarize, map[string]any{
		"text":      words(200),
		"ratio":     0.2,
		"do_sample": true,
	}))
	if err != nil {
		t.Fatalf("handleSummarize: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if got := resultText(t, res); got != "summary(lorem)" {
		t.Errorf("summary = %q", got)
	}

	calls := stub.Calls()
	if len(calls) != 1 || !calls[0].Sampling {
		t.Errorf("calls = %+v, want one sampled call", calls)
	}
}

func TestSummarize_HTML(t *testing.T) {
	t.Parallel()

	stub := &providertest.Stub{}
	s := newServer(t, stub)

	html := "<html><body><nav>menu menu</nav><article><p>" + strings.Replace(words(80), "lorem", "harbor", 1) + "</p></article></body></html>"
	res, err := s.handleSummarize(context.Background(), call(ToolSummarize, map[string]any{"html": html}))
	if err != nil {
		t.Fatalf("handleSummarize: %v", err)
	}
	if got := resultText(t, res); got != "summary(harbor)" {
		t.Errorf("summary = %q, want the article text summarized", got)
	}
}

func TestSummarize_ToolErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		errs []error
		args map[string]any
		want string
	}{
		{"missing text", nil, map[string]any{}, "Text is empty after sanitization."},
		{"too short", nil, map[string]any{"text": "just a few words"}, "Text is too short to summarize."},
		{"unknown level", nil, map[string]any{"text": words(100), "level": "brief"}, "Unknown level"},
		{"backend failure", []error{provider.ErrAuth}, map[string]any{"text": words(100)}, "stub request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newServer(t, &providertest.Stub{Errors: tt.errs})
			res, err := s.handleSummarize(context.Background(), call(ToolSummarize, tt.args))
			if err != nil {
				t.Fatalf("protocol error: %v", err)
			}
			if !res.IsError {
				t.Fatal("expected a tool error result")
			}
			if got := resultText(t, res); !strings.Contains(got, tt.want) {
				t.Errorf("error text = %q, want substring %q", got, tt.want)
			}
		})
	}
}

func TestSummarize_RedactsErrors(t *testing.T) {
	t.Parallel()

	const token = "hf_abcdefghijklmnopqrstuvwxyz"
	r := security.NewRedactor()
	r.AddLiteral(token)

	stub := &providertest.Stub{
		SummarizeFunc: func(context.Context, string, band.Band) (string, error) {
			return "", fmt.Errorf("%w: token %s rejected", provider.ErrAuth, token)
		},
	}
	res, err := newServer(t, stub, WithRedactor(r)).handleSummarize(context.Background(),
		call(ToolSummarize, map[string]any{"text": words(100)}))
	if err != nil {
		t.Fatalf("protocol error: %v", err)
	}
	got := resultText(t, res)
	if strings.Contains(got, token) {
		t.Errorf("error text leaks the token: %q", got)
	}
	if !strings.Contains(got, security.RedactPlaceholder) {
		t.Errorf("error text = %q, want redaction placeholder", got)
	}
}

func TestBackendStatus(t *testing.T) {
	t.Parallel()

	stub := &providertest.Stub{BackendName: "hf", Model: "facebook/bart-large-cnn", Errors: []error{provider.ErrAuth}}
	s := newServer(t, stub)

	// One fatal failure puts the tracker into cooldown.
	_, _ = s.handleSummarize(context.Background(), call(ToolSummarize, map[string]any{"text": words(100)}))

	res, err := s.handleBackend(context.Background(), call(ToolBackend, nil))
	if err != nil {
		t.Fatalf("handleBackend: %v", err)
	}
	var st BackendStatus
	if err := json.Unmarshal([]byte(resultText(t, res)), &st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if st.Backend != "hf" || st.Model != "facebook/bart-large-cnn" {
		t.Errorf("status = %+v", st)
	}
	if st.Health == nil || st.Health.State != provider.StateCooldown || st.Health.Failures != 1 {
		t.Errorf("health = %+v, want cooldown after one failure", st.Health)
	}
}

func TestToolsList(t *testing.T) {
	t.Parallel()

	s := newServer(t, &providertest.Stub{})
	resp := s.MCP().HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	for _, name := range []string{ToolSummarize, ToolBackend, `"text"`, `"do_sample"`} {
		if !strings.Contains(string(data), name) {
			t.Errorf("tools/list response missing %s: %s", name, data)
		}
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	t.Parallel()

	s := newServer(t, &providertest.Stub{})
	in, w := io.Pipe()
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, in, io.Discard) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve after cancel = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
