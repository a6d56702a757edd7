package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/flemzord/abridge/internal/config"
	"github.com/flemzord/abridge/internal/pipeline"
	"github.com/flemzord/abridge/internal/provider"
)

// syncBuffer is a goroutine-safe log sink.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func localConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Backend.Mode = "local"
	cfg.Gateway.Bind = "127.0.0.1:0"
	cfg.Defaults()
	return cfg
}

func document() string {
	var sb strings.Builder
	for i := range 12 {
		fmt.Fprintf(&sb, "The harbor crew number %d repaired the northern pier before the spring storms arrived. ", i)
		sb.WriteString("Fishermen waited on the quay while the engineers tested every new beam and bolt. ")
	}
	return sb.String()
}

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatal(err)
		}
	}
}

func TestBuild_LocalMode(t *testing.T) {
	t.Parallel()

	cfg := localConfig()
	logger, redactor := NewLogger(cfg, &bytes.Buffer{})
	c, err := Build(cfg, logger, redactor)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if c.Backend.Name() != "local" || c.Backend.Health() != c.Health {
		t.Errorf("backend = %s, health attached = %v", c.Backend.Name(), c.Backend.Health() == c.Health)
	}
	if c.Metrics == nil {
		t.Error("metrics should be enabled by default")
	}

	res, err := c.Pipeline.Summarize(context.Background(), pipeline.Request{Text: document(), Ratio: 0.2})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if res.Summary == "" || res.Path != pipeline.PathSingle {
		t.Errorf("result = %+v", res)
	}
}

func TestBuild_AutoFallsBackToLocal(t *testing.T) {
	t.Parallel()

	cfg := localConfig()
	cfg.Backend.Mode = "auto"
	logger, redactor := NewLogger(cfg, &bytes.Buffer{})

	c, err := Build(cfg, logger, redactor)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := c.Backend.Name(); got != "local" {
		t.Errorf("backend = %q, want local without credentials", got)
	}
}

func TestBuild_AutoPrefersRemote(t *testing.T) {
	t.Parallel()

	cfg := localConfig()
	cfg.Backend.Mode = "auto"
	cfg.OpenAI.APIKey = "sk-test-key-for-selection-only"
	logger, redactor := NewLogger(cfg, &bytes.Buffer{})

	c, err := Build(cfg, logger, redactor)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := c.Backend.Name(); got != "openai" {
		t.Errorf("backend = %q, want openai (first remote with a credential)", got)
	}
}

func TestBuild_NamedBackendWithoutCredential(t *testing.T) {
	t.Parallel()

	cfg := localConfig()
	cfg.Backend.Mode = "anthropic"
	logger, redactor := NewLogger(cfg, &bytes.Buffer{})

	_, err := Build(cfg, logger, redactor)
	if !errors.Is(err, provider.ErrNoProvider) || !errors.Is(err, provider.ErrInit) {
		t.Fatalf("err = %v, want ErrNoProvider wrapping ErrInit", err)
	}
}

func TestBuild_MetricsDisabled(t *testing.T) {
	t.Parallel()

	cfg := localConfig()
	cfg.Telemetry.MetricsDisabled = true
	logger, redactor := NewLogger(cfg, &bytes.Buffer{})

	c, err := Build(cfg, logger, redactor)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if c.Metrics != nil {
		t.Error("metrics should be nil when disabled")
	}
}

func TestNewLogger_RedactsSecrets(t *testing.T) {
	t.Parallel()

	cfg := localConfig()
	cfg.Gateway.Auth.BearerToken = "gateway-shared-secret"
	cfg.Log.Format = "json"
	var buf bytes.Buffer
	logger, _ := NewLogger(cfg, &buf)

	logger.Info("auth configured", "token_hint", "gateway-shared-secret", "key", "hf_abcdefghijklmnopqrstuvwx")
	out := buf.String()
	if strings.Contains(out, "gateway-shared-secret") || strings.Contains(out, "hf_abcdefghijklmnopqrstuvwx") {
		t.Errorf("log leaks a secret: %s", out)
	}
	if !strings.HasPrefix(out, "{") {
		t.Errorf("json format not honored: %s", out)
	}
}

func TestComponents_Scheduler(t *testing.T) {
	t.Parallel()

	cfg := localConfig()
	logger, redactor := NewLogger(cfg, &bytes.Buffer{})
	c, err := Build(cfg, logger, redactor)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	s, err := c.Scheduler()
	if err != nil {
		t.Fatalf("Scheduler: %v", err)
	}
	if got := s.Jobs(); !slices.Equal(got, []string{"backend_probe:local"}) {
		t.Errorf("Jobs() = %v", got)
	}

	c.Config.Backend.Probe.Disabled = true
	if s, err := c.Scheduler(); err != nil || s != nil {
		t.Errorf("disabled probe: scheduler = %v, err = %v", s, err)
	}
}

var addrPattern = regexp.MustCompile(`addr=(127\.0\.0\.1:\d+)`)

func TestComponents_Serve(t *testing.T) {
	t.Parallel()

	cfg := localConfig()
	logs := &syncBuffer{}
	logger, redactor := NewLogger(cfg, logs)
	c, err := Build(cfg, logger, redactor)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Serve(ctx, "test") }()

	var addr string
	deadline := time.Now().Add(5 * time.Second)
	for addr == "" && time.Now().Before(deadline) {
		if m := addrPattern.FindStringSubmatch(logs.String()); m != nil && strings.Contains(logs.String(), "abridge started") {
			addr = m[1]
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if addr == "" {
		cancel()
		t.Fatalf("server did not start:\n%s", logs.String())
	}

	resp, err := http.Get("http://" + addr + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/health status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve = %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestSetup_FromFile(t *testing.T) {
	t.Chdir(t.TempDir())
	unsetEnv(t, "SUMMARIZER_BACKEND", "LOG_LEVEL", "ABRIDGE_BIND")

	path := filepath.Join(t.TempDir(), "abridge.yaml")
	yaml := "version: \"1\"\nbackend:\n  mode: local\npipeline:\n  max_workers: 2\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := Setup(RunParams{ConfigPath: path, LogOutput: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if c.Backend.Name() != "local" || c.Config.Pipeline.MaxWorkers != 2 {
		t.Errorf("components = %s, workers %d", c.Backend.Name(), c.Config.Pipeline.MaxWorkers)
	}
}

func TestSetup_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	unsetEnv(t, "SUMMARIZER_BACKEND")

	path := filepath.Join(t.TempDir(), "abridge.yaml")
	if err := os.WriteFile(path, []byte("version: \"1\"\nlog:\n  format: xml\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := Setup(RunParams{ConfigPath: path}); err == nil {
		t.Fatal("expected validation error")
	}
}
