package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoad_Valid(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), FileName, `
version: "1"
backend:
  mode: local
  retry:
    max_retries: 4
    initial_interval: 250ms
hf:
  model: sshleifer/distilbart-cnn-12-6
pipeline:
  max_workers: 8
  long_plan:
    chunk_chars: 3000
    overlap: 200
gateway:
  bind: "0.0.0.0:9000"
  cors_origins: ["https://app.example.com"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend.Mode != "local" {
		t.Errorf("mode = %q, want local", cfg.Backend.Mode)
	}
	if cfg.Backend.Retry.MaxRetries != 4 || cfg.Backend.Retry.InitialInterval != 250*time.Millisecond {
		t.Errorf("retry = %+v", cfg.Backend.Retry)
	}
	if cfg.HF.Model != "sshleifer/distilbart-cnn-12-6" {
		t.Errorf("hf.model = %q", cfg.HF.Model)
	}
	if cfg.Pipeline.MaxWorkers != 8 || cfg.Pipeline.LongPlan.ChunkChars != 3000 || cfg.Pipeline.LongPlan.Overlap != 200 {
		t.Errorf("pipeline = %+v", cfg.Pipeline)
	}
	if cfg.Gateway.Bind != "0.0.0.0:9000" || len(cfg.Gateway.CORSOrigins) != 1 {
		t.Errorf("gateway = %+v", cfg.Gateway)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_UnknownField(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), FileName, "version: \"1\"\nbakend:\n  mode: hf\n")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
	if !strings.Contains(err.Error(), "bakend") {
		t.Errorf("error should name the field: %v", err)
	}
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte("# nothing configured\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Version != "" {
		t.Errorf("version = %q, want empty before defaults", cfg.Version)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("ABRIDGE_TEST_TOKEN", "hf_secret")

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"set variable", "token: ${ABRIDGE_TEST_TOKEN}", "token: hf_secret", false},
		{"set beats default", "token: ${ABRIDGE_TEST_TOKEN:-other}", "token: hf_secret", false},
		{"default", "model: ${ABRIDGE_TEST_UNSET:-facebook/bart-large-cnn}", "model: facebook/bart-large-cnn", false},
		{"empty default", "token: ${ABRIDGE_TEST_UNSET:-}", "token: ", false},
		{"unresolved", "token: ${ABRIDGE_TEST_UNSET}", "", true},
		{"plain dollar", "price: $5", "price: $5", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandEnv([]byte(tt.in))
			if (err != nil) != tt.wantErr {
				t.Fatalf("expandEnv(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && string(got) != tt.want {
				t.Errorf("expandEnv(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExpandEnv_ReportsAllUnresolved(t *testing.T) {
	t.Parallel()

	_, err := expandEnv([]byte("a: ${ABRIDGE_TEST_MISSING_A}\nb: ${ABRIDGE_TEST_MISSING_B}\n"))
	if err == nil {
		t.Fatal("expected error")
	}
	for _, name := range []string{"ABRIDGE_TEST_MISSING_A", "ABRIDGE_TEST_MISSING_B"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error should mention %s: %v", name, err)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("HF_TOKEN", "hf_from_env")
	t.Setenv("SUMMARIZER_BACKEND", "openai")
	t.Setenv("MAX_WORKERS", "6")
	t.Setenv("LONG_DOC_THRESHOLD", "9000")
	t.Setenv("REQUEST_TIMEOUT", "12.5")
	t.Setenv("ABRIDGE_BIND", "0.0.0.0:8080")
	t.Setenv("ABRIDGE_TOKEN", "gateway-secret")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://collector:4318")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := &Config{}
	cfg.HF.Model = "from-file"
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}

	if cfg.HF.Token != "hf_from_env" || cfg.Backend.Mode != "openai" {
		t.Errorf("backend fields = %q %q", cfg.HF.Token, cfg.Backend.Mode)
	}
	if cfg.Pipeline.MaxWorkers != 6 || cfg.Pipeline.LongDocThreshold != 9000 {
		t.Errorf("pipeline = %+v", cfg.Pipeline)
	}
	if cfg.Backend.RequestTimeout != 12.5 {
		t.Errorf("request_timeout = %g, want 12.5", cfg.Backend.RequestTimeout)
	}
	if cfg.Gateway.Bind != "0.0.0.0:8080" || cfg.Gateway.Auth.BearerToken != "gateway-secret" {
		t.Errorf("gateway = %+v", cfg.Gateway)
	}
	if cfg.Telemetry.Tracing.Endpoint != "http://collector:4318" || cfg.Log.Level != "debug" {
		t.Errorf("ambient = %+v %+v", cfg.Telemetry, cfg.Log)
	}
}

func TestApplyEnv_InvalidNumber(t *testing.T) {
	t.Setenv("MAX_WORKERS", "many")

	if err := ApplyEnv(&Config{}); err == nil {
		t.Fatal("expected error for a non-numeric MAX_WORKERS")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", "ABRIDGE_TEST_DOTENV=from-file\nABRIDGE_TEST_KEEP=from-file\n")
	t.Setenv("ABRIDGE_TEST_KEEP", "from-env")
	unsetEnv(t, "ABRIDGE_TEST_DOTENV")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("ABRIDGE_TEST_DOTENV"); got != "from-file" {
		t.Errorf("ABRIDGE_TEST_DOTENV = %q, want from-file", got)
	}
	if got := os.Getenv("ABRIDGE_TEST_KEEP"); got != "from-env" {
		t.Errorf("ABRIDGE_TEST_KEEP = %q, real env must win", got)
	}
}

func TestLoadDotEnv_Missing(t *testing.T) {
	t.Parallel()

	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("missing .env should be ignored: %v", err)
	}
}
