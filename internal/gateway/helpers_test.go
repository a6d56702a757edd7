package gateway

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/flemzord/abridge/internal/pipeline"
	"github.com/flemzord/abridge/internal/provider"
	"github.com/flemzord/abridge/internal/provider/providertest"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// words returns n space-separated words.
func words(n int) string {
	return strings.TrimSpace(strings.Repeat("lorem ", n))
}

// newTestGateway wires s behind a fast retry decorator with a health
// tracker, as the app does.
func newTestGateway(t *testing.T, s provider.Summarizer, cfg Config, opts ...Option) *Gateway {
	t.Helper()
	wrapped := provider.WithRetry(s, provider.RetryConfig{
		MaxRetries:      1,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
	}, provider.WithHealth(provider.NewHealth(provider.HealthConfig{}, nil)))
	p := pipeline.New(wrapped, pipeline.Config{})
	return New(cfg, p, append([]Option{WithLogger(discardLogger())}, opts...)...)
}

func newStub() *providertest.Stub {
	return &providertest.Stub{BackendName: "hf", Model: "facebook/bart-large-cnn"}
}

// do sends a request with an optional JSON body through h.
func do(t *testing.T, h http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}
