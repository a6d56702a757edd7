// Package providertest provides test helpers for the provider package.
package providertest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/flemzord/abridge/internal/band"
	"github.com/flemzord/abridge/internal/provider"
)

// Call records one SummarizeOnce invocation.
type Call struct {
	Text     string
	Band     band.Band
	Sampling bool
}

// Stub is a scripted test double for provider.Summarizer.
//
// Errors are consumed in order, one per call; once exhausted, calls succeed.
// SummarizeFunc, when set, replaces the default output. The default output is
// "summary(<first word>)" so callers can tell which input produced it.
// All methods are safe for concurrent use.
type Stub struct {
	BackendName string
	Model       string
	Errors      []error
	Latency     time.Duration

	SummarizeFunc   func(ctx context.Context, text string, b band.Band) (string, error)
	HealthCheckFunc func(ctx context.Context) error

	mu          sync.Mutex
	calls       []Call
	inFlight    int
	maxInFlight int
	healthCalls int
}

// SummarizeOnce records the call, waits Latency, and returns the next
// scripted error or a summary.
func (s *Stub) SummarizeOnce(ctx context.Context, text string, b band.Band, allowSampling bool) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Text: text, Band: b, Sampling: allowSampling})
	var err error
	if len(s.Errors) > 0 {
		err = s.Errors[0]
		s.Errors = s.Errors[1:]
	}
	s.inFlight++
	s.maxInFlight = max(s.maxInFlight, s.inFlight)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	if s.Latency > 0 {
		timer := time.NewTimer(s.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	if err != nil {
		return "", err
	}
	if s.SummarizeFunc != nil {
		return s.SummarizeFunc(ctx, text, b)
	}
	first, _, _ := strings.Cut(strings.TrimSpace(text), " ")
	return fmt.Sprintf("summary(%s)", first), nil
}

// Name returns BackendName, or "stub".
func (s *Stub) Name() string {
	if s.BackendName == "" {
		return "stub"
	}
	return s.BackendName
}

// ModelName returns Model, or "stub-model".
func (s *Stub) ModelName() string {
	if s.Model == "" {
		return "stub-model"
	}
	return s.Model
}

// HealthCheck delegates to HealthCheckFunc and tracks call count.
func (s *Stub) HealthCheck(ctx context.Context) error {
	s.mu.Lock()
	s.healthCalls++
	s.mu.Unlock()
	if s.HealthCheckFunc == nil {
		return nil
	}
	return s.HealthCheckFunc(ctx)
}

// Calls returns a copy of the recorded calls in arrival order.
func (s *Stub) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns the number of SummarizeOnce calls.
func (s *Stub) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// MaxInFlight returns the highest number of concurrent calls observed.
func (s *Stub) MaxInFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxInFlight
}

// HealthCalls returns the number of HealthCheck calls.
func (s *Stub) HealthCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.healthCalls
}

// Interface guards.
var (
	_ provider.Summarizer    = (*Stub)(nil)
	_ provider.HealthChecker = (*Stub)(nil)
)
