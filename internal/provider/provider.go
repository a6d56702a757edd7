// Package provider defines the summarization capability consumed by the
// pipeline, its error taxonomy, a retrying decorator, health tracking, and
// the strategy that picks a backend at startup.
package provider

import (
	"context"

	"github.com/flemzord/abridge/internal/band"
)

// Summarizer is a backend able to shorten text into a length window.
// Concrete implementations live in modules/provider. Implementations must be
// safe for concurrent use and must hold no per-request state.
type Summarizer interface {
	// SummarizeOnce returns a summary of text whose length falls within b,
	// in model tokens. Errors wrap ErrTransient or ErrFatal.
	SummarizeOnce(ctx context.Context, text string, b band.Band, allowSampling bool) (string, error)

	// Name returns the backend identifier ("hf", "openai", "anthropic", "local").
	Name() string

	// ModelName returns the identifier of the underlying model.
	ModelName() string
}

// HealthChecker is an optional interface for backends that support an
// active probe cheaper than a summarization call.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Identity is the answer of a backend's account lookup.
type Identity struct {
	Status int `json:"status"`
	Body   any `json:"body"`
}

// Identifier is an optional interface for backends that can report the
// account their credentials belong to.
type Identifier interface {
	WhoAmI(ctx context.Context) (Identity, error)
}

// As walks the Unwrap chain of s and returns the first summarizer that
// implements T. Decorators such as the retry wrapper expose Unwrap.
func As[T any](s Summarizer) (T, bool) {
	for s != nil {
		if v, ok := s.(T); ok {
			return v, true
		}
		u, ok := s.(interface{ Unwrap() Summarizer })
		if !ok {
			break
		}
		s = u.Unwrap()
	}
	var zero T
	return zero, false
}
