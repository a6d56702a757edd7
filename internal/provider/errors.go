package provider

import (
	"context"
	"errors"
	"fmt"
)

// Root error kinds. Every backend error wraps exactly one of them.
var (
	// ErrTransient marks a failure worth retrying.
	ErrTransient = errors.New("transient backend failure")

	// ErrFatal marks a failure that retrying cannot fix.
	ErrFatal = errors.New("fatal backend failure")
)

// Sentinel errors for backend operations.
var (
	// ErrRateLimit indicates the backend returned a rate limit response.
	ErrRateLimit = fmt.Errorf("%w: rate limited", ErrTransient)

	// ErrProviderDown indicates a server-side or connection failure.
	ErrProviderDown = fmt.Errorf("%w: backend unavailable", ErrTransient)

	// ErrAuth indicates the backend rejected the credentials.
	ErrAuth = fmt.Errorf("%w: authentication failed", ErrFatal)

	// ErrMalformedResponse indicates the backend answered with an
	// unexpected shape or an empty summary.
	ErrMalformedResponse = fmt.Errorf("%w: malformed response", ErrFatal)

	// ErrRetriesExhausted indicates every attempt failed transiently.
	ErrRetriesExhausted = fmt.Errorf("%w: retries exhausted", ErrFatal)

	// ErrInit indicates a backend could not be constructed.
	ErrInit = fmt.Errorf("%w: backend initialization failed", ErrFatal)

	// ErrNoProvider indicates no backend could be selected.
	ErrNoProvider = errors.New("no summarization backend available")
)

// IsRetryable reports whether the error is transient and the call can be
// retried after a delay.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsFatal reports whether the error is a non-retryable backend failure.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatal)
}

// Kind returns a short label for err, suitable as a metric label.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrRateLimit):
		return "rate_limit"
	case errors.Is(err, ErrProviderDown):
		return "unavailable"
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, ErrRetriesExhausted):
		return "exhausted"
	case errors.Is(err, ErrInit):
		return "init"
	case IsContextError(err):
		return "canceled"
	default:
		return "unknown"
	}
}

// IsContextError reports whether err stems from context cancellation or an
// expired deadline. Such errors are never retried.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
