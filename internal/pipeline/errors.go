package pipeline

import "errors"

// Validation messages returned to callers verbatim.
const (
	msgTooShort = "Text is too short to summarize."
	msgEmpty    = "Text is empty after sanitization."
)

// ValidationError reports a request the pipeline refuses before calling any
// backend. Its message is safe to show to end users.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
