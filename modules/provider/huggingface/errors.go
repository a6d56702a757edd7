package huggingface

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/flemzord/abridge/internal/provider"
)

// maxDetail bounds how much of an error body ends up in an error message.
const maxDetail = 512

// apiError is the error shape of the Inference API.
type apiError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

// mapHTTPError maps an HTTP status code and response body to a provider
// sentinel error. Returns nil for 200.
func mapHTTPError(statusCode int, body []byte) error {
	if statusCode == 200 {
		return nil
	}

	msg := detail(body)
	switch {
	case statusCode == 429:
		return fmt.Errorf("%w: hf: status %d: %s", provider.ErrRateLimit, statusCode, msg)
	case statusCode == 401 || statusCode == 403:
		return fmt.Errorf("%w: hf: status %d: %s", provider.ErrAuth, statusCode, msg)
	case statusCode >= 500:
		return fmt.Errorf("%w: hf: status %d: %s", provider.ErrProviderDown, statusCode, msg)
	default:
		return fmt.Errorf("%w: hf: status %d: %s", provider.ErrFatal, statusCode, msg)
	}
}

// detail extracts the error message from an API body, falling back to the
// raw body, truncated to maxDetail bytes.
func detail(body []byte) string {
	var apiErr apiError
	msg := string(body)
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
		msg = apiErr.Error
		if apiErr.EstimatedTime > 0 {
			msg = fmt.Sprintf("%s (estimated_time %.0fs)", msg, apiErr.EstimatedTime)
		}
	}
	msg = strings.TrimSpace(msg)
	if len(msg) > maxDetail {
		msg = msg[:maxDetail] + "..."
	}
	return msg
}

// mapConnectionError maps network-level errors to provider sentinel errors.
// Context errors pass through unchanged.
func mapConnectionError(err error) error {
	if err == nil {
		return nil
	}
	if provider.IsContextError(err) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: hf: %w", provider.ErrProviderDown, err)
	}
	return fmt.Errorf("%w: hf: %w", provider.ErrFatal, err)
}
