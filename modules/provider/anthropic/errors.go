package anthropic

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	sdkanthropic "github.com/anthropics/anthropic-sdk-go"

	"github.com/flemzord/abridge/internal/provider"
)

// statusOverloaded is Anthropic's non-standard "overloaded" status.
const statusOverloaded = 529

// mapError converts an Anthropic SDK error into the appropriate provider
// sentinel error.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	// Context errors are surfaced as-is so they are never retried.
	if provider.IsContextError(err) {
		return err
	}

	var apiErr *sdkanthropic.Error
	if !errors.As(err, &apiErr) {
		var netErr net.Error
		if errors.As(err, &netErr) {
			return fmt.Errorf("%w: anthropic: %w", provider.ErrProviderDown, err)
		}
		return fmt.Errorf("%w: anthropic: %w", provider.ErrFatal, err)
	}

	switch code := apiErr.StatusCode; {
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: anthropic: %s", provider.ErrRateLimit, apiErr.Error())
	case code == statusOverloaded || code >= 500:
		return fmt.Errorf("%w: anthropic: %s", provider.ErrProviderDown, apiErr.Error())
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: anthropic (HTTP %d): %s", provider.ErrAuth, code, apiErr.Error())
	default:
		return fmt.Errorf("%w: anthropic (HTTP %d): %s", provider.ErrFatal, code, apiErr.Error())
	}
}
