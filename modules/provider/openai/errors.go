package openai

import (
	"errors"
	"fmt"
	"net"

	sdk "github.com/openai/openai-go/v3"

	"github.com/flemzord/abridge/internal/provider"
)

// mapError maps an SDK error to a provider sentinel error.
// Context errors pass through unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if provider.IsContextError(err) {
		return err
	}

	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error()
		}
		switch code := apiErr.StatusCode; {
		case code == 429:
			return fmt.Errorf("%w: openai: %s", provider.ErrRateLimit, msg)
		case code == 401 || code == 403:
			return fmt.Errorf("%w: openai: %s", provider.ErrAuth, msg)
		case code >= 500:
			return fmt.Errorf("%w: openai: status %d: %s", provider.ErrProviderDown, code, msg)
		default:
			return fmt.Errorf("%w: openai: status %d: %s", provider.ErrFatal, code, msg)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: openai: %w", provider.ErrProviderDown, err)
	}
	return fmt.Errorf("%w: openai: %w", provider.ErrFatal, err)
}
