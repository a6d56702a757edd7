package anthropic

import (
	"context"

	sdkanthropic "github.com/anthropics/anthropic-sdk-go"

	"github.com/flemzord/abridge/internal/band"
	"github.com/flemzord/abridge/internal/provider"
)

// healthCheckText is the document sent by HealthCheck. The reply is capped
// at one token and discarded.
const healthCheckText = "The backend probe checks that the summarization model answers."

// HealthCheck sends a summarization request for the configured model with a
// one-token budget, which verifies the key and the model id together. The
// Messages API has no dedicated health endpoint.
func (a *Anthropic) HealthCheck(ctx context.Context) error {
	_, err := a.client.Messages.New(ctx, sdkanthropic.MessageNewParams{
		Model:     sdkanthropic.Model(a.config.Model),
		MaxTokens: 1,
		System: []sdkanthropic.TextBlockParam{
			{Text: provider.Instructions(band.Intermediate())},
		},
		Messages: []sdkanthropic.MessageParam{
			sdkanthropic.NewUserMessage(sdkanthropic.NewTextBlock(healthCheckText)),
		},
	})
	if err != nil {
		err = mapError(err)
		a.logger.Debug("health check failed", "model", a.config.Model, "error", err)
		return err
	}
	return nil
}
