package anthropic

import (
	"context"
	"fmt"
	"strings"

	sdkanthropic "github.com/anthropics/anthropic-sdk-go"

	"github.com/flemzord/abridge/internal/band"
	"github.com/flemzord/abridge/internal/provider"
)

// SummarizeOnce sends one Messages request asking for a summary inside b's
// word range. The output budget is twice the band ceiling in tokens.
func (a *Anthropic) SummarizeOnce(ctx context.Context, text string, b band.Band, allowSampling bool) (string, error) {
	b = b.Bound()

	msg, err := a.client.Messages.New(ctx, sdkanthropic.MessageNewParams{
		Model:       sdkanthropic.Model(a.config.Model),
		MaxTokens:   int64(b.Max) * 2,
		Temperature: sdkanthropic.Float(provider.Temperature(allowSampling)),
		System: []sdkanthropic.TextBlockParam{
			{Text: provider.Instructions(b)},
		},
		Messages: []sdkanthropic.MessageParam{
			sdkanthropic.NewUserMessage(sdkanthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return "", mapError(err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if v, ok := block.AsAny().(sdkanthropic.TextBlock); ok {
			sb.WriteString(v.Text)
		}
	}
	summary := strings.TrimSpace(sb.String())
	if summary == "" {
		return "", fmt.Errorf("%w: anthropic: no text in response (stop_reason = %s)",
			provider.ErrMalformedResponse, msg.StopReason)
	}
	if msg.StopReason == sdkanthropic.StopReasonMaxTokens {
		a.logger.Debug("summary hit the output budget", "max_tokens", int64(b.Max)*2)
	}
	return summary, nil
}
