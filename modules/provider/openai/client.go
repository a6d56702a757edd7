package openai

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/responses"

	"github.com/flemzord/abridge/internal/band"
	"github.com/flemzord/abridge/internal/provider"
)

// outputBudget returns the initial max_output_tokens for b. The band is in
// summary tokens; the budget leaves headroom over its ceiling.
func outputBudget(b band.Band) int64 {
	return max(minMaxOutputTokens, int64(b.Max)*2)
}

// SummarizeOnce asks the model for a summary inside b's word range. When the
// model stops on max_output_tokens the budget doubles, up to
// limitMaxOutputTokens.
func (p *Provider) SummarizeOnce(ctx context.Context, text string, b band.Band, allowSampling bool) (string, error) {
	b = b.Bound()
	maxOutputTokens := outputBudget(b)

	for {
		resp, err := p.client.Responses.New(ctx, responses.ResponseNewParams{
			Model:           p.config.Model,
			MaxOutputTokens: sdk.Int(maxOutputTokens),
			Temperature:     sdk.Float(provider.Temperature(allowSampling)),
			Instructions:    sdk.String(provider.Instructions(b)),
			Input: responses.ResponseNewParamsInputUnion{
				OfString: sdk.String(text),
			},
		})
		if err != nil {
			return "", mapError(err)
		}

		if resp.Status == "incomplete" {
			if resp.IncompleteDetails.Reason == "max_output_tokens" && maxOutputTokens < limitMaxOutputTokens {
				maxOutputTokens = min(maxOutputTokens*2, limitMaxOutputTokens)
				p.logger.Debug("response truncated, raising output budget", "max_output_tokens", maxOutputTokens)
				continue
			}
			return "", fmt.Errorf("%w: openai: response incomplete (reason = %s, max_output_tokens = %d)",
				provider.ErrMalformedResponse, resp.IncompleteDetails.Reason, maxOutputTokens)
		}

		summary := strings.TrimSpace(resp.OutputText())
		if summary == "" {
			return "", fmt.Errorf("%w: openai: output text is missing (status = %s)",
				provider.ErrMalformedResponse, resp.Status)
		}
		return summary, nil
	}
}

// HealthCheck lists models, which validates the key without spending
// output tokens.
func (p *Provider) HealthCheck(ctx context.Context) error {
	_, err := p.client.Models.List(ctx)
	return mapError(err)
}
