package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/flemzord/abridge/internal/band"
	"github.com/flemzord/abridge/internal/provider"
)

// maxResponseSize is the maximum response body size (10 MB).
// Protects against OOM from malformed or huge responses.
const maxResponseSize = 10 * 1024 * 1024

type summarizeRequest struct {
	Inputs     string     `json:"inputs"`
	Parameters parameters `json:"parameters"`
}

type parameters struct {
	MaxLength         int     `json:"max_length"`
	MinLength         int     `json:"min_length"`
	DoSample          bool    `json:"do_sample"`
	NumBeams          int     `json:"num_beams"`
	NoRepeatNgramSize int     `json:"no_repeat_ngram_size"`
	LengthPenalty     float64 `json:"length_penalty"`
}

type summaryItem struct {
	SummaryText string `json:"summary_text"`
}

func (p *Provider) buildRequest(text string, b band.Band, allowSampling bool) summarizeRequest {
	b = b.Bound()
	return summarizeRequest{
		Inputs: text,
		Parameters: parameters{
			MaxLength:         b.Max,
			MinLength:         b.Min,
			DoSample:          allowSampling,
			NumBeams:          p.config.NumBeams,
			NoRepeatNgramSize: p.config.NoRepeatNgramSize,
			LengthPenalty:     p.config.LengthPenalty,
		},
	}
}

// newHTTPRequest creates an authenticated HTTP request. A nil payload
// produces a GET.
func (p *Provider) newHTTPRequest(ctx context.Context, url string, payload any) (*http.Request, error) {
	method := http.MethodGet
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("hf: marshal request: %w", err)
		}
		method = http.MethodPost
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("%w: hf: create request: %w", provider.ErrFatal, err)
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.config.Token)
	return httpReq, nil
}

// do sends the request and returns the limited body, status code and
// content type.
func (p *Provider) do(httpReq *http.Request) ([]byte, int, string, error) {
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, 0, "", mapConnectionError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, "", mapConnectionError(fmt.Errorf("read response: %w", err))
	}
	return body, resp.StatusCode, resp.Header.Get("Content-Type"), nil
}

// SummarizeOnce posts text to the model endpoint and returns the first
// summary_text of the response.
func (p *Provider) SummarizeOnce(ctx context.Context, text string, b band.Band, allowSampling bool) (string, error) {
	httpReq, err := p.newHTTPRequest(ctx, p.modelURL(), p.buildRequest(text, b, allowSampling))
	if err != nil {
		return "", err
	}

	body, statusCode, _, err := p.do(httpReq)
	if err != nil {
		return "", err
	}
	if httpErr := mapHTTPError(statusCode, body); httpErr != nil {
		return "", httpErr
	}

	var items []summaryItem
	if err := json.Unmarshal(body, &items); err != nil {
		return "", fmt.Errorf("%w: hf: %s", provider.ErrMalformedResponse, detail(body))
	}
	if len(items) == 0 || strings.TrimSpace(items[0].SummaryText) == "" {
		return "", fmt.Errorf("%w: hf: empty summary: %s", provider.ErrMalformedResponse, detail(body))
	}
	return strings.TrimSpace(items[0].SummaryText), nil
}

// WhoAmI reports the account the token belongs to. Non-200 answers are
// returned as an Identity, not an error; only transport failures fail.
func (p *Provider) WhoAmI(ctx context.Context) (provider.Identity, error) {
	httpReq, err := p.newHTTPRequest(ctx, p.config.WhoAmIURL, nil)
	if err != nil {
		return provider.Identity{}, err
	}

	body, statusCode, contentType, err := p.do(httpReq)
	if err != nil {
		return provider.Identity{}, err
	}

	id := provider.Identity{Status: statusCode, Body: string(body)}
	if mt, _, _ := mime.ParseMediaType(contentType); mt == "application/json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			id.Body = v
		}
	}
	return id, nil
}

// HealthCheck validates the token through the identity endpoint, which does
// not consume inference quota.
func (p *Provider) HealthCheck(ctx context.Context) error {
	id, err := p.WhoAmI(ctx)
	if err != nil {
		return err
	}
	return mapHTTPError(id.Status, nil)
}

func (p *Provider) modelURL() string {
	return strings.TrimRight(p.config.BaseURL, "/") + "/" + p.config.Model
}
