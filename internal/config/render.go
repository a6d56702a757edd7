package config

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/flemzord/abridge/internal/provider"
	"github.com/flemzord/abridge/modules/provider/anthropic"
	"github.com/flemzord/abridge/modules/provider/huggingface"
	"github.com/flemzord/abridge/modules/provider/openai"
)

// StarterParams controls the file produced by Render.
type StarterParams struct {
	Mode           provider.Mode
	Bind           string
	HFModel        string
	OpenAIModel    string
	AnthropicModel string
	RequestsPerMin int
	LogFormat      string
	Metrics        bool
}

// DefaultStarter returns the params used when the init wizard is skipped.
func DefaultStarter() StarterParams {
	return StarterParams{
		Mode:           provider.ModeAuto,
		Bind:           "127.0.0.1:8000",
		HFModel:        huggingface.DefaultModel,
		OpenAIModel:    openai.DefaultModel,
		AnthropicModel: anthropic.DefaultModel,
		LogFormat:      "text",
		Metrics:        true,
	}
}

// Credentials are referenced through ${VAR} expansion, never written.
var starterTmpl = template.Must(template.New("abridge.yaml").Parse(`# abridge configuration.
# Secrets are read from the environment (or a .env file beside the binary).
version: "1"

backend:
  mode: {{.Mode}}
  request_timeout: 60
  probe:
    schedule: "@every 30s"

hf:
  token: ${HF_TOKEN:-}
  model: {{.HFModel}}

openai:
  api_key: ${OPENAI_API_KEY:-}
  model: {{.OpenAIModel}}

anthropic:
  api_key: ${ANTHROPIC_API_KEY:-}
  model: {{.AnthropicModel}}

pipeline:
  max_workers: 4
  long_doc_threshold: 4500

gateway:
  bind: {{printf "%q" .Bind}}
  auth:
    bearer_token: ${ABRIDGE_TOKEN:-}
{{- if gt .RequestsPerMin 0}}
  rate_limit:
    requests_per_min: {{.RequestsPerMin}}
{{- end}}

log:
  level: info
  format: {{.LogFormat}}

telemetry:
  metrics_disabled: {{not .Metrics}}
`))

// Render produces a starter configuration file.
func Render(p StarterParams) ([]byte, error) {
	if p.Mode == "" {
		p.Mode = provider.ModeAuto
	}
	if p.LogFormat == "" {
		p.LogFormat = "text"
	}

	var buf bytes.Buffer
	if err := starterTmpl.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("config: render: %w", err)
	}
	return buf.Bytes(), nil
}
