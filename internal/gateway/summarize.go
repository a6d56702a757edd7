package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/flemzord/abridge/internal/extract"
	"github.com/flemzord/abridge/internal/pipeline"
)

// DefaultRatio is applied when a request omits ratio.
const DefaultRatio = 0.10

// SummarizeRequest is the wire form of a summarization request.
type SummarizeRequest struct {
	Text string `json:"text"`
	// HTML is used when Text is empty; readable text is extracted first.
	HTML     string   `json:"html,omitempty"`
	Ratio    *float64 `json:"ratio,omitempty"`
	Level    string   `json:"level,omitempty"`
	DoSample bool     `json:"do_sample,omitempty"`

	// Accepted for compatibility and ignored.
	MaxLength *int `json:"max_length,omitempty"`
	MinLength *int `json:"min_length,omitempty"`
}

// SummarizeResponse is the JSON response for POST /summarize.
type SummarizeResponse struct {
	Summary string `json:"summary"`
}

// toPipeline resolves wire defaults and HTML input.
func (s SummarizeRequest) toPipeline() (pipeline.Request, error) {
	req := pipeline.Request{
		Text:     s.Text,
		Ratio:    DefaultRatio,
		Level:    pipeline.Level(s.Level),
		DoSample: s.DoSample,
	}
	if s.Ratio != nil {
		req.Ratio = *s.Ratio
	}
	if req.Text == "" && s.HTML != "" {
		page, err := extract.Text(s.HTML)
		if err != nil && !errors.Is(err, extract.ErrNoText) {
			return pipeline.Request{}, &decodeError{err: err}
		}
		// No readable text falls through to the pipeline's empty check.
		req.Text = page.Text
	}
	return req, nil
}

// decodeSummarizeRequest reads one SummarizeRequest from r.
func decodeSummarizeRequest(r io.Reader) (pipeline.Request, error) {
	var wire SummarizeRequest
	if err := json.NewDecoder(r).Decode(&wire); err != nil {
		return pipeline.Request{}, &decodeError{err: err}
	}
	return wire.toPipeline()
}

func (g *Gateway) handleSummarize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeSummarizeRequest(http.MaxBytesReader(w, r.Body, g.config.MaxBodyBytes))
		if err != nil {
			g.writeError(w, r, err)
			return
		}

		done := g.counters.begin()
		res, err := g.pipeline.Summarize(r.Context(), req)
		done(err == nil)
		if err != nil {
			g.writeError(w, r, err)
			return
		}

		g.logger.Info("summarized",
			"request_id", requestID(r.Context()),
			"backend", g.backend.Name(),
			"path", res.Path,
			"chunks", res.Chunks,
			"words", res.Words,
		)
		writeJSON(w, http.StatusOK, SummarizeResponse{Summary: res.Summary})
	}
}
