package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/flemzord/abridge/internal/pipeline"
	"github.com/flemzord/abridge/internal/security"
)

// errorResponse is the body of every non-2xx answer.
type errorResponse struct {
	Detail string `json:"detail"`
}

// decodeError is a malformed request body.
type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "Invalid request body: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

// statusFor maps an error to its HTTP status and a detail safe to return.
func (g *Gateway) statusFor(err error) (int, string) {
	var (
		verr *pipeline.ValidationError
		derr *decodeError
		berr *http.MaxBytesError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Message
	case errors.As(err, &berr):
		return http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body exceeds %d bytes.", berr.Limit)
	case errors.As(err, &derr):
		return http.StatusBadRequest, derr.Error()
	case errors.Is(err, security.ErrRateLimited):
		return http.StatusTooManyRequests, "Too many requests."
	default:
		return http.StatusBadGateway, g.redactor.Redact(fmt.Sprintf("%s request failed: %v", g.backend.Name(), err))
	}
}

// writeError maps err to a status code and writes a {"detail"} body.
// Upstream failures are logged; client errors are not.
func (g *Gateway) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := g.statusFor(err)
	if status >= http.StatusInternalServerError {
		g.logger.Error("request failed",
			"request_id", requestID(r.Context()),
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}
	writeDetail(w, status, detail)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
