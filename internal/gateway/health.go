package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/flemzord/abridge/internal/provider"
)

// whoAmITimeout bounds the identity lookup.
const whoAmITimeout = 15 * time.Second

// RootResponse is the JSON response for GET /.
type RootResponse struct {
	Message string `json:"message"`
	Backend string `json:"backend"`
	Model   string `json:"model"`
}

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	OK       bool             `json:"ok"`
	Backend  BackendHealth    `json:"backend"`
	Counters CountersSnapshot `json:"counters"`
	Uptime   string           `json:"uptime,omitempty"`
}

// BackendHealth describes the active backend.
type BackendHealth struct {
	Name   string                 `json:"name"`
	Model  string                 `json:"model"`
	Health *provider.HealthStatus `json:"health,omitempty"`
}

// WhoAmIResponse is the JSON response for GET /whoami.
type WhoAmIResponse struct {
	Backend string `json:"backend"`
	Status  any    `json:"status"`
	Body    any    `json:"body,omitempty"`
}

func (g *Gateway) handleRoot() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, RootResponse{
			Message: "abridge API is running",
			Backend: g.backend.Name(),
			Model:   g.backend.ModelName(),
		})
	}
}

// handleHealth always answers 200 with ok=true while the process serves;
// the backend state is informational.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := HealthResponse{
			OK: true,
			Backend: BackendHealth{
				Name:  g.backend.Name(),
				Model: g.backend.ModelName(),
			},
			Counters: g.counters.Snapshot(),
		}
		if r, ok := provider.As[*provider.Retrying](g.backend); ok && r.Health() != nil {
			st := r.Health().Status()
			resp.Backend.Health = &st
		}
		if !g.startedAt.IsZero() {
			resp.Uptime = time.Since(g.startedAt).Round(time.Second).String()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// handleWhoAmI reports the account behind the backend credentials.
// Backends without an identity endpoint answer {"status": "ok"}.
func (g *Gateway) handleWhoAmI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := provider.As[provider.Identifier](g.backend)
		if !ok {
			writeJSON(w, http.StatusOK, WhoAmIResponse{Backend: g.backend.Name(), Status: "ok"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), whoAmITimeout)
		defer cancel()

		identity, err := id.WhoAmI(ctx)
		if err != nil {
			g.logger.Warn("whoami failed", "request_id", requestID(r.Context()), "error", err)
			writeDetail(w, http.StatusBadGateway, g.redactor.Redact("whoami call failed: "+err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, WhoAmIResponse{
			Backend: g.backend.Name(),
			Status:  identity.Status,
			Body:    identity.Body,
		})
	}
}
