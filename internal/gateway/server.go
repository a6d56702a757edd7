package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(corsMiddleware(g.config.CORSOrigins))
	r.Use(g.instrument)

	// Public, no auth required.
	r.Get("/", g.handleRoot())
	r.Get("/health", g.handleHealth())
	if g.metrics != nil {
		r.Method(http.MethodGet, "/metrics", g.metrics.Handler())
	}

	// Summarization endpoints, behind auth when configured.
	r.Group(func(r chi.Router) {
		if g.config.Auth.IsConfigured() {
			r.Use(authMiddleware(g.config.Auth, g.logger))
		}
		r.Get("/whoami", g.handleWhoAmI())
		r.Group(func(r chi.Router) {
			r.Use(g.rateLimitMiddleware)
			r.Post("/summarize", g.handleSummarize())
			r.Get("/ws/summarize", g.handleSummarizeWS())
		})
	})

	return r
}
