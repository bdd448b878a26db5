// Package app wires the HTTP surface: routes, middleware, and the server.
package app

import (
	"log/slog"
	"net/http"

	"github.com/arnavsh/promptgate/internal/transport/http/handler"
	"github.com/arnavsh/promptgate/internal/transport/http/middleware"
)

// NewRouter creates and configures the HTTP router with all application
// routes. Returns an http.Handler with middleware applied.
func NewRouter(repo *handler.Repo, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", repo.HealthCheck)
	mux.HandleFunc("POST /api/assist", repo.Assist)

	// Apply middleware chain (order: outer to inner). CORS sits outermost so
	// preflight OPTIONS never reaches the method-patterned mux.
	var h http.Handler = mux

	if logger != nil {
		h = middleware.RequestLogger(logger)(h)
	}
	h = middleware.RequestID(h)
	h = middleware.CORS(h)

	return h
}
