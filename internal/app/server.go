package app

import (
	"log"
	"net/http"
	"time"

	"github.com/arnavsh/promptgate/internal/config"
)

// Server wraps the HTTP server with its configuration
type Server struct {
	httpServer *http.Server
	config     *config.Config
}

// NewServer creates a new configured HTTP server instance
func NewServer(cfg *config.Config, handler http.Handler) *Server {
	srv := &http.Server{
		Addr:    cfg.ServerPort,
		Handler: handler,
		// Streaming completions can run for minutes; short timeouts would
		// cut them off mid-response.
		ReadTimeout:  300 * time.Second,
		WriteTimeout: 300 * time.Second,
	}

	return &Server{
		httpServer: srv,
		config:     cfg,
	}
}

// Start begins listening and serving HTTP requests
func (s *Server) Start() error {
	log.Printf("promptgate server starting on http://localhost%s", s.config.ServerPort)

	if err := s.httpServer.ListenAndServe(); err != nil {
		return err
	}
	return nil
}
