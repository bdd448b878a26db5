package handler

import (
	"encoding/json"
	"net/http"

	"github.com/arnavsh/promptgate/internal/version"
)

// HealthCheck handler returns the application health status
func (h *Repo) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"status":  "active",
		"app":     "promptgate",
		"version": version.Version,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
