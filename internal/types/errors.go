package types

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// ErrorResponse is the JSON error envelope returned to callers. Upstream
// payloads and stack traces are never forwarded; only a human-readable
// message and the mirrored HTTP status.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status,omitempty"`
}

// WriteError writes a JSON error envelope with the given status.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message, Status: statusCode})
}

// WriteRateLimited writes a 429 with a Retry-After hint in seconds.
func WriteRateLimited(w http.ResponseWriter, retryAfterSeconds int) {
	if retryAfterSeconds < 1 {
		retryAfterSeconds = 1
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:  "Too many requests. Retry in " + strconv.Itoa(retryAfterSeconds) + "s.",
		Status: http.StatusTooManyRequests,
	})
}

// WriteJSON writes an arbitrary value as a 200 JSON response.
func WriteJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
