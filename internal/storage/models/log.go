package models

import "time"

// RequestLog is one routed assist request, recorded asynchronously after the
// response has been sent.
type RequestLog struct {
	ID              string    `json:"id"`
	RequestID       string    `json:"request_id"`
	Mode            string    `json:"mode"`
	Provider        string    `json:"provider"`
	Model           string    `json:"model"`
	PromptTokens    int       `json:"prompt_tokens"`
	CompletionChars int       `json:"completion_chars"`
	IsStreaming     bool      `json:"is_streaming"`
	StatusCode      int       `json:"status_code"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	DurationMs      int64     `json:"duration_ms"`
	CreatedAt       time.Time `json:"created_at"`
}
