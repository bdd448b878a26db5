package models

import "time"

// ContentSection is one keyed block of site content used to assemble the
// assistant's system prompt, with one row per language variant.
type ContentSection struct {
	Key       string    `json:"key"`
	Language  string    `json:"language"`
	Body      string    `json:"body"`
	Position  int       `json:"position"`
	UpdatedAt time.Time `json:"updated_at"`
}
