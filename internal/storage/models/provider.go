// Package models contains data models for storage operations.
package models

import (
	"time"

	"github.com/arnavsh/promptgate/internal/types"
)

// ProviderRecord is a persisted provider configuration. Position defines the
// fallback order: lower positions are tried first. The API key is encrypted
// at rest.
type ProviderRecord struct {
	ID        string     `json:"id"`
	Label     string     `json:"label"`
	Kind      types.Kind `json:"kind"`
	BaseURL   string     `json:"base_url"`
	Model     string     `json:"model"`
	APIKey    string     `json:"api_key"`
	Enabled   bool       `json:"enabled"`
	Position  int        `json:"position"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ToConfig converts the record into the router's request-time config.
func (p *ProviderRecord) ToConfig() *types.ProviderConfig {
	return &types.ProviderConfig{
		ID:      p.ID,
		Label:   p.Label,
		Kind:    p.Kind,
		BaseURL: p.BaseURL,
		Model:   p.Model,
		APIKey:  p.APIKey,
		Enabled: p.Enabled,
	}
}

// MaskAPIKey creates a masked preview of an API key for logs and listings.
func MaskAPIKey(key string) string {
	if len(key) <= 10 {
		return "***"
	}
	return key[:6] + "..." + key[len(key)-4:]
}
