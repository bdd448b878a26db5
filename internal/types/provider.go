package types

// Kind identifies the wire-format family a provider speaks.
// It is a closed enum: request building dispatches exhaustively over it.
type Kind string

// Supported provider kinds
const (
	// KindChatCompletions is the generic OpenAI-style /chat/completions format.
	KindChatCompletions Kind = "chat-completions"
	// KindMessages is the Anthropic-style /messages format.
	KindMessages Kind = "messages"
	// KindGenerateContent is the Google-style :streamGenerateContent format.
	KindGenerateContent Kind = "generate-content"
)

// Valid reports whether k names a known wire-format family.
func (k Kind) Valid() bool {
	switch k {
	case KindChatCompletions, KindMessages, KindGenerateContent:
		return true
	}
	return false
}

// ProviderConfig describes one upstream AI endpoint. Configs are loaded from
// storage in priority order and never mutated during a request.
type ProviderConfig struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Kind    Kind   `json:"kind"`
	BaseURL string `json:"baseUrl"`
	Model   string `json:"model"`
	APIKey  string `json:"apiKey"`
	Enabled bool   `json:"enabled"`
}

// Eligible reports whether this config can be used for a request.
// A config missing any of credential, model, or base URL is skipped silently.
func (c *ProviderConfig) Eligible() bool {
	return c != nil && c.Enabled && c.APIKey != "" && c.Model != "" && c.BaseURL != ""
}
