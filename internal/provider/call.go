// Package provider implements the upstream AI request router: building
// provider-specific requests, executing them with bounded retries, falling
// back across an ordered provider chain, and relaying the winning response.
package provider

import (
	"errors"

	"github.com/arnavsh/promptgate/internal/types"
)

// probeMaxTokens caps the response size of connectivity probes.
const probeMaxTokens = 16

// completionMaxTokens is the ceiling sent to providers whose wire format
// requires an explicit max_tokens (messages-style).
const completionMaxTokens = 4096

// ErrNoProviders is returned when routing exhausts every configured provider
// and the built-in default.
var ErrNoProviders = errors.New("all providers exhausted")

// CallDescriptor is the provider-agnostic representation of one upstream
// request. It is immutable per call: the adapter renders it into each
// provider's wire format without touching it.
type CallDescriptor struct {
	// Instruction is the system prompt for this call.
	Instruction string

	// Messages is the ordered conversation, user/assistant turns only.
	Messages []types.ChatMessage

	// Probe marks a cheap connectivity check; response size is limited.
	Probe bool

	// Stream requests a streaming response from upstream.
	Stream bool

	// UserModel, when set, is tried before the built-in default provider's
	// candidate models. It never affects configured providers.
	UserModel string
}
