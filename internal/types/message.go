// Package types provides the wire types shared by the assist endpoint and the
// provider router.
package types

// Role constants for conversation turns
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of the caller-supplied conversation.
// Images are optional attachment references (data URLs or plain URLs)
// rendered into each provider's multi-part content convention.
type ChatMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

// NewTextMessage creates a simple text turn.
func NewTextMessage(role, content string) ChatMessage {
	return ChatMessage{Role: role, Content: content}
}

// LastUserContent returns the content of the most recent user turn,
// or empty if the conversation has none.
func LastUserContent(messages []ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
