package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ChatCompletionChunk is the OpenAI-compatible streaming chunk shape that the
// relay emits regardless of which upstream wire format produced the content.
type ChatCompletionChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"` // "chat.completion.chunk"
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
	Usage   *Usage        `json:"usage,omitempty"`
}

// ChunkChoice is a single choice in a streaming chunk.
type ChunkChoice struct {
	Index        int     `json:"index"`
	Delta        Delta   `json:"delta"`
	FinishReason *string `json:"finish_reason"`
}

// Delta is the incremental content of a streaming chunk.
type Delta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// ChatCompletionResponse is the non-streaming completion shape, used when
// draining probe and one-shot responses.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

// Choice is a single non-streaming completion choice.
type Choice struct {
	Index        int         `json:"index"`
	Message      ChoiceReply `json:"message"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

// ChoiceReply is the assistant message inside a completion choice.
type ChoiceReply struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage reports token accounting when upstream provides it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Object constants
const (
	ObjectChatCompletion      = "chat.completion"
	ObjectChatCompletionChunk = "chat.completion.chunk"
)

// SSE framing helpers

// SSEPrefix is the Server-Sent Events data prefix.
const SSEPrefix = "data: "

// SSEDone is the final SSE message indicating stream end.
const SSEDone = "data: [DONE]\n\n"

// FormatSSE frames raw JSON for Server-Sent Events transmission.
func FormatSSE(data []byte) []byte {
	result := make([]byte, 0, len(SSEPrefix)+len(data)+2)
	result = append(result, SSEPrefix...)
	result = append(result, data...)
	result = append(result, '\n', '\n')
	return result
}

// NewContentChunk builds an OpenAI-shaped chunk carrying one content delta.
func NewContentChunk(model, content string) *ChatCompletionChunk {
	return &ChatCompletionChunk{
		ID:      "chatcmpl-" + uuid.New().String(),
		Object:  ObjectChatCompletionChunk,
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []ChunkChoice{{Delta: Delta{Content: content}}},
	}
}

// MarshalSSE renders the chunk as a complete SSE frame.
func (c *ChatCompletionChunk) MarshalSSE() ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return FormatSSE(data), nil
}
