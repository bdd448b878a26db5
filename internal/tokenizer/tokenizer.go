// Package tokenizer provides prompt token counting for request logging.
package tokenizer

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/arnavsh/promptgate/internal/types"
)

// Tokenizer counts tokens for outbound prompts.
type Tokenizer interface {
	// CountTokens counts tokens in a text string for a given model.
	CountTokens(text string, model string) (int, error)

	// CountPrompt counts total prompt tokens for an instruction plus
	// conversation.
	CountPrompt(instruction string, messages []types.ChatMessage, model string) (int, error)
}

// Encoding names used by tiktoken.
const (
	EncodingCL100kBase = "cl100k_base" // GPT-4, GPT-3.5-turbo
	EncodingO200kBase  = "o200k_base"  // GPT-4o, o1 models
)

// tokensPerMessage is the per-message framing overhead in the chat format.
const tokensPerMessage = 4

// modelEncoding pairs a prefix with its encoding.
type modelEncoding struct {
	prefix   string
	encoding string
}

// modelEncodings lists model prefixes and their encodings.
// Ordered so longer prefixes match before their shorter variants.
var modelEncodings = []modelEncoding{
	{"gpt-4o", EncodingO200kBase}, // Must come before "gpt-4"
	{"gpt-3.5", EncodingCL100kBase},
	{"gpt-4", EncodingCL100kBase},
	{"chatgpt", EncodingO200kBase},
	{"o1", EncodingO200kBase},
	{"o3", EncodingO200kBase},
}

// TiktokenTokenizer implements Tokenizer using tiktoken-go.
type TiktokenTokenizer struct {
	mu        sync.RWMutex
	encodings map[string]*tiktoken.Tiktoken
}

// New creates a new TiktokenTokenizer.
func New() *TiktokenTokenizer {
	return &TiktokenTokenizer{
		encodings: make(map[string]*tiktoken.Tiktoken),
	}
}

// CountTokens counts tokens in a text string.
func (t *TiktokenTokenizer) CountTokens(text string, model string) (int, error) {
	if text == "" {
		return 0, nil
	}
	enc, err := t.getEncoding(model)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// CountPrompt counts the instruction and every turn, including the image
// references (counted as text, a rough but stable approximation) and a small
// per-message framing overhead.
func (t *TiktokenTokenizer) CountPrompt(instruction string, messages []types.ChatMessage, model string) (int, error) {
	enc, err := t.getEncoding(model)
	if err != nil {
		return 0, err
	}

	total := 0
	if instruction != "" {
		total += tokensPerMessage + len(enc.Encode(instruction, nil, nil))
	}
	for _, m := range messages {
		total += tokensPerMessage
		total += len(enc.Encode(m.Content, nil, nil))
		for _, img := range m.Images {
			total += len(enc.Encode(img, nil, nil))
		}
	}
	return total, nil
}

// getEncoding returns the tiktoken encoding for a model, with caching.
func (t *TiktokenTokenizer) getEncoding(model string) (*tiktoken.Tiktoken, error) {
	encodingName := t.resolveEncoding(model)

	t.mu.RLock()
	enc, ok := t.encodings[encodingName]
	t.mu.RUnlock()
	if ok {
		return enc, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Double-check after acquiring write lock
	if enc, ok = t.encodings[encodingName]; ok {
		return enc, nil
	}

	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	t.encodings[encodingName] = enc
	return enc, nil
}

// resolveEncoding maps a model name to its encoding, defaulting to cl100k
// for unknown (non-OpenAI) models.
func (t *TiktokenTokenizer) resolveEncoding(model string) string {
	// Models routed through aggregators look like "vendor/model".
	if idx := strings.LastIndex(model, "/"); idx >= 0 {
		model = model[idx+1:]
	}
	for _, me := range modelEncodings {
		if strings.HasPrefix(model, me.prefix) {
			return me.encoding
		}
	}
	return EncodingCL100kBase
}
