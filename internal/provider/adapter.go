package provider

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/arnavsh/promptgate/internal/types"
)

// UpstreamRequest is a fully built provider request: target URL, headers, and
// serialized body. Building performs no I/O.
type UpstreamRequest struct {
	URL     string
	Headers http.Header
	Body    []byte
}

// BuildRequest renders a call descriptor into the wire format selected by the
// config's kind. The builder is pure; an unknown kind is a hard error.
func BuildRequest(cfg *types.ProviderConfig, call *CallDescriptor) (*UpstreamRequest, error) {
	switch cfg.Kind {
	case types.KindChatCompletions:
		return buildChatCompletions(cfg, call)
	case types.KindMessages:
		return buildMessages(cfg, call)
	case types.KindGenerateContent:
		return buildGenerateContent(cfg, call)
	default:
		return nil, fmt.Errorf("unknown provider kind %q", cfg.Kind)
	}
}

// buildChatCompletions builds a generic OpenAI-style request:
// POST {base}/chat/completions, bearer auth, system turn first.
func buildChatCompletions(cfg *types.ProviderConfig, call *CallDescriptor) (*UpstreamRequest, error) {
	messages := make([]map[string]any, 0, len(call.Messages)+1)
	if call.Instruction != "" {
		messages = append(messages, map[string]any{
			"role":    types.RoleSystem,
			"content": call.Instruction,
		})
	}
	for _, m := range call.Messages {
		messages = append(messages, map[string]any{
			"role":    m.Role,
			"content": openAIContent(m),
		})
	}

	body := map[string]any{
		"model":    cfg.Model,
		"messages": messages,
		"stream":   call.Stream,
	}
	if call.Probe {
		body["max_tokens"] = probeMaxTokens
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Authorization", "Bearer "+cfg.APIKey)

	return &UpstreamRequest{
		URL:     joinSuffix(cfg.BaseURL, "/chat/completions"),
		Headers: headers,
		Body:    payload,
	}, nil
}

// buildMessages builds an Anthropic-style request: POST {base}/messages,
// API-key plus version header, system text as a top-level field.
func buildMessages(cfg *types.ProviderConfig, call *CallDescriptor) (*UpstreamRequest, error) {
	messages := make([]map[string]any, 0, len(call.Messages))
	for _, m := range call.Messages {
		if m.Role == types.RoleSystem {
			continue
		}
		messages = append(messages, map[string]any{
			"role":    m.Role,
			"content": anthropicContent(m),
		})
	}

	maxTokens := completionMaxTokens
	if call.Probe {
		maxTokens = probeMaxTokens
	}

	body := map[string]any{
		"model":      cfg.Model,
		"max_tokens": maxTokens,
		"messages":   messages,
		"stream":     call.Stream,
	}
	if call.Instruction != "" {
		body["system"] = call.Instruction
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("x-api-key", cfg.APIKey)
	headers.Set("anthropic-version", "2023-06-01")

	return &UpstreamRequest{
		URL:     joinSuffix(cfg.BaseURL, "/messages"),
		Headers: headers,
		Body:    payload,
	}, nil
}

// buildGenerateContent builds a Google-style request:
// POST {base}/models/{model}:streamGenerateContent?key={credential}.
// The system instruction is sent as a leading user turn and assistant turns
// map to the "model" role.
func buildGenerateContent(cfg *types.ProviderConfig, call *CallDescriptor) (*UpstreamRequest, error) {
	contents := make([]map[string]any, 0, len(call.Messages)+1)
	if call.Instruction != "" {
		contents = append(contents, map[string]any{
			"role":  "user",
			"parts": []map[string]any{{"text": call.Instruction}},
		})
	}
	for _, m := range call.Messages {
		role := "user"
		if m.Role == types.RoleAssistant {
			role = "model"
		}
		contents = append(contents, map[string]any{
			"role":  role,
			"parts": geminiParts(m),
		})
	}

	body := map[string]any{"contents": contents}
	if call.Probe {
		body["generationConfig"] = map[string]any{"maxOutputTokens": probeMaxTokens}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")

	target := fmt.Sprintf("%s/models/%s:streamGenerateContent?key=%s",
		strings.TrimRight(cfg.BaseURL, "/"), url.PathEscape(cfg.Model), url.QueryEscape(cfg.APIKey))

	return &UpstreamRequest{
		URL:     target,
		Headers: headers,
		Body:    payload,
	}, nil
}

// joinSuffix appends a known path suffix unless the base URL already ends
// with it, so configured URLs like ".../v1/chat/completions" are not doubled.
func joinSuffix(base, suffix string) string {
	base = strings.TrimRight(base, "/")
	if strings.HasSuffix(base, suffix) {
		return base
	}
	return base + suffix
}

// openAIContent renders a turn as plain text or OpenAI multi-part content.
func openAIContent(m types.ChatMessage) any {
	if len(m.Images) == 0 {
		return m.Content
	}
	parts := []map[string]any{{"type": "text", "text": m.Content}}
	for _, img := range m.Images {
		parts = append(parts, map[string]any{
			"type":      "image_url",
			"image_url": map[string]any{"url": img},
		})
	}
	return parts
}

// anthropicContent renders a turn as plain text or Anthropic content blocks.
// Data URLs become base64 source blocks; anything else is passed as a URL.
func anthropicContent(m types.ChatMessage) any {
	if len(m.Images) == 0 {
		return m.Content
	}
	parts := []map[string]any{{"type": "text", "text": m.Content}}
	for _, img := range m.Images {
		if mediaType, data, ok := parseDataURL(img); ok {
			parts = append(parts, map[string]any{
				"type": "image",
				"source": map[string]any{
					"type":       "base64",
					"media_type": mediaType,
					"data":       data,
				},
			})
			continue
		}
		parts = append(parts, map[string]any{
			"type":   "image",
			"source": map[string]any{"type": "url", "url": img},
		})
	}
	return parts
}

// geminiParts renders a turn as Google content parts. Only data URLs can be
// inlined; plain URLs are skipped since the format has no URL part.
func geminiParts(m types.ChatMessage) []map[string]any {
	parts := []map[string]any{{"text": m.Content}}
	for _, img := range m.Images {
		if mediaType, data, ok := parseDataURL(img); ok {
			parts = append(parts, map[string]any{
				"inline_data": map[string]any{
					"mime_type": mediaType,
					"data":      data,
				},
			})
		}
	}
	return parts
}

// parseDataURL splits a "data:<media>;base64,<data>" reference.
func parseDataURL(ref string) (mediaType, data string, ok bool) {
	if !strings.HasPrefix(ref, "data:") {
		return "", "", false
	}
	rest := strings.TrimPrefix(ref, "data:")
	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return "", "", false
	}
	mediaType = strings.TrimSuffix(meta, ";base64")
	if mediaType == "" {
		mediaType = "image/png"
	}
	return mediaType, payload, true
}
