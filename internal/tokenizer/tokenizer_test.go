package tokenizer

import (
	"testing"

	"github.com/arnavsh/promptgate/internal/types"
)

func TestResolveEncoding(t *testing.T) {
	tok := New()

	tests := []struct {
		model string
		want  string
	}{
		{"gpt-4o-mini", EncodingO200kBase},
		{"gpt-4-turbo", EncodingCL100kBase},
		{"gpt-3.5-turbo", EncodingCL100kBase},
		{"o1-preview", EncodingO200kBase},
		{"openai/gpt-4o", EncodingO200kBase},
		{"anthropic/claude-3.5-sonnet", EncodingCL100kBase},
		{"unknown-model", EncodingCL100kBase},
	}

	for _, tt := range tests {
		if got := tok.resolveEncoding(tt.model); got != tt.want {
			t.Errorf("resolveEncoding(%q) = %q, want %q", tt.model, got, tt.want)
		}
	}
}

func TestCountTokens(t *testing.T) {
	tok := New()

	n, err := tok.CountTokens("hello world", "gpt-4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n <= 0 {
		t.Errorf("token count = %d, want > 0", n)
	}

	zero, err := tok.CountTokens("", "gpt-4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if zero != 0 {
		t.Errorf("empty string count = %d, want 0", zero)
	}
}

func TestCountPrompt(t *testing.T) {
	tok := New()

	messages := []types.ChatMessage{
		types.NewTextMessage(types.RoleUser, "hello"),
		types.NewTextMessage(types.RoleAssistant, "hi, how can I help?"),
	}

	withInstruction, err := tok.CountPrompt("You are helpful.", messages, "gpt-4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	without, err := tok.CountPrompt("", messages, "gpt-4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if withInstruction <= without {
		t.Errorf("instruction must add tokens: with=%d without=%d", withInstruction, without)
	}
}
