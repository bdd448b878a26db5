package provider

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arnavsh/promptgate/internal/types"
)

// outcomeFor wraps a canned body in a RouteOutcome, as if a provider of the
// given kind had just succeeded.
func outcomeFor(kind types.Kind, contentType, body string) *RouteOutcome {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{contentType}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
	return &RouteOutcome{Resp: resp, Kind: kind, Label: "test", Model: "test-model"}
}

// collectDeltas parses the recorded SSE body and concatenates delta content.
func collectDeltas(t *testing.T, raw string) (content string, doneSeen bool) {
	t.Helper()
	for _, line := range strings.Split(raw, "\n") {
		if !strings.HasPrefix(line, types.SSEPrefix) {
			continue
		}
		data := strings.TrimPrefix(line, types.SSEPrefix)
		if data == "[DONE]" {
			doneSeen = true
			continue
		}
		var chunk types.ChatCompletionChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			t.Fatalf("caller-visible chunk is not OpenAI-shaped: %v (%s)", err, data)
		}
		for _, c := range chunk.Choices {
			content += c.Delta.Content
		}
	}
	return content, doneSeen
}

func TestRelayStream_Passthrough(t *testing.T) {
	body := "data: {\"choices\":[{\"delta\":{\"content\":\"Hi\"}}]}\n\ndata: [DONE]\n\n"
	out := outcomeFor(types.KindChatCompletions, "text/event-stream", body)

	rec := httptest.NewRecorder()
	result, err := RelayStream(rec, out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Body.String() != body {
		t.Errorf("passthrough modified the stream:\n%q\nwant\n%q", rec.Body.String(), body)
	}
	if result.Content != "Hi" {
		t.Errorf("accumulated content = %q, want Hi", result.Content)
	}
}

func TestRelayStream_PassthroughAppendsDone(t *testing.T) {
	body := "data: {\"choices\":[{\"delta\":{\"content\":\"Hi\"}}]}\n\n"
	out := outcomeFor(types.KindChatCompletions, "text/event-stream", body)

	rec := httptest.NewRecorder()
	if _, err := RelayStream(rec, out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, doneSeen := collectDeltas(t, rec.Body.String())
	if !doneSeen {
		t.Error("relay must terminate the stream with a [DONE] sentinel")
	}
}

func TestRelayStream_TranslatesMessages(t *testing.T) {
	body := strings.Join([]string{
		`event: message_start`,
		`data: {"type":"message_start"}`,
		``,
		`event: content_block_delta`,
		`data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"Hel"}}`,
		``,
		`event: content_block_delta`,
		`data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"lo"}}`,
		``,
		`event: message_stop`,
		`data: {"type":"message_stop"}`,
		``,
	}, "\n")
	out := outcomeFor(types.KindMessages, "text/event-stream", body)

	rec := httptest.NewRecorder()
	result, err := RelayStream(rec, out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	content, doneSeen := collectDeltas(t, rec.Body.String())
	if content != "Hello" {
		t.Errorf("translated content = %q, want Hello", content)
	}
	if !doneSeen {
		t.Error("translated stream must end with [DONE]")
	}
	if result.Content != "Hello" {
		t.Errorf("result content = %q", result.Content)
	}
}

func TestRelayStream_AcceptsDataLinesWithoutSpace(t *testing.T) {
	// The SSE grammar allows "data:payload" with no space after the colon.
	body := strings.Join([]string{
		`data:{"type":"content_block_delta","delta":{"type":"text_delta","text":"Hi"}}`,
		``,
		`data:{"type":"message_stop"}`,
		``,
	}, "\n")
	out := outcomeFor(types.KindMessages, "text/event-stream", body)

	rec := httptest.NewRecorder()
	result, err := RelayStream(rec, out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	content, doneSeen := collectDeltas(t, rec.Body.String())
	if content != "Hi" {
		t.Errorf("translated content = %q, want Hi", content)
	}
	if !doneSeen {
		t.Error("translated stream must end with [DONE]")
	}
	if result.Content != "Hi" {
		t.Errorf("result content = %q", result.Content)
	}
}

func TestRelayStream_TranslatesGenerateContent(t *testing.T) {
	t.Run("sse framing", func(t *testing.T) {
		body := `data: {"candidates":[{"content":{"parts":[{"text":"Na"}]}}]}` + "\n\n" +
			`data: {"candidates":[{"content":{"parts":[{"text":"maste"}]}}]}` + "\n\n"
		out := outcomeFor(types.KindGenerateContent, "text/event-stream", body)

		rec := httptest.NewRecorder()
		if _, err := RelayStream(rec, out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		content, doneSeen := collectDeltas(t, rec.Body.String())
		if content != "Namaste" {
			t.Errorf("content = %q, want Namaste", content)
		}
		if !doneSeen {
			t.Error("stream must end with [DONE]")
		}
	})

	t.Run("json array framing", func(t *testing.T) {
		body := `[{"candidates":[{"content":{"parts":[{"text":"Na"}]}}]},` +
			`{"candidates":[{"content":{"parts":[{"text":"maste"}]}}]}]`
		out := outcomeFor(types.KindGenerateContent, "application/json", body)

		rec := httptest.NewRecorder()
		if _, err := RelayStream(rec, out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		content, _ := collectDeltas(t, rec.Body.String())
		if content != "Namaste" {
			t.Errorf("content = %q, want Namaste", content)
		}
	})
}

func TestDrainText(t *testing.T) {
	tests := []struct {
		name string
		kind types.Kind
		body string
		want string
	}{
		{
			name: "chat completions",
			kind: types.KindChatCompletions,
			body: `{"choices":[{"message":{"role":"assistant","content":"pong"}}]}`,
			want: "pong",
		},
		{
			name: "messages",
			kind: types.KindMessages,
			body: `{"content":[{"type":"text","text":"pong"}]}`,
			want: "pong",
		},
		{
			name: "generate content array",
			kind: types.KindGenerateContent,
			body: `[{"candidates":[{"content":{"parts":[{"text":"po"}]}}]},{"candidates":[{"content":{"parts":[{"text":"ng"}]}}]}]`,
			want: "pong",
		},
		{
			name: "generate content object",
			kind: types.KindGenerateContent,
			body: `{"candidates":[{"content":{"parts":[{"text":"pong"}]}}]}`,
			want: "pong",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := outcomeFor(tt.kind, "application/json", tt.body)
			got, err := DrainText(out)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DrainText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDrainText_EmptyResponse(t *testing.T) {
	out := outcomeFor(types.KindChatCompletions, "application/json", `{"choices":[]}`)
	if _, err := DrainText(out); err == nil {
		t.Error("empty choices must be an error")
	}
}
