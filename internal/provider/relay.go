package provider

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/arnavsh/promptgate/internal/types"
)

// ErrStreamingUnsupported is returned when the response writer cannot flush.
var ErrStreamingUnsupported = errors.New("streaming unsupported by response writer")

// RelayResult reports what flowed through a completed relay, for logging.
type RelayResult struct {
	// Content is the accumulated delta text seen while forwarding.
	Content string

	// Chunks is the number of SSE frames forwarded or emitted.
	Chunks int
}

// RelayStream forwards a successful streaming outcome to the caller as
// OpenAI-chunk SSE. Chat-completions upstreams pass through byte-for-byte;
// messages-style and generate-content-style streams are translated frame by
// frame. The upstream body is closed before returning.
func RelayStream(w http.ResponseWriter, out *RouteOutcome) (*RelayResult, error) {
	defer out.Resp.Body.Close()

	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	switch out.Kind {
	case types.KindMessages:
		return relayMessages(w, flusher, out)
	case types.KindGenerateContent:
		return relayGenerateContent(w, flusher, out)
	default:
		return relayPassthrough(w, flusher, out)
	}
}

// relayPassthrough forwards an already OpenAI-shaped SSE stream unmodified,
// accumulating delta content on the way past. A [DONE] sentinel is appended
// if the upstream stream ended without one.
func relayPassthrough(w http.ResponseWriter, flusher http.Flusher, out *RouteOutcome) (*RelayResult, error) {
	result := &RelayResult{}
	doneSeen := false

	scanner := newSSEScanner(out.Resp.Body)
	for scanner.Scan() {
		line := scanner.Bytes()

		chunk := append(line, '\n')
		if _, err := w.Write(chunk); err != nil {
			return result, err
		}
		flusher.Flush()

		data, ok := sseData(line)
		if !ok {
			continue
		}
		if bytes.Equal(data, []byte("[DONE]")) {
			doneSeen = true
			continue
		}

		var c types.ChatCompletionChunk
		if err := json.Unmarshal(data, &c); err != nil {
			continue // skip malformed chunks
		}
		result.Chunks++
		for _, choice := range c.Choices {
			result.Content += choice.Delta.Content
		}
	}
	if err := scanner.Err(); err != nil {
		return result, err
	}

	if !doneSeen {
		if _, err := w.Write([]byte(types.SSEDone)); err != nil {
			return result, err
		}
		flusher.Flush()
	}
	return result, nil
}

// anthropicEvent is the subset of the messages-style stream we translate.
type anthropicEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
}

// relayMessages translates an Anthropic-shaped event stream into OpenAI
// chunks: content_block_delta text becomes delta content, message_stop
// becomes the [DONE] sentinel.
func relayMessages(w http.ResponseWriter, flusher http.Flusher, out *RouteOutcome) (*RelayResult, error) {
	result := &RelayResult{}

	scanner := newSSEScanner(out.Resp.Body)
	for scanner.Scan() {
		data, ok := sseData(scanner.Bytes())
		if !ok {
			continue
		}

		var ev anthropicEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		if ev.Type != "content_block_delta" || ev.Delta.Text == "" {
			continue
		}

		if err := emitChunk(w, flusher, out.Model, ev.Delta.Text, result); err != nil {
			return result, err
		}
	}
	if err := scanner.Err(); err != nil {
		return result, err
	}

	return result, emitDone(w, flusher)
}

// geminiChunk is the subset of a generate-content stream element we relay.
type geminiChunk struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// relayGenerateContent translates a Google-shaped stream into OpenAI chunks.
// Both SSE framing and the raw JSON-array framing are handled, since
// streamGenerateContent emits the latter unless alt=sse is requested.
func relayGenerateContent(w http.ResponseWriter, flusher http.Flusher, out *RouteOutcome) (*RelayResult, error) {
	result := &RelayResult{}

	contentType := out.Resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/event-stream") {
		scanner := newSSEScanner(out.Resp.Body)
		for scanner.Scan() {
			data, ok := sseData(scanner.Bytes())
			if !ok {
				continue
			}
			if err := emitGeminiTexts(w, flusher, out.Model, data, result); err != nil {
				return result, err
			}
		}
		if err := scanner.Err(); err != nil {
			return result, err
		}
		return result, emitDone(w, flusher)
	}

	// JSON-array framing: decode elements as they arrive.
	dec := json.NewDecoder(out.Resp.Body)
	if _, err := dec.Token(); err != nil { // opening '['
		return result, err
	}
	for dec.More() {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return result, err
		}
		if err := emitGeminiTexts(w, flusher, out.Model, raw, result); err != nil {
			return result, err
		}
	}

	return result, emitDone(w, flusher)
}

// emitGeminiTexts extracts candidate part texts from one stream element and
// emits them as OpenAI chunks.
func emitGeminiTexts(w http.ResponseWriter, flusher http.Flusher, model string, data []byte, result *RelayResult) error {
	var gc geminiChunk
	if err := json.Unmarshal(data, &gc); err != nil {
		return nil // skip malformed elements
	}
	for _, cand := range gc.Candidates {
		for _, part := range cand.Content.Parts {
			if part.Text == "" {
				continue
			}
			if err := emitChunk(w, flusher, model, part.Text, result); err != nil {
				return err
			}
		}
	}
	return nil
}

// emitChunk writes one OpenAI content chunk as an SSE frame.
func emitChunk(w io.Writer, flusher http.Flusher, model, content string, result *RelayResult) error {
	frame, err := types.NewContentChunk(model, content).MarshalSSE()
	if err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return err
	}
	flusher.Flush()
	result.Chunks++
	result.Content += content
	return nil
}

// emitDone writes the [DONE] sentinel.
func emitDone(w io.Writer, flusher http.Flusher) error {
	if _, err := w.Write([]byte(types.SSEDone)); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

// newSSEScanner wraps a stream body with a scanner sized for large chunks.
func newSSEScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, 256*1024)
	return scanner
}

// sseData returns the payload of a "data:" line. SSE permits at most one
// space after the colon, and some upstreams omit it.
func sseData(line []byte) ([]byte, bool) {
	rest, ok := bytes.CutPrefix(line, []byte("data:"))
	if !ok {
		return nil, false
	}
	if len(rest) > 0 && rest[0] == ' ' {
		rest = rest[1:]
	}
	return rest, true
}

// DrainText fully reads a non-streaming outcome and extracts the first
// meaningful text payload for the outcome's wire format. Used by probes and
// the one-shot modes. Closes the body.
func DrainText(out *RouteOutcome) (string, error) {
	defer out.Resp.Body.Close()

	body, err := io.ReadAll(out.Resp.Body)
	if err != nil {
		return "", err
	}

	switch out.Kind {
	case types.KindMessages:
		return drainAnthropic(body)
	case types.KindGenerateContent:
		return drainGemini(body)
	default:
		return drainChatCompletions(body)
	}
}

func drainChatCompletions(body []byte) (string, error) {
	var resp types.ChatCompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

func drainAnthropic(body []byte) (string, error) {
	var resp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("empty messages response")
	}
	return sb.String(), nil
}

func drainGemini(body []byte) (string, error) {
	// streamGenerateContent returns a JSON array of chunks even without
	// streaming transport; a plain object is accepted too.
	var chunks []geminiChunk
	if err := json.Unmarshal(body, &chunks); err != nil {
		var single geminiChunk
		if err := json.Unmarshal(body, &single); err != nil {
			return "", err
		}
		chunks = []geminiChunk{single}
	}

	var sb strings.Builder
	for _, gc := range chunks {
		for _, cand := range gc.Candidates {
			for _, part := range cand.Content.Parts {
				sb.WriteString(part.Text)
			}
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("empty generate-content response")
	}
	return sb.String(), nil
}
