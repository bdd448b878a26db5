package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/arnavsh/promptgate/internal/provider"
	"github.com/arnavsh/promptgate/internal/transport/http/middleware"
	"github.com/arnavsh/promptgate/internal/types"
)

// Mode-specific instructions for the one-shot handlers. These always run
// against the built-in default provider, not the configured chain: their
// output shaping is tuned to it.
const (
	imageGenInstruction = "You are an image generation assistant. Generate the requested " +
		"image and reply with a one-line description followed by the image as markdown " +
		"(![description](url)). If you cannot generate images, reply with a detailed " +
		"image-generation prompt instead."

	videoGenInstruction = "You are a video concept assistant. Turn the user's idea into a " +
		"single vivid video-generation prompt: subject, motion, camera, lighting, mood, in " +
		"under 80 words. Reply with the prompt only."

	suggestInstruction = "Suggest three short follow-up questions the user could ask next, " +
		"based on the conversation. Reply with ONLY a JSON array of three strings, no " +
		"markdown, no commentary."
)

var (
	markdownImagePattern = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)\)`)
	urlPattern           = regexp.MustCompile(`https?://[^\s)"']+`)
)

// imageGen handles image-gen mode: one buffered call to the default
// provider, image URLs split out of the reply.
func (h *Repo) imageGen(w http.ResponseWriter, r *http.Request, req *types.AssistRequest) {
	text, err := h.oneShot(w, r, types.ModeImageGen, imageGenInstruction, req.Messages)
	if err != nil {
		return
	}

	images := extractImageURLs(text)
	types.WriteJSON(w, types.ImageGenResponse{
		Text:   stripImageMarkdown(text),
		Images: images,
	})
}

// videoGen handles video-gen mode. The default provider produces a refined
// generation prompt; a video URL only appears if the model returned one.
func (h *Repo) videoGen(w http.ResponseWriter, r *http.Request, req *types.AssistRequest) {
	text, err := h.oneShot(w, r, types.ModeVideoGen, videoGenInstruction, req.Messages)
	if err != nil {
		return
	}

	videoURL := ""
	if m := urlPattern.FindString(text); m != "" {
		videoURL = m
	}
	types.WriteJSON(w, types.VideoGenResponse{
		Text:     "Here is a video concept for your idea.",
		VideoURL: videoURL,
		Prompt:   strings.TrimSpace(text),
	})
}

// suggest handles suggest mode: follow-up questions as a JSON string array.
func (h *Repo) suggest(w http.ResponseWriter, r *http.Request, req *types.AssistRequest) {
	text, err := h.oneShot(w, r, types.ModeSuggest, suggestInstruction, req.Messages)
	if err != nil {
		return
	}

	types.WriteJSON(w, types.SuggestResponse{
		Suggestions: parseSuggestions(text),
	})
}

// extract handles extract mode: the concurrent analysis fan-out plus a
// streamed synthesis, against the first eligible configured provider.
func (h *Repo) extract(w http.ResponseWriter, r *http.Request, req *types.AssistRequest) {
	subject := types.LastUserContent(req.Messages)
	if subject == "" {
		types.WriteError(w, http.StatusBadRequest, "messages is required")
		return
	}

	requestID := middleware.GetRequestID(r.Context())
	start := time.Now()

	result, err := h.Router.Analyze(r.Context(), w, h.providerConfigs(), subject)
	if err != nil && result == nil {
		// Nothing has been streamed yet; an error envelope is still valid.
		if errors.Is(err, provider.ErrNoProviders) {
			types.WriteError(w, http.StatusServiceUnavailable,
				"All AI providers are currently unavailable.")
		} else {
			h.Logger.Error("analysis failed", "request_id", requestID, "error", err)
			types.WriteError(w, http.StatusServiceUnavailable,
				"Analysis could not be completed. Please try again later.")
		}
		return
	}
	if err != nil {
		// The SSE response has already started; appending JSON would corrupt
		// the stream, so the interruption is only logged.
		h.Logger.Error("analysis stream interrupted",
			"request_id", requestID, "error", err)
	}

	go h.logAnalysis(requestID, result, start)
}

// oneShot runs one buffered call against the built-in default provider and
// returns the drained reply text. On failure the error envelope has already
// been written.
func (h *Repo) oneShot(w http.ResponseWriter, r *http.Request, mode, instruction string, messages []types.ChatMessage) (string, error) {
	if len(messages) == 0 {
		types.WriteError(w, http.StatusBadRequest, "messages is required")
		return "", errors.New("empty messages")
	}

	requestID := middleware.GetRequestID(r.Context())
	start := time.Now()

	call := &provider.CallDescriptor{
		Instruction: instruction,
		Messages:    messages,
	}

	out := h.Router.RouteDefault(r.Context(), call)
	if !out.OK() {
		types.WriteError(w, out.CallerStatus(), out.Message)
		go h.logRequest(requestID, mode, call, out, nil, start)
		return "", errors.New(out.Message)
	}

	text, err := provider.DrainText(out)
	go h.logRequest(requestID, mode, call, out, &provider.RelayResult{Content: text}, start)
	if err != nil {
		h.Logger.Error("one-shot drain failed",
			"request_id", requestID, "mode", mode, "error", err)
		types.WriteError(w, http.StatusServiceUnavailable,
			"The AI provider returned an unreadable response.")
		return "", err
	}
	return text, nil
}

// extractImageURLs pulls image URLs out of a reply, markdown images first,
// bare URLs as a fallback.
func extractImageURLs(text string) []string {
	var images []string
	for _, m := range markdownImagePattern.FindAllStringSubmatch(text, -1) {
		images = append(images, m[1])
	}
	if len(images) == 0 {
		images = urlPattern.FindAllString(text, -1)
	}
	return images
}

// stripImageMarkdown removes markdown image syntax, leaving the prose.
func stripImageMarkdown(text string) string {
	return strings.TrimSpace(markdownImagePattern.ReplaceAllString(text, ""))
}

// parseSuggestions reads the model's reply as a JSON string array, tolerating
// a markdown code fence. A reply that refuses the shape degrades to its
// non-empty lines.
func parseSuggestions(text string) []string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var suggestions []string
	if err := json.Unmarshal([]byte(cleaned), &suggestions); err == nil {
		return suggestions
	}

	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*0123456789. "))
		if line != "" {
			suggestions = append(suggestions, line)
		}
	}
	return suggestions
}
