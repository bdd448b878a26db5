package handler

import (
	"encoding/json"
	"io"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arnavsh/promptgate/internal/provider"
	"github.com/arnavsh/promptgate/internal/storage"
	"github.com/arnavsh/promptgate/internal/transport/http/middleware"
	"github.com/arnavsh/promptgate/internal/types"
)

// Assist handles POST /api/assist: the single entry point for every
// assistant mode. The declared mode picks the handler; unrecognized modes
// fall back to plain chat.
func (h *Repo) Assist(w http.ResponseWriter, r *http.Request) {
	var req types.AssistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		types.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	r.Body.Close()

	if req.TestMode {
		h.testProvider(w, r, &req)
		return
	}

	switch req.Mode {
	case types.ModeImageGen:
		h.imageGen(w, r, &req)
	case types.ModeVideoGen:
		h.videoGen(w, r, &req)
	case types.ModeSuggest:
		h.suggest(w, r, &req)
	case types.ModeExtract:
		h.extract(w, r, &req)
	default:
		h.chat(w, r, &req)
	}
}

// chat runs the default mode: rate-limited, fallback-routed, streamed.
func (h *Repo) chat(w http.ResponseWriter, r *http.Request, req *types.AssistRequest) {
	if !h.allow(w, r) {
		return
	}
	if len(req.Messages) == 0 {
		types.WriteError(w, http.StatusBadRequest, "messages is required")
		return
	}

	requestID := middleware.GetRequestID(r.Context())
	start := time.Now()

	call := &provider.CallDescriptor{
		Instruction: h.systemPrompt(req.Language),
		Messages:    req.Messages,
		Stream:      true,
		UserModel:   req.UserModel,
	}

	out := h.Router.Route(r.Context(), h.providerConfigs(), call)
	if !out.OK() {
		types.WriteError(w, out.CallerStatus(), out.Message)
		go h.logRequest(requestID, types.ModeChat, call, out, nil, start)
		return
	}

	result, err := provider.RelayStream(w, out)
	if err != nil {
		h.Logger.Error("stream relay failed",
			"request_id", requestID, "provider", out.Label, "error", err)
	}
	go h.logRequest(requestID, types.ModeChat, call, out, result, start)
}

// testProvider probes a caller-supplied config for connectivity. Probes are
// rate-limited like chat so the endpoint cannot be used to hammer upstreams.
func (h *Repo) testProvider(w http.ResponseWriter, r *http.Request, req *types.AssistRequest) {
	if !h.allow(w, r) {
		return
	}
	if req.TestConfig == nil {
		types.WriteError(w, http.StatusBadRequest, "testConfig is required")
		return
	}

	out := h.Router.Probe(r.Context(), req.TestConfig)
	if !out.OK() {
		types.WriteError(w, out.CallerStatus(), out.Message)
		return
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(out.Resp.Body, 4096))
	out.Resp.Body.Close()
	types.WriteJSON(w, types.TestResponse{
		Status:  "success",
		Message: "Provider responded (model " + out.Model + ").",
	})
}

// allow applies the per-client rate limit, writing the 429 itself when the
// caller is over quota.
func (h *Repo) allow(w http.ResponseWriter, r *http.Request) bool {
	verdict := h.Limiter.Check(clientID(r))
	if verdict.Allowed {
		return true
	}
	types.WriteRateLimited(w, int(math.Ceil(verdict.ResetIn.Seconds())))
	return false
}

// clientID derives the rate-limit key for a request: the first hop of
// X-Forwarded-For when present, else the remote address.
func clientID(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// logRequest records one routed request asynchronously. result is nil when
// nothing streamed (failure or non-streaming mode).
func (h *Repo) logRequest(requestID, mode string, call *provider.CallDescriptor, out *provider.RouteOutcome, result *provider.RelayResult, start time.Time) {
	if h.Store == nil {
		return
	}

	promptTokens := 0
	if h.Tokenizer != nil {
		promptTokens, _ = h.Tokenizer.CountPrompt(call.Instruction, call.Messages, out.Model)
	}

	entry := &storage.RequestLog{
		ID:           uuid.NewString(),
		RequestID:    requestID,
		Mode:         mode,
		Provider:     out.Label,
		Model:        out.Model,
		PromptTokens: promptTokens,
		IsStreaming:  call.Stream,
		DurationMs:   time.Since(start).Milliseconds(),
		CreatedAt:    time.Now(),
	}
	if out.OK() {
		entry.StatusCode = http.StatusOK
	} else {
		entry.StatusCode = out.CallerStatus()
		entry.ErrorMessage = out.Message
	}
	if result != nil {
		entry.CompletionChars = len(result.Content)
	}

	if err := h.Store.LogRequest(entry); err != nil {
		h.Logger.Warn("request log write failed", "request_id", requestID, "error", err)
	}
}

// logAnalysis records a completed extract run. Provider attribution happens
// inside the fan-out, so only the aggregate is logged here.
func (h *Repo) logAnalysis(requestID string, result *provider.RelayResult, start time.Time) {
	if h.Store == nil {
		return
	}
	entry := &storage.RequestLog{
		ID:          uuid.NewString(),
		RequestID:   requestID,
		Mode:        types.ModeExtract,
		IsStreaming: true,
		StatusCode:  http.StatusOK,
		DurationMs:  time.Since(start).Milliseconds(),
		CreatedAt:   time.Now(),
	}
	if result != nil {
		entry.CompletionChars = len(result.Content)
	}
	if err := h.Store.LogRequest(entry); err != nil {
		h.Logger.Warn("request log write failed", "request_id", requestID, "error", err)
	}
}
