package provider

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/arnavsh/promptgate/internal/types"
)

// perProviderAttempts is the local retry cap for one provider in the
// fallback chain. The outer loop already supplies fallback breadth, so this
// stays small.
const perProviderAttempts = 2

// DefaultProvider is the built-in last-resort upstream tried after every
// configured provider has failed. Several known-good models are attempted in
// sequence.
type DefaultProvider struct {
	BaseURL string
	APIKey  string
	Models  []string
}

// RouteOutcome is the result handed back to the mode dispatcher: either a
// live upstream response to relay, or a structured failure.
type RouteOutcome struct {
	// Resp is the successful upstream response. Nil on failure.
	Resp *http.Response

	// Kind of the provider that produced Resp; the relay uses it to pick a
	// stream translation.
	Kind types.Kind

	// Label and Model identify the winning (or last attempted) provider.
	Label string
	Model string

	// Status and Message describe the failure when Resp is nil. Status is
	// the upstream HTTP status of the most specific failure observed.
	Status  int
	Message string
}

// OK reports whether the outcome carries a live response.
func (o *RouteOutcome) OK() bool {
	return o != nil && o.Resp != nil
}

// Router executes calls against an ordered provider chain with per-provider
// retry and a built-in default fallback.
type Router struct {
	client  *http.Client
	logger  *slog.Logger
	def     DefaultProvider
	backoff time.Duration
}

// NewRouter creates a router using a streaming-safe HTTP client.
func NewRouter(def DefaultProvider, backoff time.Duration, logger *slog.Logger) *Router {
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		client:  newStreamingClient(),
		logger:  logger,
		def:     def,
		backoff: backoff,
	}
}

// Route tries each eligible config in order, then the built-in default's
// candidate models, returning the first success. Only total exhaustion
// surfaces a failure, carrying the most specific status observed.
func (r *Router) Route(ctx context.Context, configs []*types.ProviderConfig, call *CallDescriptor) *RouteOutcome {
	failure := &RouteOutcome{
		Status:  http.StatusServiceUnavailable,
		Message: "All AI providers are currently unavailable.",
	}

	for _, cfg := range configs {
		if !cfg.Eligible() {
			continue
		}
		if out := r.tryConfig(ctx, cfg, call, failure); out != nil {
			return out
		}
	}

	// Fallback to the built-in default, one candidate model at a time.
	if out := r.tryDefault(ctx, call, failure); out != nil {
		return out
	}

	r.logger.Error("all providers exhausted",
		"status", failure.Status,
		"message", failure.Message,
	)
	return failure
}

// RouteDefault tries only the built-in default provider's candidate models,
// skipping the configured chain. One-shot modes use this: their prompts are
// tuned for the default provider and are not part of the user-configurable
// chain.
func (r *Router) RouteDefault(ctx context.Context, call *CallDescriptor) *RouteOutcome {
	failure := &RouteOutcome{
		Status:  http.StatusServiceUnavailable,
		Message: "All AI providers are currently unavailable.",
	}
	if out := r.tryDefault(ctx, call, failure); out != nil {
		return out
	}
	return failure
}

// Probe runs a connectivity check against a single config. There is no
// default fallback: a probe that silently succeeded elsewhere would report
// the wrong provider healthy.
func (r *Router) Probe(ctx context.Context, cfg *types.ProviderConfig) *RouteOutcome {
	failure := &RouteOutcome{
		Status:  http.StatusServiceUnavailable,
		Message: "All AI providers are currently unavailable.",
	}
	call := &CallDescriptor{
		Messages: []types.ChatMessage{types.NewTextMessage(types.RoleUser, "ping")},
		Probe:    true,
	}
	if out := r.tryConfig(ctx, cfg, call, failure); out != nil {
		return out
	}
	return failure
}

// tryDefault runs the default provider's candidate models in order, with any
// caller-supplied model tried first.
func (r *Router) tryDefault(ctx context.Context, call *CallDescriptor, failure *RouteOutcome) *RouteOutcome {
	if r.def.APIKey == "" || r.def.BaseURL == "" {
		return nil
	}

	models := r.def.Models
	if call.UserModel != "" {
		models = append([]string{call.UserModel}, models...)
	}

	for _, model := range models {
		cfg := &types.ProviderConfig{
			Label:   "default",
			Kind:    types.KindChatCompletions,
			BaseURL: r.def.BaseURL,
			Model:   model,
			APIKey:  r.def.APIKey,
			Enabled: true,
		}
		if out := r.tryConfig(ctx, cfg, call, failure); out != nil {
			return out
		}
	}
	return nil
}

// tryConfig runs one provider attempt. Returns a success outcome, or nil
// after recording the failure into failure.
func (r *Router) tryConfig(ctx context.Context, cfg *types.ProviderConfig, call *CallDescriptor, failure *RouteOutcome) *RouteOutcome {
	ur, err := BuildRequest(cfg, call)
	if err != nil {
		r.logger.Warn("skipping provider, request build failed",
			"provider", cfg.Label, "error", err)
		return nil
	}

	policy := RetryPolicy{
		Attempts:    perProviderAttempts,
		BackoffBase: r.backoff,
		Label:       cfg.Label,
	}

	resp, err := Fetch(ctx, r.client, ur, policy, r.logger)
	if err != nil {
		r.logger.Warn("provider unreachable",
			"provider", cfg.Label, "model", cfg.Model, "error", err)
		return nil
	}

	// Any HTTP success is terminal; business errors inside a 200 body are
	// the caller's to interpret.
	if resp.StatusCode < 400 {
		r.logger.Info("provider succeeded",
			"provider", cfg.Label, "model", cfg.Model, "status", resp.StatusCode)
		return &RouteOutcome{
			Resp:  resp,
			Kind:  cfg.Kind,
			Label: cfg.Label,
			Model: cfg.Model,
		}
	}

	snippet := readSnippet(resp.Body)
	resp.Body.Close()
	r.logger.Warn("provider failed, advancing",
		"provider", cfg.Label, "model", cfg.Model,
		"status", resp.StatusCode, "body", snippet)

	recordFailure(failure, cfg, resp.StatusCode)
	return nil
}

// recordFailure keeps the most specific failure seen so far: a 4xx beats a
// 5xx, later observations beat earlier ones of equal specificity.
func recordFailure(failure *RouteOutcome, cfg *types.ProviderConfig, status int) {
	// A recorded client-class failure is never displaced by a 5xx.
	if failure.Label != "" && failure.Status < 500 && status >= 500 {
		return
	}
	failure.Status = status
	failure.Label = cfg.Label
	failure.Model = cfg.Model
	failure.Message = failureMessage(status)
}

// failureMessage maps an upstream status to the caller-facing message.
func failureMessage(status int) string {
	switch {
	case status == http.StatusPaymentRequired:
		return "The AI provider reports exhausted credits."
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "The assistant is misconfigured. Please try again later."
	case status == http.StatusTooManyRequests:
		return "The AI provider is rate limiting requests. Please retry shortly."
	default:
		return "All AI providers are currently unavailable."
	}
}

// CallerStatus maps the most specific upstream failure to the HTTP status
// returned to the end caller. Credential problems are operator error, so they
// surface as 500 rather than leaking a 401/403.
func (o *RouteOutcome) CallerStatus() int {
	switch o.Status {
	case http.StatusPaymentRequired:
		return http.StatusPaymentRequired
	case http.StatusUnauthorized, http.StatusForbidden:
		return http.StatusInternalServerError
	case http.StatusTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusServiceUnavailable
	}
}

// readSnippet reads a bounded prefix of an error body for logs.
func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	return string(b)
}

// drainAndClose discards a response body so the connection can be reused.
func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
