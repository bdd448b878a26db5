package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/arnavsh/promptgate/internal/types"
)

// fanOutTimeout bounds the whole specialized-call batch; stragglers become
// placeholder fragments instead of stalling the synthesis.
const fanOutTimeout = 2 * time.Minute

// AnalysisFragment is one specialization's raw findings.
type AnalysisFragment struct {
	Label string
	Text  string
}

// Analyze runs the deep-analysis mode: the full panel of specialized calls in
// parallel against one target provider, then a single synthesis call whose
// streaming output is relayed to w. Individual sub-call failures yield
// placeholder fragments and never abort the batch.
func (r *Router) Analyze(ctx context.Context, w http.ResponseWriter, configs []*types.ProviderConfig, subject string) (*RelayResult, error) {
	target := r.analysisTarget(configs)
	if target == nil {
		return nil, ErrNoProviders
	}

	fragments := r.collectFragments(ctx, target, subject)

	call := &CallDescriptor{
		Instruction: synthesisInstruction,
		Messages: []types.ChatMessage{
			types.NewTextMessage(types.RoleUser, synthesisInput(subject, fragments)),
		},
		Stream: true,
	}

	out := r.Route(ctx, []*types.ProviderConfig{target}, call)
	if !out.OK() {
		return nil, fmt.Errorf("synthesis call failed: %s", out.Message)
	}
	return RelayStream(w, out)
}

// collectFragments fans the panel out concurrently and blocks until every
// sub-call has settled. Fragment order matches the panel.
func (r *Router) collectFragments(ctx context.Context, target *types.ProviderConfig, subject string) []AnalysisFragment {
	ctx, cancel := context.WithTimeout(ctx, fanOutTimeout)
	defer cancel()

	fragments := make([]AnalysisFragment, len(analysisPanel))
	var wg sync.WaitGroup

	for i, entry := range analysisPanel {
		wg.Add(1)
		go func(idx int, entry PanelEntry) {
			defer wg.Done()

			text, err := r.subCall(ctx, target, entry, subject)
			if err != nil {
				r.logger.Warn("analysis sub-call failed",
					"specialization", entry.Label, "error", err)
				text = fragmentPlaceholder
			}
			fragments[idx] = AnalysisFragment{Label: entry.Label, Text: text}
		}(i, entry)
	}

	wg.Wait()
	return fragments
}

// subCall issues one specialized, non-streaming call through the adapter and
// fetcher with the standard transient-retry policy.
func (r *Router) subCall(ctx context.Context, target *types.ProviderConfig, entry PanelEntry, subject string) (string, error) {
	call := &CallDescriptor{
		Instruction: entry.Instruction,
		Messages:    []types.ChatMessage{types.NewTextMessage(types.RoleUser, subject)},
	}

	ur, err := BuildRequest(target, call)
	if err != nil {
		return "", err
	}

	policy := RetryPolicy{
		Attempts:    perProviderAttempts,
		BackoffBase: r.backoff,
		Label:       "analysis/" + entry.Label,
	}

	resp, err := Fetch(ctx, r.client, ur, policy, r.logger)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		drainAndClose(resp)
		return "", fmt.Errorf("upstream status %d", resp.StatusCode)
	}

	return DrainText(&RouteOutcome{Resp: resp, Kind: target.Kind})
}

// analysisTarget picks the provider for the fan-out: the first eligible
// configured provider, else the built-in default's first candidate model.
func (r *Router) analysisTarget(configs []*types.ProviderConfig) *types.ProviderConfig {
	for _, cfg := range configs {
		if cfg.Eligible() {
			return cfg
		}
	}
	if r.def.APIKey != "" && r.def.BaseURL != "" && len(r.def.Models) > 0 {
		return &types.ProviderConfig{
			Label:   "default",
			Kind:    types.KindChatCompletions,
			BaseURL: r.def.BaseURL,
			Model:   r.def.Models[0],
			APIKey:  r.def.APIKey,
			Enabled: true,
		}
	}
	return nil
}

// synthesisInput concatenates the labeled fragments into the synthesis
// call's user content.
func synthesisInput(subject string, fragments []AnalysisFragment) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Subject: %s\n\n", subject)
	for _, f := range fragments {
		fmt.Fprintf(&sb, "=== %s ===\n%s\n\n", strings.ToUpper(f.Label), f.Text)
	}
	return sb.String()
}
