package handler

import (
	"strings"
	"time"

	"github.com/arnavsh/promptgate/internal/types"
)

// Cache keys and TTLs for storage-backed request-time data. Both entries are
// rebuilt lazily after expiry, so edits to storage show up within one TTL.
const (
	cacheKeyConfigs      = "provider_configs"
	cacheKeyPromptPrefix = "system_prompt:"

	configsTTL = 1 * time.Minute
	promptTTL  = 5 * time.Minute
)

// basePrompt anchors the assistant persona regardless of stored content.
const basePrompt = "You are a helpful assistant embedded in a personal portfolio site. " +
	"Answer questions about the site owner using the reference sections below. " +
	"Be concise and friendly; say so when you do not know."

// languagePrompts appends a response-language directive per supported language.
var languagePrompts = map[string]string{
	types.LanguageHindi: "Respond in Hindi (Devanagari script).",
}

// systemPrompt assembles the chat instruction from stored content sections
// for the requested language, with English fallback per section. The result
// is cached; an empty store still yields the base persona.
func (h *Repo) systemPrompt(language string) string {
	if language == "" {
		language = types.LanguageEnglish
	}
	key := cacheKeyPromptPrefix + language

	if h.Cache != nil {
		if v, found := h.Cache.Get(key); found {
			if prompt, ok := v.(string); ok {
				return prompt
			}
		}
	}

	var b strings.Builder
	b.WriteString(basePrompt)

	if h.Store != nil {
		sections, err := h.Store.ListContent(language)
		if err != nil {
			h.Logger.Warn("content load failed", "language", language, "error", err)
		}
		for _, sec := range sections {
			b.WriteString("\n\n== ")
			b.WriteString(sec.Key)
			b.WriteString(" ==\n")
			b.WriteString(sec.Body)
		}
	}

	if directive, ok := languagePrompts[language]; ok {
		b.WriteString("\n\n")
		b.WriteString(directive)
	}

	prompt := b.String()
	if h.Cache != nil {
		h.Cache.SetWithTTL(key, prompt, 1, promptTTL)
	}
	return prompt
}

// providerConfigs returns the stored provider chain in priority order,
// decrypted and ready for routing. Cached briefly so every chat request does
// not hit sqlite.
func (h *Repo) providerConfigs() []*types.ProviderConfig {
	if h.Cache != nil {
		if v, found := h.Cache.Get(cacheKeyConfigs); found {
			if configs, ok := v.([]*types.ProviderConfig); ok {
				return configs
			}
		}
	}

	var configs []*types.ProviderConfig
	if h.Store != nil {
		records, err := h.Store.ListProviders()
		if err != nil {
			h.Logger.Warn("provider list load failed", "error", err)
			return nil
		}
		for _, rec := range records {
			configs = append(configs, rec.ToConfig())
		}
	}

	if h.Cache != nil {
		h.Cache.SetWithTTL(cacheKeyConfigs, configs, 1, configsTTL)
	}
	return configs
}
