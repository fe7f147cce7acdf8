// Package models holds the static model catalog and the model-to-provider
// resolution rules.
package models

import "strings"

// ProviderID identifies an LLM vendor or local inference backend.
type ProviderID string

const (
	ProviderOpenAI    ProviderID = "openai"
	ProviderAnthropic ProviderID = "anthropic"
	ProviderGemini    ProviderID = "gemini"
	ProviderGroq      ProviderID = "groq"
	ProviderLocal     ProviderID = "local"

	// ProviderCustom is a routing alias: requests take the OpenAI shape but
	// target a user-configured endpoint and key.
	ProviderCustom ProviderID = "custom"

	// ProviderAuto means no explicit choice; resolution falls through to the
	// registry table and naming heuristics.
	ProviderAuto ProviderID = "auto"
)

// ModelDefinition describes one entry in the static catalog.
type ModelDefinition struct {
	ID       string
	Name     string
	Provider ProviderID

	// DisableThinking marks models whose extended reasoning should be
	// suppressed for dictation cleanup (latency over depth).
	DisableThinking bool
}

// Registry is the immutable model catalog, built once at startup and passed
// to the dispatcher by reference.
type Registry struct {
	byID          map[string]ModelDefinition
	ordered       []ModelDefinition
	localFallback bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithLocalFallback routes unknown open-weight model names to the local
// backend instead of defaulting to OpenAI.
func WithLocalFallback(enabled bool) Option {
	return func(r *Registry) { r.localFallback = enabled }
}

// NewRegistry builds the registry from the built-in catalog.
func NewRegistry(opts ...Option) *Registry {
	defs := []ModelDefinition{
		{ID: "gpt-5", Name: "GPT-5", Provider: ProviderOpenAI, DisableThinking: true},
		{ID: "gpt-5-mini", Name: "GPT-5 Mini", Provider: ProviderOpenAI, DisableThinking: true},
		{ID: "gpt-4o", Name: "GPT-4o", Provider: ProviderOpenAI},
		{ID: "gpt-4o-mini", Name: "GPT-4o Mini", Provider: ProviderOpenAI},
		{ID: "gpt-4.1", Name: "GPT-4.1", Provider: ProviderOpenAI},
		{ID: "claude-sonnet-4-5", Name: "Claude Sonnet 4.5", Provider: ProviderAnthropic},
		{ID: "claude-3-5-haiku-latest", Name: "Claude 3.5 Haiku", Provider: ProviderAnthropic},
		{ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash", Provider: ProviderGemini},
		{ID: "gemini-2.0-flash", Name: "Gemini 2.0 Flash", Provider: ProviderGemini},
		{ID: "llama-3.3-70b-versatile", Name: "Llama 3.3 70B", Provider: ProviderGroq},
		{ID: "llama-3.1-8b-instant", Name: "Llama 3.1 8B", Provider: ProviderGroq},
		{ID: "openai/gpt-oss-120b", Name: "GPT-OSS 120B", Provider: ProviderGroq},
		{ID: "qwen2.5-7b-instruct", Name: "Qwen 2.5 7B", Provider: ProviderLocal},
	}

	r := &Registry{
		byID:    make(map[string]ModelDefinition, len(defs)),
		ordered: defs,
	}
	for _, d := range defs {
		r.byID[d.ID] = d
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lookup returns the catalog entry for an exact model ID match.
func (r *Registry) Lookup(modelID string) (ModelDefinition, bool) {
	def, ok := r.byID[modelID]
	return def, ok
}

// List returns the catalog in declaration order.
func (r *Registry) List() []ModelDefinition {
	out := make([]ModelDefinition, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// groqPatterns match model names Groq hosts under its OpenAI-compatible API.
var groqPatterns = []string{
	"llama-3",
	"mixtral-",
	"gemma2-",
	"deepseek-r1-distill",
}

// openWeightPatterns match models commonly run through the local backend.
var openWeightPatterns = []string{
	"qwen",
	"llama",
	"mistral",
	"gpt-oss",
}

// ResolveProvider maps a model identifier to its provider. Resolution order:
// explicit override, exact catalog match, naming heuristics, optional local
// fallback for open-weight names, then OpenAI as the default.
func (r *Registry) ResolveProvider(modelID string, override ProviderID) ProviderID {
	if override != "" && override != ProviderAuto {
		if override == ProviderCustom {
			return ProviderOpenAI
		}
		return override
	}

	if def, ok := r.byID[modelID]; ok {
		return def.Provider
	}

	id := strings.ToLower(modelID)

	if strings.Contains(id, "claude") {
		return ProviderAnthropic
	}

	// "gemma" models collide on the substring; they are not Gemini.
	if strings.Contains(id, "gemini") && !strings.Contains(id, "gemma") {
		return ProviderGemini
	}

	// GPT-4/5 family, but gpt-oss is an open-weight release, not an API model.
	if (strings.Contains(id, "gpt-4") || strings.Contains(id, "gpt-5")) && !strings.Contains(id, "gpt-oss") {
		return ProviderOpenAI
	}

	for _, p := range groqPatterns {
		if strings.Contains(id, p) {
			return ProviderGroq
		}
	}

	if r.localFallback {
		for _, p := range openWeightPatterns {
			if strings.Contains(id, p) {
				return ProviderLocal
			}
		}
	}

	return ProviderOpenAI
}
