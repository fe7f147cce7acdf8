// Package prompt manages the system prompt used for dictation cleanup: the
// built-in default, the user override in the settings store, and the agent
// name placeholder substitution.
package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/oratio-ai/oratio/internal/reasoning"
	"github.com/oratio-ai/oratio/internal/settings"
)

// PlaceholderAgentName is the literal token replaced with the configured
// agent name before a prompt is displayed or used.
const PlaceholderAgentName = "{{agentName}}"

const defaultAgentName = "Assistant"

// DefaultSystemPrompt is the built-in dictation cleanup prompt.
const DefaultSystemPrompt = `You are {{agentName}}, a dictation assistant. The user speaks text aloud and you return a cleaned-up written version.

Rules:
- Fix transcription artifacts: filler words, false starts, repeated words, and obvious mis-hearings.
- Apply punctuation, capitalization, and paragraph breaks.
- Follow spoken editing commands such as "new line", "scratch that", or "quote ... unquote".
- Preserve the speaker's wording and intent. Do not summarize, expand, or add content.
- Return only the cleaned text, with no commentary.`

// Effective returns the active prompt (override or default) with the agent
// name placeholder substituted.
func Effective(store settings.Store, agentName string) string {
	text := store.GetString(settings.KeyPromptOverride)
	if strings.TrimSpace(text) == "" {
		text = DefaultSystemPrompt
	}
	return Substitute(text, resolveAgentName(store, agentName))
}

// Substitute replaces every occurrence of the agent name placeholder.
func Substitute(text, agentName string) string {
	return strings.ReplaceAll(text, PlaceholderAgentName, agentName)
}

func resolveAgentName(store settings.Store, agentName string) string {
	if agentName != "" {
		return agentName
	}
	if configured := store.GetString(settings.KeyAgentName); configured != "" {
		return configured
	}
	return defaultAgentName
}

// TextProcessor runs text through the reasoning pipeline; the dispatcher
// satisfies it.
type TextProcessor interface {
	ProcessText(ctx context.Context, text, modelID, agentName string, cfg reasoning.GenerationConfig) (string, error)
}

// Studio exposes the view/edit/test operations over the prompt
// configuration.
type Studio struct {
	store     settings.Store
	processor TextProcessor
}

// NewStudio creates a prompt studio.
func NewStudio(store settings.Store, processor TextProcessor) *Studio {
	return &Studio{store: store, processor: processor}
}

// Current returns the raw active prompt text, before substitution, and
// whether it is a user override.
func (s *Studio) Current() (string, bool) {
	if text := s.store.GetString(settings.KeyPromptOverride); strings.TrimSpace(text) != "" {
		return text, true
	}
	return DefaultSystemPrompt, false
}

// Set stores a user override.
func (s *Studio) Set(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("prompt text is empty; use Reset to restore the default")
	}
	return s.store.SetString(settings.KeyPromptOverride, text)
}

// Reset removes the override, restoring the built-in default.
func (s *Studio) Reset() error {
	return s.store.SetString(settings.KeyPromptOverride, "")
}

// Test runs a sample text through the pipeline under the active prompt.
func (s *Studio) Test(ctx context.Context, sample, modelID string) (string, error) {
	if s.processor == nil {
		return "", fmt.Errorf("no processor wired for prompt testing")
	}
	return s.processor.ProcessText(ctx, sample, modelID, "", reasoning.GenerationConfig{})
}
