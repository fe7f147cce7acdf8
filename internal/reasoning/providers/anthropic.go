package providers

import (
	"context"

	"github.com/oratio-ai/oratio/internal/bridge"
	"github.com/oratio-ai/oratio/internal/reasoning"
)

// AnthropicHandler delegates to the model manager's Anthropic runner; the
// key handling and SDK call happen out of process.
type AnthropicHandler struct {
	options Options
	bridge  bridge.Bridge
}

// NewAnthropicHandler creates an Anthropic handler over the bridge.
func NewAnthropicHandler(options Options, br bridge.Bridge) *AnthropicHandler {
	return &AnthropicHandler{options: options, bridge: br}
}

// Complete implements the Handler interface.
func (h *AnthropicHandler) Complete(ctx context.Context, systemPrompt, text string, cfg reasoning.GenerationConfig) (string, error) {
	out, err := h.bridge.RunAnthropicReasoning(ctx, bridgeRequest(h.options.ModelID, systemPrompt, text, cfg))
	if err != nil {
		return "", reasoning.WrapError(reasoning.KindTransportFailure, err,
			"Anthropic reasoning failed")
	}
	if out == "" {
		return "", reasoning.NewError(reasoning.KindEmptyResponse,
			"Anthropic returned an empty result")
	}
	return out, nil
}

func bridgeRequest(modelID, systemPrompt, text string, cfg reasoning.GenerationConfig) bridge.ReasoningRequest {
	return bridge.ReasoningRequest{
		Text:             text,
		SystemPrompt:     systemPrompt,
		ModelID:          modelID,
		Temperature:      cfg.Temperature,
		MaxTokens:        cfg.MaxTokens,
		TopK:             cfg.TopK,
		TopP:             cfg.TopP,
		RepeatPenalty:    cfg.RepeatPenalty,
		ContextSize:      cfg.ContextSize,
		Threads:          cfg.Threads,
		CustomDictionary: cfg.CustomDictionary,
	}
}
