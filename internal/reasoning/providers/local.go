package providers

import (
	"context"

	"github.com/oratio-ai/oratio/internal/bridge"
	"github.com/oratio-ai/oratio/internal/reasoning"
)

// LocalHandler delegates to the model manager's local inference engine. The
// full generation config crosses the boundary; sampling knobs only mean
// something to the local runtime.
type LocalHandler struct {
	options Options
	bridge  bridge.Bridge
}

// NewLocalHandler creates a local-inference handler over the bridge.
func NewLocalHandler(options Options, br bridge.Bridge) *LocalHandler {
	return &LocalHandler{options: options, bridge: br}
}

// Complete implements the Handler interface.
func (h *LocalHandler) Complete(ctx context.Context, systemPrompt, text string, cfg reasoning.GenerationConfig) (string, error) {
	out, err := h.bridge.RunLocalReasoning(ctx, bridgeRequest(h.options.ModelID, systemPrompt, text, cfg))
	if err != nil {
		return "", reasoning.WrapError(reasoning.KindTransportFailure, err,
			"local reasoning failed")
	}
	if out == "" {
		return "", reasoning.NewError(reasoning.KindEmptyResponse,
			"local model returned an empty result")
	}
	return out, nil
}
