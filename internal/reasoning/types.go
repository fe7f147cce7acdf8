// Package reasoning defines the shared types of the text-cleanup pipeline:
// the generation options carried with each call, the per-provider handler
// contract, and the failure taxonomy.
package reasoning

import "context"

// GenerationConfig carries per-call tuning options. Cloud providers consume
// temperature and the token budget; the remaining knobs only apply to the
// local backend.
type GenerationConfig struct {
	Temperature   *float64
	MaxTokens     int
	TopK          *int
	TopP          *float64
	RepeatPenalty *float64
	ContextSize   int
	Threads       int

	// CustomDictionary lists terms the model should preserve verbatim.
	CustomDictionary []string
}

// Handler executes one provider-specific completion. Implementations own
// request shaping, transport with retry, and response normalization for
// their provider.
type Handler interface {
	Complete(ctx context.Context, systemPrompt, text string, cfg GenerationConfig) (string, error)
}
