package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/oratio-ai/oratio/internal/reasoning"
	"github.com/oratio-ai/oratio/internal/reasoning/endpoint"
)

// GroqHandler serves Groq's OpenAI-compatible chat-completions API. Groq
// only speaks the chat dialect, so there is no probing here, and unlike the
// OpenAI handler an empty completion is a hard error.
type GroqHandler struct {
	options Options
	client  *http.Client
	baseURL string
}

// NewGroqHandler creates a Groq handler.
func NewGroqHandler(options Options) *GroqHandler {
	base := options.BaseURL
	if base == "" {
		base = endpoint.GroqBaseURL
	}
	return &GroqHandler{
		options: options,
		client:  newHTTPClient(options),
		baseURL: base,
	}
}

// Complete implements the Handler interface.
func (h *GroqHandler) Complete(ctx context.Context, systemPrompt, text string, cfg reasoning.GenerationConfig) (string, error) {
	budget := tokenBudget(len(text), cfg.MaxTokens, defaultMinTokens, defaultMaxTokens)
	temp := defaultTemperature
	if cfg.Temperature != nil {
		temp = *cfg.Temperature
	}

	request := chatRequest{
		Model: h.options.ModelID,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		Temperature: &temp,
		MaxTokens:   &budget,
	}
	if h.options.DisableThinking {
		request.ReasoningEffort = "minimal"
	}

	body, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	return withRetry(ctx, h.options.Retry, func() (string, error) {
		return h.send(ctx, body, text)
	})
}

func (h *GroqHandler) send(ctx context.Context, body []byte, originalText string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", h.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.options.APIKey)

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &HTTPStatusError{StatusCode: resp.StatusCode, Message: parseAPIError(raw)}
	}

	return normalizeChat(raw, originalText, false)
}
