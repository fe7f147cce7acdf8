package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/oratio-ai/oratio/internal/reasoning"
	"github.com/oratio-ai/oratio/internal/reasoning/endpoint"
)

// GeminiHandler serves Google's generateContent API.
type GeminiHandler struct {
	options Options
	client  *http.Client
	baseURL string
}

// NewGeminiHandler creates a Gemini handler.
func NewGeminiHandler(options Options) *GeminiHandler {
	base := options.BaseURL
	if base == "" {
		base = endpoint.GeminiBaseURL
	}
	return &GeminiHandler{
		options: options,
		client:  newHTTPClient(options),
		baseURL: base,
	}
}

// geminiRequest is the generateContent request body. System and user text
// are concatenated into a single part; Gemini's role separation buys
// nothing for one-shot cleanup and older models reject systemInstruction.
type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content      *geminiContent `json:"content,omitempty"`
	FinishReason string         `json:"finishReason,omitempty"`
}

// Complete implements the Handler interface.
func (h *GeminiHandler) Complete(ctx context.Context, systemPrompt, text string, cfg reasoning.GenerationConfig) (string, error) {
	temp := defaultTemperature
	if cfg.Temperature != nil {
		temp = *cfg.Temperature
	}

	request := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: systemPrompt + "\n\n" + text}}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     temp,
			MaxOutputTokens: tokenBudget(len(text), cfg.MaxTokens, geminiMinTokens, geminiMaxTokens),
		},
	}

	body, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	return withRetry(ctx, h.options.Retry, func() (string, error) {
		return h.generate(ctx, body)
	})
}

func (h *GeminiHandler) generate(ctx context.Context, body []byte) (string, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent", h.baseURL, h.options.ModelID)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.URL.RawQuery = "key=" + h.options.APIKey

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

	return normalizeGemini(raw)
}

// normalizeGemini extracts the candidate text. A candidate that stopped on
// MAX_TOKENS before producing any text gets its own actionable error,
// distinct from a generic empty response.
func normalizeGemini(raw []byte) (string, error) {
	var resp geminiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", reasoning.WrapError(reasoning.KindInvalidResponseShape, err,
			"failed to decode Gemini payload")
	}
	if len(resp.Candidates) == 0 {
		return "", reasoning.NewError(reasoning.KindInvalidResponseShape,
			"Gemini payload has no candidates")
	}

	candidate := resp.Candidates[0]

	var sb strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
	}

	if strings.TrimSpace(sb.String()) == "" {
		if candidate.FinishReason == "MAX_TOKENS" {
			return "", reasoning.NewError(reasoning.KindTokenLimitReached,
				"Gemini hit the output token limit before producing text; raise the token budget or shorten the input")
		}
		return "", reasoning.NewError(reasoning.KindEmptyResponse,
			"Gemini returned an empty candidate")
	}
	return sb.String(), nil
}
