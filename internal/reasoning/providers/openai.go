package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/oratio-ai/oratio/internal/reasoning"
	"github.com/oratio-ai/oratio/internal/reasoning/endpoint"
)

// OpenAIHandler serves OpenAI and OpenAI-compatible custom endpoints. It
// probes between the "responses" and "chat completions" dialects when the
// endpoint has not revealed which one it speaks.
type OpenAIHandler struct {
	options   Options
	client    *http.Client
	endpoints *endpoint.Resolver
	base      string
}

// NewOpenAIHandler creates a handler for the given base URL; a blank base
// means the official OpenAI API.
func NewOpenAIHandler(options Options, endpoints *endpoint.Resolver) *OpenAIHandler {
	base := options.BaseURL
	if base == "" {
		base = endpoint.OpenAIBaseURL
	}
	return &OpenAIHandler{
		options:   options,
		client:    newHTTPClient(options),
		endpoints: endpoints,
		base:      base,
	}
}

// chatMessage is a role-tagged message shared by both OpenAI dialects.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the chat-completions request body.
type chatRequest struct {
	Model           string        `json:"model"`
	Messages        []chatMessage `json:"messages"`
	Temperature     *float64      `json:"temperature,omitempty"`
	MaxTokens       *int          `json:"max_tokens,omitempty"`
	ReasoningEffort string        `json:"reasoning_effort,omitempty"`
}

// responsesRequest is the modern "responses" dialect request body.
type responsesRequest struct {
	Model string        `json:"model"`
	Input []chatMessage `json:"input"`
	Store bool          `json:"store"`
}

// chatResponse covers the chat-completions response shape, including the
// legacy text-completion field some compatible servers still emit.
type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message *chatResponseMessage `json:"message"`
	Text    string               `json:"text"`
}

type chatResponseMessage struct {
	Content json.RawMessage `json:"content"`
}

type responsesResponse struct {
	Output []responsesOutputItem `json:"output"`
}

type responsesOutputItem struct {
	Type    string                   `json:"type"`
	Content []responsesContentBlock `json:"content"`
}

type responsesContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

const defaultTemperature = 0.3

// Complete implements the Handler interface.
func (h *OpenAIHandler) Complete(ctx context.Context, systemPrompt, text string, cfg reasoning.GenerationConfig) (string, error) {
	return withRetry(ctx, h.options.Retry, func() (string, error) {
		return h.attemptCandidates(ctx, systemPrompt, text, cfg)
	})
}

// attemptCandidates walks the dialect candidates in order. A 404/405 from
// the responses dialect means the endpoint does not implement it; that is a
// probe result, not a failure, so the next candidate is tried and the
// working dialect recorded for future calls. A remembered responses
// preference that has gone stale re-opens the probe the same way.
func (h *OpenAIHandler) attemptCandidates(ctx context.Context, systemPrompt, text string, cfg reasoning.GenerationConfig) (string, error) {
	candidates := h.endpoints.Candidates(h.base)
	probing := len(candidates) > 1

	for i := 0; i < len(candidates); i++ {
		c := candidates[i]
		body, err := h.buildRequest(c.Dialect, systemPrompt, text, cfg)
		if err != nil {
			return "", fmt.Errorf("failed to marshal request: %w", err)
		}

		status, raw, err := h.send(ctx, c.URL, body)
		if err != nil {
			return "", err
		}

		if c.Dialect == endpoint.DialectResponses && (status == http.StatusNotFound || status == http.StatusMethodNotAllowed) {
			log.Debug("responses dialect unsupported, falling back", "base", h.base, "status", status)
			if !probing && !strings.HasSuffix(strings.TrimRight(h.base, "/"), "/responses") {
				// The remembered preference no longer holds; try the chat
				// candidate and record whichever dialect works now.
				candidates = append(candidates, endpoint.Candidate{
					URL:     strings.TrimRight(h.base, "/") + "/chat/completions",
					Dialect: endpoint.DialectChat,
				})
				probing = true
			}
			continue
		}
		if status < 200 || status >= 300 {
			return "", &HTTPStatusError{StatusCode: status, Message: parseAPIError(raw)}
		}

		var out string
		switch c.Dialect {
		case endpoint.DialectResponses:
			out, err = normalizeResponses(raw, text)
		default:
			out, err = normalizeChat(raw, text, true)
		}
		if err != nil {
			return "", err
		}

		if probing {
			h.endpoints.RememberDialect(h.base, c.Dialect)
		}
		return out, nil
	}

	return "", reasoning.NewError(reasoning.KindTransportFailure,
		"endpoint %s accepted neither dialect", h.base)
}

func (h *OpenAIHandler) buildRequest(dialect endpoint.Dialect, systemPrompt, text string, cfg reasoning.GenerationConfig) ([]byte, error) {
	messages := []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: text},
	}

	if dialect == endpoint.DialectResponses {
		return json.Marshal(responsesRequest{
			Model: h.options.ModelID,
			Input: messages,
			Store: false,
		})
	}

	budget := tokenBudget(len(text), cfg.MaxTokens, defaultMinTokens, defaultMaxTokens)
	req := chatRequest{
		Model:     h.options.ModelID,
		Messages:  messages,
		MaxTokens: &budget,
	}

	// Newer model generations fix their sampling server-side; only the
	// GPT-3/4 era still accepts a temperature here.
	if hasLegacyTemperature(h.options.ModelID) {
		temp := defaultTemperature
		if cfg.Temperature != nil {
			temp = *cfg.Temperature
		}
		req.Temperature = &temp
	}

	if h.options.DisableThinking {
		req.ReasoningEffort = "minimal"
	}

	return json.Marshal(req)
}

func hasLegacyTemperature(modelID string) bool {
	id := strings.ToLower(modelID)
	return strings.HasPrefix(id, "gpt-3") || strings.HasPrefix(id, "gpt-4")
}

func (h *OpenAIHandler) send(ctx context.Context, url string, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.options.APIKey)

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}

// normalizeResponses extracts text from the responses-dialect shape. A
// structurally valid but textually empty result echoes the original input
// unchanged: blanking dictated text on a model hiccup is worse than leaving
// it as spoken.
func normalizeResponses(raw []byte, originalText string) (string, error) {
	var resp responsesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", reasoning.WrapError(reasoning.KindInvalidResponseShape, err,
			"failed to decode responses payload")
	}
	if resp.Output == nil {
		return "", reasoning.NewError(reasoning.KindInvalidResponseShape,
			"responses payload has no output container")
	}

	var sb strings.Builder
	for _, item := range resp.Output {
		if item.Type != "" && item.Type != "message" {
			continue
		}
		for _, block := range item.Content {
			if block.Type != "" && block.Type != "output_text" {
				continue
			}
			sb.WriteString(block.Text)
		}
	}

	if strings.TrimSpace(sb.String()) == "" {
		return originalText, nil
	}
	return sb.String(), nil
}

// normalizeChat extracts text from a chat-completions response, probing the
// message content as a string, then as an array of text parts, then the
// legacy choice-level text field, accepting the first non-blank value.
func normalizeChat(raw []byte, originalText string, echoOnEmpty bool) (string, error) {
	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", reasoning.WrapError(reasoning.KindInvalidResponseShape, err,
			"failed to decode chat completion payload")
	}
	if len(resp.Choices) == 0 {
		return "", reasoning.NewError(reasoning.KindInvalidResponseShape,
			"chat completion payload has no choices")
	}

	choice := resp.Choices[0]

	if choice.Message != nil && len(choice.Message.Content) > 0 {
		var asString string
		if err := json.Unmarshal(choice.Message.Content, &asString); err == nil {
			if strings.TrimSpace(asString) != "" {
				return asString, nil
			}
		}

		var asParts []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}
		if err := json.Unmarshal(choice.Message.Content, &asParts); err == nil {
			var sb strings.Builder
			for _, part := range asParts {
				sb.WriteString(part.Text)
			}
			if strings.TrimSpace(sb.String()) != "" {
				return sb.String(), nil
			}
		}
	}

	if strings.TrimSpace(choice.Text) != "" {
		return choice.Text, nil
	}

	if echoOnEmpty {
		return originalText, nil
	}
	return "", reasoning.NewError(reasoning.KindEmptyResponse,
		"model returned an empty completion")
}
