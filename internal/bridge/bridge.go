// Package bridge is the boundary to the out-of-process model manager: the
// secure credential store, local inference, and the Anthropic runner all
// live behind it. The dispatcher treats these as opaque calls returning a
// success/text/error envelope.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oratio-ai/oratio/internal/reasoning/models"
)

// Result is the envelope every bridge call returns.
type Result struct {
	Success bool   `json:"success"`
	Text    string `json:"text,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ReasoningRequest is the payload for the local and Anthropic runners.
type ReasoningRequest struct {
	Text             string   `json:"text"`
	SystemPrompt     string   `json:"systemPrompt"`
	ModelID          string   `json:"modelId"`
	Temperature      *float64 `json:"temperature,omitempty"`
	MaxTokens        int      `json:"maxTokens,omitempty"`
	TopK             *int     `json:"topK,omitempty"`
	TopP             *float64 `json:"topP,omitempty"`
	RepeatPenalty    *float64 `json:"repeatPenalty,omitempty"`
	ContextSize      int      `json:"contextSize,omitempty"`
	Threads          int      `json:"threads,omitempty"`
	CustomDictionary []string `json:"customDictionary,omitempty"`
}

// Bridge is the call surface the reasoning pipeline depends on.
type Bridge interface {
	FetchAPIKey(ctx context.Context, provider models.ProviderID) (string, error)
	RunLocalReasoning(ctx context.Context, req ReasoningRequest) (string, error)
	RunAnthropicReasoning(ctx context.Context, req ReasoningRequest) (string, error)
}

const defaultTimeout = 120 * time.Second

// Client talks JSON over HTTP to the loopback model manager daemon.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a bridge client for the given daemon address.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

// FetchAPIKey asks the daemon's secure store for a provider key.
func (c *Client) FetchAPIKey(ctx context.Context, provider models.ProviderID) (string, error) {
	res, err := c.post(ctx, "/v1/credentials", map[string]string{"provider": string(provider)})
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// RunLocalReasoning runs a prompt through the daemon's local inference engine.
func (c *Client) RunLocalReasoning(ctx context.Context, req ReasoningRequest) (string, error) {
	res, err := c.post(ctx, "/v1/reasoning/local", req)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// RunAnthropicReasoning runs a prompt through the daemon's Anthropic runner.
func (c *Client) RunAnthropicReasoning(ctx context.Context, req ReasoningRequest) (string, error) {
	res, err := c.post(ctx, "/v1/reasoning/anthropic", req)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (*Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bridge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create bridge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bridge request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read bridge response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bridge error %d: %s", resp.StatusCode, string(raw))
	}

	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("failed to decode bridge response: %w", err)
	}
	if !res.Success {
		return nil, fmt.Errorf("bridge call rejected: %s", res.Error)
	}
	return &res, nil
}
