package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oratio-ai/oratio/internal/reasoning/models"
)

func TestClientFetchAPIKey(t *testing.T) {
	var gotPath string
	var gotPayload map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(Result{Success: true, Text: "sk-secret"})
	}))
	defer server.Close()

	c := NewClient(server.URL)
	key, err := c.FetchAPIKey(context.Background(), models.ProviderOpenAI)
	require.NoError(t, err)
	require.Equal(t, "sk-secret", key)
	require.Equal(t, "/v1/credentials", gotPath)
	require.Equal(t, "openai", gotPayload["provider"])
}

func TestClientRunLocalReasoning(t *testing.T) {
	var gotReq ReasoningRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/reasoning/local", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(Result{Success: true, Text: "cleaned up"})
	}))
	defer server.Close()

	c := NewClient(server.URL)
	out, err := c.RunLocalReasoning(context.Background(), ReasoningRequest{
		Text:         "raw",
		SystemPrompt: "sys",
		ModelID:      "qwen2.5-7b-instruct",
	})
	require.NoError(t, err)
	require.Equal(t, "cleaned up", out)
	require.Equal(t, "raw", gotReq.Text)
	require.Equal(t, "qwen2.5-7b-instruct", gotReq.ModelID)
}

func TestClientRejectedEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Result{Success: false, Error: "model not loaded"})
	}))
	defer server.Close()

	c := NewClient(server.URL)
	_, err := c.RunAnthropicReasoning(context.Background(), ReasoningRequest{Text: "x"})
	require.ErrorContains(t, err, "model not loaded")
}

func TestClientHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "daemon restarting", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient(server.URL)
	_, err := c.FetchAPIKey(context.Background(), models.ProviderGemini)
	require.ErrorContains(t, err, "bridge error 503")
}
