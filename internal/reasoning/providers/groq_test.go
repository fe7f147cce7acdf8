package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oratio-ai/oratio/internal/reasoning"
)

func TestGroqHandler_Complete(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(chatCompletionBody("tidy text")))
	}))
	defer server.Close()

	h := NewGroqHandler(Options{
		APIKey:  "gq-test",
		ModelID: "llama-3.3-70b-versatile",
		BaseURL: server.URL,
		Retry:   fastRetryPolicy(),
	})
	out, err := h.Complete(context.Background(), "sys", "raw dictation", reasoning.GenerationConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "tidy text" {
		t.Errorf("got %q", out)
	}
	if gotPath != "/chat/completions" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer gq-test" {
		t.Errorf("auth = %q", gotAuth)
	}
	if gotReq.Temperature == nil {
		t.Error("temperature should always be set for Groq")
	}
	if gotReq.MaxTokens == nil || *gotReq.MaxTokens != defaultMinTokens {
		t.Errorf("short input should clamp max_tokens to %d, got %v", defaultMinTokens, gotReq.MaxTokens)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Role != "user" {
		t.Errorf("unexpected messages: %+v", gotReq.Messages)
	}
	if gotReq.ReasoningEffort != "" {
		t.Errorf("reasoning_effort should be absent by default, got %q", gotReq.ReasoningEffort)
	}
}

func TestGroqHandler_DisableThinkingSetsReasoningEffort(t *testing.T) {
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(chatCompletionBody("ok")))
	}))
	defer server.Close()

	h := NewGroqHandler(Options{
		APIKey:          "gq-test",
		ModelID:         "deepseek-r1-distill-llama-70b",
		BaseURL:         server.URL,
		DisableThinking: true,
		Retry:           fastRetryPolicy(),
	})
	if _, err := h.Complete(context.Background(), "sys", "text", reasoning.GenerationConfig{}); err != nil {
		t.Fatal(err)
	}
	if gotReq.ReasoningEffort != "minimal" {
		t.Errorf("reasoning_effort = %q", gotReq.ReasoningEffort)
	}
}

func TestGroqHandler_EmptyCompletionIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatCompletionBody("")))
	}))
	defer server.Close()

	h := NewGroqHandler(Options{
		APIKey:  "gq-test",
		ModelID: "llama-3.1-8b-instant",
		BaseURL: server.URL,
		Retry:   fastRetryPolicy(),
	})
	// Unlike the OpenAI handler, Groq does not echo the input back.
	_, err := h.Complete(context.Background(), "sys", "original input", reasoning.GenerationConfig{})
	if reasoning.KindOf(err) != reasoning.KindEmptyResponse {
		t.Errorf("expected empty-response kind, got %v", err)
	}
}
