package endpoint

import (
	"testing"

	"github.com/oratio-ai/oratio/internal/reasoning/models"
	"github.com/oratio-ai/oratio/internal/settings"
)

func TestResolveBase_FixedProviders(t *testing.T) {
	r := NewResolver(settings.NewMemory())

	if got := r.ResolveBase(models.ProviderGemini); got != GeminiBaseURL {
		t.Errorf("gemini base = %q", got)
	}
	if got := r.ResolveBase(models.ProviderGroq); got != GroqBaseURL {
		t.Errorf("groq base = %q", got)
	}
	if got := r.ResolveBase(models.ProviderOpenAI); got != OpenAIBaseURL {
		t.Errorf("openai base = %q", got)
	}
}

func TestResolveBase_CustomValidation(t *testing.T) {
	tests := []struct {
		name     string
		override string
		want     string
	}{
		{"blank falls back", "", OpenAIBaseURL},
		{"whitespace falls back", "   ", OpenAIBaseURL},
		{"anthropic is blocked", "https://api.anthropic.com/v1", OpenAIBaseURL},
		{"google is blocked", "https://generativelanguage.googleapis.com/v1beta", OpenAIBaseURL},
		{"plain http non-local rejected", "http://inference.example.com/v1", OpenAIBaseURL},
		{"plain http localhost allowed", "http://localhost:8080/v1", "http://localhost:8080/v1"},
		{"plain http loopback allowed", "http://127.0.0.1:1234/v1", "http://127.0.0.1:1234/v1"},
		{"plain http private allowed", "http://192.168.1.20:8080/v1", "http://192.168.1.20:8080/v1"},
		{"https third party allowed", "https://openrouter.ai/api/v1", "https://openrouter.ai/api/v1"},
		{"trailing slash trimmed", "https://my-proxy.dev/v1/", "https://my-proxy.dev/v1"},
		{"garbage falls back", "not a url", OpenAIBaseURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := settings.NewMemory()
			if err := st.SetString(settings.KeyCustomBaseURL, tt.override); err != nil {
				t.Fatal(err)
			}
			r := NewResolver(st)
			if got := r.ResolveBase(models.ProviderCustom); got != tt.want {
				t.Errorf("ResolveBase(custom) with %q = %q, want %q", tt.override, got, tt.want)
			}
		})
	}
}

func TestCandidates_ProbeOrder(t *testing.T) {
	r := NewResolver(settings.NewMemory())

	got := r.Candidates("https://api.openai.com/v1")
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].Dialect != DialectResponses || got[0].URL != "https://api.openai.com/v1/responses" {
		t.Errorf("first candidate = %+v", got[0])
	}
	if got[1].Dialect != DialectChat || got[1].URL != "https://api.openai.com/v1/chat/completions" {
		t.Errorf("second candidate = %+v", got[1])
	}
}

func TestCandidates_ExplicitPathSuffix(t *testing.T) {
	r := NewResolver(settings.NewMemory())

	got := r.Candidates("https://proxy.dev/v1/chat/completions")
	if len(got) != 1 || got[0].Dialect != DialectChat {
		t.Fatalf("explicit chat path should yield one chat candidate, got %+v", got)
	}

	got = r.Candidates("https://proxy.dev/v1/responses/")
	if len(got) != 1 || got[0].Dialect != DialectResponses {
		t.Fatalf("explicit responses path should yield one responses candidate, got %+v", got)
	}
}

func TestCandidates_RememberedPreference(t *testing.T) {
	st := settings.NewMemory()
	r := NewResolver(st)
	base := "https://proxy.dev/v1"

	r.RememberDialect(base, DialectChat)

	got := r.Candidates(base)
	if len(got) != 1 {
		t.Fatalf("remembered preference should yield one candidate, got %d", len(got))
	}
	if got[0].Dialect != DialectChat || got[0].URL != base+"/chat/completions" {
		t.Errorf("candidate = %+v", got[0])
	}

	// A fresh resolver over the same store sees the persisted preference.
	got = NewResolver(st).Candidates(base)
	if len(got) != 1 || got[0].Dialect != DialectChat {
		t.Errorf("preference did not persist: %+v", got)
	}
}

func TestRememberDialect_WriteFailureIsIgnored(t *testing.T) {
	st := settings.NewMemory()
	st.FailWrites = true
	r := NewResolver(st)

	// Losing the preference only costs a future probe.
	r.RememberDialect("https://proxy.dev/v1", DialectChat)

	if got := r.Candidates("https://proxy.dev/v1"); len(got) != 2 {
		t.Errorf("unpersisted preference should leave both candidates, got %d", len(got))
	}
}
