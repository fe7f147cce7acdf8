// Package endpoint computes provider base URLs and the candidate request
// dialects for OpenAI-compatible endpoints, remembering which dialect an
// endpoint accepted so later calls skip the probe.
package endpoint

import (
	"net"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/oratio-ai/oratio/internal/reasoning/models"
	"github.com/oratio-ai/oratio/internal/settings"
)

// Dialect is one of the two request/response shapes an OpenAI-compatible
// endpoint may implement.
type Dialect string

const (
	DialectResponses Dialect = "responses"
	DialectChat      Dialect = "chat"
)

// Candidate pairs a full request URL with the dialect it speaks.
type Candidate struct {
	URL     string
	Dialect Dialect
}

// Default provider bases.
const (
	OpenAIBaseURL = "https://api.openai.com/v1"
	GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	GroqBaseURL   = "https://api.groq.com/openai/v1"
)

// blockedHosts are vendor domains that do not speak the OpenAI dialects; a
// custom base pointing at one of them would misroute every request.
var blockedHosts = []string{
	"api.anthropic.com",
	"generativelanguage.googleapis.com",
	"aiplatform.googleapis.com",
	"api.cohere.ai",
	"api.cohere.com",
}

// Resolver resolves base URLs and dialect candidates. The dialect
// preference map persists through the settings store keyed by normalized
// base URL.
type Resolver struct {
	store settings.Store
}

// NewResolver creates a resolver over the given settings store.
func NewResolver(store settings.Store) *Resolver {
	return &Resolver{store: store}
}

// ResolveBase returns the base URL for a provider. The custom provider may
// carry a user override, which falls back to the OpenAI default when blank,
// pointed at a known non-OpenAI vendor, or insecure.
func (r *Resolver) ResolveBase(provider models.ProviderID) string {
	switch provider {
	case models.ProviderGemini:
		return GeminiBaseURL
	case models.ProviderGroq:
		return GroqBaseURL
	case models.ProviderCustom:
		return r.customBase()
	default:
		return OpenAIBaseURL
	}
}

func (r *Resolver) customBase() string {
	raw := strings.TrimSpace(r.store.GetString(settings.KeyCustomBaseURL))
	if raw == "" {
		return OpenAIBaseURL
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		log.Warn("custom endpoint URL is not parseable, using default", "url", raw)
		return OpenAIBaseURL
	}

	host := strings.ToLower(u.Hostname())
	for _, blocked := range blockedHosts {
		if host == blocked {
			log.Warn("custom endpoint points at a non-OpenAI-compatible vendor, using default", "host", host)
			return OpenAIBaseURL
		}
	}

	switch u.Scheme {
	case "https":
	case "http":
		if !isLocalHost(host) {
			log.Warn("custom endpoint uses plain HTTP on a non-local host, using default", "host", host)
			return OpenAIBaseURL
		}
	default:
		log.Warn("custom endpoint has unsupported scheme, using default", "scheme", u.Scheme)
		return OpenAIBaseURL
	}

	return strings.TrimRight(raw, "/")
}

// isLocalHost reports whether plain HTTP is acceptable for the host.
func isLocalHost(host string) bool {
	if host == "localhost" || strings.HasSuffix(host, ".local") {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback() || ip.IsPrivate()
	}
	return false
}

// Candidates returns the ordered request candidates for an OpenAI-compatible
// base. A base that already names a dialect path yields that single
// candidate; a remembered preference yields its single candidate; otherwise
// both dialects are returned, responses first, so the transport can probe
// and fall back.
func (r *Resolver) Candidates(base string) []Candidate {
	base = strings.TrimRight(base, "/")

	if strings.HasSuffix(base, "/responses") {
		return []Candidate{{URL: base, Dialect: DialectResponses}}
	}
	if strings.HasSuffix(base, "/chat/completions") {
		return []Candidate{{URL: base, Dialect: DialectChat}}
	}

	switch Dialect(r.preferences()[prefKey(base)]) {
	case DialectResponses:
		return []Candidate{{URL: base + "/responses", Dialect: DialectResponses}}
	case DialectChat:
		return []Candidate{{URL: base + "/chat/completions", Dialect: DialectChat}}
	}

	return []Candidate{
		{URL: base + "/responses", Dialect: DialectResponses},
		{URL: base + "/chat/completions", Dialect: DialectChat},
	}
}

// RememberDialect persists the dialect an endpoint accepted. A write failure
// only costs a future probe, so it is logged and otherwise ignored.
func (r *Resolver) RememberDialect(base string, dialect Dialect) {
	prefs := r.preferences()
	key := prefKey(strings.TrimRight(base, "/"))
	if prefs[key] == string(dialect) {
		return
	}
	prefs[key] = string(dialect)
	if err := r.store.SetStringMap(settings.KeyEndpointDialects, prefs); err != nil {
		log.Debug("failed to persist endpoint dialect preference", "base", base, "error", err)
	}
}

func (r *Resolver) preferences() map[string]string {
	prefs := r.store.GetStringMap(settings.KeyEndpointDialects)
	if prefs == nil {
		prefs = make(map[string]string)
	}
	return prefs
}

func prefKey(base string) string {
	return strings.ToLower(base)
}
