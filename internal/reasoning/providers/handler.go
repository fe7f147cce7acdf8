// Package providers implements the per-provider reasoning handlers: request
// shaping, transport with retry, and normalization of each provider's
// response schema into plain text.
package providers

import (
	"net/http"
	"time"
)

// Options configures a provider handler.
type Options struct {
	APIKey  string
	ModelID string
	BaseURL string

	// DisableThinking marks models whose extended reasoning should be
	// suppressed via the reasoning-effort request field.
	DisableThinking bool

	RequestTimeoutMs int
	Retry            RetryPolicy
}

const defaultRequestTimeout = 60 * time.Second

func newHTTPClient(options Options) *http.Client {
	timeout := defaultRequestTimeout
	if options.RequestTimeoutMs > 0 {
		timeout = time.Duration(options.RequestTimeoutMs) * time.Millisecond
	}
	return &http.Client{Timeout: timeout}
}
