package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/oratio-ai/oratio/internal/reasoning"
)

// HTTPStatusError is a non-2xx provider response. It stays retryable or not
// based on the status code; the caller decides via isRetryableStatus.
type HTTPStatusError struct {
	StatusCode int
	Message    string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// parseAPIError extracts a human-readable message from a provider error
// body, preferring the structured {"error":{"message":...}} shape and
// falling back to the raw text.
func parseAPIError(body []byte) string {
	var structured struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &structured); err == nil && structured.Error.Message != "" {
		return structured.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = "no error detail"
	}
	return msg
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// RetryPolicy bounds the transport retry loop. The same policy applies
// uniformly across providers.
type RetryPolicy struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy matches the upstream behavior: three attempts with
// exponential backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxTries:        3,
		InitialInterval: time.Second,
		MaxInterval:     10 * time.Second,
	}
}

// withRetry runs op under the policy. Transient failures (network errors,
// retryable statuses) are retried with backoff; anything classified
// non-retryable stops immediately. The last error is surfaced as a
// transport failure unless it already carries a pipeline kind.
func withRetry(ctx context.Context, policy RetryPolicy, op func() (string, error)) (string, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = policy.InitialInterval
	b.MaxInterval = policy.MaxInterval

	attempt := func() (string, error) {
		out, err := op()
		if err == nil {
			return out, nil
		}
		if reasoning.KindOf(err) != "" {
			// Already classified by a stage; never worth retrying.
			return "", backoff.Permanent(err)
		}
		if statusErr, ok := err.(*HTTPStatusError); ok && !isRetryableStatus(statusErr.StatusCode) {
			return "", backoff.Permanent(err)
		}
		return "", err
	}

	out, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(policy.MaxTries),
	)
	if err != nil {
		if reasoning.KindOf(err) != "" {
			return "", err
		}
		return "", reasoning.WrapError(reasoning.KindTransportFailure, err, "request failed")
	}
	return out, nil
}
