package reasoning

import "fmt"

// FailureKind classifies which stage of the pipeline rejected a call.
type FailureKind string

const (
	KindCredentialMissing     FailureKind = "credential_missing"
	KindInvalidEndpointConfig FailureKind = "invalid_endpoint_config"
	KindUnsupportedProvider   FailureKind = "unsupported_provider"
	KindTransportFailure      FailureKind = "transport_failure"
	KindInvalidResponseShape  FailureKind = "invalid_response_shape"
	KindEmptyResponse         FailureKind = "empty_response"
	KindTokenLimitReached     FailureKind = "token_limit_reached"
	KindAlreadyProcessing     FailureKind = "already_processing"
)

// Error is a stage failure surfaced to the caller. No stage failure is fatal
// to the process; every one is caught, logged with context, and returned.
type Error struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a stage failure with a formatted message.
func NewError(kind FailureKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError attaches a stage kind to an underlying error.
func WrapError(kind FailureKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the failure kind from an error chain, or "" when the error
// did not originate in the pipeline.
func KindOf(err error) FailureKind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}
