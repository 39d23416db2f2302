package domain

import (
	"errors"
	"fmt"
	"strings"
)

// FailureKind tags a completion failure with its cause so callers can branch
// on semantics instead of matching message text.
type FailureKind string

const (
	// FailureMissingCredential: a credential-requiring provider was attempted
	// with no resolvable secret. Raised before any network I/O happens.
	FailureMissingCredential FailureKind = "missing_credential"
	// FailureProviderUnavailable: the backend was unreachable or answered
	// with a non-success status. Expected for local inference when the
	// server is not running.
	FailureProviderUnavailable FailureKind = "provider_unavailable"
	// FailureToolNotInstalled: a CLI-backed provider's executable is absent.
	FailureToolNotInstalled FailureKind = "tool_not_installed"
	// FailureMalformedResponse: the backend answered successfully but the
	// expected content field was missing or unparseable.
	FailureMalformedResponse FailureKind = "malformed_response"
	// FailureTimeout: the attempt exceeded its deadline.
	FailureTimeout FailureKind = "timeout"
	// FailureRemoteStore: network/HTTP/parse failure against the remote
	// credential document store.
	FailureRemoteStore FailureKind = "remote_store"
	// FailureDecryption: AEAD authentication failed or the ciphertext blob
	// was malformed.
	FailureDecryption FailureKind = "decryption_failed"
)

// CompletionError is a tagged failure from one provider attempt. The message
// never contains credential material.
type CompletionError struct {
	Kind     FailureKind
	Provider Provider
	Message  string
	Err      error
}

func (e *CompletionError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s: %s", e.Provider.Label(), e.Message)
	}
	return e.Message
}

func (e *CompletionError) Unwrap() error { return e.Err }

// NewCompletionError builds a tagged failure for one provider attempt.
func NewCompletionError(kind FailureKind, provider Provider, message string, err error) *CompletionError {
	return &CompletionError{Kind: kind, Provider: provider, Message: message, Err: err}
}

// KindOf extracts the failure kind from err, or "" when err carries none.
func KindOf(err error) FailureKind {
	var ce *CompletionError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// AggregateError is returned by the orchestrator only when every attempt in
// the fallback chain failed. Attempts preserves chain order.
type AggregateError struct {
	Attempts []*CompletionError
}

func (e *AggregateError) Error() string {
	last := "unknown error"
	if n := len(e.Attempts); n > 0 {
		last = e.Attempts[n-1].Error()
	}
	return fmt.Sprintf("all providers failed; check your API keys in settings (last error: %s)", last)
}

// Detail renders the full per-provider failure list for diagnostics.
func (e *AggregateError) Detail() string {
	lines := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		lines = append(lines, fmt.Sprintf("- [%s] %s", a.Kind, a.Error()))
	}
	return strings.Join(lines, "\n")
}
