package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies provider failures. Every backend normalizes its
// transport- and API-specific failures into exactly one of these; no
// backend error type reaches the orchestrator.
type Kind int

const (
	// KindAuth is a bad or missing API key. Never retried.
	KindAuth Kind = iota
	// KindRateLimited is a provider 429. Retried with backoff.
	KindRateLimited
	// KindTimeout is a request or helper round-trip timeout. Retried.
	KindTimeout
	// KindMalformed is an unparseable or otherwise unusable provider
	// response. Never retried.
	KindMalformed
	// KindHelperCrash is a tool-backend helper subprocess failure.
	// Never retried.
	KindHelperCrash
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "authentication error"
	case KindRateLimited:
		return "rate limited"
	case KindTimeout:
		return "timeout"
	case KindMalformed:
		return "malformed response"
	case KindHelperCrash:
		return "helper process failure"
	}
	return "unknown failure"
}

// Error is the uniform failure type returned by every backend.
type Error struct {
	Kind     Kind
	Provider string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether err is a transient provider failure worth
// another attempt.
func Retryable(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind == KindRateLimited || pe.Kind == KindTimeout
	}
	return false
}

// wrapTransport classifies an HTTP client error (as opposed to an HTTP
// status) into the failure taxonomy.
func wrapTransport(provider string, err error) *Error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Provider: provider, Err: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &Error{Kind: KindTimeout, Provider: provider, Err: err}
	default:
		return &Error{Kind: KindMalformed, Provider: provider, Message: "network failure", Err: err}
	}
}
