// Package llm holds the upstream model providers the relay forwards prompts
// to. Every provider answers with the concatenated text of the reply plus
// whatever usage and web-search metadata the vendor exposes.
package llm

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential means the provider was configured without a key.
	ErrMissingCredential = errors.New("llm: API key is required")
	// ErrMalformedResponse means the upstream answered 2xx with a body that
	// could not be decoded.
	ErrMalformedResponse = errors.New("llm: malformed upstream response")
)

// UpstreamError carries a non-2xx status from the model provider.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("llm: upstream status %d: %s", e.Status, e.Body)
}

// RateLimited reports whether the provider throttled the request.
func (e *UpstreamError) RateLimited() bool {
	return e.Status == 429
}

// Completion is the reshaped reply of one prompt.
type Completion struct {
	Text        string
	StopReason  string
	Usage       map[string]any
	SearchCount int
}

// Provider sends a single user prompt upstream.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (*Completion, error)
}
