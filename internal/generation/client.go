// Package generation wraps the external text-generation capability consumed
// by the retrieval orchestrator. The model's internal behavior is out of
// scope; this package only defines the call shape and provider clients.
package generation

import "context"

// Request is one generation call.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
}

// Client generates text from a system/user prompt pair. May fail or time
// out; the orchestrator degrades to a fallback response, never a crash.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}
