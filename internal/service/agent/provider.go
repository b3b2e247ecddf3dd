package agent

import (
	"context"
)

// CompletionRequest is a single-turn completion against a configured model.
// The system prompt is folded into the user message upstream, so providers
// only ever see one user message.
type CompletionRequest struct {
	Model       string
	Message     string
	Temperature float64
	MaxTokens   int
}

// CompletionResponse carries the generated text.
type CompletionResponse struct {
	Output string
	Model  string
}

// Provider generates completions for the models it supports.
type Provider interface {
	// Complete generates a response. Blocks until done or ctx is cancelled.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name (e.g. "openai", "mock")
	Name() string

	// SupportsModel returns true if the provider serves the given model
	SupportsModel(model string) bool
}
