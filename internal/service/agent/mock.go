package agent

import (
	"context"
	"fmt"
	"strings"
)

// MockProvider is a deterministic local provider for development and tests.
// It serves any model prefixed "mock-" and needs no API key.
type MockProvider struct{}

// NewMockProvider creates the mock provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// Name returns the provider name.
func (p *MockProvider) Name() string { return "mock" }

// SupportsModel returns true for models prefixed "mock-".
func (p *MockProvider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "mock-")
}

// Complete echoes a summary of the request, deterministically.
func (p *MockProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !p.SupportsModel(req.Model) {
		return nil, fmt.Errorf("model %q is not served by the mock provider", req.Model)
	}

	words := len(strings.Fields(req.Message))
	output := fmt.Sprintf("Processed %d words with %s.\n\n%s", words, req.Model, req.Message)
	return &CompletionResponse{Output: output, Model: req.Model}, nil
}
