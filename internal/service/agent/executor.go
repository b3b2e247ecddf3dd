package agent

import (
	"context"
	"fmt"
	"log/slog"

	"agentchain/internal/domain/services"
)

// executor routes an agent id + input to the provider serving the agent's
// configured model.
type executor struct {
	agents    services.AgentService
	providers []Provider
	logger    *slog.Logger
}

// NewExecutor creates an agent executor over the given providers. Providers
// are consulted in order; the first one claiming the model wins.
func NewExecutor(agents services.AgentService, providers []Provider, logger *slog.Logger) services.Executor {
	return &executor{
		agents:    agents,
		providers: providers,
		logger:    logger,
	}
}

// Execute resolves the agent, folds its system prompt into the user message
// and runs the completion. The returned logs describe the round for the
// marker node.
func (e *executor) Execute(ctx context.Context, agentID, input string) (*services.ExecutionResult, error) {
	agent, err := e.agents.GetAgent(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("resolve agent %s: %w", agentID, err)
	}

	provider := e.providerFor(agent.Model)
	if provider == nil {
		return nil, fmt.Errorf("no provider serves model %q", agent.Model)
	}

	e.logger.Debug("dispatching agent execution",
		"agent_id", agent.ID,
		"model", agent.Model,
		"provider", provider.Name(),
	)

	resp, err := provider.Complete(ctx, &CompletionRequest{
		Model:       agent.Model,
		Message:     combineMessage(agent.SystemPrompt, input),
		Temperature: agent.Temperature,
		MaxTokens:   agent.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", agent.ID, err)
	}

	return &services.ExecutionResult{
		Output: resp.Output,
		Logs: []string{
			"Starting " + agent.Name + "...",
			"Sending request to " + provider.Name() + " (" + agent.Model + ")...",
			"Processing response...",
			"Execution completed",
		},
	}, nil
}

func (e *executor) providerFor(model string) Provider {
	for _, p := range e.providers {
		if p.SupportsModel(model) {
			return p
		}
	}
	return nil
}

// combineMessage folds the system prompt into the user message instead of
// using a system role, which keeps compatibility with endpoints that ignore
// or reject system messages.
func combineMessage(systemPrompt, input string) string {
	if systemPrompt == "" {
		return input
	}
	return "Instructions:\n" + systemPrompt + "\n\n---\n\nUser Input:\n" + input
}
