package services

import (
	"context"

	"agentchain/internal/domain/models"
)

// AgentService handles agent catalog business logic. Built-in agents come
// from the embedded catalog and are read-only; custom agents are persisted.
type AgentService interface {
	// CreateAgent creates a new custom agent
	CreateAgent(ctx context.Context, req *CreateAgentRequest) (*models.Agent, error)

	// GetAgent retrieves an agent by ID, built-in or custom
	GetAgent(ctx context.Context, id string) (*models.Agent, error)

	// ListAgents returns built-in agents followed by custom agents
	ListAgents(ctx context.Context) ([]models.Agent, error)

	// UpdateAgent updates a custom agent
	UpdateAgent(ctx context.Context, id string, req *UpdateAgentRequest) (*models.Agent, error)

	// DeleteAgent deletes a custom agent
	DeleteAgent(ctx context.Context, id string) error
}

// CreateAgentRequest is the DTO for creating an agent
type CreateAgentRequest struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Icon         string  `json:"icon"`
	Category     string  `json:"category"`
	Color        string  `json:"color"`
	SystemPrompt string  `json:"system_prompt"`
	Model        string  `json:"model"`
	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"max_tokens"`
}

// UpdateAgentRequest is the DTO for updating an agent. Nil fields are left
// unchanged.
type UpdateAgentRequest struct {
	Name         *string  `json:"name,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Icon         *string  `json:"icon,omitempty"`
	Category     *string  `json:"category,omitempty"`
	Color        *string  `json:"color,omitempty"`
	SystemPrompt *string  `json:"system_prompt,omitempty"`
	Model        *string  `json:"model,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
	MaxTokens    *int     `json:"max_tokens,omitempty"`
}

// ExecutionResult is what an agent run produces: the transformed text and
// the diagnostic log lines accumulated along the way.
type ExecutionResult struct {
	Output string   `json:"output"`
	Logs   []string `json:"logs"`
}

// Executor runs an agent against an input string. The call blocks until the
// round completes or fails; cancellation via ctx surfaces as a failure.
type Executor interface {
	Execute(ctx context.Context, agentID, input string) (*ExecutionResult, error)
}
