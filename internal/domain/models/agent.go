package models

import (
	"time"
)

// Agent is a configured text transformer backed by an LLM model. Built-in
// agents ship with the binary (see internal/catalog); custom agents are
// persisted and editable.
type Agent struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Description  string    `json:"description" db:"description"`
	Icon         string    `json:"icon" db:"icon"`
	Category     string    `json:"category" db:"category"`
	Color        string    `json:"color" db:"color"`
	SystemPrompt string    `json:"system_prompt" db:"system_prompt"`
	Model        string    `json:"model" db:"model"`
	Temperature  float64   `json:"temperature" db:"temperature"`
	MaxTokens    int       `json:"max_tokens" db:"max_tokens"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// AgentRef is the display/routing reference carried by conversation nodes.
// No behavior is attached; the executor routes by ID.
type AgentRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Ref returns the node-level reference for this agent.
func (a *Agent) Ref() *AgentRef {
	return &AgentRef{ID: a.ID, Name: a.Name}
}
