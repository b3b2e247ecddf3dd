// Package catalog ships the built-in agent definitions embedded in the
// binary. Built-in agents are read-only; users extend the set through the
// persisted agent store.
package catalog

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"agentchain/internal/domain/models"
)

//go:embed config/*.yaml
var configFiles embed.FS

type catalogFile struct {
	Agents []builtinAgent `yaml:"agents"`
}

// builtinAgent mirrors models.Agent with YAML field names.
type builtinAgent struct {
	ID           string  `yaml:"id"`
	Name         string  `yaml:"name"`
	Description  string  `yaml:"description"`
	Icon         string  `yaml:"icon"`
	Category     string  `yaml:"category"`
	Color        string  `yaml:"color"`
	SystemPrompt string  `yaml:"system_prompt"`
	Model        string  `yaml:"model"`
	Temperature  float64 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens"`
}

func (b builtinAgent) toModel() models.Agent {
	return models.Agent{
		ID:           b.ID,
		Name:         b.Name,
		Description:  b.Description,
		Icon:         b.Icon,
		Category:     b.Category,
		Color:        b.Color,
		SystemPrompt: b.SystemPrompt,
		Model:        b.Model,
		Temperature:  b.Temperature,
		MaxTokens:    b.MaxTokens,
	}
}

// Catalog holds the built-in agents, keyed by id and in file order.
type Catalog struct {
	mu     sync.RWMutex
	agents []models.Agent
	byID   map[string]models.Agent
}

// New loads the embedded built-in agent file.
func New() (*Catalog, error) {
	data, err := configFiles.ReadFile("config/builtin.yaml")
	if err != nil {
		return nil, fmt.Errorf("read builtin catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal builtin catalog: %w", err)
	}

	agents := make([]models.Agent, 0, len(file.Agents))
	byID := make(map[string]models.Agent, len(file.Agents))
	for _, b := range file.Agents {
		if b.ID == "" {
			return nil, fmt.Errorf("builtin agent %q has no id", b.Name)
		}
		if _, dup := byID[b.ID]; dup {
			return nil, fmt.Errorf("duplicate builtin agent id %q", b.ID)
		}
		a := b.toModel()
		agents = append(agents, a)
		byID[a.ID] = a
	}

	return &Catalog{agents: agents, byID: byID}, nil
}

// Agents returns the built-in agents in catalog order.
func (c *Catalog) Agents() []models.Agent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Agent, len(c.agents))
	copy(out, c.agents)
	return out
}

// Get returns a built-in agent by id.
func (c *Catalog) Get(id string) (*models.Agent, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return &a, true
}

// Has reports whether an id belongs to a built-in agent.
func (c *Catalog) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.byID[id]
	return ok
}
