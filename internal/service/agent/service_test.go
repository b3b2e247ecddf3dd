package agent

import (
	"context"
	"errors"
	"testing"

	"agentchain/internal/catalog"
	"agentchain/internal/domain"
	"agentchain/internal/domain/models"
	"agentchain/internal/domain/services"
)

type fakeAgentRepo struct {
	agents map[string]*models.Agent
}

func newFakeAgentRepo() *fakeAgentRepo {
	return &fakeAgentRepo{agents: map[string]*models.Agent{}}
}

func (f *fakeAgentRepo) CreateAgent(ctx context.Context, agent *models.Agent) error {
	f.agents[agent.ID] = agent
	return nil
}

func (f *fakeAgentRepo) GetAgent(ctx context.Context, id string) (*models.Agent, error) {
	a, ok := f.agents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (f *fakeAgentRepo) ListAgents(ctx context.Context) ([]models.Agent, error) {
	var out []models.Agent
	for _, a := range f.agents {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeAgentRepo) UpdateAgent(ctx context.Context, agent *models.Agent) error {
	if _, ok := f.agents[agent.ID]; !ok {
		return domain.ErrNotFound
	}
	f.agents[agent.ID] = agent
	return nil
}

func (f *fakeAgentRepo) DeleteAgent(ctx context.Context, id string) error {
	if _, ok := f.agents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.agents, id)
	return nil
}

func newTestAgentService(t *testing.T) services.AgentService {
	t.Helper()
	cat, err := catalog.New()
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return NewService(newFakeAgentRepo(), cat, "mock-default", testLogger())
}

func TestCreateAgentDefaultsModel(t *testing.T) {
	svc := newTestAgentService(t)

	created, err := svc.CreateAgent(context.Background(), &services.CreateAgentRequest{
		Name:         "No Model",
		Category:     "analysis",
		SystemPrompt: "analyze",
		MaxTokens:    100,
	})
	if err != nil {
		t.Fatalf("CreateAgent: %v", err)
	}
	if created.Model != "mock-default" {
		t.Errorf("model = %q, want the configured default", created.Model)
	}
}

func TestCreateAgentValidation(t *testing.T) {
	svc := newTestAgentService(t)

	tests := []struct {
		name string
		req  services.CreateAgentRequest
	}{
		{"missing name", services.CreateAgentRequest{Category: "generation", SystemPrompt: "p", Model: "m", MaxTokens: 100}},
		{"unknown category", services.CreateAgentRequest{Name: "A", Category: "other", SystemPrompt: "p", Model: "m", MaxTokens: 100}},
		{"missing system prompt", services.CreateAgentRequest{Name: "A", Category: "generation", Model: "m", MaxTokens: 100}},
		{"temperature out of range", services.CreateAgentRequest{Name: "A", Category: "generation", SystemPrompt: "p", Model: "m", Temperature: 3.0, MaxTokens: 100}},
		{"max tokens zero", services.CreateAgentRequest{Name: "A", Category: "generation", SystemPrompt: "p", Model: "m"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateAgent(context.Background(), &tt.req)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("got %v, want validation failure", err)
			}
		})
	}
}

func TestBuiltinAgentsAreReadOnly(t *testing.T) {
	svc := newTestAgentService(t)

	name := "renamed"
	_, err := svc.UpdateAgent(context.Background(), "story-generation", &services.UpdateAgentRequest{Name: &name})
	if err == nil {
		t.Error("updating a built-in agent must fail")
	}

	if err := svc.DeleteAgent(context.Background(), "story-generation"); err == nil {
		t.Error("deleting a built-in agent must fail")
	}
}

func TestListAgentsMergesBuiltinAndCustom(t *testing.T) {
	svc := newTestAgentService(t)

	created, err := svc.CreateAgent(context.Background(), &services.CreateAgentRequest{
		Name:         "Custom Analyzer",
		Category:     "analysis",
		SystemPrompt: "analyze things",
		Model:        "mock-gpt",
		Temperature:  0.5,
		MaxTokens:    500,
	})
	if err != nil {
		t.Fatalf("CreateAgent: %v", err)
	}

	agents, err := svc.ListAgents(context.Background())
	if err != nil {
		t.Fatalf("ListAgents: %v", err)
	}
	if len(agents) != 6 {
		t.Fatalf("got %d agents, want 5 built-in + 1 custom", len(agents))
	}
	// Built-ins come first, in catalog order.
	if agents[0].ID != "story-generation" {
		t.Errorf("first agent = %s", agents[0].ID)
	}
	if agents[5].ID != created.ID {
		t.Errorf("last agent = %s, want the custom one", agents[5].ID)
	}

	got, err := svc.GetAgent(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetAgent: %v", err)
	}
	if got.Name != "Custom Analyzer" {
		t.Errorf("name = %q", got.Name)
	}
}
