package catalog

import "testing"

func TestNewLoadsBuiltinAgents(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	agents := c.Agents()
	if len(agents) != 5 {
		t.Fatalf("got %d built-in agents, want 5", len(agents))
	}

	wantIDs := []string{
		"story-generation",
		"requirement-validation",
		"acceptance-criteria",
		"story-optimization",
		"dependency-analysis",
	}
	for i, id := range wantIDs {
		if agents[i].ID != id {
			t.Errorf("agent %d: id = %q, want %q", i, agents[i].ID, id)
		}
	}

	for _, a := range agents {
		if a.Name == "" || a.SystemPrompt == "" || a.Model == "" || a.Category == "" {
			t.Errorf("agent %s is missing required fields: %+v", a.ID, a)
		}
	}
}

func TestGetAndHas(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	agent, ok := c.Get("story-generation")
	if !ok {
		t.Fatal("story-generation not found")
	}
	if agent.Name != "Story Generation" {
		t.Errorf("name = %q", agent.Name)
	}

	if _, ok := c.Get("nope"); ok {
		t.Error("Get must miss on unknown ids")
	}
	if c.Has("nope") {
		t.Error("Has must miss on unknown ids")
	}
	if !c.Has("dependency-analysis") {
		t.Error("Has must hit on builtin ids")
	}
}

func TestAgentsReturnsCopy(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	first := c.Agents()
	first[0].Name = "mutated"

	if c.Agents()[0].Name == "mutated" {
		t.Error("Agents must return a copy, not the backing slice")
	}
}
