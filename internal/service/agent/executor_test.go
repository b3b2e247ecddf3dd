package agent

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"agentchain/internal/domain"
	"agentchain/internal/domain/models"
	"agentchain/internal/domain/services"
)

type fakeAgentService struct {
	agents map[string]*models.Agent
}

func (f *fakeAgentService) CreateAgent(ctx context.Context, req *services.CreateAgentRequest) (*models.Agent, error) {
	return nil, nil
}

func (f *fakeAgentService) GetAgent(ctx context.Context, id string) (*models.Agent, error) {
	a, ok := f.agents[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: "agent not found"}
	}
	return a, nil
}

func (f *fakeAgentService) ListAgents(ctx context.Context) ([]models.Agent, error) {
	return nil, nil
}

func (f *fakeAgentService) UpdateAgent(ctx context.Context, id string, req *services.UpdateAgentRequest) (*models.Agent, error) {
	return nil, nil
}

func (f *fakeAgentService) DeleteAgent(ctx context.Context, id string) error {
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExecutorRoutesToMockProvider(t *testing.T) {
	agents := &fakeAgentService{agents: map[string]*models.Agent{
		"a1": {
			ID:           "a1",
			Name:         "Story Generation",
			SystemPrompt: "You generate user stories.",
			Model:        "mock-gpt",
			MaxTokens:    1000,
		},
	}}
	exec := NewExecutor(agents, []Provider{NewMockProvider()}, testLogger())

	result, err := exec.Execute(context.Background(), "a1", "write stories")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	// The system prompt is folded into the user message.
	if !strings.Contains(result.Output, "Instructions:\nYou generate user stories.") {
		t.Errorf("output does not carry the folded system prompt: %q", result.Output)
	}
	if !strings.Contains(result.Output, "User Input:\nwrite stories") {
		t.Errorf("output does not carry the user input: %q", result.Output)
	}

	wantLogs := []string{
		"Starting Story Generation...",
		"Sending request to mock (mock-gpt)...",
		"Processing response...",
		"Execution completed",
	}
	if len(result.Logs) != len(wantLogs) {
		t.Fatalf("got %d log lines, want %d", len(result.Logs), len(wantLogs))
	}
	for i, want := range wantLogs {
		if result.Logs[i] != want {
			t.Errorf("log %d = %q, want %q", i, result.Logs[i], want)
		}
	}
}

func TestExecutorUnknownAgent(t *testing.T) {
	exec := NewExecutor(&fakeAgentService{}, []Provider{NewMockProvider()}, testLogger())

	if _, err := exec.Execute(context.Background(), "missing", "input"); err == nil {
		t.Fatal("expected an error for an unknown agent")
	}
}

func TestExecutorNoProviderForModel(t *testing.T) {
	agents := &fakeAgentService{agents: map[string]*models.Agent{
		"a1": {ID: "a1", Name: "A", Model: "gpt-4o-mini"},
	}}
	exec := NewExecutor(agents, []Provider{NewMockProvider()}, testLogger())

	_, err := exec.Execute(context.Background(), "a1", "input")
	if err == nil || !strings.Contains(err.Error(), "no provider serves model") {
		t.Errorf("got %v, want no-provider error", err)
	}
}

func TestCombineMessage(t *testing.T) {
	if got := combineMessage("", "input"); got != "input" {
		t.Errorf("empty system prompt: got %q", got)
	}

	got := combineMessage("be terse", "hello")
	want := "Instructions:\nbe terse\n\n---\n\nUser Input:\nhello"
	if got != want {
		t.Errorf("combineMessage = %q, want %q", got, want)
	}
}

func TestMockProviderDeterministic(t *testing.T) {
	p := NewMockProvider()
	req := &CompletionRequest{Model: "mock-gpt", Message: "one two three"}

	first, err := p.Complete(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Complete(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if first.Output != second.Output {
		t.Error("mock provider must be deterministic")
	}
	if !strings.HasPrefix(first.Output, "Processed 3 words with mock-gpt.") {
		t.Errorf("output = %q", first.Output)
	}
}
