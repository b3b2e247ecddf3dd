package chain

import (
	"testing"

	"agentchain/internal/domain/models"
)

func TestHasContent(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want bool
	}{
		{"blank", Node{Content: ""}, false},
		{"whitespace only", Node{Content: "   \n\t"}, false},
		{"text", Node{Content: "hello"}, true},
		{"resource only", Node{Resources: []models.ResourceRef{{ID: "r1"}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.HasContent(); got != tt.want {
				t.Errorf("HasContent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEffectiveInput(t *testing.T) {
	resources := []models.ResourceRef{
		{ID: "r1", Title: "PRD", Content: "requirements text"},
		{ID: "r2", Title: "Template", Content: "story template"},
	}

	tests := []struct {
		name string
		node Node
		want string
	}{
		{
			name: "plain text, no resources",
			node: Node{Content: "just text"},
			want: "just text",
		},
		{
			name: "text with resources",
			node: Node{Content: "analyze this", Resources: resources},
			want: "analyze this\n\nReference Resources:\n[PRD]: requirements text\n\n[Template]: story template",
		},
		{
			name: "resources only",
			node: Node{Content: "  ", Resources: resources},
			want: "[PRD]: requirements text\n\n[Template]: story template",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.EffectiveInput(); got != tt.want {
				t.Errorf("EffectiveInput() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNodeConstructors(t *testing.T) {
	agent := &models.AgentRef{ID: "a1", Name: "Story Generation"}

	input := NewInput()
	if input.Kind != KindInput || !input.IsCurrentInput || !input.IsEditable {
		t.Errorf("NewInput() = %+v", input)
	}

	marker := NewMarker(agent, "Using Story Generation to process...")
	if marker.Kind != KindMarker || marker.Status != StatusRunning {
		t.Errorf("NewMarker() = %+v", marker)
	}
	if marker.IsCurrentInput || marker.Inputable() {
		t.Error("marker nodes never carry the current-input flag")
	}

	output := NewOutput(agent, "result")
	if output.Kind != KindOutput || output.Status != StatusCompleted || !output.IsCurrentInput {
		t.Errorf("NewOutput() = %+v", output)
	}
	if !output.Inputable() {
		t.Error("output nodes must be input-capable")
	}

	if input.ID == marker.ID || marker.ID == output.ID {
		t.Error("node IDs must be unique")
	}
}
