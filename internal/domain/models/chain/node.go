// Package chain holds the in-memory conversation chain model: the ordered
// node sequence a session edits and executes against. Nodes are the live,
// UI-facing projection; the persisted message log (models.ConversationMessage)
// is the durable side, and the two are deliberately not isomorphic.
package chain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"agentchain/internal/domain/models"
)

// Kind discriminates the node variants. Input and Output are structurally
// identical; the kind only affects default semantics, not storage.
type Kind string

const (
	KindInput  Kind = "input"
	KindOutput Kind = "output"
	KindMarker Kind = "marker"
)

// Status is the execution state shown on marker nodes and on output nodes
// that resulted from a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// Node is one element of the live conversation sequence.
//
// Invariant: at most one node in a sequence has IsCurrentInput set, and only
// an Input- or Output-kind node may carry it. That node is the editable head
// the next execution reads from.
type Node struct {
	ID             string               `json:"id"`
	Kind           Kind                 `json:"kind"`
	Content        string               `json:"content"`
	Resources      []models.ResourceRef `json:"resources,omitempty"`
	Agent          *models.AgentRef     `json:"agent,omitempty"`
	Status         Status               `json:"status,omitempty"`
	Logs           []string             `json:"logs,omitempty"`
	IsCurrentInput bool                 `json:"is_current_input"`
	IsEditable     bool                 `json:"is_editable"`
	Timestamp      time.Time            `json:"timestamp"`
}

// NewInput creates a blank editable input node, the initial state of every
// fresh conversation.
func NewInput() Node {
	return Node{
		ID:             uuid.NewString(),
		Kind:           KindInput,
		Resources:      []models.ResourceRef{},
		IsCurrentInput: true,
		IsEditable:     true,
		Timestamp:      time.Now(),
	}
}

// NewMarker creates a running marker node for an execution round driven by
// the given agent.
func NewMarker(agent *models.AgentRef, content string) Node {
	return Node{
		ID:        uuid.NewString(),
		Kind:      KindMarker,
		Content:   content,
		Agent:     agent,
		Status:    StatusRunning,
		Logs:      []string{},
		Timestamp: time.Now(),
	}
}

// NewOutput creates a completed output node carrying agent text. The output
// becomes the new editable head of the sequence.
func NewOutput(agent *models.AgentRef, content string) Node {
	return Node{
		ID:             uuid.NewString(),
		Kind:           KindOutput,
		Content:        content,
		Agent:          agent,
		Status:         StatusCompleted,
		IsCurrentInput: true,
		IsEditable:     true,
		Timestamp:      time.Now(),
	}
}

// Inputable reports whether the node may carry the current-input flag.
func (n *Node) Inputable() bool {
	return n.Kind == KindInput || n.Kind == KindOutput
}

// HasContent reports whether the node can feed an execution round: non-blank
// text or at least one attached resource.
func (n *Node) HasContent() bool {
	return strings.TrimSpace(n.Content) != "" || len(n.Resources) > 0
}

// EffectiveInput renders the node into the prompt text an execution round
// consumes. Attached resources are appended as "[title]: content" blocks in
// insertion order, separated by blank lines. Blank node text yields the
// resource blocks alone.
func (n *Node) EffectiveInput() string {
	if len(n.Resources) == 0 {
		return n.Content
	}

	blocks := make([]string, 0, len(n.Resources))
	for _, r := range n.Resources {
		blocks = append(blocks, "["+r.Title+"]: "+r.Content)
	}
	joined := strings.Join(blocks, "\n\n")

	if strings.TrimSpace(n.Content) == "" {
		return joined
	}
	return n.Content + "\n\nReference Resources:\n" + joined
}
