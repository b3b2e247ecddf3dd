package chain

import (
	"reflect"
	"testing"

	"agentchain/internal/domain/models"
	chainModel "agentchain/internal/domain/models/chain"
)

func strPtr(s string) *string { return &s }

func msg(id string, nodeType models.NodeType, content string, sort int, agentID *string) models.ConversationMessage {
	return models.ConversationMessage{
		ID:             id,
		ConversationID: "conv-1",
		NodeType:       nodeType,
		Content:        content,
		Sort:           sort,
		AgentID:        agentID,
	}
}

// Two completed rounds where the first answer fed the second round as input.
// Reopening must show both queries, the last answer, and only the completion
// log of the surviving round, positioned before the answer.
func TestRebuildCollapsesSupersededRounds(t *testing.T) {
	agent := strPtr("agent-1")
	messages := []models.ConversationMessage{
		msg("m0", models.NodeTypeQuery, "first input", 0, agent),
		msg("m1", models.NodeTypeLog, startLogContent("Story Generation"), 1, agent),
		msg("m2", models.NodeTypeLog, doneLogContent("Story Generation"), 2, agent),
		msg("m3", models.NodeTypeAnswer, "first output", 3, agent),
		msg("m4", models.NodeTypeQuery, "second input", 4, agent),
		msg("m5", models.NodeTypeLog, startLogContent("Story Generation"), 5, agent),
		msg("m6", models.NodeTypeLog, doneLogContent("Story Generation"), 6, agent),
		msg("m7", models.NodeTypeAnswer, "second output", 7, agent),
	}

	nodes := Rebuild(messages)

	wantKinds := []chainModel.Kind{
		chainModel.KindInput,
		chainModel.KindInput,
		chainModel.KindMarker,
		chainModel.KindOutput,
	}
	if len(nodes) != len(wantKinds) {
		t.Fatalf("got %d nodes, want %d", len(nodes), len(wantKinds))
	}
	for i, want := range wantKinds {
		if nodes[i].Kind != want {
			t.Errorf("node %d: kind = %q, want %q", i, nodes[i].Kind, want)
		}
	}

	if nodes[0].Content != "first input" || nodes[1].Content != "second input" {
		t.Errorf("queries = %q, %q", nodes[0].Content, nodes[1].Content)
	}
	if nodes[2].ID != "m6" {
		t.Errorf("surviving completion log = %s, want m6", nodes[2].ID)
	}
	if nodes[3].Content != "second output" {
		t.Errorf("answer content = %q, want second output", nodes[3].Content)
	}
	if !nodes[3].IsCurrentInput || !nodes[3].IsEditable {
		t.Error("last answer must be the editable current input")
	}
	for i := 0; i < 3; i++ {
		if nodes[i].IsCurrentInput {
			t.Errorf("node %d must not carry the current-input flag", i)
		}
	}
}

// A retry overwrites nothing in the log; it appends a second answer and
// completion log. Only the retry's pair survives reconstruction.
func TestRebuildRetriedRound(t *testing.T) {
	agent := strPtr("agent-1")
	messages := []models.ConversationMessage{
		msg("m0", models.NodeTypeQuery, "input", 0, agent),
		msg("m1", models.NodeTypeLog, startLogContent("Requirement Validation"), 1, agent),
		msg("m2", models.NodeTypeAnswer, "flaky output", 2, agent),
		msg("m3", models.NodeTypeLog, doneLogContent("Requirement Validation"), 3, agent),
		msg("m4", models.NodeTypeAnswer, "retried output", 4, agent),
		msg("m5", models.NodeTypeLog, doneLogContent("Requirement Validation"), 5, agent),
	}

	nodes := Rebuild(messages)

	if len(nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(nodes))
	}
	if nodes[0].Content != "input" {
		t.Errorf("query = %q", nodes[0].Content)
	}
	if nodes[1].Kind != chainModel.KindMarker || nodes[1].ID != "m5" {
		t.Errorf("marker = %s (%s), want m5", nodes[1].ID, nodes[1].Kind)
	}
	if nodes[2].Content != "retried output" {
		t.Errorf("answer = %q, want retried output", nodes[2].Content)
	}
}

// Input order must not matter: the engine sorts by the sort key itself.
func TestRebuildUnorderedInput(t *testing.T) {
	agent := strPtr("agent-1")
	ordered := []models.ConversationMessage{
		msg("m0", models.NodeTypeQuery, "input", 0, agent),
		msg("m1", models.NodeTypeLog, startLogContent("A"), 1, agent),
		msg("m2", models.NodeTypeAnswer, "output", 2, agent),
		msg("m3", models.NodeTypeLog, doneLogContent("A"), 3, agent),
	}
	shuffled := []models.ConversationMessage{ordered[3], ordered[0], ordered[2], ordered[1]}

	if got, want := Rebuild(shuffled), Rebuild(ordered); !reflect.DeepEqual(got, want) {
		t.Errorf("shuffled input produced a different sequence:\ngot  %+v\nwant %+v", got, want)
	}
}

// Reconstruction must be deterministic: node IDs come from message IDs, so
// rebuilding twice yields byte-identical sequences.
func TestRebuildDeterministic(t *testing.T) {
	agent := strPtr("agent-1")
	messages := []models.ConversationMessage{
		msg("m0", models.NodeTypeQuery, "input", 0, agent),
		msg("m1", models.NodeTypeAnswer, "output", 1, agent),
		msg("m2", models.NodeTypeLog, doneLogContent("A"), 2, agent),
	}

	first := Rebuild(messages)
	second := Rebuild(messages)
	if !reflect.DeepEqual(first, second) {
		t.Error("two rebuilds of the same log disagree")
	}
}

// No round ever completed: everything except logs shows, and no node carries
// the current-input flag (the session synthesizes a blank input on load).
func TestRebuildNoCompletedRound(t *testing.T) {
	agent := strPtr("agent-1")
	messages := []models.ConversationMessage{
		msg("m0", models.NodeTypeQuery, "input", 0, agent),
		msg("m1", models.NodeTypeLog, startLogContent("A"), 1, agent),
	}

	nodes := Rebuild(messages)

	if len(nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(nodes))
	}
	if nodes[0].Kind != chainModel.KindInput || nodes[0].Content != "input" {
		t.Errorf("node = %+v", nodes[0])
	}
	if nodes[0].IsCurrentInput {
		t.Error("query node must not become the current input")
	}
}

// A completion log whose agent never produced an answer within the match
// window keeps its natural position instead of vanishing.
func TestRebuildUnmatchedCompletionLog(t *testing.T) {
	agentA := strPtr("agent-a")
	agentB := strPtr("agent-b")
	messages := []models.ConversationMessage{
		msg("m0", models.NodeTypeQuery, "input", 0, agentA),
		msg("m1", models.NodeTypeLog, doneLogContent("Other"), 1, agentB),
		msg("m2", models.NodeTypeAnswer, "output", 2, agentA),
	}

	nodes := Rebuild(messages)

	if len(nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(nodes))
	}
	if nodes[1].Kind != chainModel.KindMarker || nodes[1].ID != "m1" {
		t.Errorf("unmatched log not kept in place: %+v", nodes[1])
	}
}

// Completion logs only reposition within the window; a log persisted far from
// every answer is treated as unmatched.
func TestMatchAnswerWindow(t *testing.T) {
	agent := strPtr("agent-1")
	sorted := []models.ConversationMessage{
		msg("m0", models.NodeTypeAnswer, "output", 0, agent),
		msg("m1", models.NodeTypeLog, doneLogContent("A"), 5, agent),
	}

	if _, ok := matchAnswer(sorted[1], sorted); ok {
		t.Error("log 5 slots away from the answer must not match")
	}
}
