// Package chain implements the conversation chain core: the live node
// sequence, the execution lifecycle that drives it, and the history
// reconstruction that rebuilds it from a persisted message log.
package chain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"agentchain/internal/domain"
	"agentchain/internal/domain/models"
	chainModel "agentchain/internal/domain/models/chain"
	"agentchain/internal/domain/services"
)

const maxDerivedTitleLen = 60

// ExecutionError wraps an agent executor failure. The round it belongs to is
// already terminated (marker flipped to error); the session itself is intact
// and the round can be retried.
type ExecutionError struct {
	AgentID string
	Err     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("agent %s execution failed: %v", e.AgentID, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Session owns one live conversation chain: the node sequence, the selected
// agent, the busy flag, and the id of the persisted conversation backing it
// (empty until the first execution creates one).
//
// All mutations go through Session methods; the mutex enforces the
// single-writer discipline. Exactly one execution round may be in flight at a
// time - Execute and Retry while busy are rejected, never queued.
type Session struct {
	mu             sync.Mutex
	nodes          []chainModel.Node
	agent          *models.AgentRef
	busy           bool
	conversationID string
	nextSort       int

	executor      services.Executor
	conversations services.ConversationService
	logger        *slog.Logger
}

// NewSession creates a session holding a single blank current-input node.
func NewSession(executor services.Executor, conversations services.ConversationService, logger *slog.Logger) *Session {
	return &Session{
		nodes:         []chainModel.Node{chainModel.NewInput()},
		executor:      executor,
		conversations: conversations,
		logger:        logger,
	}
}

// Nodes returns a snapshot of the live node sequence.
func (s *Session) Nodes() []chainModel.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]chainModel.Node, len(s.nodes))
	copy(snapshot, s.nodes)
	return snapshot
}

// SelectedAgent returns the agent the next execution will route to, or nil.
func (s *Session) SelectedAgent() *models.AgentRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agent
}

// Busy reports whether an execution round is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// ConversationID returns the persisted conversation backing this session, or
// empty for a fresh one.
func (s *Session) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// SelectAgent picks the agent for the next execution round.
func (s *Session) SelectAgent(agent *models.AgentRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return domain.ErrBusy
	}
	s.agent = agent
	return nil
}

// EditCurrentInput replaces the editable head's text.
func (s *Session) EditCurrentInput(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.currentInputIndex()
	if idx < 0 {
		return &domain.PreconditionError{Message: "no current input node"}
	}
	s.nodes[idx].Content = text
	return nil
}

// AttachResource attaches a reference document to the current input node.
// Attaching an already-attached resource is a no-op.
func (s *Session) AttachResource(res models.ResourceRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.currentInputIndex()
	if idx < 0 {
		return &domain.PreconditionError{Message: "no current input node"}
	}
	for _, existing := range s.nodes[idx].Resources {
		if existing.ID == res.ID {
			return nil
		}
	}
	s.nodes[idx].Resources = append(s.nodes[idx].Resources, res)
	return nil
}

// DetachResource removes a reference document from the current input node.
// Detaching a resource that is not attached is a no-op.
func (s *Session) DetachResource(resourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.currentInputIndex()
	if idx < 0 {
		return &domain.PreconditionError{Message: "no current input node"}
	}
	kept := s.nodes[idx].Resources[:0]
	for _, r := range s.nodes[idx].Resources {
		if r.ID != resourceID {
			kept = append(kept, r)
		}
	}
	s.nodes[idx].Resources = kept
	return nil
}

// Execute runs one round: freezes the current input, appends a running
// marker, dispatches to the agent executor, and on success appends the
// output node as the new editable head.
//
// Preconditions (checked before any mutation): not busy, an agent selected,
// a current input exists and carries text or resources. The query message is
// persisted before dispatch; the answer and completion log after. Persistence
// failures never abort the round - they come back as *domain.PersistenceError
// once the round has otherwise succeeded.
func (s *Session) Execute(ctx context.Context) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return domain.ErrBusy
	}
	if s.agent == nil {
		s.mu.Unlock()
		return &domain.PreconditionError{Message: "no agent selected"}
	}
	idx := s.currentInputIndex()
	if idx < 0 {
		s.mu.Unlock()
		return &domain.PreconditionError{Message: "no current input node"}
	}
	if !s.nodes[idx].HasContent() {
		s.mu.Unlock()
		return &domain.PreconditionError{Message: "current input has no content or resources"}
	}

	agent := s.agent
	input := s.nodes[idx].EffectiveInput()
	title := deriveTitle(s.nodes[idx].Content, input)

	// Transition 1: freeze the input, append the running marker. Both are
	// synchronous; no partial state is ever observable.
	s.nodes[idx].IsCurrentInput = false
	s.nodes[idx].IsEditable = false
	marker := chainModel.NewMarker(agent, "Using "+agent.Name+" to process...")
	marker.Logs = append(marker.Logs, "Starting "+agent.Name+"...")
	s.nodes = append(s.nodes, marker)
	markerID := marker.ID

	s.busy = true
	s.agent = nil
	s.mu.Unlock()

	var persistErr error
	if err := s.ensureConversation(ctx, title); err != nil {
		persistErr = err
	} else {
		if err := s.appendMessage(ctx, models.NodeTypeQuery, input, &agent.ID); err != nil {
			persistErr = err
		}
		if err := s.appendMessage(ctx, models.NodeTypeLog, startLogContent(agent.Name), &agent.ID); err != nil {
			persistErr = err
		}
	}

	result, execErr := s.executor.Execute(ctx, agent.ID, input)

	s.mu.Lock()
	mi := s.indexByID(markerID)
	if execErr != nil {
		if mi >= 0 {
			s.nodes[mi].Status = chainModel.StatusError
			s.nodes[mi].Content = "Error: " + execErr.Error()
		}
		s.busy = false
		s.mu.Unlock()
		return &ExecutionError{AgentID: agent.ID, Err: execErr}
	}

	if mi >= 0 {
		s.nodes[mi].Status = chainModel.StatusCompleted
		s.nodes[mi].Content = "Processing completed"
		s.nodes[mi].Logs = append([]string(nil), result.Logs...)
	}
	s.nodes = append(s.nodes, chainModel.NewOutput(agent, result.Output))
	s.busy = false
	s.mu.Unlock()

	if err := s.persistCompletion(ctx, agent, result.Output); err != nil {
		persistErr = err
	}
	return persistErr
}

// Retry re-runs a failed round. The effective input is recomputed from the
// nearest input-capable node preceding the marker, and the marker's own
// agent reference is reused. Retries are unbounded; each one fully
// overwrites the marker's status, content, and logs.
func (s *Session) Retry(ctx context.Context, markerID string) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return domain.ErrBusy
	}
	mi := s.indexByID(markerID)
	if mi < 0 {
		s.mu.Unlock()
		return &domain.NotFoundError{Message: "marker node not found"}
	}
	if s.nodes[mi].Kind != chainModel.KindMarker || s.nodes[mi].Status != chainModel.StatusError {
		s.mu.Unlock()
		return &domain.PreconditionError{Message: "retry requires a failed marker node"}
	}
	agent := s.nodes[mi].Agent
	if agent == nil {
		s.mu.Unlock()
		return &domain.PreconditionError{Message: "marker carries no agent reference"}
	}

	source := -1
	for i := mi - 1; i >= 0; i-- {
		if s.nodes[i].Inputable() {
			source = i
			break
		}
	}
	if source < 0 {
		s.mu.Unlock()
		return &domain.PreconditionError{Message: "no input node precedes the marker"}
	}
	input := s.nodes[source].EffectiveInput()

	s.nodes[mi].Status = chainModel.StatusRunning
	s.nodes[mi].Content = "Using " + agent.Name + " to process..."
	s.nodes[mi].Logs = []string{"Retrying " + agent.Name + "..."}
	s.busy = true
	s.mu.Unlock()

	result, execErr := s.executor.Execute(ctx, agent.ID, input)

	s.mu.Lock()
	mi = s.indexByID(markerID)
	if execErr != nil {
		if mi >= 0 {
			s.nodes[mi].Status = chainModel.StatusError
			s.nodes[mi].Content = "Error: " + execErr.Error()
		}
		s.busy = false
		s.mu.Unlock()
		return &ExecutionError{AgentID: agent.ID, Err: execErr}
	}

	if mi >= 0 {
		s.nodes[mi].Status = chainModel.StatusCompleted
		s.nodes[mi].Content = "Processing completed"
		s.nodes[mi].Logs = append([]string(nil), result.Logs...)
	}
	s.nodes = append(s.nodes, chainModel.NewOutput(agent, result.Output))
	s.busy = false
	s.mu.Unlock()

	return s.persistCompletion(ctx, agent, result.Output)
}

// Clear resets the session to a single blank current-input node. Persisted
// records of the previous conversation are untouched.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = []chainModel.Node{chainModel.NewInput()}
	s.agent = nil
	s.busy = false
	s.conversationID = ""
	s.nextSort = 0
}

// Load replaces the live sequence with the reconstruction of a persisted
// conversation. If the rebuilt sequence has no editable head (the last round
// failed, or the log holds only queries) a blank input node is appended so
// execution can continue.
func (s *Session) Load(ctx context.Context, conversationID string) error {
	messages, err := s.conversations.GetMessages(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("load conversation %s: %w", conversationID, err)
	}

	nodes := Rebuild(messages)
	hasCurrent := false
	maxSort := -1
	for _, n := range nodes {
		if n.IsCurrentInput {
			hasCurrent = true
		}
	}
	for _, m := range messages {
		if m.Sort > maxSort {
			maxSort = m.Sort
		}
	}
	if !hasCurrent {
		nodes = append(nodes, chainModel.NewInput())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return domain.ErrBusy
	}
	s.nodes = nodes
	s.agent = nil
	s.conversationID = conversationID
	s.nextSort = maxSort + 1
	return nil
}

// Save snapshots the live sequence as a new persisted conversation: input
// nodes become query messages, output nodes answer messages, one sort value
// per position. Marker nodes are execution bookkeeping and are not part of
// the snapshot.
func (s *Session) Save(ctx context.Context, title string) (*models.Conversation, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, domain.ErrBusy
	}
	var messages []models.ConversationMessage
	for i, n := range s.nodes {
		var nodeType models.NodeType
		switch n.Kind {
		case chainModel.KindInput:
			nodeType = models.NodeTypeQuery
		case chainModel.KindOutput:
			nodeType = models.NodeTypeAnswer
		default:
			continue
		}
		msg := models.ConversationMessage{
			ID:       uuid.NewString(),
			NodeType: nodeType,
			Content:  n.Content,
			Sort:     i,
		}
		if n.Agent != nil {
			agentID := n.Agent.ID
			msg.AgentID = &agentID
		}
		messages = append(messages, msg)
	}
	s.mu.Unlock()

	conv, err := s.conversations.SaveConversation(ctx, &services.SaveConversationRequest{
		Title:    title,
		Messages: messages,
	})
	if err != nil {
		return nil, fmt.Errorf("save conversation: %w", err)
	}

	s.mu.Lock()
	s.conversationID = conv.ID
	s.nextSort = len(s.nodes)
	s.mu.Unlock()
	return conv, nil
}

// currentInputIndex returns the index of the node carrying the current-input
// flag, or -1. Callers hold the lock.
func (s *Session) currentInputIndex() int {
	for i := len(s.nodes) - 1; i >= 0; i-- {
		if s.nodes[i].IsCurrentInput {
			return i
		}
	}
	return -1
}

// indexByID returns the index of the node with the given id, or -1. Callers
// hold the lock.
func (s *Session) indexByID(id string) int {
	for i, n := range s.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// ensureConversation lazily creates the persisted conversation backing this
// session on the first execution round.
func (s *Session) ensureConversation(ctx context.Context, title string) error {
	s.mu.Lock()
	existing := s.conversationID
	s.mu.Unlock()
	if existing != "" {
		return nil
	}

	conv, err := s.conversations.CreateConversation(ctx, title)
	if err != nil {
		s.logger.Error("create conversation failed", "error", err)
		return &domain.PersistenceError{Op: "create conversation", Err: err}
	}

	s.mu.Lock()
	s.conversationID = conv.ID
	s.nextSort = 0
	s.mu.Unlock()
	return nil
}

// appendMessage writes one message to the backing conversation, consuming
// the next sort slot. Failures are logged and reported, not fatal.
func (s *Session) appendMessage(ctx context.Context, nodeType models.NodeType, content string, agentID *string) error {
	s.mu.Lock()
	conversationID := s.conversationID
	sortKey := s.nextSort
	s.nextSort++
	s.mu.Unlock()

	if conversationID == "" {
		return nil
	}

	msg := &models.ConversationMessage{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		NodeType:       nodeType,
		Content:        content,
		Sort:           sortKey,
		AgentID:        agentID,
	}
	if err := s.conversations.AppendMessage(ctx, msg); err != nil {
		s.logger.Error("append message failed",
			"conversation_id", conversationID,
			"node_type", nodeType,
			"error", err,
		)
		return &domain.PersistenceError{Op: "append " + string(nodeType) + " message", Err: err}
	}
	return nil
}

// persistCompletion writes the answer message followed by the completion log
// for a successful round.
func (s *Session) persistCompletion(ctx context.Context, agent *models.AgentRef, output string) error {
	if err := s.appendMessage(ctx, models.NodeTypeAnswer, output, &agent.ID); err != nil {
		return err
	}
	return s.appendMessage(ctx, models.NodeTypeLog, doneLogContent(agent.Name), &agent.ID)
}

// deriveTitle builds a conversation title from the first execution's input.
func deriveTitle(content, effective string) string {
	text := strings.TrimSpace(content)
	if text == "" {
		text = strings.TrimSpace(effective)
	}
	if text == "" {
		return "New Conversation"
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	if utf8.RuneCountInString(text) > maxDerivedTitleLen {
		runes := []rune(text)
		text = string(runes[:maxDerivedTitleLen])
	}
	return text
}
