package chain

import (
	"sort"
	"strings"

	"agentchain/internal/domain/models"
	chainModel "agentchain/internal/domain/models/chain"
)

// Persisted log message content is written with fixed prefixes so a reopened
// conversation can tell round-start noise from round-completion summaries.
const (
	logStartPrefix = "run started: "
	logDonePrefix  = "run completed: "

	// Completion logs land within a couple of sort slots of the answer they
	// describe; anything further apart is not the same round.
	logMatchWindow = 2
)

func startLogContent(agentName string) string {
	return logStartPrefix + agentName
}

func doneLogContent(agentName string) string {
	return logDonePrefix + agentName
}

// isCompletionLog reports whether a persisted log message records the end of
// a round rather than its start.
func isCompletionLog(content string) bool {
	return strings.HasPrefix(content, logDonePrefix)
}

// displayEntry pairs a message with its computed display position. Primary is
// the sort slot the entry renders at; tiebreak places matched completion logs
// ahead of the answer they describe within the same slot.
type displayEntry struct {
	msg      models.ConversationMessage
	primary  int
	tiebreak int
}

// Rebuild converts the full persisted message log of a conversation into the
// minimal node sequence a user should see when reopening it: every query, only
// the final answer, and the completion log of the surviving round positioned
// immediately before that answer. Start logs and superseded rounds (failed or
// consumed by retry) are hidden.
//
// Rebuild is a pure function of its input: no shared state, deterministic
// output (node IDs are taken from the message IDs), safe to call from any
// goroutine.
func Rebuild(messages []models.ConversationMessage) []chainModel.Node {
	sorted := make([]models.ConversationMessage, len(messages))
	copy(sorted, messages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Sort < sorted[j].Sort
	})

	last := lastAnswerIndex(sorted)
	if last < 0 {
		// No completed round yet: show everything except logs, as-is.
		var nodes []chainModel.Node
		for _, m := range sorted {
			if m.NodeType == models.NodeTypeLog {
				continue
			}
			nodes = append(nodes, nodeFromMessage(m))
		}
		return selectCurrentInput(nodes)
	}

	lastAnswer := sorted[last]

	var entries []displayEntry
	for i, m := range sorted {
		switch m.NodeType {
		case models.NodeTypeQuery:
			entries = append(entries, displayEntry{msg: m, primary: m.Sort, tiebreak: 1})

		case models.NodeTypeAnswer:
			// Earlier answers belong to superseded rounds (retried, or their
			// output became the input of a later round).
			if i == last {
				entries = append(entries, displayEntry{msg: m, primary: m.Sort, tiebreak: 1})
			}

		case models.NodeTypeLog:
			if !isCompletionLog(m.Content) {
				continue
			}
			matched, ok := matchAnswer(m, sorted)
			switch {
			case ok && matched == last:
				// Render immediately before the answer it describes.
				entries = append(entries, displayEntry{msg: m, primary: lastAnswer.Sort, tiebreak: 0})
			case ok:
				// Describes a suppressed round; suppressed with it.
			default:
				// Well-formed logs always match; keep natural position so
				// nothing is silently lost.
				entries = append(entries, displayEntry{msg: m, primary: m.Sort, tiebreak: 1})
			}
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].primary != entries[j].primary {
			return entries[i].primary < entries[j].primary
		}
		return entries[i].tiebreak < entries[j].tiebreak
	})

	nodes := make([]chainModel.Node, 0, len(entries))
	for _, e := range entries {
		nodes = append(nodes, nodeFromMessage(e.msg))
	}
	return selectCurrentInput(nodes)
}

// lastAnswerIndex returns the index of the final answer message in a
// sort-ordered log, or -1 if no round ever completed.
func lastAnswerIndex(sorted []models.ConversationMessage) int {
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].NodeType == models.NodeTypeAnswer {
			return i
		}
	}
	return -1
}

// matchAnswer finds the answer a completion log describes: same agent, sort
// within logMatchWindow. Completion logs are persisted adjacent to their
// answer, so the nearest candidate wins.
func matchAnswer(log models.ConversationMessage, sorted []models.ConversationMessage) (int, bool) {
	best := -1
	bestDist := logMatchWindow + 1
	for i, m := range sorted {
		if m.NodeType != models.NodeTypeAnswer {
			continue
		}
		if !sameAgent(log.AgentID, m.AgentID) {
			continue
		}
		dist := log.Sort - m.Sort
		if dist < 0 {
			dist = -dist
		}
		if dist <= logMatchWindow && dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	return best, best >= 0
}

func sameAgent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// nodeFromMessage maps one visible message onto its display node. The message
// ID doubles as the node ID, which keeps reconstruction deterministic.
func nodeFromMessage(m models.ConversationMessage) chainModel.Node {
	node := chainModel.Node{
		ID:        m.ID,
		Content:   m.Content,
		Timestamp: m.CreatedAt,
	}
	if m.AgentID != nil {
		node.Agent = &models.AgentRef{ID: *m.AgentID}
	}

	switch m.NodeType {
	case models.NodeTypeAnswer:
		node.Kind = chainModel.KindOutput
		node.Status = chainModel.StatusCompleted
	case models.NodeTypeLog:
		node.Kind = chainModel.KindMarker
		node.Status = chainModel.StatusCompleted
		node.Logs = []string{m.Content}
	default:
		node.Kind = chainModel.KindInput
		node.Resources = []models.ResourceRef{}
	}
	return node
}

// selectCurrentInput marks the last output node as the editable head. If no
// output exists the sequence stays headless; the session synthesizes a blank
// input before allowing further execution.
func selectCurrentInput(nodes []chainModel.Node) []chainModel.Node {
	for i := len(nodes) - 1; i >= 0; i-- {
		if nodes[i].Kind == chainModel.KindOutput {
			nodes[i].IsCurrentInput = true
			nodes[i].IsEditable = true
			break
		}
	}
	return nodes
}
