package models

import (
	"time"
)

// NodeType tags a persisted message with the role it played in a round.
type NodeType string

const (
	NodeTypeQuery  NodeType = "query"
	NodeTypeAnswer NodeType = "answer"
	NodeTypeLog    NodeType = "log"
)

// Conversation is a persisted conversation record. Messages are stored
// separately and loaded on demand.
type Conversation struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ConversationSummary is the list-view projection of a conversation.
type ConversationSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// ConversationMessage is one entry of the append-only message log. Sort
// defines display order; values are monotonically increasing per
// conversation but not necessarily contiguous (failed and superseded rounds
// leave gaps).
type ConversationMessage struct {
	ID             string    `json:"id" db:"id"`
	ConversationID string    `json:"conversation_id" db:"conversation_id"`
	NodeType       NodeType  `json:"node_type" db:"node_type"`
	Content        string    `json:"content" db:"content"`
	Sort           int       `json:"sort" db:"sort"`
	AgentID        *string   `json:"agent_id" db:"agent_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
