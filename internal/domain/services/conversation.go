package services

import (
	"context"

	"agentchain/internal/domain/models"
)

// ConversationService handles persisted conversation history.
type ConversationService interface {
	// CreateConversation creates a new conversation record
	CreateConversation(ctx context.Context, title string) (*models.Conversation, error)

	// AppendMessage appends one message to a conversation's log
	AppendMessage(ctx context.Context, message *models.ConversationMessage) error

	// ListConversations lists all conversations with message counts
	ListConversations(ctx context.Context) ([]models.ConversationSummary, error)

	// GetMessages returns the full message log for a conversation.
	// Ordering is not guaranteed; callers sort by Sort.
	GetMessages(ctx context.Context, conversationID string) ([]models.ConversationMessage, error)

	// RenameConversation updates a conversation's title
	RenameConversation(ctx context.Context, id, title string) error

	// SaveConversation creates a conversation and writes the given messages
	// in one transaction
	SaveConversation(ctx context.Context, req *SaveConversationRequest) (*models.Conversation, error)

	// DeleteConversation deletes a conversation and its messages
	DeleteConversation(ctx context.Context, id string) error
}

// SaveConversationRequest is the DTO for persisting a serialized node
// sequence as a new conversation.
type SaveConversationRequest struct {
	Title    string                       `json:"title"`
	Messages []models.ConversationMessage `json:"messages"`
}
