package repositories

import (
	"context"

	"agentchain/internal/domain/models"
)

// ConversationRepository persists conversation records.
type ConversationRepository interface {
	CreateConversation(ctx context.Context, conversation *models.Conversation) error
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	ListConversations(ctx context.Context) ([]models.ConversationSummary, error)
	UpdateConversationTitle(ctx context.Context, id, title string) error
	DeleteConversation(ctx context.Context, id string) error
}

// MessageRepository is the append-only message log behind a conversation.
// ListMessages makes no ordering guarantee; callers sort by the Sort key.
type MessageRepository interface {
	AppendMessage(ctx context.Context, message *models.ConversationMessage) error
	ListMessages(ctx context.Context, conversationID string) ([]models.ConversationMessage, error)
}
