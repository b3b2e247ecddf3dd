package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"agentchain/internal/config"
	"agentchain/internal/domain"
	"agentchain/internal/domain/models"
	"agentchain/internal/domain/repositories"
	"agentchain/internal/domain/services"
)

// conversationService implements the ConversationService interface
type conversationService struct {
	conversations repositories.ConversationRepository
	messages      repositories.MessageRepository
	txManager     repositories.TransactionManager
	logger        *slog.Logger
}

// NewService creates a new conversation service.
func NewService(
	conversations repositories.ConversationRepository,
	messages repositories.MessageRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.ConversationService {
	return &conversationService{
		conversations: conversations,
		messages:      messages,
		txManager:     txManager,
		logger:        logger,
	}
}

// CreateConversation creates a new conversation record.
func (s *conversationService) CreateConversation(ctx context.Context, title string) (*models.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "New Conversation"
	}

	now := time.Now()
	conv := &models.Conversation{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.conversations.CreateConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	s.logger.Info("conversation created", "conversation_id", conv.ID, "title", conv.Title)
	return conv, nil
}

// AppendMessage appends one message to a conversation's log.
func (s *conversationService) AppendMessage(ctx context.Context, message *models.ConversationMessage) error {
	if err := validateMessage(message); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	return s.messages.AppendMessage(ctx, message)
}

// ListConversations lists all conversations with message counts.
func (s *conversationService) ListConversations(ctx context.Context) ([]models.ConversationSummary, error) {
	return s.conversations.ListConversations(ctx)
}

// GetMessages returns the full message log for a conversation.
func (s *conversationService) GetMessages(ctx context.Context, conversationID string) ([]models.ConversationMessage, error) {
	if _, err := s.conversations.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}
	return s.messages.ListMessages(ctx, conversationID)
}

// RenameConversation updates a conversation's title.
func (s *conversationService) RenameConversation(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if err := validation.Validate(title, validation.Required, validation.Length(1, config.MaxConversationTitleLength)); err != nil {
		return fmt.Errorf("%w: title: %s", domain.ErrValidation, err.Error())
	}
	if err := s.conversations.UpdateConversationTitle(ctx, id, title); err != nil {
		return err
	}
	s.logger.Info("conversation renamed", "conversation_id", id, "title", title)
	return nil
}

// SaveConversation creates a conversation and writes the given messages in
// one transaction.
func (s *conversationService) SaveConversation(ctx context.Context, req *services.SaveConversationRequest) (*models.Conversation, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, config.MaxConversationTitleLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	now := time.Now()
	conv := &models.Conversation{
		ID:        uuid.NewString(),
		Title:     req.Title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.conversations.CreateConversation(txCtx, conv); err != nil {
			return fmt.Errorf("create conversation: %w", err)
		}
		for i := range req.Messages {
			msg := req.Messages[i]
			msg.ConversationID = conv.ID
			if msg.ID == "" {
				msg.ID = uuid.NewString()
			}
			if msg.CreatedAt.IsZero() {
				msg.CreatedAt = now
			}
			if err := validateMessage(&msg); err != nil {
				return fmt.Errorf("%w: message %d: %s", domain.ErrValidation, i, err.Error())
			}
			if err := s.messages.AppendMessage(txCtx, &msg); err != nil {
				return fmt.Errorf("append message %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("conversation saved",
		"conversation_id", conv.ID,
		"title", conv.Title,
		"messages", len(req.Messages),
	)
	return conv, nil
}

// DeleteConversation deletes a conversation and its messages.
func (s *conversationService) DeleteConversation(ctx context.Context, id string) error {
	if err := s.conversations.DeleteConversation(ctx, id); err != nil {
		return err
	}
	s.logger.Info("conversation deleted", "conversation_id", id)
	return nil
}

var nodeTypes = []interface{}{
	models.NodeTypeQuery,
	models.NodeTypeAnswer,
	models.NodeTypeLog,
}

func validateMessage(msg *models.ConversationMessage) error {
	return validation.ValidateStruct(msg,
		validation.Field(&msg.ConversationID, validation.Required),
		validation.Field(&msg.NodeType, validation.Required, validation.In(nodeTypes...)),
		validation.Field(&msg.Sort, validation.Min(0)),
	)
}
