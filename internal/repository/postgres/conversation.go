package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"agentchain/internal/domain"
	"agentchain/internal/domain/models"
	"agentchain/internal/domain/repositories"
)

// PostgresConversationRepository implements the ConversationRepository interface using PostgreSQL
type PostgresConversationRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewConversationRepository creates a new PostgresConversationRepository
func NewConversationRepository(config *RepositoryConfig) repositories.ConversationRepository {
	return &PostgresConversationRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// CreateConversation inserts a new conversation record
func (r *PostgresConversationRepository) CreateConversation(ctx context.Context, conversation *models.Conversation) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`, r.tables.Conversations)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		conversation.ID,
		conversation.Title,
		conversation.CreatedAt,
		conversation.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}
	return nil
}

// GetConversation retrieves a conversation by ID
func (r *PostgresConversationRepository) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	query := fmt.Sprintf(`
		SELECT id, title, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Conversations)

	var conv models.Conversation
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&conv.ID,
		&conv.Title,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return &conv, nil
}

// ListConversations retrieves all conversations with message counts, most
// recently updated first
func (r *PostgresConversationRepository) ListConversations(ctx context.Context) ([]models.ConversationSummary, error) {
	query := fmt.Sprintf(`
		SELECT c.id, c.title, c.created_at, c.updated_at, COUNT(m.id)
		FROM %s c
		LEFT JOIN %s m ON m.conversation_id = c.id
		GROUP BY c.id, c.title, c.created_at, c.updated_at
		ORDER BY c.updated_at DESC
	`, r.tables.Conversations, r.tables.Messages)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var summaries []models.ConversationSummary
	for rows.Next() {
		var s models.ConversationSummary
		err := rows.Scan(&s.ID, &s.Title, &s.CreatedAt, &s.UpdatedAt, &s.MessageCount)
		if err != nil {
			return nil, fmt.Errorf("scan conversation summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}
	return summaries, nil
}

// UpdateConversationTitle updates a conversation's title
func (r *PostgresConversationRepository) UpdateConversationTitle(ctx context.Context, id, title string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET title = $2, updated_at = NOW() WHERE id = $1
	`, r.tables.Conversations)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, title)
	if err != nil {
		return fmt.Errorf("update conversation title: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// DeleteConversation deletes a conversation; messages go with it via the
// foreign key cascade
func (r *PostgresConversationRepository) DeleteConversation(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Conversations)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// PostgresMessageRepository implements the MessageRepository interface using PostgreSQL
type PostgresMessageRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewMessageRepository creates a new PostgresMessageRepository
func NewMessageRepository(config *RepositoryConfig) repositories.MessageRepository {
	return &PostgresMessageRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// AppendMessage appends one message to a conversation's log. The log is
// append-only; there is no update or delete.
func (r *PostgresMessageRepository) AppendMessage(ctx context.Context, message *models.ConversationMessage) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, conversation_id, node_type, content, sort, agent_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.tables.Messages)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		message.ID,
		message.ConversationID,
		string(message.NodeType),
		message.Content,
		message.Sort,
		message.AgentID,
		message.CreatedAt,
	)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("conversation %s: %w", message.ConversationID, domain.ErrNotFound)
		}
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// ListMessages retrieves all messages for a conversation. No ordering
// guarantee; callers sort by the Sort key.
func (r *PostgresMessageRepository) ListMessages(ctx context.Context, conversationID string) ([]models.ConversationMessage, error) {
	query := fmt.Sprintf(`
		SELECT id, conversation_id, node_type, content, sort, agent_id, created_at
		FROM %s
		WHERE conversation_id = $1
	`, r.tables.Messages)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []models.ConversationMessage
	for rows.Next() {
		var m models.ConversationMessage
		var nodeType string
		err := rows.Scan(
			&m.ID,
			&m.ConversationID,
			&nodeType,
			&m.Content,
			&m.Sort,
			&m.AgentID,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.NodeType = models.NodeType(nodeType)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}
