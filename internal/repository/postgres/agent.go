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

// PostgresAgentRepository implements the AgentRepository interface using PostgreSQL
type PostgresAgentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewAgentRepository creates a new PostgresAgentRepository
func NewAgentRepository(config *RepositoryConfig) repositories.AgentRepository {
	return &PostgresAgentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// CreateAgent inserts a new custom agent
func (r *PostgresAgentRepository) CreateAgent(ctx context.Context, agent *models.Agent) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, description, icon, category, color, system_prompt, model, temperature, max_tokens, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, r.tables.Agents)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		agent.ID,
		agent.Name,
		agent.Description,
		agent.Icon,
		agent.Category,
		agent.Color,
		agent.SystemPrompt,
		agent.Model,
		agent.Temperature,
		agent.MaxTokens,
		agent.CreatedAt,
		agent.UpdatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			// Query for the existing agent to get its ID
			existingID, queryErr := r.getExistingAgentID(ctx, agent.Name)
			if queryErr != nil {
				return fmt.Errorf("agent '%s' already exists: %w", agent.Name, domain.ErrConflict)
			}
			return &domain.ConflictError{
				Message:      fmt.Sprintf("agent '%s' already exists", agent.Name),
				ResourceType: "agent",
				ResourceID:   existingID,
			}
		}
		return fmt.Errorf("create agent: %w", err)
	}
	return nil
}

// getExistingAgentID queries for an existing agent by name
func (r *PostgresAgentRepository) getExistingAgentID(ctx context.Context, name string) (string, error) {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE name = $1`, r.tables.Agents)

	var id string
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, name).Scan(&id); err != nil {
		return "", fmt.Errorf("get existing agent ID: %w", err)
	}
	return id, nil
}

// GetAgent retrieves an agent by ID
func (r *PostgresAgentRepository) GetAgent(ctx context.Context, id string) (*models.Agent, error) {
	query := fmt.Sprintf(`
		SELECT id, name, description, icon, category, color, system_prompt, model, temperature, max_tokens, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Agents)

	var agent models.Agent
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&agent.ID,
		&agent.Name,
		&agent.Description,
		&agent.Icon,
		&agent.Category,
		&agent.Color,
		&agent.SystemPrompt,
		&agent.Model,
		&agent.Temperature,
		&agent.MaxTokens,
		&agent.CreatedAt,
		&agent.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("agent %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get agent: %w", err)
	}
	return &agent, nil
}

// ListAgents retrieves all custom agents, newest first
func (r *PostgresAgentRepository) ListAgents(ctx context.Context) ([]models.Agent, error) {
	query := fmt.Sprintf(`
		SELECT id, name, description, icon, category, color, system_prompt, model, temperature, max_tokens, created_at, updated_at
		FROM %s
		ORDER BY created_at DESC
	`, r.tables.Agents)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	var agents []models.Agent
	for rows.Next() {
		var agent models.Agent
		err := rows.Scan(
			&agent.ID,
			&agent.Name,
			&agent.Description,
			&agent.Icon,
			&agent.Category,
			&agent.Color,
			&agent.SystemPrompt,
			&agent.Model,
			&agent.Temperature,
			&agent.MaxTokens,
			&agent.CreatedAt,
			&agent.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		agents = append(agents, agent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate agents: %w", err)
	}
	return agents, nil
}

// UpdateAgent updates a custom agent
func (r *PostgresAgentRepository) UpdateAgent(ctx context.Context, agent *models.Agent) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $2, description = $3, icon = $4, category = $5, color = $6,
		    system_prompt = $7, model = $8, temperature = $9, max_tokens = $10, updated_at = $11
		WHERE id = $1
	`, r.tables.Agents)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query,
		agent.ID,
		agent.Name,
		agent.Description,
		agent.Icon,
		agent.Category,
		agent.Color,
		agent.SystemPrompt,
		agent.Model,
		agent.Temperature,
		agent.MaxTokens,
		agent.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update agent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("agent %s: %w", agent.ID, domain.ErrNotFound)
	}
	return nil
}

// DeleteAgent deletes a custom agent
func (r *PostgresAgentRepository) DeleteAgent(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Agents)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete agent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("agent %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
