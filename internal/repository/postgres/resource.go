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

// PostgresResourceRepository implements the ResourceRepository interface using PostgreSQL
type PostgresResourceRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewResourceRepository creates a new PostgresResourceRepository
func NewResourceRepository(config *RepositoryConfig) repositories.ResourceRepository {
	return &PostgresResourceRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// CreateResource inserts a new resource
func (r *PostgresResourceRepository) CreateResource(ctx context.Context, resource *models.Resource) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, title, description, type, file_name, file_size, parsed_content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.tables.Resources)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		resource.ID,
		resource.Title,
		resource.Description,
		resource.Type,
		resource.FileName,
		resource.FileSize,
		resource.ParsedContent,
		resource.CreatedAt,
		resource.UpdatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			// Query for the existing resource to get its ID
			existingID, queryErr := r.getExistingResourceID(ctx, resource.Title)
			if queryErr != nil {
				return fmt.Errorf("resource '%s' already exists: %w", resource.Title, domain.ErrConflict)
			}
			return &domain.ConflictError{
				Message:      fmt.Sprintf("resource '%s' already exists", resource.Title),
				ResourceType: "resource",
				ResourceID:   existingID,
			}
		}
		return fmt.Errorf("create resource: %w", err)
	}
	return nil
}

// getExistingResourceID queries for an existing resource by title
func (r *PostgresResourceRepository) getExistingResourceID(ctx context.Context, title string) (string, error) {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE title = $1`, r.tables.Resources)

	var id string
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, title).Scan(&id); err != nil {
		return "", fmt.Errorf("get existing resource ID: %w", err)
	}
	return id, nil
}

// GetResource retrieves a resource by ID
func (r *PostgresResourceRepository) GetResource(ctx context.Context, id string) (*models.Resource, error) {
	query := fmt.Sprintf(`
		SELECT id, title, description, type, file_name, file_size, parsed_content, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Resources)

	var resource models.Resource
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&resource.ID,
		&resource.Title,
		&resource.Description,
		&resource.Type,
		&resource.FileName,
		&resource.FileSize,
		&resource.ParsedContent,
		&resource.CreatedAt,
		&resource.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("resource %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get resource: %w", err)
	}
	return &resource, nil
}

// ListResources retrieves all resources, newest first
func (r *PostgresResourceRepository) ListResources(ctx context.Context) ([]models.Resource, error) {
	query := fmt.Sprintf(`
		SELECT id, title, description, type, file_name, file_size, parsed_content, created_at, updated_at
		FROM %s
		ORDER BY created_at DESC
	`, r.tables.Resources)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	var resources []models.Resource
	for rows.Next() {
		var resource models.Resource
		err := rows.Scan(
			&resource.ID,
			&resource.Title,
			&resource.Description,
			&resource.Type,
			&resource.FileName,
			&resource.FileSize,
			&resource.ParsedContent,
			&resource.CreatedAt,
			&resource.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		resources = append(resources, resource)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resources: %w", err)
	}
	return resources, nil
}

// UpdateResource updates a resource
func (r *PostgresResourceRepository) UpdateResource(ctx context.Context, resource *models.Resource) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $2, description = $3, updated_at = $4
		WHERE id = $1
	`, r.tables.Resources)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query,
		resource.ID,
		resource.Title,
		resource.Description,
		resource.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update resource: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("resource %s: %w", resource.ID, domain.ErrNotFound)
	}
	return nil
}

// DeleteResource deletes a resource
func (r *PostgresResourceRepository) DeleteResource(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Resources)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("resource %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
