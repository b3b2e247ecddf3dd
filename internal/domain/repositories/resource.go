package repositories

import (
	"context"

	"agentchain/internal/domain/models"
)

// ResourceRepository persists reference documents.
type ResourceRepository interface {
	CreateResource(ctx context.Context, resource *models.Resource) error
	GetResource(ctx context.Context, id string) (*models.Resource, error)
	ListResources(ctx context.Context) ([]models.Resource, error)
	UpdateResource(ctx context.Context, resource *models.Resource) error
	DeleteResource(ctx context.Context, id string) error
}
