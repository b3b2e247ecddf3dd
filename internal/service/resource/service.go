package resource

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"agentchain/internal/config"
	"agentchain/internal/domain"
	"agentchain/internal/domain/models"
	"agentchain/internal/domain/repositories"
	"agentchain/internal/domain/services"
)

// resourceService implements the ResourceService interface
type resourceService struct {
	repo   repositories.ResourceRepository
	logger *slog.Logger
}

// NewService creates a new resource service.
func NewService(repo repositories.ResourceRepository, logger *slog.Logger) services.ResourceService {
	return &resourceService{
		repo:   repo,
		logger: logger,
	}
}

// CreateResource stores an already-parsed reference document.
func (s *resourceService) CreateResource(ctx context.Context, req *services.CreateResourceRequest) (*models.Resource, error) {
	if err := validateCreate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	now := time.Now()
	resource := &models.Resource{
		ID:            uuid.NewString(),
		Title:         req.Title,
		Description:   req.Description,
		Type:          req.Type,
		FileName:      req.FileName,
		FileSize:      req.FileSize,
		ParsedContent: req.ParsedContent,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.CreateResource(ctx, resource); err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	s.logger.Info("resource created", "resource_id", resource.ID, "title", resource.Title)
	return resource, nil
}

// GetResource retrieves a resource by ID.
func (s *resourceService) GetResource(ctx context.Context, id string) (*models.Resource, error) {
	return s.repo.GetResource(ctx, id)
}

// ListResources retrieves all stored resources.
func (s *resourceService) ListResources(ctx context.Context) ([]models.Resource, error) {
	return s.repo.ListResources(ctx)
}

// UpdateResource updates a resource's metadata.
func (s *resourceService) UpdateResource(ctx context.Context, id string, req *services.UpdateResourceRequest) (*models.Resource, error) {
	resource, err := s.repo.GetResource(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		resource.Title = *req.Title
	}
	if req.Description != nil {
		resource.Description = *req.Description
	}
	resource.UpdatedAt = time.Now()

	if err := validation.ValidateStruct(resource,
		validation.Field(&resource.Title, validation.Required, validation.Length(1, config.MaxResourceTitleLength)),
		validation.Field(&resource.Description, validation.Length(0, config.MaxDescriptionLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	if err := s.repo.UpdateResource(ctx, resource); err != nil {
		return nil, fmt.Errorf("update resource: %w", err)
	}
	return resource, nil
}

// DeleteResource deletes a resource.
func (s *resourceService) DeleteResource(ctx context.Context, id string) error {
	if err := s.repo.DeleteResource(ctx, id); err != nil {
		return err
	}
	s.logger.Info("resource deleted", "resource_id", id)
	return nil
}

var resourceTypes = []interface{}{
	models.ResourceTypePDF,
	models.ResourceTypeMarkdown,
	models.ResourceTypeText,
}

func validateCreate(req *services.CreateResourceRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, config.MaxResourceTitleLength)),
		validation.Field(&req.Description, validation.Length(0, config.MaxDescriptionLength)),
		validation.Field(&req.Type, validation.Required, validation.In(resourceTypes...)),
		validation.Field(&req.FileName, validation.Required),
		validation.Field(&req.FileSize, validation.Min(int64(0))),
		validation.Field(&req.ParsedContent, validation.Required),
	)
}
