package services

import (
	"context"

	"agentchain/internal/domain/models"
)

// ResourceService handles reference document business logic
type ResourceService interface {
	// CreateResource stores an already-parsed reference document
	CreateResource(ctx context.Context, req *CreateResourceRequest) (*models.Resource, error)

	// GetResource retrieves a resource by ID
	GetResource(ctx context.Context, id string) (*models.Resource, error)

	// ListResources retrieves all stored resources
	ListResources(ctx context.Context) ([]models.Resource, error)

	// UpdateResource updates a resource's metadata
	UpdateResource(ctx context.Context, id string, req *UpdateResourceRequest) (*models.Resource, error)

	// DeleteResource deletes a resource
	DeleteResource(ctx context.Context, id string) error
}

// CreateResourceRequest is the DTO for storing a resource. Content arrives
// pre-parsed; file parsing is not this service's concern.
type CreateResourceRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Type          string `json:"type"`
	FileName      string `json:"file_name"`
	FileSize      int64  `json:"file_size"`
	ParsedContent string `json:"parsed_content"`
}

// UpdateResourceRequest is the DTO for updating resource metadata
type UpdateResourceRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}
