package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"agentchain/internal/domain"
	"agentchain/internal/domain/models"
	"agentchain/internal/domain/services"
	"agentchain/internal/httputil"
)

// ResourceHandler handles reference document HTTP requests
type ResourceHandler struct {
	resourceService services.ResourceService
	logger          *slog.Logger
}

// NewResourceHandler creates a new resource handler
func NewResourceHandler(resourceService services.ResourceService, logger *slog.Logger) *ResourceHandler {
	return &ResourceHandler{
		resourceService: resourceService,
		logger:          logger,
	}
}

// ListResources retrieves all stored resources
// GET /api/resources
func (h *ResourceHandler) ListResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.resourceService.ListResources(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resources)
}

// CreateResource stores an already-parsed reference document
// POST /api/resources
// Returns 201 if created, 409 with existing resource if duplicate
func (h *ResourceHandler) CreateResource(w http.ResponseWriter, r *http.Request) {
	var req services.CreateResourceRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resource, err := h.resourceService.CreateResource(r.Context(), &req)
	if err != nil {
		HandleCreateConflict(w, err, func() (*models.Resource, error) {
			var conflictErr *domain.ConflictError
			if errors.As(err, &conflictErr) {
				return h.resourceService.GetResource(r.Context(), conflictErr.ResourceID)
			}
			return nil, err
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, resource)
}

// GetResource retrieves a resource by ID
// GET /api/resources/{id}
func (h *ResourceHandler) GetResource(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Resource ID is required")
		return
	}

	resource, err := h.resourceService.GetResource(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resource)
}

// UpdateResource updates a resource's metadata
// PUT /api/resources/{id}
func (h *ResourceHandler) UpdateResource(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Resource ID is required")
		return
	}

	var req services.UpdateResourceRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resource, err := h.resourceService.UpdateResource(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resource)
}

// DeleteResource deletes a resource
// DELETE /api/resources/{id}
func (h *ResourceHandler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Resource ID is required")
		return
	}

	if err := h.resourceService.DeleteResource(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
