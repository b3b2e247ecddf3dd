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

// AgentHandler handles agent catalog HTTP requests
type AgentHandler struct {
	agentService services.AgentService
	executor     services.Executor
	logger       *slog.Logger
}

// NewAgentHandler creates a new agent handler
func NewAgentHandler(agentService services.AgentService, executor services.Executor, logger *slog.Logger) *AgentHandler {
	return &AgentHandler{
		agentService: agentService,
		executor:     executor,
		logger:       logger,
	}
}

// ListAgents returns built-in agents followed by custom agents
// GET /api/agents
func (h *AgentHandler) ListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.agentService.ListAgents(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, agents)
}

// CreateAgent creates a new custom agent
// POST /api/agents
// Returns 201 if created, 409 with existing agent if duplicate
func (h *AgentHandler) CreateAgent(w http.ResponseWriter, r *http.Request) {
	var req services.CreateAgentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	agent, err := h.agentService.CreateAgent(r.Context(), &req)
	if err != nil {
		HandleCreateConflict(w, err, func() (*models.Agent, error) {
			var conflictErr *domain.ConflictError
			if errors.As(err, &conflictErr) {
				return h.agentService.GetAgent(r.Context(), conflictErr.ResourceID)
			}
			return nil, err
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, agent)
}

// GetAgent retrieves an agent by ID
// GET /api/agents/{id}
func (h *AgentHandler) GetAgent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Agent ID is required")
		return
	}

	agent, err := h.agentService.GetAgent(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, agent)
}

// UpdateAgent updates a custom agent
// PUT /api/agents/{id}
func (h *AgentHandler) UpdateAgent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Agent ID is required")
		return
	}

	var req services.UpdateAgentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	agent, err := h.agentService.UpdateAgent(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, agent)
}

// DeleteAgent deletes a custom agent
// DELETE /api/agents/{id}
func (h *AgentHandler) DeleteAgent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Agent ID is required")
		return
	}

	if err := h.agentService.DeleteAgent(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// executeAgentRequest is the body for a direct agent execution
type executeAgentRequest struct {
	Input string `json:"input"`
}

// ExecuteAgent runs an agent directly against raw input, outside any session.
// POST /api/agents/{id}/execute
func (h *AgentHandler) ExecuteAgent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Agent ID is required")
		return
	}

	var req executeAgentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Input == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Input is required")
		return
	}

	result, err := h.executor.Execute(r.Context(), id, req.Input)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			handleError(w, err)
			return
		}
		h.logger.Error("direct agent execution failed", "agent_id", id, "error", err)
		httputil.RespondError(w, http.StatusBadGateway, err.Error())
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}
