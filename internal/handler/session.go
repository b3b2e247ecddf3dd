package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"agentchain/internal/domain"
	"agentchain/internal/domain/models"
	chainModel "agentchain/internal/domain/models/chain"
	"agentchain/internal/domain/services"
	"agentchain/internal/httputil"
	"agentchain/internal/service/chain"
)

// SessionHandler exposes the live conversation chain over HTTP. The process
// owns exactly one session; the session's own mutex serializes access, so the
// handler never locks.
type SessionHandler struct {
	session         *chain.Session
	agentService    services.AgentService
	resourceService services.ResourceService
	logger          *slog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(
	session *chain.Session,
	agentService services.AgentService,
	resourceService services.ResourceService,
	logger *slog.Logger,
) *SessionHandler {
	return &SessionHandler{
		session:         session,
		agentService:    agentService,
		resourceService: resourceService,
		logger:          logger,
	}
}

// sessionState is the wire representation of the live session
type sessionState struct {
	Nodes          []chainModel.Node `json:"nodes"`
	SelectedAgent  *models.AgentRef  `json:"selected_agent"`
	Busy           bool              `json:"busy"`
	ConversationID string            `json:"conversation_id,omitempty"`
}

func (h *SessionHandler) state() sessionState {
	return sessionState{
		Nodes:          h.session.Nodes(),
		SelectedAgent:  h.session.SelectedAgent(),
		Busy:           h.session.Busy(),
		ConversationID: h.session.ConversationID(),
	}
}

// GetSession returns the live node sequence and session flags
// GET /api/session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.state())
}

// editInputRequest is the body for replacing the current input's text
type editInputRequest struct {
	Content string `json:"content"`
}

// EditInput replaces the current input node's text
// PATCH /api/session/input
func (h *SessionHandler) EditInput(w http.ResponseWriter, r *http.Request) {
	var req editInputRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.session.EditCurrentInput(req.Content); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, h.state())
}

// selectAgentRequest is the body for choosing the next round's agent
type selectAgentRequest struct {
	AgentID string `json:"agent_id"`
}

// SelectAgent picks the agent for the next execution round. An empty agent_id
// clears the selection.
// POST /api/session/agent
func (h *SessionHandler) SelectAgent(w http.ResponseWriter, r *http.Request) {
	var req selectAgentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var ref *models.AgentRef
	if req.AgentID != "" {
		agent, err := h.agentService.GetAgent(r.Context(), req.AgentID)
		if err != nil {
			handleError(w, err)
			return
		}
		ref = agent.Ref()
	}

	if err := h.session.SelectAgent(ref); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, h.state())
}

// attachResourceRequest is the body for attaching a stored resource
type attachResourceRequest struct {
	ResourceID string `json:"resource_id"`
}

// AttachResource attaches a stored resource to the current input node
// POST /api/session/resources
func (h *SessionHandler) AttachResource(w http.ResponseWriter, r *http.Request) {
	var req attachResourceRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ResourceID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Resource ID is required")
		return
	}

	resource, err := h.resourceService.GetResource(r.Context(), req.ResourceID)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.session.AttachResource(resource.Ref()); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, h.state())
}

// DetachResource removes a resource from the current input node
// DELETE /api/session/resources/{id}
func (h *SessionHandler) DetachResource(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Resource ID is required")
		return
	}

	if err := h.session.DetachResource(id); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, h.state())
}

// Execute runs one execution round against the selected agent.
// POST /api/session/execute
//
// An executor failure still returns the session state: the round terminated
// in a failed marker the client can retry, so the state is the answer. A
// persistence failure does not fail the round either; the response carries a
// warning so the client can surface it.
func (h *SessionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	err := h.session.Execute(r.Context())
	h.respondRound(w, err)
}

// retryRequest is the body for retrying a failed round
type retryRequest struct {
	MarkerID string `json:"marker_id"`
}

// Retry re-runs a failed execution round
// POST /api/session/retry
func (h *SessionHandler) Retry(w http.ResponseWriter, r *http.Request) {
	var req retryRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.MarkerID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Marker ID is required")
		return
	}

	err := h.session.Retry(r.Context(), req.MarkerID)
	h.respondRound(w, err)
}

// respondRound maps an execution round's outcome to a response
func (h *SessionHandler) respondRound(w http.ResponseWriter, err error) {
	if err == nil {
		httputil.RespondJSON(w, http.StatusOK, h.state())
		return
	}

	var execErr *chain.ExecutionError
	var persistErr *domain.PersistenceError
	switch {
	case errors.As(err, &execErr):
		h.logger.Warn("execution round failed", "agent_id", execErr.AgentID, "error", execErr.Err)
		httputil.RespondJSON(w, http.StatusOK, struct {
			sessionState
			Error string `json:"error"`
		}{h.state(), execErr.Error()})
	case errors.As(err, &persistErr):
		h.logger.Warn("execution round persisted partially", "error", persistErr)
		httputil.RespondJSON(w, http.StatusOK, struct {
			sessionState
			Warning string `json:"warning"`
		}{h.state(), persistErr.Error()})
	default:
		handleError(w, err)
	}
}

// Clear resets the session to a single blank input node
// POST /api/session/clear
func (h *SessionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.session.Clear()
	httputil.RespondJSON(w, http.StatusOK, h.state())
}

// saveRequest is the body for snapshotting the session
type saveRequest struct {
	Title string `json:"title"`
}

// Save snapshots the live sequence as a new persisted conversation
// POST /api/session/save
func (h *SessionHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	conv, err := h.session.Save(r.Context(), req.Title)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, conv)
}

// Load replaces the live sequence with a reconstruction of a persisted
// conversation
// POST /api/session/load/{conversationId}
func (h *SessionHandler) Load(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("conversationId")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Conversation ID is required")
		return
	}

	if err := h.session.Load(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, h.state())
}

// HealthCheck is a simple health check endpoint
// GET /health
func (h *SessionHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now(),
	})
}
