package handler

import (
	"log/slog"
	"net/http"

	"agentchain/internal/domain/models"
	"agentchain/internal/domain/services"
	"agentchain/internal/httputil"
)

// ConversationHandler handles persisted conversation HTTP requests
type ConversationHandler struct {
	conversationService services.ConversationService
	logger              *slog.Logger
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(conversationService services.ConversationService, logger *slog.Logger) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
		logger:              logger,
	}
}

// ListConversations lists all conversations with message counts
// GET /api/conversations
func (h *ConversationHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.conversationService.ListConversations(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	if summaries == nil {
		summaries = []models.ConversationSummary{}
	}
	httputil.RespondJSON(w, http.StatusOK, summaries)
}

// GetConversation returns the raw message log of a conversation
// GET /api/conversations/{id}
func (h *ConversationHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Conversation ID is required")
		return
	}

	messages, err := h.conversationService.GetMessages(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	if messages == nil {
		messages = []models.ConversationMessage{}
	}
	httputil.RespondJSON(w, http.StatusOK, messages)
}

// RenameConversation updates a conversation's title
// PATCH /api/conversations/{id}
func (h *ConversationHandler) RenameConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Conversation ID is required")
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.conversationService.RenameConversation(r.Context(), id, req.Title); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteConversation deletes a conversation and its messages
// DELETE /api/conversations/{id}
func (h *ConversationHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Conversation ID is required")
		return
	}

	if err := h.conversationService.DeleteConversation(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
