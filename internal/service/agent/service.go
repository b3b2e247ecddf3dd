package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"agentchain/internal/catalog"
	"agentchain/internal/config"
	"agentchain/internal/domain"
	"agentchain/internal/domain/models"
	"agentchain/internal/domain/repositories"
	"agentchain/internal/domain/services"
)

// agentService implements the AgentService interface over the built-in
// catalog plus the persisted custom agent store.
type agentService struct {
	repo         repositories.AgentRepository
	catalog      *catalog.Catalog
	defaultModel string
	logger       *slog.Logger
}

// NewService creates a new agent service. defaultModel is applied to custom
// agents created without an explicit model.
func NewService(repo repositories.AgentRepository, cat *catalog.Catalog, defaultModel string, logger *slog.Logger) services.AgentService {
	return &agentService{
		repo:         repo,
		catalog:      cat,
		defaultModel: defaultModel,
		logger:       logger,
	}
}

// CreateAgent creates a new custom agent.
func (s *agentService) CreateAgent(ctx context.Context, req *services.CreateAgentRequest) (*models.Agent, error) {
	if req.Model == "" {
		req.Model = s.defaultModel
	}
	if err := validateCreate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	now := time.Now()
	agent := &models.Agent{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Description:  req.Description,
		Icon:         req.Icon,
		Category:     req.Category,
		Color:        req.Color,
		SystemPrompt: req.SystemPrompt,
		Model:        req.Model,
		Temperature:  req.Temperature,
		MaxTokens:    req.MaxTokens,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateAgent(ctx, agent); err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}

	s.logger.Info("agent created", "agent_id", agent.ID, "name", agent.Name)
	return agent, nil
}

// GetAgent retrieves an agent by ID, checking built-ins first.
func (s *agentService) GetAgent(ctx context.Context, id string) (*models.Agent, error) {
	if builtin, ok := s.catalog.Get(id); ok {
		return builtin, nil
	}
	agent, err := s.repo.GetAgent(ctx, id)
	if err != nil {
		return nil, err
	}
	return agent, nil
}

// ListAgents returns built-in agents followed by custom agents.
func (s *agentService) ListAgents(ctx context.Context) ([]models.Agent, error) {
	custom, err := s.repo.ListAgents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	return append(s.catalog.Agents(), custom...), nil
}

// UpdateAgent updates a custom agent. Built-in agents are read-only.
func (s *agentService) UpdateAgent(ctx context.Context, id string, req *services.UpdateAgentRequest) (*models.Agent, error) {
	if s.catalog.Has(id) {
		return nil, &domain.ValidationError{Message: "built-in agents are read-only"}
	}

	agent, err := s.repo.GetAgent(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		agent.Name = *req.Name
	}
	if req.Description != nil {
		agent.Description = *req.Description
	}
	if req.Icon != nil {
		agent.Icon = *req.Icon
	}
	if req.Category != nil {
		agent.Category = *req.Category
	}
	if req.Color != nil {
		agent.Color = *req.Color
	}
	if req.SystemPrompt != nil {
		agent.SystemPrompt = *req.SystemPrompt
	}
	if req.Model != nil {
		agent.Model = *req.Model
	}
	if req.Temperature != nil {
		agent.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		agent.MaxTokens = *req.MaxTokens
	}
	agent.UpdatedAt = time.Now()

	if err := validateAgent(agent); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	if err := s.repo.UpdateAgent(ctx, agent); err != nil {
		return nil, fmt.Errorf("update agent: %w", err)
	}
	return agent, nil
}

// DeleteAgent deletes a custom agent. Built-in agents are read-only.
func (s *agentService) DeleteAgent(ctx context.Context, id string) error {
	if s.catalog.Has(id) {
		return &domain.ValidationError{Message: "built-in agents are read-only"}
	}
	if err := s.repo.DeleteAgent(ctx, id); err != nil {
		return err
	}
	s.logger.Info("agent deleted", "agent_id", id)
	return nil
}

var agentCategories = []interface{}{"analysis", "validation", "generation", "optimization"}

func validateCreate(req *services.CreateAgentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxAgentNameLength)),
		validation.Field(&req.Description, validation.Length(0, config.MaxDescriptionLength)),
		validation.Field(&req.Category, validation.Required, validation.In(agentCategories...)),
		validation.Field(&req.SystemPrompt, validation.Required),
		validation.Field(&req.Model, validation.Required),
		validation.Field(&req.Temperature, validation.Min(0.0), validation.Max(2.0)),
		validation.Field(&req.MaxTokens, validation.Required, validation.Min(1), validation.Max(32768)),
	)
}

func validateAgent(agent *models.Agent) error {
	return validation.ValidateStruct(agent,
		validation.Field(&agent.Name, validation.Required, validation.Length(1, config.MaxAgentNameLength)),
		validation.Field(&agent.Description, validation.Length(0, config.MaxDescriptionLength)),
		validation.Field(&agent.Category, validation.Required, validation.In(agentCategories...)),
		validation.Field(&agent.SystemPrompt, validation.Required),
		validation.Field(&agent.Model, validation.Required),
		validation.Field(&agent.Temperature, validation.Min(0.0), validation.Max(2.0)),
		validation.Field(&agent.MaxTokens, validation.Required, validation.Min(1), validation.Max(32768)),
	)
}
