package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/vansales/backend/internal/domain/partner"
	"github.com/vansales/backend/internal/domain/shared"
)

// AgentService serves the agent directory. Agents are administered
// externally, so this is a read-only surface.
type AgentService struct {
	agentRepo partner.AgentRepository
}

// NewAgentService creates a new agent directory service
func NewAgentService(agentRepo partner.AgentRepository) *AgentService {
	return &AgentService{agentRepo: agentRepo}
}

// List returns a page of agents matching the filter
func (s *AgentService) List(ctx context.Context, filter AgentListFilter) ([]AgentResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.Search = filter.Search

	var (
		agents []partner.Agent
		err    error
	)
	if filter.ActiveOnly {
		domainFilter.Filters["active"] = true
		agents, err = s.agentRepo.FindActive(ctx, domainFilter)
	} else {
		agents, err = s.agentRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.agentRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToAgentResponses(agents), total, nil
}

// GetByID returns a single agent
func (s *AgentService) GetByID(ctx context.Context, agentID uuid.UUID) (*AgentResponse, error) {
	agent, err := s.agentRepo.FindByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	response := ToAgentResponse(agent)
	return &response, nil
}
