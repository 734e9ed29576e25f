package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/vansales/backend/internal/domain/shared"
)

// AgentRepository defines the interface for agent persistence
type AgentRepository interface {
	// FindByID finds an agent by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Agent, error)

	// FindAll finds all agents matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Agent, error)

	// FindActive finds all active agents
	FindActive(ctx context.Context, filter shared.Filter) ([]Agent, error)

	// Count counts agents matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates an agent
	Save(ctx context.Context, agent *Agent) error
}
