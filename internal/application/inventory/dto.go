package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/vansales/backend/internal/domain/inventory"
	"github.com/vansales/backend/internal/domain/partner"
)

// ReplenishmentLineRequest represents one product loaded onto the van
type ReplenishmentLineRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"required,gt=0"`
	Note      string    `json:"note" binding:"omitempty,max=255"`
}

// RecordReplenishmentRequest represents a request to record replenishments
type RecordReplenishmentRequest struct {
	Lines []ReplenishmentLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// MovementListFilter represents filter options for the movement audit trail
type MovementListFilter struct {
	Kind     string `form:"kind"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// AgentListFilter represents filter options for the agent directory
type AgentListFilter struct {
	Search     string `form:"search"`
	ActiveOnly bool   `form:"active_only"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// MovementResponse represents a stock movement in API responses
type MovementResponse struct {
	ID            uuid.UUID  `json:"id"`
	AgentID       uuid.UUID  `json:"agent_id"`
	ProductID     uuid.UUID  `json:"product_id"`
	QuantityDelta int64      `json:"quantity_delta"`
	Kind          string     `json:"kind"`
	OrderID       *uuid.UUID `json:"order_id,omitempty"`
	Note          string     `json:"note,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// VanBalanceResponse represents one product balance in a van stock snapshot
type VanBalanceResponse struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductCode string    `json:"product_code,omitempty"`
	ProductName string    `json:"product_name,omitempty"`
	Quantity    int64     `json:"quantity"`
}

// AgentResponse represents an agent in API responses
type AgentResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToMovementResponse converts a domain movement to a response DTO
func ToMovementResponse(movement *inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:            movement.ID,
		AgentID:       movement.AgentID,
		ProductID:     movement.ProductID,
		QuantityDelta: movement.QuantityDelta,
		Kind:          string(movement.Kind),
		OrderID:       movement.OrderID,
		Note:          movement.Note,
		OccurredAt:    movement.OccurredAt,
		CreatedAt:     movement.CreatedAt,
	}
}

// ToMovementResponses converts a slice of domain movements to response DTOs
func ToMovementResponses(movements []inventory.StockMovement) []MovementResponse {
	responses := make([]MovementResponse, len(movements))
	for i := range movements {
		responses[i] = ToMovementResponse(&movements[i])
	}
	return responses
}

// ToAgentResponse converts a domain agent to a response DTO
func ToAgentResponse(agent *partner.Agent) AgentResponse {
	return AgentResponse{
		ID:        agent.ID,
		Name:      agent.Name,
		Phone:     agent.Phone,
		Active:    agent.Active,
		CreatedAt: agent.CreatedAt,
		UpdatedAt: agent.UpdatedAt,
	}
}

// ToAgentResponses converts a slice of domain agents to response DTOs
func ToAgentResponses(agents []partner.Agent) []AgentResponse {
	responses := make([]AgentResponse, len(agents))
	for i := range agents {
		responses[i] = ToAgentResponse(&agents[i])
	}
	return responses
}
