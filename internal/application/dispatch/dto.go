package dispatch

import (
	"github.com/google/uuid"

	inventoryapp "github.com/vansales/backend/internal/application/inventory"
	salesapp "github.com/vansales/backend/internal/application/sales"
)

// DispatchRequest carries the agent confirming an order
type DispatchRequest struct {
	AgentID uuid.UUID `json:"agent_id" binding:"required"`
}

// StockStatusQuery selects the agent whose balances are evaluated
type StockStatusQuery struct {
	AgentID uuid.UUID `form:"agent_id" binding:"required"`
}

// ListOrdersQuery represents filter options for the order work queue
type ListOrdersQuery struct {
	Status   string `form:"status"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// DispatchResponse is the payload returned by a confirmed dispatch
type DispatchResponse struct {
	Order     salesapp.OrderResponse          `json:"order"`
	Movements []inventoryapp.MovementResponse `json:"movements"`
}

// ToDispatchResponse converts a dispatch result to a response DTO
func ToDispatchResponse(result *DispatchResult) DispatchResponse {
	movements := make([]inventoryapp.MovementResponse, len(result.Movements))
	for i, movement := range result.Movements {
		movements[i] = inventoryapp.ToMovementResponse(movement)
	}
	return DispatchResponse{
		Order:     salesapp.ToOrderResponse(result.Order),
		Movements: movements,
	}
}
