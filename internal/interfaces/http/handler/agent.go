package handler

import (
	"github.com/gin-gonic/gin"

	inventoryapp "github.com/vansales/backend/internal/application/inventory"
)

// AgentHandler serves the agent directory and the van stock ledger.
type AgentHandler struct {
	BaseHandler
	agentService    *inventoryapp.AgentService
	vanStockService *inventoryapp.VanStockService
}

// NewAgentHandler creates a new agent handler
func NewAgentHandler(agentService *inventoryapp.AgentService, vanStockService *inventoryapp.VanStockService) *AgentHandler {
	return &AgentHandler{
		agentService:    agentService,
		vanStockService: vanStockService,
	}
}

// List handles GET /agents
func (h *AgentHandler) List(c *gin.Context) {
	var filter inventoryapp.AgentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	agents, total, err := h.agentService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, agents, total, filter.Page, filter.PageSize)
}

// GetByID handles GET /agents/:id
func (h *AgentHandler) GetByID(c *gin.Context) {
	agentID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid agent ID format")
		return
	}

	agent, err := h.agentService.GetByID(c.Request.Context(), agentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, agent)
}

// Stock handles GET /agents/:id/stock, the current van balance snapshot
func (h *AgentHandler) Stock(c *gin.Context) {
	agentID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid agent ID format")
		return
	}

	balances, err := h.vanStockService.Balances(c.Request.Context(), agentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, balances)
}

// Movements handles GET /agents/:id/movements, the ledger audit trail
func (h *AgentHandler) Movements(c *gin.Context) {
	agentID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid agent ID format")
		return
	}

	var filter inventoryapp.MovementListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	movements, total, err := h.vanStockService.Movements(c.Request.Context(), agentID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, movements, total, filter.Page, filter.PageSize)
}

// Replenish handles POST /agents/:id/replenishments. Any authenticated
// agent may record a loading for any van; depot staff load on behalf of
// drivers.
func (h *AgentHandler) Replenish(c *gin.Context) {
	agentID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid agent ID format")
		return
	}

	var req inventoryapp.RecordReplenishmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	movements, err := h.vanStockService.Replenish(c.Request.Context(), agentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, movements)
}
