package handler

import (
	"github.com/gin-gonic/gin"

	dispatchapp "github.com/vansales/backend/internal/application/dispatch"
	salesapp "github.com/vansales/backend/internal/application/sales"
	"github.com/vansales/backend/internal/interfaces/http/dto"
)

// OrderHandler serves order intake and the dispatch decision surface.
type OrderHandler struct {
	BaseHandler
	orderService    *salesapp.OrderService
	dispatchService *dispatchapp.DispatchService
	queryService    *dispatchapp.QueryService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(
	orderService *salesapp.OrderService,
	dispatchService *dispatchapp.DispatchService,
	queryService *dispatchapp.QueryService,
) *OrderHandler {
	return &OrderHandler{
		orderService:    orderService,
		dispatchService: dispatchService,
		queryService:    queryService,
	}
}

// Create handles POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req salesapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// List handles GET /orders, the dispatcher work queue
func (h *OrderHandler) List(c *gin.Context) {
	var query dispatchapp.ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	// Set defaults
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = 20
	}

	orders, total, err := h.queryService.ListOrders(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, orders, total, query.Page, query.PageSize)
}

// GetByID handles GET /orders/:id
func (h *OrderHandler) GetByID(c *gin.Context) {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Dispatch handles POST /orders/:id/dispatch. The bearer token names the
// acting agent and the body must name the same one.
func (h *OrderHandler) Dispatch(c *gin.Context) {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req dispatchapp.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	tokenAgent, err := getAgentUUID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	if tokenAgent != req.AgentID {
		h.ErrorWithCode(c, dto.ErrCodeForbidden, "Token does not permit dispatching for this agent")
		return
	}

	result, err := h.dispatchService.ConfirmDispatch(c.Request.Context(), orderID, req.AgentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dispatchapp.ToDispatchResponse(result))
}

// Refuse handles POST /orders/:id/refuse
func (h *OrderHandler) Refuse(c *gin.Context) {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.dispatchService.RefuseOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, salesapp.ToOrderResponse(order))
}

// StockStatus handles GET /orders/:id/stock-status. Display only; the
// confirm path re-evaluates under the agent lock.
func (h *OrderHandler) StockStatus(c *gin.Context) {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var query dispatchapp.StockStatusQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	verdict, err := h.queryService.StockStatusFor(c.Request.Context(), orderID, query.AgentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, verdict)
}
