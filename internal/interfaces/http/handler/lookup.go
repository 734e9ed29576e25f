package handler

import (
	"github.com/gin-gonic/gin"

	salesapp "github.com/vansales/backend/internal/application/sales"
)

// LookupHandler serves the reference directories used during order intake.
type LookupHandler struct {
	BaseHandler
	lookupService *salesapp.LookupService
}

// NewLookupHandler creates a new lookup handler
func NewLookupHandler(lookupService *salesapp.LookupService) *LookupHandler {
	return &LookupHandler{lookupService: lookupService}
}

// ListProducts handles GET /products
func (h *LookupHandler) ListProducts(c *gin.Context) {
	var filter salesapp.ProductListFilter
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

	products, total, err := h.lookupService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// ListCustomers handles GET /customers
func (h *LookupHandler) ListCustomers(c *gin.Context) {
	var filter salesapp.CustomerListFilter
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

	customers, total, err := h.lookupService.ListCustomers(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, customers, total, filter.Page, filter.PageSize)
}
