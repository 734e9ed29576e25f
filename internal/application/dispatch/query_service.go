package dispatch

import (
	"context"
	"strings"

	"github.com/google/uuid"

	salesapp "github.com/vansales/backend/internal/application/sales"
	"github.com/vansales/backend/internal/domain/inventory"
	"github.com/vansales/backend/internal/domain/partner"
	"github.com/vansales/backend/internal/domain/sales"
	"github.com/vansales/backend/internal/domain/shared"
)

// StatusFilterAll matches every order status in the work queue listing
const StatusFilterAll = "all"

// QueryService serves the dispatcher-facing read side: the order work queue
// and the stock status preview.
type QueryService struct {
	orderRepo    sales.OrderRepository
	agentRepo    partner.AgentRepository
	movementRepo inventory.StockMovementRepository
}

// NewQueryService creates a new dispatch query service
func NewQueryService(
	orderRepo sales.OrderRepository,
	agentRepo partner.AgentRepository,
	movementRepo inventory.StockMovementRepository,
) *QueryService {
	return &QueryService{
		orderRepo:    orderRepo,
		agentRepo:    agentRepo,
		movementRepo: movementRepo,
	}
}

// ListOrders returns a page of orders, newest first. Status filters are
// case-insensitive; search matches order number, order id, customer name
// and customer email.
func (s *QueryService) ListOrders(ctx context.Context, query ListOrdersQuery) ([]salesapp.OrderListItemResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if query.Page > 0 {
		domainFilter.Page = query.Page
	}
	if query.PageSize > 0 {
		domainFilter.PageSize = query.PageSize
	}
	domainFilter.Search = strings.TrimSpace(query.Search)

	status := strings.TrimSpace(query.Status)
	if status != "" && !strings.EqualFold(status, StatusFilterAll) {
		parsed, err := sales.ParseOrderStatus(status)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Filters["status"] = string(parsed)
	}

	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return salesapp.ToOrderListItemResponses(orders), total, nil
}

// StockStatusFor previews whether the agent's van stock covers the order.
// Display only: no lock is taken and the confirm path re-evaluates.
func (s *QueryService) StockStatusFor(ctx context.Context, orderID, agentID uuid.UUID) (*inventory.AvailabilityResult, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.agentRepo.FindByID(ctx, agentID); err != nil {
		return nil, err
	}
	balances, err := s.movementRepo.BalancesFor(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return inventory.EvaluateAvailability(demandsFromLines(order.Lines), balances)
}
