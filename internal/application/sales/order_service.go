package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vansales/backend/internal/domain/catalog"
	"github.com/vansales/backend/internal/domain/partner"
	"github.com/vansales/backend/internal/domain/sales"
	"github.com/vansales/backend/internal/domain/shared"
)

// OrderService handles order intake. Dispatching and refusing orders is the
// dispatch context's job; this service only creates and reads them.
type OrderService struct {
	orderRepo      sales.OrderRepository
	customerRepo   partner.CustomerRepository
	productRepo    catalog.ProductRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new order intake service
func NewOrderService(
	orderRepo sales.OrderRepository,
	customerRepo partner.CustomerRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create builds a PENDING order from the request. Customer name and email
// are denormalized onto the order, product names and prices come from the
// catalog unless a line carries an explicit unit price.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	products, err := s.loadProducts(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	lines := make([]sales.LineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		product, ok := products[line.ProductID]
		if !ok {
			return nil, shared.NewDomainError("NOT_FOUND",
				fmt.Sprintf("Product %s not found", line.ProductID))
		}
		if !product.IsActive() {
			return nil, shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Product %s is discontinued", product.Code))
		}
		unitPrice := product.ListPrice
		if line.UnitPrice != nil {
			unitPrice = *line.UnitPrice
		}
		lines = append(lines, sales.LineInput{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   unitPrice,
		})
	}

	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	var orderDate time.Time
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}

	order, err := sales.NewOrder(orderNumber, customer.ID, customer.Name, customer.Email, orderDate, lines)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)

	s.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("customer_id", order.CustomerID.String()),
		zap.Int("lines", order.LineCount()))

	response := ToOrderResponse(order)
	return &response, nil
}

// GetByID returns the order with its lines
func (s *OrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// loadProducts fetches every distinct product referenced by the request
func (s *OrderService) loadProducts(ctx context.Context, lines []CreateOrderLineRequest) (map[uuid.UUID]*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return byID, nil
}

func (s *OrderService) publishEvents(ctx context.Context, order *sales.Order) {
	if s.eventPublisher == nil {
		order.ClearDomainEvents()
		return
	}
	for _, event := range order.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.String("order_id", order.ID.String()),
				zap.Error(err))
		}
	}
	order.ClearDomainEvents()
}
