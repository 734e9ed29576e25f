package sales

import (
	"context"

	"github.com/google/uuid"
	"github.com/vansales/backend/internal/domain/shared"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order with its lines by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order with its lines by order number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindAll finds orders with filtering and pagination.
	// The filter's "status" entry narrows by status and Search matches
	// order number, order id, customer name, and customer email.
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates an order together with its lines
	Save(ctx context.Context, order *Order) error

	// SaveWithLock saves with optimistic locking (version check).
	// Returns CONCURRENCY_CONFLICT if the stored version has moved on.
	SaveWithLock(ctx context.Context, order *Order) error

	// TransitionStatus performs a single conditional status update:
	// the row is touched only when its current status equals from.
	// Returns NOT_FOUND when the order does not exist and INVALID_STATE
	// when it exists in a different status.
	TransitionStatus(ctx context.Context, orderID uuid.UUID, from, to OrderStatus) error

	// CountByStatus counts orders in the given status
	CountByStatus(ctx context.Context, status OrderStatus) (int64, error)

	// GenerateOrderNumber generates the next unique order number
	GenerateOrderNumber(ctx context.Context) (string, error)
}
