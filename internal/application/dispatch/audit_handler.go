package dispatch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vansales/backend/internal/domain/sales"
	"github.com/vansales/backend/internal/domain/shared"
)

// DispatchAuditHandler writes a structured audit line for every order that
// leaves the PENDING state.
type DispatchAuditHandler struct {
	logger *zap.Logger
}

// NewDispatchAuditHandler creates a new audit handler
func NewDispatchAuditHandler(logger *zap.Logger) *DispatchAuditHandler {
	return &DispatchAuditHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *DispatchAuditHandler) EventTypes() []string {
	return []string{sales.EventTypeOrderCompleted, sales.EventTypeOrderCancelled}
}

// Handle logs the order outcome carried by the event
func (h *DispatchAuditHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *sales.OrderCompletedEvent:
		h.logger.Info("Order completed",
			zap.String("order_id", e.OrderID.String()),
			zap.String("order_number", e.OrderNumber),
			zap.String("customer_id", e.CustomerID.String()),
			zap.String("agent_id", e.AgentID.String()),
			zap.Int("lines", len(e.Lines)),
			zap.String("total_amount", e.TotalAmount.String()),
		)
	case *sales.OrderCancelledEvent:
		h.logger.Info("Order cancelled",
			zap.String("order_id", e.OrderID.String()),
			zap.String("order_number", e.OrderNumber),
			zap.String("customer_id", e.CustomerID.String()),
		)
	default:
		h.logger.Error("unexpected event type",
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
	return nil
}

// Ensure DispatchAuditHandler implements shared.EventHandler
var _ shared.EventHandler = (*DispatchAuditHandler)(nil)
