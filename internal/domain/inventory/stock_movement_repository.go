package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/vansales/backend/internal/domain/shared"
)

// StockMovementRepository defines the interface for the van stock ledger.
// Movements are append-only; there is no update or delete.
type StockMovementRepository interface {
	// BalanceFor returns the agent's current balance for one product,
	// 0 when no movements exist.
	BalanceFor(ctx context.Context, agentID, productID uuid.UUID) (int64, error)

	// BalancesFor returns a snapshot of the agent's balances for every
	// product the agent has ever moved.
	BalancesFor(ctx context.Context, agentID uuid.UUID) (map[uuid.UUID]int64, error)

	// AppendAll appends the movements as a single all-or-nothing batch.
	// The append fails with LEDGER_WRITE_FAILED, leaving no movement
	// applied, when any resulting balance would go negative.
	AppendAll(ctx context.Context, movements []*StockMovement) error

	// FindByOrder returns the movements recorded for an order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]StockMovement, error)

	// ListForAgent returns the agent's movements newest first, with the
	// total count for pagination.
	ListForAgent(ctx context.Context, agentID uuid.UUID, filter shared.Filter) ([]StockMovement, int64, error)
}
