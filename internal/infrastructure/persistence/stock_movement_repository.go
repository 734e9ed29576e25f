package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vansales/backend/internal/domain/inventory"
	"github.com/vansales/backend/internal/domain/shared"
)

// GormStockMovementRepository implements inventory.StockMovementRepository
// using GORM. Movements are append-only rows; balances are always derived
// by summation, never stored.
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// BalanceFor returns the agent's current balance for one product
func (r *GormStockMovementRepository) BalanceFor(ctx context.Context, agentID, productID uuid.UUID) (int64, error) {
	var balance int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.StockMovement{}).
		Where("agent_id = ? AND product_id = ?", agentID, productID).
		Select("COALESCE(SUM(quantity_delta), 0)").
		Scan(&balance).Error; err != nil {
		return 0, err
	}
	return balance, nil
}

// BalancesFor returns the agent's balances for every product the agent has
// ever moved
func (r *GormStockMovementRepository) BalancesFor(ctx context.Context, agentID uuid.UUID) (map[uuid.UUID]int64, error) {
	var rows []struct {
		ProductID uuid.UUID
		Balance   int64
	}
	if err := r.db.WithContext(ctx).
		Model(&inventory.StockMovement{}).
		Where("agent_id = ?", agentID).
		Select("product_id, COALESCE(SUM(quantity_delta), 0) AS balance").
		Group("product_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	balances := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		balances[row.ProductID] = row.Balance
	}
	return balances, nil
}

// AppendAll appends the movements as a single all-or-nothing batch. After
// inserting, every balance the batch touches is re-read inside the same
// transaction; a negative result rolls the whole batch back with
// LEDGER_WRITE_FAILED.
func (r *GormStockMovementRepository) AppendAll(ctx context.Context, movements []*inventory.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(movements).Error; err != nil {
			return err
		}

		type pair struct {
			agentID   uuid.UUID
			productID uuid.UUID
		}
		touched := make(map[pair]struct{}, len(movements))
		for _, movement := range movements {
			touched[pair{movement.AgentID, movement.ProductID}] = struct{}{}
		}

		for p := range touched {
			var balance int64
			if err := tx.Model(&inventory.StockMovement{}).
				Where("agent_id = ? AND product_id = ?", p.agentID, p.productID).
				Select("COALESCE(SUM(quantity_delta), 0)").
				Scan(&balance).Error; err != nil {
				return err
			}
			if balance < 0 {
				return shared.ErrLedgerWrite
			}
		}
		return nil
	})
}

// FindByOrder returns the movements recorded for an order
func (r *GormStockMovementRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("occurred_at ASC, created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// ListForAgent returns the agent's movements newest first
func (r *GormStockMovementRepository) ListForAgent(ctx context.Context, agentID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, int64, error) {
	var total int64
	countQuery := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&inventory.StockMovement{}).Where("agent_id = ?", agentID),
		filter,
	)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&inventory.StockMovement{}).Where("agent_id = ?", agentID),
		filter,
	).Order("occurred_at DESC, created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var movements []inventory.StockMovement
	if err := query.Find(&movements).Error; err != nil {
		return nil, 0, err
	}
	return movements, total, nil
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormStockMovementRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "kind":
			query = query.Where("kind = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		}
	}
	if filter.Search != "" {
		query = query.Where("note ILIKE ?", "%"+strings.TrimSpace(filter.Search)+"%")
	}
	return query
}

// Ensure GormStockMovementRepository implements StockMovementRepository
var _ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
