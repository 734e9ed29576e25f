package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/vansales/backend/internal/domain/shared"
)

// MovementKind represents the kind of stock movement
type MovementKind string

const (
	// MovementKindSale represents stock leaving the van through a dispatched order
	MovementKindSale MovementKind = "SALE"
	// MovementKindReplenishment represents stock loaded onto the van
	MovementKindReplenishment MovementKind = "REPLENISHMENT"
)

// String returns the string representation of MovementKind
func (k MovementKind) String() string {
	return string(k)
}

// IsValid returns true if the movement kind is valid
func (k MovementKind) IsValid() bool {
	switch k {
	case MovementKindSale, MovementKindReplenishment:
		return true
	}
	return false
}

// StockMovement represents an immutable entry in the van stock ledger.
// Once created, movements are never modified - corrections are made with
// new movements. An agent's balance for a product is the sum of all
// quantity deltas for the (agent, product) pair.
type StockMovement struct {
	shared.BaseEntity
	AgentID       uuid.UUID    `gorm:"type:uuid;not null;index:idx_stock_movement_agent_product,priority:1"`
	ProductID     uuid.UUID    `gorm:"type:uuid;not null;index:idx_stock_movement_agent_product,priority:2"`
	QuantityDelta int64        `gorm:"not null"` // Signed; negative for sale deductions
	Kind          MovementKind `gorm:"type:varchar(20);not null;index"`
	OrderID       *uuid.UUID   `gorm:"type:uuid;index"` // Set for SALE movements
	Note          string       `gorm:"type:varchar(255)"`
	OccurredAt    time.Time    `gorm:"type:timestamptz;not null;index"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewSaleMovement creates a ledger entry deducting quantity units of a
// product from the agent's van for a dispatched order. The stored delta
// is negative.
func NewSaleMovement(agentID, productID, orderID uuid.UUID, quantity int64) (*StockMovement, error) {
	if agentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_AGENT", "Agent ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Sale movements require an order reference")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	return &StockMovement{
		BaseEntity:    shared.NewBaseEntity(),
		AgentID:       agentID,
		ProductID:     productID,
		QuantityDelta: -quantity,
		Kind:          MovementKindSale,
		OrderID:       &orderID,
		OccurredAt:    time.Now(),
	}, nil
}

// NewReplenishmentMovement creates a ledger entry adding quantity units of
// a product to the agent's van.
func NewReplenishmentMovement(agentID, productID uuid.UUID, quantity int64) (*StockMovement, error) {
	if agentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_AGENT", "Agent ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	return &StockMovement{
		BaseEntity:    shared.NewBaseEntity(),
		AgentID:       agentID,
		ProductID:     productID,
		QuantityDelta: quantity,
		Kind:          MovementKindReplenishment,
		OccurredAt:    time.Now(),
	}, nil
}

// WithNote sets a free-text note on the movement
func (m *StockMovement) WithNote(note string) *StockMovement {
	m.Note = note
	return m
}

// WithOccurredAt sets the occurrence time of the movement
func (m *StockMovement) WithOccurredAt(at time.Time) *StockMovement {
	m.OccurredAt = at
	return m
}

// Magnitude returns the unsigned size of the movement
func (m *StockMovement) Magnitude() int64 {
	if m.QuantityDelta < 0 {
		return -m.QuantityDelta
	}
	return m.QuantityDelta
}

// IsSale returns true if this movement deducts stock for an order
func (m *StockMovement) IsSale() bool {
	return m.Kind == MovementKindSale
}

// IsReplenishment returns true if this movement loads stock onto the van
func (m *StockMovement) IsReplenishment() bool {
	return m.Kind == MovementKindReplenishment
}
