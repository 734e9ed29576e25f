package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vansales/backend/internal/domain/sales"
	"github.com/vansales/backend/internal/domain/shared"
)

// SalesOrderModel is the persistence model for the Order aggregate root.
type SalesOrderModel struct {
	AggregateModel
	OrderNumber   string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	CustomerName  string                `gorm:"type:varchar(200);not null"`
	CustomerEmail string                `gorm:"type:varchar(200)"`
	OrderDate     time.Time             `gorm:"type:timestamptz;not null"`
	Lines         []SalesOrderLineModel `gorm:"foreignKey:OrderID;references:ID"`
	TotalAmount   decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	Status        sales.OrderStatus     `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	CompletedAt   *time.Time
	CancelledAt   *time.Time
}

// TableName returns the table name for GORM
func (SalesOrderModel) TableName() string {
	return "sales_orders"
}

// SalesOrderLineModel is the persistence model for one order line.
type SalesOrderLineModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	LineNumber  int             `gorm:"not null"`
	Quantity    int64           `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SalesOrderLineModel) TableName() string {
	return "sales_order_lines"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *SalesOrderModel) ToDomain() *sales.Order {
	order := &sales.Order{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		OrderNumber:   m.OrderNumber,
		CustomerID:    m.CustomerID,
		CustomerName:  m.CustomerName,
		CustomerEmail: m.CustomerEmail,
		OrderDate:     m.OrderDate,
		TotalAmount:   m.TotalAmount,
		Status:        m.Status,
		CompletedAt:   m.CompletedAt,
		CancelledAt:   m.CancelledAt,
	}
	order.Lines = make([]sales.OrderLine, len(m.Lines))
	for i := range m.Lines {
		order.Lines[i] = m.Lines[i].ToDomain()
	}
	return order
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *SalesOrderModel) FromDomain(order *sales.Order) {
	m.FromDomainAggregateRoot(order.BaseAggregateRoot)
	m.OrderNumber = order.OrderNumber
	m.CustomerID = order.CustomerID
	m.CustomerName = order.CustomerName
	m.CustomerEmail = order.CustomerEmail
	m.OrderDate = order.OrderDate
	m.TotalAmount = order.TotalAmount
	m.Status = order.Status
	m.CompletedAt = order.CompletedAt
	m.CancelledAt = order.CancelledAt
	m.Lines = make([]SalesOrderLineModel, len(order.Lines))
	for i := range order.Lines {
		m.Lines[i].FromDomain(&order.Lines[i])
		m.Lines[i].OrderID = order.ID
	}
}

// SalesOrderModelFromDomain creates a new persistence model from a domain Order entity.
func SalesOrderModelFromDomain(order *sales.Order) *SalesOrderModel {
	m := &SalesOrderModel{}
	m.FromDomain(order)
	return m
}

// ToDomain converts the persistence model to a domain OrderLine.
func (m *SalesOrderLineModel) ToDomain() sales.OrderLine {
	return sales.OrderLine{
		ID:          m.ID,
		OrderID:     m.OrderID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		LineNumber:  m.LineNumber,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		Amount:      m.Amount,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain OrderLine.
func (m *SalesOrderLineModel) FromDomain(line *sales.OrderLine) {
	m.ID = line.ID
	m.OrderID = line.OrderID
	m.ProductID = line.ProductID
	m.ProductName = line.ProductName
	m.LineNumber = line.LineNumber
	m.Quantity = line.Quantity
	m.UnitPrice = line.UnitPrice
	m.Amount = line.Amount
	m.CreatedAt = line.CreatedAt
	m.UpdatedAt = line.UpdatedAt
}
