package partner

import (
	"time"

	"github.com/vansales/backend/internal/domain/shared"
)

// Agent represents a van sales agent who carries stock and dispatches orders.
// It is the aggregate root for agent-related operations.
type Agent struct {
	shared.BaseAggregateRoot
	Name   string `gorm:"type:varchar(200);not null"`
	Phone  string `gorm:"type:varchar(50)"`
	Active bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Agent) TableName() string {
	return "agents"
}

// NewAgent creates a new agent with required fields
func NewAgent(name, phone string) (*Agent, error) {
	if err := validateAgentName(name); err != nil {
		return nil, err
	}
	if phone != "" {
		if err := validatePhone(phone); err != nil {
			return nil, err
		}
	}

	return &Agent{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Phone:             phone,
		Active:            true,
	}, nil
}

// Update updates the agent's basic information
func (a *Agent) Update(name, phone string) error {
	if err := validateAgentName(name); err != nil {
		return err
	}
	if phone != "" {
		if err := validatePhone(phone); err != nil {
			return err
		}
	}

	a.Name = name
	a.Phone = phone
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// Deactivate removes the agent from active duty
func (a *Agent) Deactivate() error {
	if !a.Active {
		return shared.NewDomainError("ALREADY_INACTIVE", "Agent is already inactive")
	}

	a.Active = false
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// Activate returns the agent to active duty
func (a *Agent) Activate() error {
	if a.Active {
		return shared.NewDomainError("ALREADY_ACTIVE", "Agent is already active")
	}

	a.Active = true
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// IsActive returns true if the agent can dispatch orders
func (a *Agent) IsActive() bool {
	return a.Active
}

func validateAgentName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Agent name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Agent name cannot exceed 200 characters")
	}
	return nil
}
