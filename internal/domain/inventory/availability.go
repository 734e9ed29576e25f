package inventory

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/vansales/backend/internal/domain/shared"
)

// Demand is one line of requested stock, in order sequence.
// The dispatch service maps order lines into demands so the evaluator
// stays free of any order bookkeeping.
type Demand struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int64
}

// Shortfall describes one demand line the agent's van cannot cover
type Shortfall struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Needed      int64     `json:"needed"`
	Available   int64     `json:"available"`
}

// AvailabilityResult is the verdict of an availability evaluation
type AvailabilityResult struct {
	Fulfillable bool        `json:"fulfillable"`
	Shortfalls  []Shortfall `json:"shortfalls"`
}

// EvaluateAvailability decides whether every demand line can be covered by
// the given balance snapshot. It is a pure function: the caller supplies
// the snapshot, so the same inputs always produce the same verdict.
//
// Demands are consumed in sequence against a working copy of the snapshot,
// so repeated products are charged cumulatively: two demands of 3 against
// a balance of 5 leave the second one short. A product absent from the
// snapshot is available 0. A demand line that covers decrements the
// working balance; a short line consumes nothing.
func EvaluateAvailability(demands []Demand, balances map[uuid.UUID]int64) (*AvailabilityResult, error) {
	remaining := make(map[uuid.UUID]int64, len(balances))
	for productID, quantity := range balances {
		remaining[productID] = quantity
	}

	result := &AvailabilityResult{
		Fulfillable: true,
		Shortfalls:  make([]Shortfall, 0),
	}

	for _, demand := range demands {
		if demand.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_ORDER_LINE", "Line quantity must be a positive integer")
		}

		available := remaining[demand.ProductID]
		if available < demand.Quantity {
			result.Shortfalls = append(result.Shortfalls, Shortfall{
				ProductID:   demand.ProductID,
				ProductName: demand.ProductName,
				Needed:      demand.Quantity,
				Available:   available,
			})
			continue
		}

		remaining[demand.ProductID] = available - demand.Quantity
	}

	result.Fulfillable = len(result.Shortfalls) == 0

	return result, nil
}

// InsufficientStockError reports an unfulfillable dispatch together with
// the per-line shortfall detail. It unwraps to ErrInsufficientStock so
// errors.Is and errors.As both recognize it.
type InsufficientStockError struct {
	Shortfalls []Shortfall
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %d line(s)", len(e.Shortfalls))
}

// Unwrap returns the underlying domain error
func (e *InsufficientStockError) Unwrap() error {
	return shared.ErrInsufficientStock
}

// NewInsufficientStockError creates an InsufficientStockError from a verdict
func NewInsufficientStockError(shortfalls []Shortfall) *InsufficientStockError {
	return &InsufficientStockError{Shortfalls: shortfalls}
}
