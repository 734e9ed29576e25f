package inventory

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vansales/backend/internal/domain/shared"
)

func TestEvaluateAvailability(t *testing.T) {
	widgetID := uuid.New()
	gadgetID := uuid.New()

	t.Run("fulfillable when every line is covered", func(t *testing.T) {
		demands := []Demand{
			{ProductID: widgetID, ProductName: "Widget", Quantity: 3},
			{ProductID: gadgetID, ProductName: "Gadget", Quantity: 2},
		}
		balances := map[uuid.UUID]int64{widgetID: 5, gadgetID: 2}

		result, err := EvaluateAvailability(demands, balances)
		require.NoError(t, err)
		assert.True(t, result.Fulfillable)
		assert.Empty(t, result.Shortfalls)
	})

	t.Run("reports shortfall with needed and available", func(t *testing.T) {
		demands := []Demand{
			{ProductID: widgetID, ProductName: "Widget", Quantity: 4},
		}
		balances := map[uuid.UUID]int64{widgetID: 2}

		result, err := EvaluateAvailability(demands, balances)
		require.NoError(t, err)
		assert.False(t, result.Fulfillable)
		require.Len(t, result.Shortfalls, 1)
		assert.Equal(t, widgetID, result.Shortfalls[0].ProductID)
		assert.Equal(t, "Widget", result.Shortfalls[0].ProductName)
		assert.Equal(t, int64(4), result.Shortfalls[0].Needed)
		assert.Equal(t, int64(2), result.Shortfalls[0].Available)
	})

	t.Run("product absent from snapshot is available zero", func(t *testing.T) {
		demands := []Demand{
			{ProductID: widgetID, ProductName: "Widget", Quantity: 1},
		}

		result, err := EvaluateAvailability(demands, map[uuid.UUID]int64{})
		require.NoError(t, err)
		assert.False(t, result.Fulfillable)
		require.Len(t, result.Shortfalls, 1)
		assert.Equal(t, int64(0), result.Shortfalls[0].Available)
	})

	t.Run("exact balance is fulfillable", func(t *testing.T) {
		demands := []Demand{
			{ProductID: widgetID, ProductName: "Widget", Quantity: 5},
		}
		balances := map[uuid.UUID]int64{widgetID: 5}

		result, err := EvaluateAvailability(demands, balances)
		require.NoError(t, err)
		assert.True(t, result.Fulfillable)
	})

	t.Run("shortfalls follow demand order", func(t *testing.T) {
		demands := []Demand{
			{ProductID: widgetID, ProductName: "Widget", Quantity: 10},
			{ProductID: gadgetID, ProductName: "Gadget", Quantity: 10},
		}
		balances := map[uuid.UUID]int64{widgetID: 1, gadgetID: 2}

		result, err := EvaluateAvailability(demands, balances)
		require.NoError(t, err)
		require.Len(t, result.Shortfalls, 2)
		assert.Equal(t, "Widget", result.Shortfalls[0].ProductName)
		assert.Equal(t, "Gadget", result.Shortfalls[1].ProductName)
	})

	t.Run("repeated product is charged cumulatively", func(t *testing.T) {
		demands := []Demand{
			{ProductID: widgetID, ProductName: "Widget", Quantity: 3},
			{ProductID: widgetID, ProductName: "Widget", Quantity: 3},
		}
		balances := map[uuid.UUID]int64{widgetID: 5}

		result, err := EvaluateAvailability(demands, balances)
		require.NoError(t, err)
		assert.False(t, result.Fulfillable)
		require.Len(t, result.Shortfalls, 1)
		// First demand consumes 3 of 5; the second sees the remaining 2
		assert.Equal(t, int64(3), result.Shortfalls[0].Needed)
		assert.Equal(t, int64(2), result.Shortfalls[0].Available)
	})

	t.Run("does not mutate the caller's snapshot", func(t *testing.T) {
		demands := []Demand{
			{ProductID: widgetID, ProductName: "Widget", Quantity: 3},
		}
		balances := map[uuid.UUID]int64{widgetID: 5}

		_, err := EvaluateAvailability(demands, balances)
		require.NoError(t, err)
		assert.Equal(t, int64(5), balances[widgetID])
	})

	t.Run("empty demands are fulfillable", func(t *testing.T) {
		result, err := EvaluateAvailability(nil, map[uuid.UUID]int64{widgetID: 5})
		require.NoError(t, err)
		assert.True(t, result.Fulfillable)
		assert.Empty(t, result.Shortfalls)
	})

	t.Run("rejects zero quantity line", func(t *testing.T) {
		demands := []Demand{
			{ProductID: widgetID, ProductName: "Widget", Quantity: 0},
		}

		_, err := EvaluateAvailability(demands, map[uuid.UUID]int64{widgetID: 5})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_ORDER_LINE", domainErr.Code)
	})

	t.Run("rejects negative quantity line", func(t *testing.T) {
		demands := []Demand{
			{ProductID: widgetID, ProductName: "Widget", Quantity: -2},
		}

		_, err := EvaluateAvailability(demands, map[uuid.UUID]int64{widgetID: 5})
		require.Error(t, err)
	})

	// Dispatch 3 of 5 Widgets, then try 4 against the remaining 2
	t.Run("sequential dispatches see the reduced balance", func(t *testing.T) {
		balances := map[uuid.UUID]int64{widgetID: 5}

		first, err := EvaluateAvailability([]Demand{{ProductID: widgetID, ProductName: "Widget", Quantity: 3}}, balances)
		require.NoError(t, err)
		require.True(t, first.Fulfillable)

		// The committed sale movement leaves a balance of 2
		balances[widgetID] -= 3

		second, err := EvaluateAvailability([]Demand{{ProductID: widgetID, ProductName: "Widget", Quantity: 4}}, balances)
		require.NoError(t, err)
		assert.False(t, second.Fulfillable)
		require.Len(t, second.Shortfalls, 1)
		assert.Equal(t, Shortfall{ProductID: widgetID, ProductName: "Widget", Needed: 4, Available: 2}, second.Shortfalls[0])
	})
}

func TestInsufficientStockError(t *testing.T) {
	shortfalls := []Shortfall{
		{ProductID: uuid.New(), ProductName: "Widget", Needed: 4, Available: 2},
	}
	err := NewInsufficientStockError(shortfalls)

	t.Run("unwraps to the domain error", func(t *testing.T) {
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
	})

	t.Run("exposes shortfall detail", func(t *testing.T) {
		var stockErr *InsufficientStockError
		require.True(t, errors.As(err, &stockErr))
		assert.Equal(t, shortfalls, stockErr.Shortfalls)
	})

	t.Run("message names the line count", func(t *testing.T) {
		assert.Contains(t, err.Error(), "1 line(s)")
	})
}
