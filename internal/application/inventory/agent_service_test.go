package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vansales/backend/internal/domain/partner"
	"github.com/vansales/backend/internal/domain/shared"
)

func TestAgentService_List(t *testing.T) {
	t.Run("lists all agents", func(t *testing.T) {
		agentRepo := new(MockAgentRepository)
		service := NewAgentService(agentRepo)
		ctx := context.Background()
		agent := createActiveAgent(t)

		var captured shared.Filter
		agentRepo.On("FindAll", ctx, mock.AnythingOfType("shared.Filter")).
			Run(func(args mock.Arguments) {
				captured = args.Get(1).(shared.Filter)
			}).
			Return([]partner.Agent{*agent}, nil)
		agentRepo.On("Count", ctx, mock.AnythingOfType("shared.Filter")).Return(int64(1), nil)

		agents, total, err := service.List(ctx, AgentListFilter{})

		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, agents, 1)
		assert.Equal(t, "Dana Reeve", agents[0].Name)
		assert.True(t, agents[0].Active)
		assert.Equal(t, 1, captured.Page)
		assert.Equal(t, 20, captured.PageSize)
		agentRepo.AssertNotCalled(t, "FindActive", mock.Anything, mock.Anything)
	})

	t.Run("active only uses the active finder", func(t *testing.T) {
		agentRepo := new(MockAgentRepository)
		service := NewAgentService(agentRepo)
		ctx := context.Background()
		agent := createActiveAgent(t)

		var captured shared.Filter
		agentRepo.On("FindActive", ctx, mock.AnythingOfType("shared.Filter")).
			Run(func(args mock.Arguments) {
				captured = args.Get(1).(shared.Filter)
			}).
			Return([]partner.Agent{*agent}, nil)
		agentRepo.On("Count", ctx, mock.AnythingOfType("shared.Filter")).Return(int64(1), nil)

		_, _, err := service.List(ctx, AgentListFilter{ActiveOnly: true})

		require.NoError(t, err)
		assert.Equal(t, true, captured.Filters["active"])
		agentRepo.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
	})

	t.Run("search is passed through", func(t *testing.T) {
		agentRepo := new(MockAgentRepository)
		service := NewAgentService(agentRepo)
		ctx := context.Background()

		var captured shared.Filter
		agentRepo.On("FindAll", ctx, mock.AnythingOfType("shared.Filter")).
			Run(func(args mock.Arguments) {
				captured = args.Get(1).(shared.Filter)
			}).
			Return([]partner.Agent{}, nil)
		agentRepo.On("Count", ctx, mock.AnythingOfType("shared.Filter")).Return(int64(0), nil)

		_, _, err := service.List(ctx, AgentListFilter{Search: "dana", Page: 2, PageSize: 5})

		require.NoError(t, err)
		assert.Equal(t, "dana", captured.Search)
		assert.Equal(t, 2, captured.Page)
		assert.Equal(t, 5, captured.PageSize)
	})
}

func TestAgentService_GetByID(t *testing.T) {
	t.Run("returns agent", func(t *testing.T) {
		agentRepo := new(MockAgentRepository)
		service := NewAgentService(agentRepo)
		ctx := context.Background()
		agent := createActiveAgent(t)

		agentRepo.On("FindByID", ctx, agent.ID).Return(agent, nil)

		result, err := service.GetByID(ctx, agent.ID)

		require.NoError(t, err)
		assert.Equal(t, agent.ID, result.ID)
		assert.Equal(t, "Dana Reeve", result.Name)
		assert.Equal(t, "+15550100", result.Phone)
	})

	t.Run("agent not found", func(t *testing.T) {
		agentRepo := new(MockAgentRepository)
		service := NewAgentService(agentRepo)
		ctx := context.Background()
		agentID := uuid.New()

		agentRepo.On("FindByID", ctx, agentID).Return(nil, shared.ErrNotFound)

		result, err := service.GetByID(ctx, agentID)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
