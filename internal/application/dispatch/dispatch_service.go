package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vansales/backend/internal/domain/inventory"
	"github.com/vansales/backend/internal/domain/partner"
	"github.com/vansales/backend/internal/domain/sales"
	"github.com/vansales/backend/internal/domain/shared"
	"github.com/vansales/backend/internal/infrastructure/telemetry"
)

// DispatchResult carries the outcome of a confirmed dispatch: the completed
// order and the ledger movements written for it.
type DispatchResult struct {
	Order     *sales.Order
	Movements []*inventory.StockMovement
}

// DispatchService coordinates the dispatch decision. It serializes dispatches
// per agent, evaluates van stock availability against the movement ledger and
// commits the ledger append together with the order status transition in a
// single transaction.
type DispatchService struct {
	orderRepo      sales.OrderRepository
	agentRepo      partner.AgentRepository
	movementRepo   inventory.StockMovementRepository
	txScope        TransactionScope
	lockManager    AgentLockManager
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewDispatchService creates a new dispatch service
func NewDispatchService(
	orderRepo sales.OrderRepository,
	agentRepo partner.AgentRepository,
	movementRepo inventory.StockMovementRepository,
	txScope TransactionScope,
	lockManager AgentLockManager,
	logger *zap.Logger,
) *DispatchService {
	return &DispatchService{
		orderRepo:    orderRepo,
		agentRepo:    agentRepo,
		movementRepo: movementRepo,
		txScope:      txScope,
		lockManager:  lockManager,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *DispatchService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ConfirmDispatch accepts a pending order on behalf of an agent. The agent's
// van stock must cover every order line; on success the order is COMPLETED
// and one SALE movement per line is appended to the ledger atomically.
func (s *DispatchService) ConfirmDispatch(ctx context.Context, orderID, agentID uuid.UUID) (*DispatchResult, error) {
	started := time.Now()

	ctx, span := telemetry.StartServiceSpan(ctx, "dispatch", "confirm")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, orderID.String(),
		telemetry.SpanAttrAgentID, agentID.String(),
	)

	// Cheap rejections before taking the agent lock.
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrOrderNumber, order.OrderNumber)
	if !order.IsPending() {
		err := shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot dispatch order in %s status", order.Status))
		telemetry.RecordError(span, err)
		return nil, err
	}
	if _, err := s.agentRepo.FindByID(ctx, agentID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	release, err := s.lockManager.Acquire(ctx, agentID)
	if err != nil {
		s.logger.Warn("Dispatch lock not acquired",
			zap.String("order_id", orderID.String()),
			zap.String("agent_id", agentID.String()),
			zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer release()
	telemetry.AddEvent(span, "agent_lock_acquired")

	var (
		completed *sales.Order
		movements []*inventory.StockMovement
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		// Re-load inside the transaction: a concurrent dispatch of the same
		// order by another agent loses here.
		current, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !current.IsPending() {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Cannot dispatch order in %s status", current.Status))
		}

		balances, err := repos.MovementRepo().BalancesFor(ctx, agentID)
		if err != nil {
			return err
		}
		verdict, err := inventory.EvaluateAvailability(demandsFromLines(current.Lines), balances)
		if err != nil {
			return err
		}
		if !verdict.Fulfillable {
			return inventory.NewInsufficientStockError(verdict.Shortfalls)
		}

		built := make([]*inventory.StockMovement, 0, len(current.Lines))
		for i := range current.Lines {
			line := &current.Lines[i]
			movement, err := inventory.NewSaleMovement(agentID, line.ProductID, current.ID, line.Quantity)
			if err != nil {
				return err
			}
			built = append(built, movement)
		}
		if err := repos.MovementRepo().AppendAll(ctx, built); err != nil {
			return err
		}

		if err := current.Complete(agentID); err != nil {
			return err
		}
		if err := repos.OrderRepo().SaveWithLock(ctx, current); err != nil {
			return err
		}

		completed = current
		movements = built
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrLedgerWrite) {
			// The append guard caught a balance race the evaluator missed.
			// The transaction rolled back; re-read outside it for shortfall
			// detail while the lock still excludes sibling dispatches.
			s.logger.Warn("Ledger append rejected during dispatch",
				zap.String("order_id", orderID.String()),
				zap.String("agent_id", agentID.String()))
			detail := s.ledgerRejectionDetail(ctx, order, agentID)
			telemetry.RecordError(span, detail)
			return nil, detail
		}
		if errors.Is(err, shared.ErrInsufficientStock) {
			s.logger.Info("Dispatch rejected, insufficient stock",
				zap.String("order_id", orderID.String()),
				zap.String("order_number", order.OrderNumber),
				zap.String("agent_id", agentID.String()))
		}
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, completed)

	telemetry.AddEvent(span, "dispatch_committed",
		telemetry.SpanAttrOrderNumber, completed.OrderNumber,
		telemetry.SpanAttrLineCount, len(movements),
	)

	s.logger.Info("Dispatch confirmed",
		zap.String("order_id", completed.ID.String()),
		zap.String("order_number", completed.OrderNumber),
		zap.String("agent_id", agentID.String()),
		zap.Int("movements", len(movements)),
		zap.Duration("took", time.Since(started)))

	return &DispatchResult{Order: completed, Movements: movements}, nil
}

// RefuseOrder cancels a pending order. No agent lock and no ledger effect:
// refusal is a single conditional status update.
func (s *DispatchService) RefuseOrder(ctx context.Context, orderID uuid.UUID) (*sales.Order, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "dispatch", "refuse")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrOrderID, orderID.String())

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := order.Cancel(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	// A concurrent dispatch that already moved the order out of PENDING wins
	// and surfaces as INVALID_STATE.
	if err := s.orderRepo.TransitionStatus(ctx, orderID, sales.OrderStatusPending, sales.OrderStatusCancelled); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	// Mirror the version bump applied by the conditional update.
	order.IncrementVersion()

	s.publishEvents(ctx, order)

	s.logger.Info("Order refused",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber))

	return order, nil
}

// ledgerRejectionDetail rebuilds the shortfall list after the append guard
// rejected a dispatch. Best effort: when the re-read cannot explain the
// rejection the bare sentinel is returned.
func (s *DispatchService) ledgerRejectionDetail(ctx context.Context, order *sales.Order, agentID uuid.UUID) error {
	balances, err := s.movementRepo.BalancesFor(ctx, agentID)
	if err != nil {
		return shared.ErrInsufficientStock
	}
	verdict, err := inventory.EvaluateAvailability(demandsFromLines(order.Lines), balances)
	if err != nil || verdict.Fulfillable {
		return shared.ErrInsufficientStock
	}
	return inventory.NewInsufficientStockError(verdict.Shortfalls)
}

func (s *DispatchService) publishEvents(ctx context.Context, order *sales.Order) {
	if s.eventPublisher == nil {
		order.ClearDomainEvents()
		return
	}
	for _, event := range order.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			// Event handling is best effort, the dispatch already committed.
			s.logger.Warn("Failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.String("order_id", order.ID.String()),
				zap.Error(err))
		}
	}
	order.ClearDomainEvents()
}

func demandsFromLines(lines []sales.OrderLine) []inventory.Demand {
	demands := make([]inventory.Demand, len(lines))
	for i := range lines {
		demands[i] = inventory.Demand{
			ProductID:   lines[i].ProductID,
			ProductName: lines[i].ProductName,
			Quantity:    lines[i].Quantity,
		}
	}
	return demands
}
