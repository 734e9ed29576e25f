package inventory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vansales/backend/internal/domain/catalog"
	"github.com/vansales/backend/internal/domain/inventory"
	"github.com/vansales/backend/internal/domain/partner"
	"github.com/vansales/backend/internal/domain/shared"
)

// VanStockService records replenishments and serves van stock queries.
// Sale movements are never written here; only a confirmed dispatch creates
// them.
type VanStockService struct {
	movementRepo inventory.StockMovementRepository
	agentRepo    partner.AgentRepository
	productRepo  catalog.ProductRepository
	logger       *zap.Logger
}

// NewVanStockService creates a new van stock service
func NewVanStockService(
	movementRepo inventory.StockMovementRepository,
	agentRepo partner.AgentRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
) *VanStockService {
	return &VanStockService{
		movementRepo: movementRepo,
		agentRepo:    agentRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

// Replenish appends one positive movement per requested line, all or nothing
func (s *VanStockService) Replenish(ctx context.Context, agentID uuid.UUID, req RecordReplenishmentRequest) ([]MovementResponse, error) {
	if _, err := s.agentRepo.FindByID(ctx, agentID); err != nil {
		return nil, err
	}
	if err := s.verifyProducts(ctx, req.Lines); err != nil {
		return nil, err
	}

	movements := make([]*inventory.StockMovement, 0, len(req.Lines))
	for _, line := range req.Lines {
		movement, err := inventory.NewReplenishmentMovement(agentID, line.ProductID, line.Quantity)
		if err != nil {
			return nil, err
		}
		if line.Note != "" {
			movement.WithNote(line.Note)
		}
		movements = append(movements, movement)
	}

	if err := s.movementRepo.AppendAll(ctx, movements); err != nil {
		return nil, err
	}

	s.logger.Info("Replenishment recorded",
		zap.String("agent_id", agentID.String()),
		zap.Int("lines", len(movements)))

	responses := make([]MovementResponse, len(movements))
	for i, movement := range movements {
		responses[i] = ToMovementResponse(movement)
	}
	return responses, nil
}

// Balances returns the agent's van stock snapshot enriched with product
// names, sorted by product name for stable output
func (s *VanStockService) Balances(ctx context.Context, agentID uuid.UUID) ([]VanBalanceResponse, error) {
	if _, err := s.agentRepo.FindByID(ctx, agentID); err != nil {
		return nil, err
	}

	balances, err := s.movementRepo.BalancesFor(ctx, agentID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(balances))
	for id := range balances {
		ids = append(ids, id)
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	responses := make([]VanBalanceResponse, 0, len(balances))
	for id, quantity := range balances {
		response := VanBalanceResponse{ProductID: id, Quantity: quantity}
		if product, ok := byID[id]; ok {
			response.ProductCode = product.Code
			response.ProductName = product.Name
		}
		responses = append(responses, response)
	}
	sort.Slice(responses, func(i, j int) bool {
		if responses[i].ProductName != responses[j].ProductName {
			return responses[i].ProductName < responses[j].ProductName
		}
		return responses[i].ProductID.String() < responses[j].ProductID.String()
	})

	return responses, nil
}

// Movements returns the agent's ledger audit trail, newest first
func (s *VanStockService) Movements(ctx context.Context, agentID uuid.UUID, filter MovementListFilter) ([]MovementResponse, int64, error) {
	if _, err := s.agentRepo.FindByID(ctx, agentID); err != nil {
		return nil, 0, err
	}

	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.Kind != "" {
		kind := inventory.MovementKind(strings.ToUpper(strings.TrimSpace(filter.Kind)))
		if !kind.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_INPUT", "Unknown movement kind: "+filter.Kind)
		}
		domainFilter.Filters["kind"] = string(kind)
	}

	movements, total, err := s.movementRepo.ListForAgent(ctx, agentID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToMovementResponses(movements), total, nil
}

// verifyProducts checks that every referenced product exists
func (s *VanStockService) verifyProducts(ctx context.Context, lines []ReplenishmentLineRequest) error {
	ids := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	found := make(map[uuid.UUID]struct{}, len(products))
	for i := range products {
		found[products[i].ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return shared.NewDomainError("NOT_FOUND", "Product "+id.String()+" not found")
		}
	}
	return nil
}
