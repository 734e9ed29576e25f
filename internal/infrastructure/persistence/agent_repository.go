package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vansales/backend/internal/domain/partner"
	"github.com/vansales/backend/internal/domain/shared"
)

// GormAgentRepository implements partner.AgentRepository using GORM
type GormAgentRepository struct {
	db *gorm.DB
}

// NewGormAgentRepository creates a new GormAgentRepository
func NewGormAgentRepository(db *gorm.DB) *GormAgentRepository {
	return &GormAgentRepository{db: db}
}

// FindByID finds an agent by its ID
func (r *GormAgentRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Agent, error) {
	var agent partner.Agent
	if err := r.db.WithContext(ctx).First(&agent, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &agent, nil
}

// FindAll finds all agents with filtering
func (r *GormAgentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Agent, error) {
	var agents []partner.Agent
	query := r.applyFilter(r.db.WithContext(ctx).Model(&partner.Agent{}), filter)
	if err := query.Find(&agents).Error; err != nil {
		return nil, err
	}
	return agents, nil
}

// FindActive finds active agents with filtering
func (r *GormAgentRepository) FindActive(ctx context.Context, filter shared.Filter) ([]partner.Agent, error) {
	var agents []partner.Agent
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&partner.Agent{}).Where("active = ?", true),
		filter,
	)
	if err := query.Find(&agents).Error; err != nil {
		return nil, err
	}
	return agents, nil
}

// Count counts agents matching the filter
func (r *GormAgentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&partner.Agent{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an agent
func (r *GormAgentRepository) Save(ctx context.Context, agent *partner.Agent) error {
	return r.db.WithContext(ctx).Save(agent).Error
}

// applyFilter applies filter options to the query
func (r *GormAgentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("name ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormAgentRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR phone ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "active":
			query = query.Where("active = ?", value)
		}
	}

	return query
}

// Ensure GormAgentRepository implements AgentRepository
var _ partner.AgentRepository = (*GormAgentRepository)(nil)
