package sales

import (
	"context"

	"github.com/vansales/backend/internal/domain/catalog"
	"github.com/vansales/backend/internal/domain/partner"
	"github.com/vansales/backend/internal/domain/shared"
)

// LookupService serves the read-side product and customer lookups used by
// order intake.
type LookupService struct {
	productRepo  catalog.ProductRepository
	customerRepo partner.CustomerRepository
}

// NewLookupService creates a new lookup service
func NewLookupService(productRepo catalog.ProductRepository, customerRepo partner.CustomerRepository) *LookupService {
	return &LookupService{
		productRepo:  productRepo,
		customerRepo: customerRepo,
	}
}

// ListProducts returns a page of products matching the filter
func (s *LookupService) ListProducts(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.Search = filter.Search

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToProductResponses(products), total, nil
}

// ListCustomers returns a page of customers matching the filter
func (s *LookupService) ListCustomers(ctx context.Context, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.Search = filter.Search

	customers, err := s.customerRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.customerRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToCustomerResponses(customers), total, nil
}
