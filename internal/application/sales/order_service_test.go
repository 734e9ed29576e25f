package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vansales/backend/internal/domain/catalog"
	"github.com/vansales/backend/internal/domain/partner"
	"github.com/vansales/backend/internal/domain/sales"
	"github.com/vansales/backend/internal/domain/shared"
)

// MockOrderRepository is a mock implementation of sales.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*sales.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *sales.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, order *sales.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) TransitionStatus(ctx context.Context, orderID uuid.UUID, from, to sales.OrderStatus) error {
	args := m.Called(ctx, orderID, from, to)
	return args.Error(0)
}

func (m *MockOrderRepository) CountByStatus(ctx context.Context, status sales.OrderStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockCustomerRepository is a mock implementation of partner.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByEmail(ctx context.Context, email string) (*partner.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// Test helpers
var testOrderNumber = "SO-20250811-X9K2"

func createTestCustomer(t *testing.T) *partner.Customer {
	t.Helper()
	customer, err := partner.NewCustomer("Acme Stores", "orders@acme.test", "")
	require.NoError(t, err)
	return customer
}

func createTestProduct(t *testing.T, code, name, price string) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(code, name, decimal.RequireFromString(price))
	require.NoError(t, err)
	return product
}

type orderServiceMocks struct {
	orderRepo    *MockOrderRepository
	customerRepo *MockCustomerRepository
	productRepo  *MockProductRepository
}

func newOrderService() (*OrderService, orderServiceMocks) {
	mocks := orderServiceMocks{
		orderRepo:    new(MockOrderRepository),
		customerRepo: new(MockCustomerRepository),
		productRepo:  new(MockProductRepository),
	}
	service := NewOrderService(mocks.orderRepo, mocks.customerRepo, mocks.productRepo, zap.NewNop())
	return service, mocks
}

func TestOrderService_Create(t *testing.T) {
	t.Run("create order successfully", func(t *testing.T) {
		service, mocks := newOrderService()
		ctx := context.Background()
		customer := createTestCustomer(t)
		widget := createTestProduct(t, "WID-001", "Widget", "10.00")
		gadget := createTestProduct(t, "GAD-001", "Gadget", "25.50")

		mocks.customerRepo.On("FindByID", ctx, customer.ID).Return(customer, nil)
		mocks.productRepo.On("FindByIDs", ctx, mock.AnythingOfType("[]uuid.UUID")).
			Return([]catalog.Product{*widget, *gadget}, nil)
		mocks.orderRepo.On("GenerateOrderNumber", ctx).Return(testOrderNumber, nil)
		mocks.orderRepo.On("Save", ctx, mock.AnythingOfType("*sales.Order")).Return(nil)

		req := CreateOrderRequest{
			CustomerID: customer.ID,
			Lines: []CreateOrderLineRequest{
				{ProductID: widget.ID, Quantity: 3},
				{ProductID: gadget.ID, Quantity: 2},
			},
		}

		result, err := service.Create(ctx, req)

		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, testOrderNumber, result.OrderNumber)
		assert.Equal(t, "Acme Stores", result.CustomerName)
		assert.Equal(t, "orders@acme.test", result.CustomerEmail)
		assert.Equal(t, string(sales.OrderStatusPending), result.Status)
		assert.Equal(t, 2, result.LineCount)
		assert.Equal(t, int64(5), result.TotalQuantity)
		assert.True(t, decimal.RequireFromString("81.00").Equal(result.TotalAmount))

		require.Len(t, result.Lines, 2)
		assert.Equal(t, "Widget", result.Lines[0].ProductName)
		assert.Equal(t, 1, result.Lines[0].LineNumber)
		assert.True(t, decimal.RequireFromString("10.00").Equal(result.Lines[0].UnitPrice))
		assert.Equal(t, "Gadget", result.Lines[1].ProductName)
		assert.Equal(t, 2, result.Lines[1].LineNumber)

		mocks.orderRepo.AssertExpectations(t)
	})

	t.Run("line price override wins over list price", func(t *testing.T) {
		service, mocks := newOrderService()
		ctx := context.Background()
		customer := createTestCustomer(t)
		widget := createTestProduct(t, "WID-001", "Widget", "10.00")

		mocks.customerRepo.On("FindByID", ctx, customer.ID).Return(customer, nil)
		mocks.productRepo.On("FindByIDs", ctx, mock.AnythingOfType("[]uuid.UUID")).
			Return([]catalog.Product{*widget}, nil)
		mocks.orderRepo.On("GenerateOrderNumber", ctx).Return(testOrderNumber, nil)
		mocks.orderRepo.On("Save", ctx, mock.AnythingOfType("*sales.Order")).Return(nil)

		override := decimal.RequireFromString("8.50")
		req := CreateOrderRequest{
			CustomerID: customer.ID,
			Lines: []CreateOrderLineRequest{
				{ProductID: widget.ID, Quantity: 2, UnitPrice: &override},
			},
		}

		result, err := service.Create(ctx, req)

		require.NoError(t, err)
		assert.True(t, override.Equal(result.Lines[0].UnitPrice))
		assert.True(t, decimal.RequireFromString("17.00").Equal(result.TotalAmount))
	})

	t.Run("customer not found", func(t *testing.T) {
		service, mocks := newOrderService()
		ctx := context.Background()
		customerID := uuid.New()

		mocks.customerRepo.On("FindByID", ctx, customerID).Return(nil, shared.ErrNotFound)

		result, err := service.Create(ctx, CreateOrderRequest{
			CustomerID: customerID,
			Lines:      []CreateOrderLineRequest{{ProductID: uuid.New(), Quantity: 1}},
		})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		mocks.orderRepo.AssertNotCalled(t, "GenerateOrderNumber", mock.Anything)
	})

	t.Run("unknown product is rejected", func(t *testing.T) {
		service, mocks := newOrderService()
		ctx := context.Background()
		customer := createTestCustomer(t)
		missingID := uuid.New()

		mocks.customerRepo.On("FindByID", ctx, customer.ID).Return(customer, nil)
		mocks.productRepo.On("FindByIDs", ctx, mock.AnythingOfType("[]uuid.UUID")).
			Return([]catalog.Product{}, nil)

		result, err := service.Create(ctx, CreateOrderRequest{
			CustomerID: customer.ID,
			Lines:      []CreateOrderLineRequest{{ProductID: missingID, Quantity: 1}},
		})

		assert.Nil(t, result)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
		assert.Contains(t, domainErr.Message, missingID.String())
		mocks.orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("discontinued product is rejected", func(t *testing.T) {
		service, mocks := newOrderService()
		ctx := context.Background()
		customer := createTestCustomer(t)
		widget := createTestProduct(t, "WID-001", "Widget", "10.00")
		require.NoError(t, widget.Discontinue())

		mocks.customerRepo.On("FindByID", ctx, customer.ID).Return(customer, nil)
		mocks.productRepo.On("FindByIDs", ctx, mock.AnythingOfType("[]uuid.UUID")).
			Return([]catalog.Product{*widget}, nil)

		result, err := service.Create(ctx, CreateOrderRequest{
			CustomerID: customer.ID,
			Lines:      []CreateOrderLineRequest{{ProductID: widget.ID, Quantity: 1}},
		})

		assert.Nil(t, result)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
		assert.Contains(t, domainErr.Message, "WID-001")
	})

	t.Run("duplicate product lines are allowed", func(t *testing.T) {
		service, mocks := newOrderService()
		ctx := context.Background()
		customer := createTestCustomer(t)
		widget := createTestProduct(t, "WID-001", "Widget", "10.00")

		mocks.customerRepo.On("FindByID", ctx, customer.ID).Return(customer, nil)
		var requestedIDs []uuid.UUID
		mocks.productRepo.On("FindByIDs", ctx, mock.AnythingOfType("[]uuid.UUID")).
			Run(func(args mock.Arguments) {
				requestedIDs = args.Get(1).([]uuid.UUID)
			}).
			Return([]catalog.Product{*widget}, nil)
		mocks.orderRepo.On("GenerateOrderNumber", ctx).Return(testOrderNumber, nil)
		mocks.orderRepo.On("Save", ctx, mock.AnythingOfType("*sales.Order")).Return(nil)

		result, err := service.Create(ctx, CreateOrderRequest{
			CustomerID: customer.ID,
			Lines: []CreateOrderLineRequest{
				{ProductID: widget.ID, Quantity: 3},
				{ProductID: widget.ID, Quantity: 2},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, 2, result.LineCount)
		assert.Equal(t, []uuid.UUID{widget.ID}, requestedIDs)
	})

	t.Run("non-positive quantity is rejected by the domain", func(t *testing.T) {
		service, mocks := newOrderService()
		ctx := context.Background()
		customer := createTestCustomer(t)
		widget := createTestProduct(t, "WID-001", "Widget", "10.00")

		mocks.customerRepo.On("FindByID", ctx, customer.ID).Return(customer, nil)
		mocks.productRepo.On("FindByIDs", ctx, mock.AnythingOfType("[]uuid.UUID")).
			Return([]catalog.Product{*widget}, nil)
		mocks.orderRepo.On("GenerateOrderNumber", ctx).Return(testOrderNumber, nil)

		result, err := service.Create(ctx, CreateOrderRequest{
			CustomerID: customer.ID,
			Lines:      []CreateOrderLineRequest{{ProductID: widget.ID, Quantity: 0}},
		})

		assert.Nil(t, result)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_ORDER_LINE", domainErr.Code)
		mocks.orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("publishes order created event", func(t *testing.T) {
		service, mocks := newOrderService()
		ctx := context.Background()
		customer := createTestCustomer(t)
		widget := createTestProduct(t, "WID-001", "Widget", "10.00")

		mocks.customerRepo.On("FindByID", ctx, customer.ID).Return(customer, nil)
		mocks.productRepo.On("FindByIDs", ctx, mock.AnythingOfType("[]uuid.UUID")).
			Return([]catalog.Product{*widget}, nil)
		mocks.orderRepo.On("GenerateOrderNumber", ctx).Return(testOrderNumber, nil)
		mocks.orderRepo.On("Save", ctx, mock.AnythingOfType("*sales.Order")).Return(nil)

		publisher := new(MockEventPublisher)
		var published []shared.DomainEvent
		publisher.On("Publish", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				published = append(published, args.Get(1).([]shared.DomainEvent)...)
			}).
			Return(nil)
		service.SetEventPublisher(publisher)

		_, err := service.Create(ctx, CreateOrderRequest{
			CustomerID: customer.ID,
			Lines:      []CreateOrderLineRequest{{ProductID: widget.ID, Quantity: 1}},
		})

		require.NoError(t, err)
		require.Len(t, published, 1)
		createdEvent, ok := published[0].(*sales.OrderCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, testOrderNumber, createdEvent.OrderNumber)
		assert.Equal(t, 1, createdEvent.LineCount)
	})
}

func TestOrderService_GetByID(t *testing.T) {
	t.Run("returns order with lines", func(t *testing.T) {
		service, mocks := newOrderService()
		ctx := context.Background()

		order, err := sales.NewOrder(testOrderNumber, uuid.New(), "Acme Stores", "orders@acme.test", time.Time{}, []sales.LineInput{
			{ProductID: uuid.New(), ProductName: "Widget", Quantity: 3, UnitPrice: decimal.NewFromInt(10)},
		})
		require.NoError(t, err)
		order.ClearDomainEvents()

		mocks.orderRepo.On("FindByID", ctx, order.ID).Return(order, nil)

		result, err := service.GetByID(ctx, order.ID)

		require.NoError(t, err)
		assert.Equal(t, order.ID, result.ID)
		require.Len(t, result.Lines, 1)
		assert.Equal(t, "Widget", result.Lines[0].ProductName)
	})

	t.Run("order not found", func(t *testing.T) {
		service, mocks := newOrderService()
		ctx := context.Background()
		orderID := uuid.New()

		mocks.orderRepo.On("FindByID", ctx, orderID).Return(nil, shared.ErrNotFound)

		result, err := service.GetByID(ctx, orderID)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
