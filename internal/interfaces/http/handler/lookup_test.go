package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	salesapp "github.com/vansales/backend/internal/application/sales"
	"github.com/vansales/backend/internal/domain/catalog"
	"github.com/vansales/backend/internal/domain/partner"
	"github.com/vansales/backend/internal/domain/shared"
)

func setupLookupTestRouter() (*gin.Engine, *MockProductRepository, *MockCustomerRepository, *LookupHandler) {
	gin.SetMode(gin.TestMode)

	productRepo := new(MockProductRepository)
	customerRepo := new(MockCustomerRepository)
	handler := NewLookupHandler(salesapp.NewLookupService(productRepo, customerRepo))
	return gin.New(), productRepo, customerRepo, handler
}

func TestLookupHandler_ListProducts(t *testing.T) {
	t.Run("should list products with pagination meta", func(t *testing.T) {
		router, productRepo, _, handler := setupLookupTestRouter()
		router.GET("/products", handler.ListProducts)

		widget := createTestProduct(t, testWidgetID, "WIDGET-1", "Widget")
		productRepo.On("FindAll", mock.Anything, mock.AnythingOfType("shared.Filter")).
			Return([]catalog.Product{widget}, nil)
		productRepo.On("Count", mock.Anything, mock.AnythingOfType("shared.Filter")).
			Return(int64(1), nil)

		req, _ := http.NewRequest(http.MethodGet, "/products", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		response := decodeResponse(t, w)
		data := response["data"].([]interface{})
		require.Len(t, data, 1)
		entry := data[0].(map[string]interface{})
		assert.Equal(t, "WIDGET-1", entry["code"])
		assert.Equal(t, "Widget", entry["name"])
		meta := response["meta"].(map[string]interface{})
		assert.Equal(t, float64(1), meta["total"])
	})

	t.Run("should pass the search term through", func(t *testing.T) {
		router, productRepo, _, handler := setupLookupTestRouter()
		router.GET("/products", handler.ListProducts)

		productRepo.On("FindAll", mock.Anything, mock.MatchedBy(func(filter shared.Filter) bool {
			return filter.Search == "widget"
		})).Return([]catalog.Product{}, nil)
		productRepo.On("Count", mock.Anything, mock.AnythingOfType("shared.Filter")).
			Return(int64(0), nil)

		req, _ := http.NewRequest(http.MethodGet, "/products?search=widget", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		productRepo.AssertExpectations(t)
	})
}

func TestLookupHandler_ListCustomers(t *testing.T) {
	t.Run("should list customers with pagination meta", func(t *testing.T) {
		router, _, customerRepo, handler := setupLookupTestRouter()
		router.GET("/customers", handler.ListCustomers)

		customer := createTestCustomer(t, testCustomerID)
		customerRepo.On("FindAll", mock.Anything, mock.AnythingOfType("shared.Filter")).
			Return([]partner.Customer{*customer}, nil)
		customerRepo.On("Count", mock.Anything, mock.AnythingOfType("shared.Filter")).
			Return(int64(1), nil)

		req, _ := http.NewRequest(http.MethodGet, "/customers", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		response := decodeResponse(t, w)
		data := response["data"].([]interface{})
		require.Len(t, data, 1)
		entry := data[0].(map[string]interface{})
		assert.Equal(t, customer.Name, entry["name"])
		assert.Equal(t, customer.Email, entry["email"])
	})

	t.Run("should reject oversized page size", func(t *testing.T) {
		router, _, _, handler := setupLookupTestRouter()
		router.GET("/customers", handler.ListCustomers)

		req, _ := http.NewRequest(http.MethodGet, "/customers?page_size=500", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
